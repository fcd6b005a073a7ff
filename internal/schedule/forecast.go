package schedule

import (
	"time"

	"sprout/internal/models"
)

// ForecastDays is the length of the forward calendar, today included.
const ForecastDays = 7

// ProjectForecast lays out the next ForecastDays calendar days starting at
// today and places a task on a day when a plant's last occurrence plus its
// interval lands exactly on it. Persisted tasks are ignored; this is a what-if
// view over the plants' cadences. Weather is attached by date when present.
func ProjectForecast(plants []models.Plant, weather []models.DayWeather, today time.Time) []models.DayForecast {
	loc := today.Location()
	today = Midnight(today, loc)

	byDate := make(map[string]models.DayWeather, len(weather))
	for _, w := range weather {
		byDate[w.Date] = w
	}

	type due struct {
		plant models.Plant
		typ   models.CareType
		day   string
	}
	var dues []due
	for _, p := range plants {
		if p.ArchivedAt != nil {
			continue
		}
		for _, typ := range models.ScheduledTypes {
			interval, ok := ParseInterval(p.Cadence(typ))
			if !ok {
				continue
			}
			last := p.LastAt(typ)
			if last == nil {
				continue
			}
			next := AddDays(Midnight(*last, loc), interval)
			dues = append(dues, due{p, typ, next.Format(DayLayout)})
		}
	}

	out := make([]models.DayForecast, 0, ForecastDays)
	for i := 0; i < ForecastDays; i++ {
		day := AddDays(today, i).Format(DayLayout)
		f := models.DayForecast{Date: day, Tasks: []models.Task{}}
		for _, d := range dues {
			if d.day != day {
				continue
			}
			f.Tasks = append(f.Tasks, models.Task{
				PlantID:   d.plant.ID,
				PlantName: d.plant.Nickname,
				Type:      d.typ,
				Due:       day,
			})
		}
		if w, ok := byDate[day]; ok {
			w := w
			f.Weather = &w
		}
		out = append(out, f)
	}
	return out
}
