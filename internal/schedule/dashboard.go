package schedule

import (
	"math"
	"sort"
	"time"

	"sprout/internal/models"
)

const (
	TrendDays      = 7
	MaxStreakDays  = 30
	DashboardLimit = 5

	LiveNeglectDays = 14
	DemoNeglectDays = 5
)

// DashboardInput is everything the aggregator reads. Now is frozen by the
// caller so every window in one response shares the same instant.
type DashboardInput struct {
	Plants      []models.Plant
	Events      []models.CareEvent
	Tasks       []models.Task
	ET0         []models.DayET0
	NeglectDays int
	Now         time.Time
}

// Aggregate computes the dashboard payload from raw history. Events and tasks
// of plants missing from in.Plants, or archived there, are ignored.
func Aggregate(in DashboardInput) models.Dashboard {
	loc := in.Now.Location()
	today := Midnight(in.Now, loc)
	windowStart := AddDays(today, -(TrendDays - 1))

	plants := make(map[int]models.Plant, len(in.Plants))
	var active []models.Plant
	for _, p := range in.Plants {
		if p.ArchivedAt != nil {
			continue
		}
		plants[p.ID] = p
		active = append(active, p)
	}
	events := make([]models.CareEvent, 0, len(in.Events))
	for _, e := range in.Events {
		if _, ok := plants[e.PlantID]; ok {
			events = append(events, e)
		}
	}
	tasks := make([]models.Task, 0, len(in.Tasks))
	for _, t := range in.Tasks {
		if _, ok := plants[t.PlantID]; ok {
			tasks = append(tasks, t)
		}
	}

	perDay := make(map[string]int)
	waterPerDay := make(map[string]int)
	recent := 0
	for _, e := range events {
		day := Midnight(e.CreatedAt, loc)
		key := day.Format(DayLayout)
		perDay[key]++
		if models.CareType(e.Type) == models.CareWater {
			waterPerDay[key]++
		}
		if !day.Before(windowStart) && !day.After(today) {
			recent++
		}
	}

	d := models.Dashboard{
		TotalDone:      recent,
		TotalExpected:  len(active),
		Plants:         len(active),
		Hist:           make([]models.DayCount, 0, TrendDays),
		OverdueTrend:   make([]models.DayCount, 0, TrendDays),
		WaterWeather:   make([]models.WaterWeather, 0, TrendDays),
		Attention:      attention(tasks, plants, today),
		Neglected:      neglected(active, events, in.Now, in.NeglectDays),
		LongestStreaks: longestStreaks(events, plants, loc),
	}
	if d.TotalExpected > 0 {
		pct := math.Round(float64(recent) / float64(d.TotalExpected) * 100)
		d.Completion = int(math.Min(100, pct))
	}

	et0 := make(map[string]float64, len(in.ET0))
	for _, e := range in.ET0 {
		et0[e.Date] = e.ET0
	}
	for i := TrendDays - 1; i >= 0; i-- {
		day := AddDays(today, -i)
		key := day.Format(DayLayout)
		d.Hist = append(d.Hist, models.DayCount{Day: key, Count: perDay[key]})
		d.OverdueTrend = append(d.OverdueTrend, models.DayCount{Day: key, Count: overdueAsOf(tasks, day, loc)})
		d.WaterWeather = append(d.WaterWeather, models.WaterWeather{Day: key, ET0: et0[key], Water: waterPerDay[key]})
	}

	for i := 0; i < MaxStreakDays; i++ {
		if perDay[AddDays(today, -i).Format(DayLayout)] == 0 {
			break
		}
		d.Streak++
	}
	return d
}

// overdueAsOf counts tasks due before the end of day that were still open at
// that point.
func overdueAsOf(tasks []models.Task, day time.Time, loc *time.Location) int {
	end := AddDays(day, 1)
	n := 0
	for _, t := range tasks {
		due, err := ParseDay(t.Due, loc)
		if err != nil || !due.Before(end) {
			continue
		}
		if t.CompletedAt == nil || !t.CompletedAt.Before(end) {
			n++
		}
	}
	return n
}

func attention(tasks []models.Task, plants map[int]models.Plant, today time.Time) []models.AttentionItem {
	cutoff := today.Format(DayLayout)
	var open []models.Task
	for _, t := range tasks {
		if t.Open() && t.Due <= cutoff {
			open = append(open, t)
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		if open[i].Due != open[j].Due {
			return open[i].Due < open[j].Due
		}
		return open[i].ID < open[j].ID
	})

	out := make([]models.AttentionItem, 0, DashboardLimit)
	for _, t := range open {
		if len(out) == DashboardLimit {
			break
		}
		name := t.PlantName
		if p, ok := plants[t.PlantID]; ok {
			name = p.Nickname
		}
		out = append(out, models.AttentionItem{ID: t.ID, PlantName: name, Type: t.Type, Due: t.Due})
	}
	return out
}

func neglected(plants []models.Plant, events []models.CareEvent, now time.Time, threshold int) []models.NeglectedPlant {
	last := make(map[int]time.Time)
	for _, e := range events {
		if cur, ok := last[e.PlantID]; !ok || e.CreatedAt.After(cur) {
			last[e.PlantID] = e.CreatedAt
		}
	}

	var out []models.NeglectedPlant
	for _, p := range plants {
		ref := p.CreatedAt
		if t, ok := last[p.ID]; ok {
			ref = t
		}
		for _, typ := range models.ScheduledTypes {
			if at := p.LastAt(typ); at != nil && at.After(ref) {
				ref = *at
			}
		}
		days := DaysBetween(ref, now)
		if days >= threshold {
			out = append(out, models.NeglectedPlant{ID: p.ID, PlantName: p.Nickname, Days: days})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Days != out[j].Days {
			return out[i].Days > out[j].Days
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > DashboardLimit {
		out = out[:DashboardLimit]
	}
	if out == nil {
		out = []models.NeglectedPlant{}
	}
	return out
}

// LongestRun returns the longest run of consecutive calendar days in days,
// which must be distinct local midnights in ascending order.
func LongestRun(days []time.Time) int {
	best, run := 0, 0
	for i, d := range days {
		if i > 0 && AddDays(days[i-1], 1).Equal(d) {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}

func longestStreaks(events []models.CareEvent, plants map[int]models.Plant, loc *time.Location) []models.PlantStreak {
	dates := make(map[int]map[time.Time]struct{})
	for _, e := range events {
		if _, ok := plants[e.PlantID]; !ok {
			continue
		}
		set, ok := dates[e.PlantID]
		if !ok {
			set = make(map[time.Time]struct{})
			dates[e.PlantID] = set
		}
		set[Midnight(e.CreatedAt, loc)] = struct{}{}
	}

	out := []models.PlantStreak{}
	for id, set := range dates {
		days := make([]time.Time, 0, len(set))
		for d := range set {
			days = append(days, d)
		}
		sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
		if streak := LongestRun(days); streak > 0 {
			out = append(out, models.PlantStreak{ID: id, PlantName: plants[id].Nickname, Streak: streak})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Streak != out[j].Streak {
			return out[i].Streak > out[j].Streak
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > DashboardLimit {
		out = out[:DashboardLimit]
	}
	return out
}
