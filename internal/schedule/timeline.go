package schedule

import (
	"sort"

	"sprout/internal/models"
)

// HydrateTimeline appends a synthetic "<type> due" marker for each scheduled
// care type of plant, placed interval days after the newest event of that
// type. events must be newest-first; the input slice is not modified and the
// result is sorted newest-first. Markers are display-only and never stored.
func HydrateTimeline(plant models.Plant, events []models.CareEvent) []models.CareEvent {
	out := make([]models.CareEvent, len(events), len(events)+len(models.ScheduledTypes))
	copy(out, events)

	for _, typ := range models.ScheduledTypes {
		interval, ok := ParseInterval(plant.Cadence(typ))
		if !ok {
			continue
		}
		for _, e := range events {
			if models.CareType(e.Type) != typ {
				continue
			}
			out = append(out, models.CareEvent{
				PlantID:   plant.ID,
				Type:      string(typ) + " due",
				CreatedAt: AddDays(e.CreatedAt, interval),
				Synthetic: true,
			})
			break
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
