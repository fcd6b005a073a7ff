package schedule

import (
	"time"

	"sprout/internal/models"
)

// DefaultHorizonDays is how far ahead the generator creates tasks.
const DefaultHorizonDays = 14

type taskKey struct {
	plantID int
	typ     models.CareType
	due     string
}

type lastKey struct {
	plantID int
	typ     models.CareType
}

// latestEvents indexes the most recent event per plant and care type.
func latestEvents(events []models.CareEvent) map[lastKey]time.Time {
	latest := make(map[lastKey]time.Time)
	for _, e := range events {
		k := lastKey{e.PlantID, models.CareType(e.Type)}
		if cur, ok := latest[k]; !ok || e.CreatedAt.After(cur) {
			latest[k] = e.CreatedAt
		}
	}
	return latest
}

// PlanTasks proposes the open tasks missing from existing for every plant
// cadence between its anchor and today+horizonDays. It never returns a
// (plant, type, due) triple that is already in existing or earlier in its own
// output, so feeding the result back in as existing yields nothing new.
func PlanTasks(plants []models.Plant, events []models.CareEvent, existing []models.Task, today time.Time, horizonDays int) []models.Task {
	loc := today.Location()
	today = Midnight(today, loc)
	horizon := AddDays(today, horizonDays)

	seen := make(map[taskKey]struct{}, len(existing))
	for _, t := range existing {
		seen[taskKey{t.PlantID, t.Type, t.Due}] = struct{}{}
	}
	latest := latestEvents(events)

	var out []models.Task
	for _, p := range plants {
		if p.ArchivedAt != nil {
			continue
		}
		for _, typ := range models.ScheduledTypes {
			interval, ok := ParseInterval(p.Cadence(typ))
			if !ok {
				continue
			}
			anchor := today
			if last, ok := latest[lastKey{p.ID, typ}]; ok {
				anchor = Midnight(last, loc)
			}
			for prev, next := anchor, AddDays(anchor, interval); next.After(prev) && !next.After(horizon); prev, next = next, AddDays(next, interval) {
				k := taskKey{p.ID, typ, next.Format(DayLayout)}
				if _, dup := seen[k]; dup {
					continue
				}
				seen[k] = struct{}{}
				out = append(out, models.Task{
					PlantID:   p.ID,
					PlantName: p.Nickname,
					Type:      typ,
					Due:       k.due,
				})
			}
		}
	}
	return out
}
