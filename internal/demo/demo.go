// Package demo serves a fixed showcase garden for the public demo dashboard.
// All timestamps are laid out relative to the clock so the data never ages.
package demo

import (
	"context"
	"sort"
	"time"

	"sprout/internal/clock"
	"sprout/internal/models"
	"sprout/internal/schedule"
)

type Source struct {
	clock clock.Clock
}

func New(c clock.Clock) *Source {
	return &Source{clock: c}
}

type plantSeed struct {
	name, scientific, water, fert string
	// days before today (at 09:00) of past events, most recent first
	watered []int
	fed     []int
	notes   []int
}

var seeds = []plantSeed{
	{name: "Monstera", scientific: "Monstera deliciosa", water: "7 days", fert: "1 month", watered: []int{0, 1, 2, 7, 14}, fed: []int{20}},
	{name: "Fiddle Leaf", scientific: "Ficus lyrata", water: "5 days", fert: "2 weeks", watered: []int{3, 8, 13}, fed: []int{10}, notes: []int{3}},
	{name: "Snake Plant", scientific: "Dracaena trifasciata", water: "3 weeks", watered: []int{6}},
	{name: "Pothos", scientific: "Epipremnum aureum", water: "4 days", watered: []int{1, 5, 9}, notes: []int{2}},
	{name: "Calathea", scientific: "Goeppertia orbifolia", water: "3 days", watered: []int{9}},
}

func (s *Source) base() time.Time {
	now := s.clock.Now()
	return schedule.Midnight(now, now.Location()).Add(9 * time.Hour)
}

func (s *Source) Plants(ctx context.Context) ([]models.Plant, error) {
	base := s.base()
	plants := make([]models.Plant, 0, len(seeds))
	for i, seed := range seeds {
		p := models.Plant{
			ID:                i + 1,
			Nickname:          seed.name,
			SpeciesScientific: seed.scientific,
			WaterEvery:        seed.water,
			FertEvery:         seed.fert,
			CreatedAt:         schedule.AddDays(base, -60),
		}
		p.UpdatedAt = p.CreatedAt
		if len(seed.watered) > 0 {
			t := schedule.AddDays(base, -seed.watered[0])
			p.LastWateredAt = &t
		}
		if len(seed.fed) > 0 {
			t := schedule.AddDays(base, -seed.fed[0])
			p.LastFertilizedAt = &t
		}
		plants = append(plants, p)
	}
	return plants, nil
}

// Events returns the fixture history newest-first.
func (s *Source) Events(ctx context.Context, since time.Time) ([]models.CareEvent, error) {
	base := s.base()
	var events []models.CareEvent
	add := func(plantID int, typ models.CareType, offsets []int) {
		for _, d := range offsets {
			at := schedule.AddDays(base, -d)
			if at.Before(since) {
				continue
			}
			events = append(events, models.CareEvent{PlantID: plantID, Type: string(typ), CreatedAt: at})
		}
	}
	for i, seed := range seeds {
		add(i+1, models.CareWater, seed.watered)
		add(i+1, models.CareFertilize, seed.fed)
		add(i+1, models.CareNote, seed.notes)
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].CreatedAt.After(events[j].CreatedAt) })
	for i := range events {
		events[i].ID = i + 1
	}
	return events, nil
}

// Tasks runs the live generator over the fixture history, so the demo shows
// the same backfilled overdue tasks a real garden would.
func (s *Source) Tasks(ctx context.Context) ([]models.Task, error) {
	plants, err := s.Plants(ctx)
	if err != nil {
		return nil, err
	}
	events, err := s.Events(ctx, time.Time{})
	if err != nil {
		return nil, err
	}

	tasks := schedule.PlanTasks(plants, events, nil, s.clock.Now(), schedule.DefaultHorizonDays)
	for i := range tasks {
		tasks[i].ID = i + 1
	}
	return tasks, nil
}
