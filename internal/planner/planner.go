// Package planner runs the schedule rules against stored history. Each
// method reads "now" once from its clock and hands that instant to the pure
// functions in package schedule.
package planner

import (
	"context"
	"fmt"
	"log"
	"time"

	"sprout/internal/clock"
	"sprout/internal/models"
	"sprout/internal/schedule"
	"sprout/internal/store"
	"sprout/internal/weather"
)

// Store is the slice of the repository the planner uses.
type Store interface {
	GetUser(ctx context.Context, userID int) (models.User, error)
	ListPlants(ctx context.Context, userID int) ([]models.Plant, error)
	GetPlant(ctx context.Context, userID, plantID int) (models.Plant, error)
	ListEvents(ctx context.Context, userID int, f store.EventFilter) ([]models.CareEvent, error)
	ListTasks(ctx context.Context, userID int, f store.TaskFilter) ([]models.Task, error)
	GetTask(ctx context.Context, userID, taskID int) (models.Task, error)
	InsertTasks(ctx context.Context, tasks []models.Task) ([]models.Task, error)
	CompleteTask(ctx context.Context, userID, taskID int, at time.Time) (models.CareEvent, error)
	SnoozeTask(ctx context.Context, userID int, sn store.Snooze) error
}

type Settings struct {
	HorizonDays     int
	LookbackDays    int
	NeglectDays     int
	DemoNeglectDays int
}

func DefaultSettings() Settings {
	return Settings{
		HorizonDays:     schedule.DefaultHorizonDays,
		LookbackDays:    180,
		NeglectDays:     schedule.LiveNeglectDays,
		DemoNeglectDays: schedule.DemoNeglectDays,
	}
}

type Planner struct {
	store    Store
	clock    clock.Clock
	weather  weather.Provider
	settings Settings
}

// New builds a Planner. weather may be nil, in which case forecasts and
// dashboards carry no weather data.
func New(s Store, c clock.Clock, w weather.Provider, settings Settings) *Planner {
	def := DefaultSettings()
	if settings.HorizonDays <= 0 {
		settings.HorizonDays = def.HorizonDays
	}
	if settings.LookbackDays <= 0 {
		settings.LookbackDays = def.LookbackDays
	}
	if settings.NeglectDays <= 0 {
		settings.NeglectDays = def.NeglectDays
	}
	if settings.DemoNeglectDays <= 0 {
		settings.DemoNeglectDays = def.DemoNeglectDays
	}
	return &Planner{store: s, clock: c, weather: w, settings: settings}
}

// Now exposes the planner's clock so handlers stamp rows with the same time source.
func (p *Planner) Now() time.Time {
	return p.clock.Now()
}

// GenerateTasks materialises the open tasks the user's cadences call for up
// to the horizon and returns the ones created by this call. Running it again
// with no new history creates nothing.
func (p *Planner) GenerateTasks(ctx context.Context, userID int) ([]models.Task, error) {
	now := p.clock.Now()
	today := schedule.Midnight(now, now.Location())

	plants, err := p.store.ListPlants(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("generate tasks: list plants: %w", err)
	}
	if len(plants) == 0 {
		return []models.Task{}, nil
	}
	events, err := p.store.ListEvents(ctx, userID, store.EventFilter{
		Since: schedule.AddDays(today, -p.settings.LookbackDays),
	})
	if err != nil {
		return nil, fmt.Errorf("generate tasks: list events: %w", err)
	}
	existing, err := p.store.ListTasks(ctx, userID, store.TaskFilter{})
	if err != nil {
		return nil, fmt.Errorf("generate tasks: list tasks: %w", err)
	}

	proposed := schedule.PlanTasks(plants, events, existing, today, p.settings.HorizonDays)
	created, err := p.store.InsertTasks(ctx, proposed)
	if err != nil {
		return nil, fmt.Errorf("generate tasks: %w", err)
	}
	if len(created) > 0 {
		log.Printf("planner: created %d task(s) for user %d", len(created), userID)
	}
	return created, nil
}

// Timeline returns a plant's history with a projected "<type> due" marker per
// cadence, newest first. Archived plants keep their timeline.
func (p *Planner) Timeline(ctx context.Context, userID, plantID int) ([]models.CareEvent, error) {
	plant, err := p.store.GetPlant(ctx, userID, plantID)
	if err != nil {
		return nil, err
	}
	events, err := p.store.ListEvents(ctx, userID, store.EventFilter{PlantID: plantID})
	if err != nil {
		return nil, fmt.Errorf("timeline: %w", err)
	}
	return schedule.HydrateTimeline(plant, events), nil
}

// Complete closes an open task and logs the matching care event.
func (p *Planner) Complete(ctx context.Context, userID, taskID int) (models.CareEvent, error) {
	return p.store.CompleteTask(ctx, userID, taskID, p.clock.Now())
}

// Snooze pushes an open task back by rawDays (see schedule.ParseSnoozeDays)
// and widens the plant's "N days" water cadence by the same amount. The
// returned task carries the new due date.
func (p *Planner) Snooze(ctx context.Context, userID, taskID int, rawDays any, reason string) (models.Task, error) {
	task, err := p.store.GetTask(ctx, userID, taskID)
	if err != nil {
		return models.Task{}, err
	}
	plant, err := p.store.GetPlant(ctx, userID, task.PlantID)
	if err != nil {
		return models.Task{}, err
	}

	days := schedule.ParseSnoozeDays(rawDays)
	due, err := schedule.ShiftDue(task.Due, days)
	if err != nil {
		return models.Task{}, err
	}
	sn := store.Snooze{TaskID: task.ID, PlantID: plant.ID, Due: due, Reason: reason}
	if widened, changed := schedule.WidenCadence(plant.WaterEvery, days); changed {
		sn.WaterEvery = &widened
	}
	if err := p.store.SnoozeTask(ctx, userID, sn); err != nil {
		return models.Task{}, err
	}

	task.Due = due
	task.SnoozeReason = reason
	return task, nil
}

// Forecast lays out the next seven days of projected care with weather for
// the user's saved location.
func (p *Planner) Forecast(ctx context.Context, userID int) ([]models.DayForecast, error) {
	now := p.clock.Now()
	user, err := p.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	plants, err := p.store.ListPlants(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}

	var days []models.DayWeather
	if p.weather != nil && user.Latitude != nil && user.Longitude != nil {
		days, err = p.weather.Daily(ctx, *user.Latitude, *user.Longitude, schedule.ForecastDays)
		if err != nil {
			log.Printf("planner: weather unavailable for user %d: %v", userID, err)
			days = nil
		}
	}
	return schedule.ProjectForecast(plants, days, now), nil
}
