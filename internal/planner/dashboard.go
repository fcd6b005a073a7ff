package planner

import (
	"context"
	"fmt"
	"log"
	"time"

	"sprout/internal/models"
	"sprout/internal/schedule"
	"sprout/internal/store"
)

// DashboardSource supplies the raw history a dashboard is computed from.
// The live source reads one user's rows; the demo source serves fixtures.
type DashboardSource interface {
	Plants(ctx context.Context) ([]models.Plant, error)
	Events(ctx context.Context, since time.Time) ([]models.CareEvent, error)
	Tasks(ctx context.Context) ([]models.Task, error)
}

type userSource struct {
	store  Store
	userID int
}

func (s userSource) Plants(ctx context.Context) ([]models.Plant, error) {
	return s.store.ListPlants(ctx, s.userID)
}

func (s userSource) Events(ctx context.Context, since time.Time) ([]models.CareEvent, error) {
	return s.store.ListEvents(ctx, s.userID, store.EventFilter{Since: since})
}

func (s userSource) Tasks(ctx context.Context) ([]models.Task, error) {
	return s.store.ListTasks(ctx, s.userID, store.TaskFilter{})
}

// Dashboard aggregates the user's own history using the live neglect threshold.
func (p *Planner) Dashboard(ctx context.Context, userID int) (models.Dashboard, error) {
	user, err := p.store.GetUser(ctx, userID)
	if err != nil {
		return models.Dashboard{}, err
	}
	return p.aggregate(ctx, userSource{p.store, userID}, p.settings.NeglectDays, user.Latitude, user.Longitude)
}

// DemoDashboard aggregates src with the shorter demo neglect threshold and no weather.
func (p *Planner) DemoDashboard(ctx context.Context, src DashboardSource) (models.Dashboard, error) {
	return p.aggregate(ctx, src, p.settings.DemoNeglectDays, nil, nil)
}

func (p *Planner) aggregate(ctx context.Context, src DashboardSource, neglectDays int, lat, lon *float64) (models.Dashboard, error) {
	now := p.clock.Now()
	since := schedule.AddDays(schedule.Midnight(now, now.Location()), -p.settings.LookbackDays)

	plants, err := src.Plants(ctx)
	if err != nil {
		return models.Dashboard{}, fmt.Errorf("dashboard: plants: %w", err)
	}
	events, err := src.Events(ctx, since)
	if err != nil {
		return models.Dashboard{}, fmt.Errorf("dashboard: events: %w", err)
	}
	tasks, err := src.Tasks(ctx)
	if err != nil {
		return models.Dashboard{}, fmt.Errorf("dashboard: tasks: %w", err)
	}

	var et0 []models.DayET0
	if p.weather != nil && lat != nil && lon != nil {
		et0, err = p.weather.Evapotranspiration(ctx, *lat, *lon, schedule.TrendDays)
		if err != nil {
			log.Printf("planner: evapotranspiration unavailable: %v", err)
			et0 = nil
		}
	}

	return schedule.Aggregate(schedule.DashboardInput{
		Plants:      plants,
		Events:      events,
		Tasks:       tasks,
		ET0:         et0,
		NeglectDays: neglectDays,
		Now:         now,
	}), nil
}
