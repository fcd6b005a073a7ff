package schedule

import (
	"testing"
	"time"

	"sprout/internal/models"
)

func day(s string) time.Time {
	t, err := time.ParseInLocation(DayLayout, s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func at(s string, hour int) time.Time {
	return day(s).Add(time.Duration(hour) * time.Hour)
}

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("EST", -5*60*60)
	}
	return loc
}

func dues(tasks []models.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, string(t.Type)+"@"+t.Due)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPlanTasksWalksCadenceToHorizon(t *testing.T) {
	plants := []models.Plant{{ID: 1, Nickname: "Fern", WaterEvery: "7 days"}}
	events := []models.CareEvent{{PlantID: 1, Type: "water", CreatedAt: at("2024-01-01", 18)}}

	got := PlanTasks(plants, events, nil, day("2024-01-01"), 14)
	want := []string{"water@2024-01-08", "water@2024-01-15"}
	if !equalStrings(dues(got), want) {
		t.Fatalf("got %v, want %v", dues(got), want)
	}
	for _, task := range got {
		if task.PlantID != 1 || task.PlantName != "Fern" || !task.Open() {
			t.Fatalf("unexpected task %+v", task)
		}
	}
}

func TestPlanTasksUsesLatestEventAsAnchor(t *testing.T) {
	plants := []models.Plant{{ID: 1, WaterEvery: "7 days"}}
	events := []models.CareEvent{
		{PlantID: 1, Type: "water", CreatedAt: at("2023-12-20", 9)},
		{PlantID: 1, Type: "water", CreatedAt: at("2024-01-05", 9)},
		{PlantID: 1, Type: "note", CreatedAt: at("2024-01-09", 9)},
		{PlantID: 2, Type: "water", CreatedAt: at("2024-01-09", 9)},
	}
	got := PlanTasks(plants, events, nil, day("2024-01-06"), 14)
	want := []string{"water@2024-01-12", "water@2024-01-19"}
	if !equalStrings(dues(got), want) {
		t.Fatalf("got %v, want %v", dues(got), want)
	}
}

func TestPlanTasksAnchorsOnTodayWithoutHistory(t *testing.T) {
	plants := []models.Plant{{ID: 3, FertEvery: "2 weeks"}}
	got := PlanTasks(plants, nil, nil, at("2024-03-01", 15), 14)
	want := []string{"fertilize@2024-03-15"}
	if !equalStrings(dues(got), want) {
		t.Fatalf("got %v, want %v", dues(got), want)
	}
}

func TestPlanTasksSkipsPlantsWithoutCadence(t *testing.T) {
	archived := day("2024-01-01")
	plants := []models.Plant{
		{ID: 1, FertEvery: "banana"},
		{ID: 2, WaterEvery: "3 days", ArchivedAt: &archived},
	}
	events := []models.CareEvent{
		{PlantID: 1, Type: "water", CreatedAt: at("2024-01-01", 8)},
		{PlantID: 2, Type: "water", CreatedAt: at("2024-01-01", 8)},
	}
	if got := PlanTasks(plants, events, nil, day("2024-01-02"), 14); len(got) != 0 {
		t.Fatalf("expected no tasks, got %v", dues(got))
	}
}

func TestPlanTasksIsIdempotent(t *testing.T) {
	plants := []models.Plant{
		{ID: 1, WaterEvery: "3 days", FertEvery: "1 month"},
		{ID: 2, WaterEvery: "1 week"},
	}
	events := []models.CareEvent{
		{PlantID: 1, Type: "water", CreatedAt: at("2024-01-01", 8)},
		{PlantID: 1, Type: "fertilize", CreatedAt: at("2023-12-10", 8)},
	}
	today := day("2024-01-04")

	first := PlanTasks(plants, events, nil, today, 14)
	if len(first) == 0 {
		t.Fatal("expected tasks on first run")
	}
	if second := PlanTasks(plants, events, first, today, 14); len(second) != 0 {
		t.Fatalf("second run proposed %v", dues(second))
	}
}

func TestPlanTasksSkipsExistingTriple(t *testing.T) {
	plants := []models.Plant{{ID: 1, WaterEvery: "7 days"}}
	events := []models.CareEvent{{PlantID: 1, Type: "water", CreatedAt: at("2024-01-01", 8)}}
	existing := []models.Task{{ID: 9, PlantID: 1, Type: models.CareWater, Due: "2024-01-08"}}

	got := PlanTasks(plants, events, existing, day("2024-01-01"), 14)
	want := []string{"water@2024-01-15"}
	if !equalStrings(dues(got), want) {
		t.Fatalf("got %v, want %v", dues(got), want)
	}
}

func TestPlanTasksIgnoresOversizedCadence(t *testing.T) {
	plants := []models.Plant{
		{ID: 1, WaterEvery: "9223372036854775807 days"},
		{ID: 2, WaterEvery: "300000000000 days", FertEvery: "100 years"},
	}
	events := []models.CareEvent{{PlantID: 2, Type: "fertilize", CreatedAt: at("2023-12-31", 8)}}

	done := make(chan []models.Task, 1)
	go func() { done <- PlanTasks(plants, events, nil, day("2024-01-01"), 14) }()
	select {
	case got := <-done:
		if len(got) != 0 {
			t.Fatalf("expected no tasks, got %v", dues(got))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("PlanTasks did not return")
	}
}

func TestPlanTasksAnchorsOnLocalDay(t *testing.T) {
	loc := newYork(t)
	// 22:30 on the 9th in New York is already the 10th in UTC.
	plants := []models.Plant{{ID: 1, WaterEvery: "7 days"}}
	events := []models.CareEvent{{PlantID: 1, Type: "water", CreatedAt: time.Date(2024, 1, 10, 3, 30, 0, 0, time.UTC)}}

	got := PlanTasks(plants, events, nil, time.Date(2024, 1, 10, 12, 0, 0, 0, loc), 7)
	want := []string{"water@2024-01-16"}
	if !equalStrings(dues(got), want) {
		t.Fatalf("got %v, want %v", dues(got), want)
	}
}

func TestPlanTasksBackfillsOverdueDates(t *testing.T) {
	plants := []models.Plant{{ID: 1, WaterEvery: "5 days"}}
	events := []models.CareEvent{{PlantID: 1, Type: "water", CreatedAt: at("2024-01-01", 8)}}

	got := PlanTasks(plants, events, nil, day("2024-01-12"), 0)
	want := []string{"water@2024-01-06", "water@2024-01-11"}
	if !equalStrings(dues(got), want) {
		t.Fatalf("got %v, want %v", dues(got), want)
	}
}
