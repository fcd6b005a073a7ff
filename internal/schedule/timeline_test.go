package schedule

import (
	"testing"

	"sprout/internal/models"
)

func TestHydrateTimelineAddsDueMarkers(t *testing.T) {
	plant := models.Plant{ID: 4, WaterEvery: "7 days", FertEvery: "1 month"}
	events := []models.CareEvent{
		{ID: 3, PlantID: 4, Type: "water", CreatedAt: at("2024-02-10", 9)},
		{ID: 2, PlantID: 4, Type: "photo", CreatedAt: at("2024-02-05", 9)},
		{ID: 1, PlantID: 4, Type: "water", CreatedAt: at("2024-02-01", 9)},
	}

	got := HydrateTimeline(plant, events)
	if len(got) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(got))
	}
	marker := got[0]
	if !marker.Synthetic || marker.Type != "water due" || !marker.CreatedAt.Equal(at("2024-02-17", 9)) {
		t.Fatalf("unexpected first entry %+v", marker)
	}
	if marker.Note != nil || marker.ImageURL != nil {
		t.Fatal("marker must not carry note or image")
	}
	for i := 1; i < len(got); i++ {
		if got[i].CreatedAt.After(got[i-1].CreatedAt) {
			t.Fatalf("timeline not newest-first at %d", i)
		}
	}
}

func TestHydrateTimelineIsPure(t *testing.T) {
	plant := models.Plant{ID: 4, WaterEvery: "3 days"}
	events := []models.CareEvent{{ID: 1, PlantID: 4, Type: "water", CreatedAt: at("2024-02-01", 9)}}

	a := HydrateTimeline(plant, events)
	b := HydrateTimeline(plant, events)
	if len(events) != 1 || events[0].Synthetic {
		t.Fatal("input slice was modified")
	}
	if len(a) != len(b) || len(a) != 2 {
		t.Fatalf("expected stable output, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Type != b[i].Type || !a[i].CreatedAt.Equal(b[i].CreatedAt) {
			t.Fatalf("outputs differ at %d", i)
		}
	}
}

func TestHydrateTimelineWithoutEventsOfType(t *testing.T) {
	plant := models.Plant{ID: 4, FertEvery: "2 weeks"}
	events := []models.CareEvent{{ID: 1, PlantID: 4, Type: "water", CreatedAt: at("2024-02-01", 9)}}
	if got := HydrateTimeline(plant, events); len(got) != 1 {
		t.Fatalf("expected no markers, got %d entries", len(got))
	}
}
