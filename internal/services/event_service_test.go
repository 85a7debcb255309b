package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/models"
	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/repositories"
	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/repositories/memory"
)

func testEvent(name string, multiplier float64, start, end time.Time) *models.SpecialEvent {
	return &models.SpecialEvent{
		Name:       name,
		Multiplier: multiplier,
		StartAt:    start,
		EndAt:      end,
		Status:     models.EventStatusActive,
	}
}

func TestCreateEventValidation(t *testing.T) {
	svc := NewEventService(memory.NewSpecialEventRepository())
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	cases := []struct {
		name  string
		event *models.SpecialEvent
	}{
		{"empty name", testEvent("", 2.0, start, end)},
		{"zero multiplier", testEvent("Earth Week", 0, start, end)},
		{"negative multiplier", testEvent("Earth Week", -2.0, start, end)},
		{"end before start", testEvent("Earth Week", 2.0, end, start)},
		{"zero-width window", testEvent("Earth Week", 2.0, start, start)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if err := svc.CreateEvent(context.Background(), c.event); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestCreateEventRejectsOverlap(t *testing.T) {
	svc := NewEventService(memory.NewSpecialEventRepository())
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	if err := svc.CreateEvent(context.Background(), testEvent("Earth Week", 2.0, start, end)); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	overlapping := testEvent("Spring Clean", 3.0, start.AddDate(0, 0, 3), end.AddDate(0, 0, 3))
	if err := svc.CreateEvent(context.Background(), overlapping); !errors.Is(err, ErrEventOverlap) {
		t.Fatalf("got %v, want ErrEventOverlap", err)
	}

	// Windows are half-open, so a new event starting exactly at the old
	// one's end is fine.
	adjacent := testEvent("Spring Clean", 3.0, end, end.AddDate(0, 0, 7))
	if err := svc.CreateEvent(context.Background(), adjacent); err != nil {
		t.Fatalf("adjacent event rejected: %v", err)
	}
}

func TestCreateEventIgnoresDeactivatedOverlap(t *testing.T) {
	repo := memory.NewSpecialEventRepository()
	svc := NewEventService(repo)
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	old := testEvent("Old Event", 2.0, start, end)
	old.Status = models.EventStatusDeactivated
	if err := repo.Create(context.Background(), old); err != nil {
		t.Fatalf("seed event: %v", err)
	}

	if err := svc.CreateEvent(context.Background(), testEvent("New Event", 2.0, start, end)); err != nil {
		t.Fatalf("deactivated events must not block new windows: %v", err)
	}
}

func TestUpdateEventCanShiftOwnWindow(t *testing.T) {
	svc := NewEventService(memory.NewSpecialEventRepository())
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	event := testEvent("Earth Week", 2.0, start, end)
	if err := svc.CreateEvent(context.Background(), event); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	// Extending its own window must not collide with itself.
	event.EndAt = end.AddDate(0, 0, 2)
	if err := svc.UpdateEvent(context.Background(), event); err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}
}

func TestActiveMultiplier(t *testing.T) {
	repo := memory.NewSpecialEventRepository()
	svc := NewEventService(repo)
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	if err := repo.Create(context.Background(), testEvent("Earth Week", 2.0, start, end)); err != nil {
		t.Fatalf("seed event: %v", err)
	}

	inside, err := svc.ActiveMultiplier(context.Background(), start.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("ActiveMultiplier: %v", err)
	}
	if inside != 2.0 {
		t.Errorf("multiplier inside window = %v, want 2.0", inside)
	}

	before, err := svc.ActiveMultiplier(context.Background(), start.Add(-time.Second))
	if err != nil {
		t.Fatalf("ActiveMultiplier: %v", err)
	}
	if before != 0 {
		t.Errorf("multiplier before window = %v, want 0", before)
	}

	// End is exclusive.
	atEnd, err := svc.ActiveMultiplier(context.Background(), end)
	if err != nil {
		t.Fatalf("ActiveMultiplier: %v", err)
	}
	if atEnd != 0 {
		t.Errorf("multiplier at end instant = %v, want 0", atEnd)
	}
}

func TestActiveMultiplierHighestWins(t *testing.T) {
	// Overlap should never happen through the service, but rows written
	// directly must still resolve to a single multiplier.
	repo := memory.NewSpecialEventRepository()
	svc := NewEventService(repo)
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	if err := repo.Create(context.Background(), testEvent("Modest", 1.5, start, end)); err != nil {
		t.Fatalf("seed event: %v", err)
	}
	if err := repo.Create(context.Background(), testEvent("Generous", 4.0, start, end)); err != nil {
		t.Fatalf("seed event: %v", err)
	}

	got, err := svc.ActiveMultiplier(context.Background(), start.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("ActiveMultiplier: %v", err)
	}
	if got != 4.0 {
		t.Errorf("multiplier = %v, want highest 4.0", got)
	}
}

func TestDeleteEvent(t *testing.T) {
	repo := memory.NewSpecialEventRepository()
	svc := NewEventService(repo)
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	event := testEvent("Earth Week", 2.0, start, start.AddDate(0, 0, 7))
	if err := svc.CreateEvent(context.Background(), event); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if err := svc.DeleteEvent(context.Background(), event.ID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	if _, err := svc.GetEvent(context.Background(), event.ID); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound after delete", err)
	}
}
