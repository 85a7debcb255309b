package services

import (
	"context"
	"errors"
	"time"

	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/models"
	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrEventOverlap is returned when a special event window would intersect
// an existing active event.
var ErrEventOverlap = errors.New("special event window overlaps an existing event")

// EventService manages special events and answers the active-window
// multiplier lookup used by the resolver.
type EventService struct {
	eventRepo repositories.SpecialEventRepository
}

// NewEventService creates a new EventService
func NewEventService(eventRepo repositories.SpecialEventRepository) *EventService {
	return &EventService{
		eventRepo: eventRepo,
	}
}

// CreateEvent validates and stores a special event. Overlapping windows
// are rejected.
func (s *EventService) CreateEvent(ctx context.Context, event *models.SpecialEvent) error {
	if err := s.validate(event); err != nil {
		return err
	}
	overlapping, err := s.eventRepo.FindOverlapping(ctx, event.StartAt, event.EndAt, primitive.NilObjectID)
	if err != nil {
		return err
	}
	if len(overlapping) > 0 {
		return ErrEventOverlap
	}

	if event.Status == "" {
		event.Status = models.EventStatusActive
	}
	return s.eventRepo.Create(ctx, event)
}

// GetEvent retrieves a special event by ID
func (s *EventService) GetEvent(ctx context.Context, id primitive.ObjectID) (*models.SpecialEvent, error) {
	return s.eventRepo.FindByID(ctx, id)
}

// UpdateEvent validates and updates a special event
func (s *EventService) UpdateEvent(ctx context.Context, event *models.SpecialEvent) error {
	if err := s.validate(event); err != nil {
		return err
	}
	if event.Status == models.EventStatusActive {
		overlapping, err := s.eventRepo.FindOverlapping(ctx, event.StartAt, event.EndAt, event.ID)
		if err != nil {
			return err
		}
		if len(overlapping) > 0 {
			return ErrEventOverlap
		}
	}
	return s.eventRepo.Update(ctx, event)
}

// DeleteEvent removes a special event
func (s *EventService) DeleteEvent(ctx context.Context, id primitive.ObjectID) error {
	return s.eventRepo.Delete(ctx, id)
}

// ListEvents retrieves special events with pagination
func (s *EventService) ListEvents(ctx context.Context, page, limit int) ([]*models.SpecialEvent, error) {
	return s.eventRepo.FindAll(ctx, page, limit)
}

// ActiveMultiplier returns the multiplier in force at the given instant,
// or 0 when no event window covers it. Events never stack: if overlapping
// windows exist anyway, the highest multiplier wins.
func (s *EventService) ActiveMultiplier(ctx context.Context, at time.Time) (float64, error) {
	events, err := s.eventRepo.FindActive(ctx, at)
	if err != nil {
		return 0, err
	}
	highest := 0.0
	for _, event := range events {
		if event.Multiplier > highest {
			highest = event.Multiplier
		}
	}
	return highest, nil
}

func (s *EventService) validate(event *models.SpecialEvent) error {
	if event.Name == "" {
		return errors.New("name is required")
	}
	if event.Multiplier <= 0 {
		return errors.New("multiplier must be strictly positive")
	}
	if !event.StartAt.Before(event.EndAt) {
		return errors.New("start time must be before end time")
	}
	return nil
}
