package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventStatus string

const (
	EventStatusActive      EventStatus = "ACTIVE"
	EventStatusDeactivated EventStatus = "DEACTIVATED"
)

// SpecialEvent is a time-boxed period during which a global multiplier
// applies to every transaction whose timestamp falls inside the window.
// Windows must not overlap; if overlapping rows exist anyway, events never
// stack and the highest multiplier wins.
type SpecialEvent struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name       string             `json:"name" bson:"name"`
	Multiplier float64            `json:"multiplier" bson:"multiplier"`
	StartAt    time.Time          `json:"startAt" bson:"startAt"`
	EndAt      time.Time          `json:"endAt" bson:"endAt"`
	Status     EventStatus        `json:"status" bson:"status"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// NewSpecialEvent creates a new SpecialEvent with default values
func NewSpecialEvent() *SpecialEvent {
	return &SpecialEvent{
		Status:    EventStatusActive,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// ActiveAt reports whether the event window covers t. The window is
// half-open: [StartAt, EndAt).
func (e *SpecialEvent) ActiveAt(t time.Time) bool {
	if e.Status != EventStatusActive {
		return false
	}
	return !t.Before(e.StartAt) && t.Before(e.EndAt)
}
