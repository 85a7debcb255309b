package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types emitted by the points core.
const (
	NotificationAchievementUnlocked = "ACHIEVEMENT_UNLOCKED"
	NotificationLevelUp             = "LEVEL_UP"
)

// Notification statuses.
const (
	NotificationStatusPending = "PENDING"
	NotificationStatusSent    = "SENT"
	NotificationStatusFailed  = "FAILED"
)

// Notification is a record of a push message dispatched (or attempted) for
// an achievement unlock or level-up. Delivery is fire-and-forget; the
// record exists for audit and client inbox display.
type Notification struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	CorrelationID string             `bson:"correlationId" json:"correlationId"`
	Type          string             `bson:"type" json:"type"`
	Title         string             `bson:"title" json:"title"`
	Body          string             `bson:"body" json:"body"`
	Status        string             `bson:"status" json:"status"`
	Gateway       string             `bson:"gateway,omitempty" json:"gateway,omitempty"`
	SentAt        time.Time          `bson:"sentAt,omitempty" json:"sentAt,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
