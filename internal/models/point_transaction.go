package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TransactionType identifies the action that earned (or cost) the points.
type TransactionType string

const (
	TransactionFurniturePosting    TransactionType = "FURNITURE_POSTING"
	TransactionRecoveryConfirmed   TransactionType = "RECOVERY_CONFIRMED"
	TransactionDailyBonus          TransactionType = "DAILY_BONUS"
	TransactionReferral            TransactionType = "REFERRAL"
	TransactionAchievementBonus    TransactionType = "ACHIEVEMENT_BONUS"
	TransactionStreakBonus         TransactionType = "STREAK_BONUS"
	TransactionVerifiedLocation    TransactionType = "VERIFIED_LOCATION"
	TransactionQualityPhoto        TransactionType = "QUALITY_PHOTO"
	TransactionAccurateDescription TransactionType = "ACCURATE_DESCRIPTION"
	TransactionChatResponse        TransactionType = "CHAT_RESPONSE"
	TransactionProfileCompletion   TransactionType = "PROFILE_COMPLETION"
	TransactionSpamListing         TransactionType = "SPAM_LISTING"
	TransactionFalseInformation    TransactionType = "FALSE_INFORMATION"
	TransactionPickupNoShow        TransactionType = "PICKUP_NO_SHOW"
)

var transactionDescriptions = map[TransactionType]string{
	TransactionFurniturePosting:    "Posted a furniture listing",
	TransactionRecoveryConfirmed:   "Confirmed a furniture recovery",
	TransactionDailyBonus:          "Daily login bonus",
	TransactionReferral:            "Referred a new member",
	TransactionAchievementBonus:    "Achievement bonus",
	TransactionStreakBonus:         "Consecutive day streak bonus",
	TransactionVerifiedLocation:    "Verified pickup location",
	TransactionQualityPhoto:        "High quality listing photo",
	TransactionAccurateDescription: "Accurate listing description",
	TransactionChatResponse:        "Responded to a recovery chat",
	TransactionProfileCompletion:   "Completed profile",
	TransactionSpamListing:         "Spam listing penalty",
	TransactionFalseInformation:    "False information penalty",
	TransactionPickupNoShow:        "Pickup no-show penalty",
}

// Description returns the human-readable label for the transaction type.
func (t TransactionType) Description() string {
	return transactionDescriptions[t]
}

// IsPenalty reports whether the type deducts points.
func (t TransactionType) IsPenalty() bool {
	switch t {
	case TransactionSpamListing, TransactionFalseInformation, TransactionPickupNoShow:
		return true
	}
	return false
}

// QualifiesForStreak reports whether the type counts toward the
// consecutive-day streak.
func (t TransactionType) QualifiesForStreak() bool {
	return t == TransactionDailyBonus || t == TransactionStreakBonus
}

// PointTransaction records a single point-earning or point-losing event.
// Once IsProcessed is true the record is immutable; corrections are made
// by appending a compensating transaction, never by editing this one.
type PointTransaction struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Value       int                `bson:"value" json:"value"` // effective value once processed, base value before
	Type        TransactionType    `bson:"type" json:"type"`
	Description string             `bson:"description" json:"description"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
	ReferenceID string             `bson:"referenceId,omitempty" json:"referenceId,omitempty"`
	IsProcessed bool               `bson:"isProcessed" json:"isProcessed"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
