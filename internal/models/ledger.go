package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LeaderboardMetric selects which windowed total a leaderboard ranks by.
type LeaderboardMetric string

const (
	MetricTotal  LeaderboardMetric = "total"
	MetricWeekly LeaderboardMetric = "weekly"
)

// PointsLedger is the per-user aggregate of all processed transactions.
// TotalPoints keeps the raw signed sum for audit; everything shown to a
// user goes through DisplayPoints, which never drops below zero.
type PointsLedger struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID             primitive.ObjectID `bson:"userId" json:"userId"`
	TotalPoints        int                `bson:"totalPoints" json:"totalPoints"`
	WeeklyPoints       int                `bson:"weeklyPoints" json:"weeklyPoints"`
	MonthlyPoints      int                `bson:"monthlyPoints" json:"monthlyPoints"`
	CurrentStreak      int                `bson:"currentStreak" json:"currentStreak"`
	LastStreakDay      time.Time          `bson:"lastStreakDay,omitempty" json:"lastStreakDay,omitempty"`
	LastStreakBonusDay time.Time          `bson:"lastStreakBonusDay,omitempty" json:"lastStreakBonusDay,omitempty"`
	Level              int                `bson:"level" json:"level"`
	Achievements       []string           `bson:"achievements" json:"achievements"`
	Version            int64              `bson:"version" json:"-"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewPointsLedger creates an empty ledger for a user. Ledgers are created
// lazily on the user's first transaction.
func NewPointsLedger(userID primitive.ObjectID) *PointsLedger {
	now := time.Now()
	return &PointsLedger{
		ID:           primitive.NewObjectID(),
		UserID:       userID,
		Level:        1,
		Achievements: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// DisplayPoints returns the total floor-clamped at zero.
func (l *PointsLedger) DisplayPoints() int {
	if l.TotalPoints < 0 {
		return 0
	}
	return l.TotalPoints
}

// HasAchievement reports whether the achievement key has been unlocked.
func (l *PointsLedger) HasAchievement(key string) bool {
	for _, k := range l.Achievements {
		if k == key {
			return true
		}
	}
	return false
}

// Clone returns a deep copy, used as the working copy during apply so a
// failed save leaves the loaded ledger untouched.
func (l *PointsLedger) Clone() *PointsLedger {
	c := *l
	c.Achievements = append([]string(nil), l.Achievements...)
	return &c
}

// LedgerSnapshot is the read-only view of a ledger handed back after a
// mutation, for the caller to propagate to notification and leaderboard
// systems.
type LedgerSnapshot struct {
	UserID        string    `json:"userId"`
	TotalPoints   int       `json:"totalPoints"` // clamped display value
	RawPoints     int       `json:"-"`           // signed audit value, never serialized
	WeeklyPoints  int       `json:"weeklyPoints"`
	MonthlyPoints int       `json:"monthlyPoints"`
	CurrentStreak int       `json:"currentStreak"`
	Level         int       `json:"level"`
	Achievements  []string  `json:"achievements"`
	AsOf          time.Time `json:"asOf"`
}

// Snapshot builds the outward-facing view of the ledger.
func (l *PointsLedger) Snapshot() *LedgerSnapshot {
	return &LedgerSnapshot{
		UserID:        l.UserID.Hex(),
		TotalPoints:   l.DisplayPoints(),
		RawPoints:     l.TotalPoints,
		WeeklyPoints:  l.WeeklyPoints,
		MonthlyPoints: l.MonthlyPoints,
		CurrentStreak: l.CurrentStreak,
		Level:         l.Level,
		Achievements:  append([]string(nil), l.Achievements...),
		AsOf:          time.Now(),
	}
}
