package models

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDisplayPointsClampsAtZero(t *testing.T) {
	ledger := NewPointsLedger(primitive.NewObjectID())

	ledger.TotalPoints = 150
	if got := ledger.DisplayPoints(); got != 150 {
		t.Errorf("DisplayPoints = %d, want 150", got)
	}

	ledger.TotalPoints = -75
	if got := ledger.DisplayPoints(); got != 0 {
		t.Errorf("DisplayPoints = %d, want 0 for negative raw total", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	ledger := NewPointsLedger(primitive.NewObjectID())
	ledger.Achievements = []string{"NOVICE_RECOVERER"}

	clone := ledger.Clone()
	clone.TotalPoints = 999
	clone.Achievements = append(clone.Achievements, "FURNITURE_SAVER")

	if ledger.TotalPoints != 0 {
		t.Errorf("original total mutated to %d", ledger.TotalPoints)
	}
	if len(ledger.Achievements) != 1 {
		t.Errorf("original achievements mutated: %v", ledger.Achievements)
	}
}

func TestSnapshotReportsDisplayAndRaw(t *testing.T) {
	ledger := NewPointsLedger(primitive.NewObjectID())
	ledger.TotalPoints = -40
	ledger.WeeklyPoints = 10
	ledger.Level = 1

	snap := ledger.Snapshot()
	if snap.TotalPoints != 0 {
		t.Errorf("snapshot total = %d, want clamped 0", snap.TotalPoints)
	}
	if snap.RawPoints != -40 {
		t.Errorf("snapshot raw = %d, want -40", snap.RawPoints)
	}
	if snap.UserID != ledger.UserID.Hex() {
		t.Errorf("snapshot user = %s, want %s", snap.UserID, ledger.UserID.Hex())
	}
}

func TestSpecialEventActiveAt(t *testing.T) {
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)
	event := &SpecialEvent{
		Name:       "Earth Week",
		Multiplier: 2.0,
		StartAt:    start,
		EndAt:      end,
		Status:     EventStatusActive,
	}

	if !event.ActiveAt(start) {
		t.Error("start instant should be inside the window")
	}
	if !event.ActiveAt(end.Add(-time.Second)) {
		t.Error("one second before end should be inside the window")
	}
	if event.ActiveAt(end) {
		t.Error("end instant should be outside the half-open window")
	}
	if event.ActiveAt(start.Add(-time.Second)) {
		t.Error("before start should be outside the window")
	}

	event.Status = EventStatusDeactivated
	if event.ActiveAt(start.Add(time.Hour)) {
		t.Error("deactivated event must never be active")
	}
}

func TestTransactionTypeHelpers(t *testing.T) {
	if !TransactionSpamListing.IsPenalty() || TransactionFurniturePosting.IsPenalty() {
		t.Error("IsPenalty misclassifies types")
	}
	if !TransactionDailyBonus.QualifiesForStreak() || !TransactionStreakBonus.QualifiesForStreak() {
		t.Error("daily and streak bonuses must count toward the streak")
	}
	if TransactionFurniturePosting.QualifiesForStreak() {
		t.Error("postings must not count toward the streak")
	}
	if TransactionReferral.Description() == "" {
		t.Error("missing description for REFERRAL")
	}
}
