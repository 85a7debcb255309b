package services

import (
	"testing"

	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/config"
	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEvaluateUnlocksInThresholdOrder(t *testing.T) {
	svc := NewAchievementService(config.DefaultRuleTable())
	ledger := models.NewPointsLedger(primitive.NewObjectID())
	ledger.TotalPoints = 2600

	unlocked := svc.Evaluate(ledger)

	want := []string{"NOVICE_RECOVERER", "FURNITURE_SAVER", "ECO_WARRIOR"}
	if len(unlocked) != len(want) {
		t.Fatalf("unlocked %d achievements, want %d", len(unlocked), len(want))
	}
	for i, key := range want {
		if unlocked[i].Key != key {
			t.Errorf("unlocked[%d] = %s, want %s", i, unlocked[i].Key, key)
		}
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	svc := NewAchievementService(config.DefaultRuleTable())
	ledger := models.NewPointsLedger(primitive.NewObjectID())
	ledger.TotalPoints = 600

	first := svc.Evaluate(ledger)
	if len(first) != 1 {
		t.Fatalf("first pass unlocked %d, want 1", len(first))
	}
	second := svc.Evaluate(ledger)
	if len(second) != 0 {
		t.Errorf("second pass unlocked %v, want none", second)
	}
	if len(ledger.Achievements) != 1 {
		t.Errorf("achievement list = %v, want one entry", ledger.Achievements)
	}
}

func TestEvaluateBelowFirstThreshold(t *testing.T) {
	svc := NewAchievementService(config.DefaultRuleTable())
	ledger := models.NewPointsLedger(primitive.NewObjectID())
	ledger.TotalPoints = 499

	if unlocked := svc.Evaluate(ledger); len(unlocked) != 0 {
		t.Errorf("unlocked %v below the first threshold", unlocked)
	}
}

func TestAchievementsSurvivePenalties(t *testing.T) {
	svc := NewAchievementService(config.DefaultRuleTable())
	ledger := models.NewPointsLedger(primitive.NewObjectID())
	ledger.TotalPoints = 600
	svc.Evaluate(ledger)

	// The total falls back below the threshold; the unlock is permanent.
	ledger.TotalPoints = 300
	if unlocked := svc.Evaluate(ledger); len(unlocked) != 0 {
		t.Errorf("re-evaluation unlocked %v", unlocked)
	}
	if !ledger.HasAchievement("NOVICE_RECOVERER") {
		t.Error("achievement lost after penalty")
	}
}

func TestEvaluateUsesDisplayTotal(t *testing.T) {
	svc := NewAchievementService(config.DefaultRuleTable())
	ledger := models.NewPointsLedger(primitive.NewObjectID())
	ledger.TotalPoints = -100

	if unlocked := svc.Evaluate(ledger); len(unlocked) != 0 {
		t.Errorf("negative total unlocked %v", unlocked)
	}
}
