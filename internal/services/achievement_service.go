package services

import (
	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/config"
	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/models"
)

// AchievementService is the only place achievements are granted. Unlocks
// are permanent: later penalties that drop the total below a threshold
// never remove an achievement.
type AchievementService struct {
	rules *config.RuleTable
}

// NewAchievementService creates a new AchievementService
func NewAchievementService(rules *config.RuleTable) *AchievementService {
	return &AchievementService{
		rules: rules,
	}
}

// Evaluate unlocks every achievement whose threshold the ledger's display
// total now meets and returns the newly unlocked definitions ordered by
// ascending threshold. Re-evaluating with the same or a lower total is a
// no-op.
func (s *AchievementService) Evaluate(ledger *models.PointsLedger) []config.AchievementDefinition {
	total := ledger.DisplayPoints()

	var unlocked []config.AchievementDefinition
	for _, def := range s.rules.Achievements {
		if def.ThresholdPoints > total {
			break // definitions are ordered ascending
		}
		if ledger.HasAchievement(def.Key) {
			continue
		}
		ledger.Achievements = append(ledger.Achievements, def.Key)
		unlocked = append(unlocked, def)
	}
	return unlocked
}
