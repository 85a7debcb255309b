package config

import (
	"fmt"
	"sort"
)

// AchievementDefinition names a milestone unlocked once a user's display
// total crosses ThresholdPoints. Permanent once granted.
type AchievementDefinition struct {
	Key             string `json:"key"`
	ThresholdPoints int    `json:"thresholdPoints"`
	DisplayMessage  string `json:"displayMessage"`
}

// RuleTable is the single source of truth for every numeric constant in
// the points engine. The mobile clients display these values but never
// compute with them.
type RuleTable struct {
	BasePoints map[string]int

	StreakMultiplier   float64
	PeakMultiplier     float64
	VerifiedMultiplier float64

	// LevelThresholds[i] is the minimum display total for level i+1.
	// LevelThresholds[0] must be 0.
	LevelThresholds []int

	// Achievements ordered by threshold ascending.
	Achievements []AchievementDefinition
}

// DefaultRuleTable returns the production rule table.
func DefaultRuleTable() *RuleTable {
	return &RuleTable{
		BasePoints: map[string]int{
			"FURNITURE_POSTING":    100,
			"RECOVERY_CONFIRMED":   100,
			"DAILY_BONUS":          10,
			"REFERRAL":             50,
			"ACHIEVEMENT_BONUS":    25,
			"STREAK_BONUS":         15,
			"VERIFIED_LOCATION":    20,
			"QUALITY_PHOTO":        30,
			"ACCURATE_DESCRIPTION": 15,
			"CHAT_RESPONSE":        5,
			"PROFILE_COMPLETION":   50,
			"SPAM_LISTING":         -200,
			"FALSE_INFORMATION":    -100,
			"PICKUP_NO_SHOW":       -50,
		},
		StreakMultiplier:   1.5,
		PeakMultiplier:     2.0,
		VerifiedMultiplier: 1.25,
		LevelThresholds:    []int{0, 100, 250, 500, 1000, 2000, 3500, 5500, 8000, 11000},
		Achievements: []AchievementDefinition{
			{Key: "NOVICE_RECOVERER", ThresholdPoints: 500, DisplayMessage: "You rescued your first pieces. Welcome to the movement!"},
			{Key: "FURNITURE_SAVER", ThresholdPoints: 1000, DisplayMessage: "A thousand points of saved furniture."},
			{Key: "ECO_WARRIOR", ThresholdPoints: 2500, DisplayMessage: "Your neighborhood landfill misses you."},
			{Key: "COMMUNITY_HERO", ThresholdPoints: 5000, DisplayMessage: "The community knows your name."},
			{Key: "RECOVERY_LEGEND", ThresholdPoints: 10000, DisplayMessage: "A true legend of furniture recovery."},
		},
	}
}

// BaseValue looks up the base point value for a transaction type.
func (rt *RuleTable) BaseValue(txType string) (int, bool) {
	v, ok := rt.BasePoints[txType]
	return v, ok
}

// LevelFor returns the level for a display total: the greatest threshold
// less than or equal to the total. Levels start at 1.
func (rt *RuleTable) LevelFor(totalPoints int) int {
	level := 1
	for i, threshold := range rt.LevelThresholds {
		if totalPoints >= threshold {
			level = i + 1
		}
	}
	return level
}

// AchievementByKey returns the definition for a key, if present.
func (rt *RuleTable) AchievementByKey(key string) (AchievementDefinition, bool) {
	for _, def := range rt.Achievements {
		if def.Key == key {
			return def, true
		}
	}
	return AchievementDefinition{}, false
}

// Validate checks the internal consistency guarantees: strictly increasing
// level and achievement thresholds, strictly negative penalties, strictly
// positive multipliers and award values.
func (rt *RuleTable) Validate() error {
	if len(rt.BasePoints) == 0 {
		return fmt.Errorf("no base point values defined")
	}
	for txType, value := range rt.BasePoints {
		if value == 0 {
			return fmt.Errorf("base value for %s is zero", txType)
		}
	}
	for _, penalty := range []string{"SPAM_LISTING", "FALSE_INFORMATION", "PICKUP_NO_SHOW"} {
		if v, ok := rt.BasePoints[penalty]; !ok || v >= 0 {
			return fmt.Errorf("penalty %s must be strictly negative, got %d", penalty, v)
		}
	}
	for _, m := range []struct {
		name  string
		value float64
	}{
		{"streak", rt.StreakMultiplier},
		{"peak", rt.PeakMultiplier},
		{"verified", rt.VerifiedMultiplier},
	} {
		if m.value <= 0 {
			return fmt.Errorf("%s multiplier must be strictly positive, got %v", m.name, m.value)
		}
	}
	if len(rt.LevelThresholds) == 0 || rt.LevelThresholds[0] != 0 {
		return fmt.Errorf("level thresholds must start at 0")
	}
	if !sort.IntsAreSorted(rt.LevelThresholds) {
		return fmt.Errorf("level thresholds must be increasing")
	}
	for i := 1; i < len(rt.LevelThresholds); i++ {
		if rt.LevelThresholds[i] == rt.LevelThresholds[i-1] {
			return fmt.Errorf("level thresholds must be strictly increasing")
		}
	}
	for i, def := range rt.Achievements {
		if def.Key == "" {
			return fmt.Errorf("achievement %d has no key", i)
		}
		if def.ThresholdPoints <= 0 {
			return fmt.Errorf("achievement %s threshold must be positive", def.Key)
		}
		if i > 0 && def.ThresholdPoints <= rt.Achievements[i-1].ThresholdPoints {
			return fmt.Errorf("achievement thresholds must be strictly increasing at %s", def.Key)
		}
	}
	return nil
}
