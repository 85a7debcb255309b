package services

import (
	"time"

	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/config"
	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/models"
)

// ResolveContext carries the dynamic state the resolver needs: the
// transaction's effective time, the user's streak and verification state,
// and the highest active special-event multiplier (0 when none).
type ResolveContext struct {
	Now                     time.Time
	CurrentStreak           int
	StreakBonusAppliedToday bool
	IsVerified              bool
	EventMultiplier         float64
}

// MultiplierResolver computes the effective multiplier for a transaction.
// It is a pure function of its inputs; all applicable multipliers compose
// multiplicatively, so the order they are checked in never matters.
type MultiplierResolver struct {
	rules         *config.RuleTable
	peakHourStart int
	peakHourEnd   int
	location      *time.Location
}

// NewMultiplierResolver creates a new MultiplierResolver
func NewMultiplierResolver(cfg *config.Config) (*MultiplierResolver, error) {
	loc, err := time.LoadLocation(cfg.Points.Timezone)
	if err != nil {
		return nil, err
	}
	return &MultiplierResolver{
		rules:         cfg.Rules,
		peakHourStart: cfg.Points.PeakHourStart,
		peakHourEnd:   cfg.Points.PeakHourEnd,
		location:      loc,
	}, nil
}

// Resolve returns the final multiplier to apply to the transaction's base
// value. The streak multiplier applies at most once per calendar day.
func (m *MultiplierResolver) Resolve(transaction *models.PointTransaction, rctx ResolveContext) float64 {
	multiplier := 1.0

	if transaction.Type == models.TransactionStreakBonus && !rctx.StreakBonusAppliedToday {
		multiplier *= m.rules.StreakMultiplier
	}
	if m.InPeakHours(rctx.Now) {
		multiplier *= m.rules.PeakMultiplier
	}
	if rctx.EventMultiplier > 0 {
		multiplier *= rctx.EventMultiplier
	}
	if rctx.IsVerified {
		multiplier *= m.rules.VerifiedMultiplier
	}

	return multiplier
}

// InPeakHours reports whether t falls in the configured peak window,
// evaluated in the configured timezone. The window is [start, end) and may
// wrap past midnight.
func (m *MultiplierResolver) InPeakHours(t time.Time) bool {
	hour := t.In(m.location).Hour()
	if m.peakHourStart == m.peakHourEnd {
		return false
	}
	if m.peakHourStart < m.peakHourEnd {
		return hour >= m.peakHourStart && hour < m.peakHourEnd
	}
	return hour >= m.peakHourStart || hour < m.peakHourEnd
}
