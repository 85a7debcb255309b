package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/config"
	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/models"
	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/repositories"
	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrInvalidTransactionType indicates an unrecognized transaction type.
	// This is a caller bug and is never retried.
	ErrInvalidTransactionType = errors.New("invalid transaction type")

	// ErrAlreadyProcessed indicates a double-apply attempt. Applying is
	// idempotent: the ledger is never changed twice by one transaction.
	ErrAlreadyProcessed = errors.New("transaction already processed")

	// ErrUnknownUser indicates no user exists for the transaction's userId.
	ErrUnknownUser = errors.New("unknown user")
)

// ApplyResult is returned by ApplyTransaction: the post-update ledger view
// plus any achievements the transaction unlocked.
type ApplyResult struct {
	Snapshot *models.LedgerSnapshot         `json:"ledger"`
	Unlocked []config.AchievementDefinition `json:"unlockedAchievements"`
}

// PointsService owns all ledger mutation. Per-user mutations are
// serialized: a keyed mutex keeps at most one apply in flight per user in
// this process, and the versioned ledger save guards against writers
// elsewhere (scheduled resets, other instances).
type PointsService struct {
	userRepo     repositories.UserRepository
	ledgerRepo   repositories.LedgerRepository
	txRepo       repositories.PointTransactionRepository
	eventService *EventService
	resolver     *MultiplierResolver
	achievements *AchievementService
	notifier     Notifier // optional
	rules        *config.RuleTable
	maxRetries   int
	now          func() time.Time

	userLocks sync.Map // userId hex -> *sync.Mutex
}

// NewPointsService creates a new PointsService. The notifier may be nil.
func NewPointsService(
	userRepo repositories.UserRepository,
	ledgerRepo repositories.LedgerRepository,
	txRepo repositories.PointTransactionRepository,
	eventService *EventService,
	resolver *MultiplierResolver,
	achievements *AchievementService,
	notifier Notifier,
	cfg *config.Config,
) *PointsService {
	return &PointsService{
		userRepo:     userRepo,
		ledgerRepo:   ledgerRepo,
		txRepo:       txRepo,
		eventService: eventService,
		resolver:     resolver,
		achievements: achievements,
		notifier:     notifier,
		rules:        cfg.Rules,
		maxRetries:   cfg.Points.MaxApplyRetries,
		now:          time.Now,
	}
}

// CreateTransaction builds an unprocessed transaction carrying the rule
// table's base value for the type. It has no side effects: nothing is
// written to any ledger or store until ApplyTransaction.
func (s *PointsService) CreateTransaction(userID primitive.ObjectID, txType models.TransactionType, referenceID string) (*models.PointTransaction, error) {
	if userID.IsZero() {
		return nil, ErrUnknownUser
	}
	base, ok := s.rules.BaseValue(string(txType))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTransactionType, txType)
	}
	now := s.now()
	return &models.PointTransaction{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		Value:       base,
		Type:        txType,
		Description: txType.Description(),
		Timestamp:   now,
		ReferenceID: referenceID,
		CreatedAt:   now,
	}, nil
}

// ApplyTransaction applies a transaction to its user's ledger: resolves
// the multiplier, updates totals, streak and level, evaluates
// achievements, marks the transaction processed and persists it. Either
// everything is saved or the ledger is left untouched. Concurrent saves
// are retried a bounded number of times with fresh state.
func (s *PointsService) ApplyTransaction(ctx context.Context, transaction *models.PointTransaction) (*ApplyResult, error) {
	if transaction.IsProcessed {
		return nil, ErrAlreadyProcessed
	}
	if _, ok := s.rules.BaseValue(string(transaction.Type)); !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTransactionType, transaction.Type)
	}

	user, err := s.userRepo.FindByID(ctx, transaction.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}

	lock := s.lockFor(transaction.UserID)
	lock.Lock()
	defer lock.Unlock()

	var outcome *applyOutcome
	for attempt := 1; ; attempt++ {
		outcome, err = s.applyOnce(ctx, transaction, user)
		if err == nil {
			break
		}
		if !errors.Is(err, repositories.ErrConcurrentModification) || attempt >= s.maxRetries {
			return nil, err
		}
	}

	// The ledger is saved; record the processed transaction with its
	// effective value. A failure here propagates so the caller can audit,
	// but the ledger update stands.
	transaction.Value = outcome.effectiveValue
	transaction.IsProcessed = true
	if err := s.txRepo.Create(ctx, transaction); err != nil {
		return nil, fmt.Errorf("ledger updated but transaction record failed: %w", err)
	}

	if s.notifier != nil {
		if len(outcome.unlocked) > 0 {
			s.notifier.AchievementsUnlocked(user, outcome.unlocked)
		}
		if outcome.leveledUp {
			s.notifier.LevelUp(user, outcome.snapshot.Level)
		}
	}

	return &ApplyResult{Snapshot: outcome.snapshot, Unlocked: outcome.unlocked}, nil
}

type applyOutcome struct {
	snapshot       *models.LedgerSnapshot
	unlocked       []config.AchievementDefinition
	effectiveValue int
	leveledUp      bool
}

func (s *PointsService) applyOnce(ctx context.Context, transaction *models.PointTransaction, user *models.User) (*applyOutcome, error) {
	ledger, err := s.ledgerRepo.FindByUserID(ctx, transaction.UserID)
	created := false
	if errors.Is(err, repositories.ErrNotFound) {
		ledger = models.NewPointsLedger(transaction.UserID)
		created = true
	} else if err != nil {
		return nil, err
	}

	// All mutations happen on a working copy so a failed save leaves no
	// partial state behind.
	work := ledger.Clone()
	at := transaction.Timestamp

	eventMultiplier, err := s.eventService.ActiveMultiplier(ctx, at)
	if err != nil {
		return nil, err
	}
	rctx := ResolveContext{
		Now:                     at,
		CurrentStreak:           work.CurrentStreak,
		StreakBonusAppliedToday: utils.SameUTCDay(work.LastStreakBonusDay, at),
		IsVerified:              user.IsVerified,
		EventMultiplier:         eventMultiplier,
	}
	multiplier := s.resolver.Resolve(transaction, rctx)
	effective := utils.RoundHalfUp(float64(transaction.Value) * multiplier)

	work.TotalPoints += effective
	work.WeeklyPoints += effective
	work.MonthlyPoints += effective

	if transaction.Type.QualifiesForStreak() {
		s.advanceStreak(work, at)
	}
	if transaction.Type == models.TransactionStreakBonus && !rctx.StreakBonusAppliedToday {
		work.LastStreakBonusDay = utils.UTCDay(at)
	}

	previousLevel := work.Level
	work.Level = s.rules.LevelFor(work.DisplayPoints())
	unlocked := s.achievements.Evaluate(work)

	if created {
		err = s.ledgerRepo.Create(ctx, work)
	} else {
		err = s.ledgerRepo.UpdateVersioned(ctx, work)
	}
	if err != nil {
		return nil, err
	}

	return &applyOutcome{
		snapshot:       work.Snapshot(),
		unlocked:       unlocked,
		effectiveValue: effective,
		leveledUp:      work.Level > previousLevel,
	}, nil
}

// advanceStreak applies the consecutive-calendar-day rules: same day is a
// no-op, exactly one day later increments, any gap starts a new streak at
// day one.
func (s *PointsService) advanceStreak(ledger *models.PointsLedger, at time.Time) {
	switch {
	case ledger.LastStreakDay.IsZero():
		ledger.CurrentStreak = 1
	case utils.SameUTCDay(ledger.LastStreakDay, at):
		return
	case utils.DaysBetweenUTC(ledger.LastStreakDay, at) == 1:
		ledger.CurrentStreak++
	default:
		ledger.CurrentStreak = 1
	}
	ledger.LastStreakDay = utils.UTCDay(at)
}

// GetLedger returns the current snapshot for a user
func (s *PointsService) GetLedger(ctx context.Context, userID primitive.ObjectID) (*models.LedgerSnapshot, error) {
	ledger, err := s.ledgerRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ledger.Snapshot(), nil
}

// GetTransactions returns a user's transaction history, newest first
func (s *PointsService) GetTransactions(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.PointTransaction, error) {
	return s.txRepo.FindByUserID(ctx, userID, page, limit)
}

// ResetWeekly zeroes every ledger's weekly counter. Idempotent; safe to
// run concurrently with applies thanks to the versioned saves.
func (s *PointsService) ResetWeekly(ctx context.Context) (int64, error) {
	return s.ledgerRepo.ResetWindow(ctx, repositories.WindowWeekly)
}

// ResetMonthly zeroes every ledger's monthly counter.
func (s *PointsService) ResetMonthly(ctx context.Context) (int64, error) {
	return s.ledgerRepo.ResetWindow(ctx, repositories.WindowMonthly)
}

func (s *PointsService) lockFor(userID primitive.ObjectID) *sync.Mutex {
	lock, _ := s.userLocks.LoadOrStore(userID.Hex(), &sync.Mutex{})
	return lock.(*sync.Mutex)
}
