package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/config"
	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/models"
	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/repositories"
	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/repositories/memory"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testConfig() *config.Config {
	return &config.Config{
		Points: config.PointsConfig{
			Timezone:            "UTC",
			PeakHourStart:       17,
			PeakHourEnd:         20,
			WeeklyResetDay:      "Monday",
			LeaderboardCacheTTL: 60,
			MaxApplyRetries:     3,
		},
		Rules: config.DefaultRuleTable(),
	}
}

type pointsFixture struct {
	cfg     *config.Config
	users   *memory.UserRepository
	ledgers *memory.LedgerRepository
	txs     *memory.PointTransactionRepository
	events  *memory.SpecialEventRepository
	service *PointsService
	userID  primitive.ObjectID
}

func newPointsFixture(t *testing.T) *pointsFixture {
	t.Helper()
	cfg := testConfig()

	f := &pointsFixture{
		cfg:     cfg,
		users:   memory.NewUserRepository(),
		ledgers: memory.NewLedgerRepository(),
		txs:     memory.NewPointTransactionRepository(),
		events:  memory.NewSpecialEventRepository(),
	}

	resolver, err := NewMultiplierResolver(cfg)
	if err != nil {
		t.Fatalf("NewMultiplierResolver: %v", err)
	}
	f.service = NewPointsService(
		f.users,
		f.ledgers,
		f.txs,
		NewEventService(f.events),
		resolver,
		NewAchievementService(cfg.Rules),
		nil,
		cfg,
	)

	user := &models.User{DisplayName: "tester"}
	if err := f.users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	f.userID = user.ID
	return f
}

// apply builds a transaction of the given type, pins its timestamp and
// applies it.
func (f *pointsFixture) apply(t *testing.T, txType models.TransactionType, at time.Time) *ApplyResult {
	t.Helper()
	tx, err := f.service.CreateTransaction(f.userID, txType, "")
	if err != nil {
		t.Fatalf("CreateTransaction(%s): %v", txType, err)
	}
	tx.Timestamp = at
	result, err := f.service.ApplyTransaction(context.Background(), tx)
	if err != nil {
		t.Fatalf("ApplyTransaction(%s): %v", txType, err)
	}
	return result
}

var offPeak = time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)

func TestCreateTransactionCarriesBaseValue(t *testing.T) {
	f := newPointsFixture(t)

	cases := []struct {
		txType models.TransactionType
		want   int
	}{
		{models.TransactionFurniturePosting, 100},
		{models.TransactionDailyBonus, 10},
		{models.TransactionReferral, 50},
		{models.TransactionSpamListing, -200},
	}
	for _, c := range cases {
		tx, err := f.service.CreateTransaction(f.userID, c.txType, "ref-1")
		if err != nil {
			t.Fatalf("CreateTransaction(%s): %v", c.txType, err)
		}
		if tx.Value != c.want {
			t.Errorf("%s base value = %d, want %d", c.txType, tx.Value, c.want)
		}
		if tx.IsProcessed {
			t.Errorf("%s: new transaction must not be processed", c.txType)
		}
		if tx.Description == "" {
			t.Errorf("%s: missing description", c.txType)
		}
	}

	if _, err := f.service.CreateTransaction(f.userID, "NOT_A_TYPE", ""); !errors.Is(err, ErrInvalidTransactionType) {
		t.Errorf("unknown type: got %v, want ErrInvalidTransactionType", err)
	}
}

func TestApplyCreatesLedgerAndAddsPoints(t *testing.T) {
	f := newPointsFixture(t)

	result := f.apply(t, models.TransactionFurniturePosting, offPeak)

	if result.Snapshot.TotalPoints != 100 {
		t.Errorf("total = %d, want 100", result.Snapshot.TotalPoints)
	}
	if result.Snapshot.WeeklyPoints != 100 || result.Snapshot.MonthlyPoints != 100 {
		t.Errorf("windowed totals = %d/%d, want 100/100",
			result.Snapshot.WeeklyPoints, result.Snapshot.MonthlyPoints)
	}
	if result.Snapshot.Level != 2 {
		t.Errorf("level = %d, want 2 at 100 points", result.Snapshot.Level)
	}

	stored, err := f.ledgers.FindByUserID(context.Background(), f.userID)
	if err != nil {
		t.Fatalf("ledger not persisted: %v", err)
	}
	if stored.TotalPoints != 100 {
		t.Errorf("persisted total = %d, want 100", stored.TotalPoints)
	}
}

func TestApplyDoublesDuringPeakHours(t *testing.T) {
	f := newPointsFixture(t)
	peak := time.Date(2024, 3, 10, 18, 30, 0, 0, time.UTC)

	result := f.apply(t, models.TransactionFurniturePosting, peak)

	if result.Snapshot.TotalPoints != 200 {
		t.Errorf("peak-hour posting total = %d, want 200", result.Snapshot.TotalPoints)
	}
}

func TestApplyRecordsEffectiveValue(t *testing.T) {
	f := newPointsFixture(t)
	peak := time.Date(2024, 3, 10, 17, 0, 0, 0, time.UTC)

	tx, err := f.service.CreateTransaction(f.userID, models.TransactionFurniturePosting, "")
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	tx.Timestamp = peak
	if _, err := f.service.ApplyTransaction(context.Background(), tx); err != nil {
		t.Fatalf("ApplyTransaction: %v", err)
	}

	if !tx.IsProcessed {
		t.Error("transaction not marked processed")
	}
	if tx.Value != 200 {
		t.Errorf("recorded value = %d, want effective 200", tx.Value)
	}

	history, err := f.service.GetTransactions(context.Background(), f.userID, 1, 10)
	if err != nil {
		t.Fatalf("GetTransactions: %v", err)
	}
	if len(history) != 1 || history[0].Value != 200 {
		t.Errorf("persisted history = %+v, want one record of 200", history)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	f := newPointsFixture(t)

	tx, err := f.service.CreateTransaction(f.userID, models.TransactionFurniturePosting, "")
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	tx.Timestamp = offPeak
	if _, err := f.service.ApplyTransaction(context.Background(), tx); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if _, err := f.service.ApplyTransaction(context.Background(), tx); !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("second apply: got %v, want ErrAlreadyProcessed", err)
	}

	ledger, err := f.ledgers.FindByUserID(context.Background(), f.userID)
	if err != nil {
		t.Fatalf("FindByUserID: %v", err)
	}
	if ledger.TotalPoints != 100 {
		t.Errorf("total after double apply = %d, want 100", ledger.TotalPoints)
	}
}

func TestApplyRejectsUnknownUser(t *testing.T) {
	f := newPointsFixture(t)

	tx, err := f.service.CreateTransaction(primitive.NewObjectID(), models.TransactionFurniturePosting, "")
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	tx.Timestamp = offPeak
	if _, err := f.service.ApplyTransaction(context.Background(), tx); !errors.Is(err, ErrUnknownUser) {
		t.Fatalf("got %v, want ErrUnknownUser", err)
	}
	if tx.IsProcessed {
		t.Error("rejected transaction must stay unprocessed")
	}
}

func TestPenaltyClampsDisplayNotAudit(t *testing.T) {
	f := newPointsFixture(t)

	result := f.apply(t, models.TransactionPickupNoShow, offPeak)

	if result.Snapshot.TotalPoints != 0 {
		t.Errorf("display total = %d, want 0", result.Snapshot.TotalPoints)
	}
	if result.Snapshot.RawPoints != -50 {
		t.Errorf("raw total = %d, want -50", result.Snapshot.RawPoints)
	}
	if result.Snapshot.Level != 1 {
		t.Errorf("level = %d, want 1", result.Snapshot.Level)
	}

	// Earning back from a negative balance works against the raw total.
	result = f.apply(t, models.TransactionFurniturePosting, offPeak)
	if result.Snapshot.TotalPoints != 50 {
		t.Errorf("display total after recovery = %d, want 50", result.Snapshot.TotalPoints)
	}
}

func TestStreakProgression(t *testing.T) {
	f := newPointsFixture(t)
	day := func(d, hour int) time.Time {
		return time.Date(2024, 3, d, hour, 0, 0, 0, time.UTC)
	}

	// Three consecutive days.
	if got := f.apply(t, models.TransactionDailyBonus, day(10, 9)).Snapshot.CurrentStreak; got != 1 {
		t.Fatalf("day 1 streak = %d, want 1", got)
	}
	if got := f.apply(t, models.TransactionDailyBonus, day(11, 9)).Snapshot.CurrentStreak; got != 2 {
		t.Fatalf("day 2 streak = %d, want 2", got)
	}
	if got := f.apply(t, models.TransactionDailyBonus, day(12, 9)).Snapshot.CurrentStreak; got != 3 {
		t.Fatalf("day 3 streak = %d, want 3", got)
	}

	// A second qualifying transaction the same day changes nothing.
	if got := f.apply(t, models.TransactionDailyBonus, day(12, 22)).Snapshot.CurrentStreak; got != 3 {
		t.Fatalf("same-day streak = %d, want 3", got)
	}

	// Skipping a day resets to one.
	if got := f.apply(t, models.TransactionDailyBonus, day(14, 9)).Snapshot.CurrentStreak; got != 1 {
		t.Fatalf("post-gap streak = %d, want 1", got)
	}

	// Non-qualifying types never touch the streak.
	if got := f.apply(t, models.TransactionFurniturePosting, day(16, 9)).Snapshot.CurrentStreak; got != 1 {
		t.Fatalf("streak after posting = %d, want 1", got)
	}
}

func TestStreakMultiplierAppliesOncePerDay(t *testing.T) {
	f := newPointsFixture(t)

	// 15 * 1.5 = 22.5, rounded half-up to 23.
	first := f.apply(t, models.TransactionStreakBonus, offPeak)
	if first.Snapshot.TotalPoints != 23 {
		t.Errorf("first streak bonus total = %d, want 23", first.Snapshot.TotalPoints)
	}

	// Same day again: base value only.
	second := f.apply(t, models.TransactionStreakBonus, offPeak.Add(2*time.Hour))
	if got := second.Snapshot.TotalPoints - first.Snapshot.TotalPoints; got != 15 {
		t.Errorf("second streak bonus earned %d, want unboosted 15", got)
	}

	// Next day the multiplier is available again.
	third := f.apply(t, models.TransactionStreakBonus, offPeak.AddDate(0, 0, 1))
	if got := third.Snapshot.TotalPoints - second.Snapshot.TotalPoints; got != 23 {
		t.Errorf("next-day streak bonus earned %d, want 23", got)
	}
}

func TestSpecialEventMultiplier(t *testing.T) {
	f := newPointsFixture(t)

	event := &models.SpecialEvent{
		Name:       "Earth Day",
		Multiplier: 3.0,
		StartAt:    offPeak.Add(-time.Hour),
		EndAt:      offPeak.Add(time.Hour),
		Status:     models.EventStatusActive,
	}
	if err := f.events.Create(context.Background(), event); err != nil {
		t.Fatalf("create event: %v", err)
	}

	inside := f.apply(t, models.TransactionFurniturePosting, offPeak)
	if inside.Snapshot.TotalPoints != 300 {
		t.Errorf("total inside event = %d, want 300", inside.Snapshot.TotalPoints)
	}

	outside := f.apply(t, models.TransactionFurniturePosting, offPeak.Add(2*time.Hour))
	if got := outside.Snapshot.TotalPoints - inside.Snapshot.TotalPoints; got != 100 {
		t.Errorf("total outside event grew by %d, want 100", got)
	}
}

func TestVerifiedUserMultiplier(t *testing.T) {
	f := newPointsFixture(t)

	user, err := f.users.FindByID(context.Background(), f.userID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	user.IsVerified = true
	if err := f.users.Update(context.Background(), user); err != nil {
		t.Fatalf("Update: %v", err)
	}

	result := f.apply(t, models.TransactionFurniturePosting, offPeak)
	if result.Snapshot.TotalPoints != 125 {
		t.Errorf("verified posting total = %d, want 125", result.Snapshot.TotalPoints)
	}
}

func TestAchievementUnlocksExactlyOnce(t *testing.T) {
	f := newPointsFixture(t)

	// Four postings and a referral: 450 points, just short of the first
	// achievement.
	for i := 0; i < 4; i++ {
		f.apply(t, models.TransactionFurniturePosting, offPeak)
	}
	pre := f.apply(t, models.TransactionReferral, offPeak)
	if pre.Snapshot.TotalPoints != 450 {
		t.Fatalf("setup total = %d, want 450", pre.Snapshot.TotalPoints)
	}
	if len(pre.Unlocked) != 0 {
		t.Fatalf("unlocked at 450 = %v, want none", pre.Unlocked)
	}

	// Crossing 500 unlocks NOVICE_RECOVERER.
	crossing := f.apply(t, models.TransactionFurniturePosting, offPeak)
	if len(crossing.Unlocked) != 1 || crossing.Unlocked[0].Key != "NOVICE_RECOVERER" {
		t.Fatalf("unlocked at 550 = %v, want NOVICE_RECOVERER", crossing.Unlocked)
	}

	// Further earning does not re-unlock it.
	again := f.apply(t, models.TransactionFurniturePosting, offPeak)
	if len(again.Unlocked) != 0 {
		t.Errorf("unlocked at 650 = %v, want none", again.Unlocked)
	}
	if got := len(again.Snapshot.Achievements); got != 1 {
		t.Errorf("achievement count = %d, want 1", got)
	}
}

func TestLevelUpIsReported(t *testing.T) {
	f := newPointsFixture(t)
	recorder := &recordingNotifier{}
	f.service.notifier = recorder

	result := f.apply(t, models.TransactionFurniturePosting, offPeak)
	if result.Snapshot.Level != 2 {
		t.Fatalf("level = %d, want 2", result.Snapshot.Level)
	}

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if len(recorder.levelUps) != 1 || recorder.levelUps[0] != 2 {
		t.Errorf("level-up notifications = %v, want [2]", recorder.levelUps)
	}
}

func TestAchievementNotification(t *testing.T) {
	f := newPointsFixture(t)
	recorder := &recordingNotifier{}
	f.service.notifier = recorder

	for i := 0; i < 5; i++ {
		f.apply(t, models.TransactionFurniturePosting, offPeak)
	}

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if len(recorder.unlockedKeys) != 1 || recorder.unlockedKeys[0] != "NOVICE_RECOVERER" {
		t.Errorf("unlock notifications = %v, want [NOVICE_RECOVERER]", recorder.unlockedKeys)
	}
}

func TestConcurrentAppliesAllLand(t *testing.T) {
	f := newPointsFixture(t)
	const workers = 20

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		tx, err := f.service.CreateTransaction(f.userID, models.TransactionChatResponse, "")
		if err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
		tx.Timestamp = offPeak
		wg.Add(1)
		go func(tx *models.PointTransaction) {
			defer wg.Done()
			if _, err := f.service.ApplyTransaction(context.Background(), tx); err != nil {
				errs <- err
			}
		}(tx)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent apply failed: %v", err)
	}

	ledger, err := f.ledgers.FindByUserID(context.Background(), f.userID)
	if err != nil {
		t.Fatalf("FindByUserID: %v", err)
	}
	if want := workers * 5; ledger.TotalPoints != want {
		t.Errorf("total = %d, want %d", ledger.TotalPoints, want)
	}
}

func TestApplyRetriesOnConcurrentModification(t *testing.T) {
	f := newPointsFixture(t)
	f.apply(t, models.TransactionDailyBonus, offPeak) // ensure the ledger exists

	flaky := &flakyLedgerRepo{LedgerRepository: f.ledgers, failures: 2}
	f.service.ledgerRepo = flaky

	result := f.apply(t, models.TransactionFurniturePosting, offPeak)
	if result.Snapshot.TotalPoints != 110 {
		t.Errorf("total after retried apply = %d, want 110", result.Snapshot.TotalPoints)
	}
}

func TestApplyGivesUpAfterMaxRetries(t *testing.T) {
	f := newPointsFixture(t)
	f.apply(t, models.TransactionDailyBonus, offPeak)

	flaky := &flakyLedgerRepo{LedgerRepository: f.ledgers, failures: 100}
	f.service.ledgerRepo = flaky

	tx, err := f.service.CreateTransaction(f.userID, models.TransactionFurniturePosting, "")
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	tx.Timestamp = offPeak
	if _, err := f.service.ApplyTransaction(context.Background(), tx); !errors.Is(err, repositories.ErrConcurrentModification) {
		t.Fatalf("got %v, want ErrConcurrentModification after retries exhausted", err)
	}
	if tx.IsProcessed {
		t.Error("failed apply must leave the transaction unprocessed")
	}
	if flaky.calls != f.cfg.Points.MaxApplyRetries {
		t.Errorf("save attempts = %d, want %d", flaky.calls, f.cfg.Points.MaxApplyRetries)
	}
}

func TestResetWindows(t *testing.T) {
	f := newPointsFixture(t)
	f.apply(t, models.TransactionFurniturePosting, offPeak)

	count, err := f.service.ResetWeekly(context.Background())
	if err != nil {
		t.Fatalf("ResetWeekly: %v", err)
	}
	if count != 1 {
		t.Errorf("reset count = %d, want 1", count)
	}

	ledger, err := f.ledgers.FindByUserID(context.Background(), f.userID)
	if err != nil {
		t.Fatalf("FindByUserID: %v", err)
	}
	if ledger.WeeklyPoints != 0 {
		t.Errorf("weekly after reset = %d, want 0", ledger.WeeklyPoints)
	}
	if ledger.MonthlyPoints != 100 || ledger.TotalPoints != 100 {
		t.Errorf("monthly/total after weekly reset = %d/%d, want 100/100",
			ledger.MonthlyPoints, ledger.TotalPoints)
	}

	if _, err := f.service.ResetMonthly(context.Background()); err != nil {
		t.Fatalf("ResetMonthly: %v", err)
	}
	ledger, _ = f.ledgers.FindByUserID(context.Background(), f.userID)
	if ledger.MonthlyPoints != 0 {
		t.Errorf("monthly after reset = %d, want 0", ledger.MonthlyPoints)
	}
}

// recordingNotifier captures notifier calls for assertions.
type recordingNotifier struct {
	mu           sync.Mutex
	unlockedKeys []string
	levelUps     []int
}

func (r *recordingNotifier) AchievementsUnlocked(user *models.User, unlocked []config.AchievementDefinition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, def := range unlocked {
		r.unlockedKeys = append(r.unlockedKeys, def.Key)
	}
}

func (r *recordingNotifier) LevelUp(user *models.User, newLevel int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.levelUps = append(r.levelUps, newLevel)
}

// flakyLedgerRepo fails the first N versioned saves to exercise the retry
// loop.
type flakyLedgerRepo struct {
	repositories.LedgerRepository
	failures int
	calls    int
}

func (r *flakyLedgerRepo) UpdateVersioned(ctx context.Context, ledger *models.PointsLedger) error {
	r.calls++
	if r.failures > 0 {
		r.failures--
		return repositories.ErrConcurrentModification
	}
	return r.LedgerRepository.UpdateVersioned(ctx, ledger)
}
