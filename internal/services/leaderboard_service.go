package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/models"
	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/repositories"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// LeaderboardEntry is one ranked row
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	UserID string `json:"userId"`
	Score  int    `json:"score"`
}

// LeaderboardService is a read-only ranked view over all ledgers. Results
// are cached per metric and limit for the configured TTL, so a board may
// be stale by at most that long.
type LeaderboardService struct {
	ledgerRepo repositories.LedgerRepository
	ttl        time.Duration
	now        func() time.Time

	mu    sync.Mutex
	cache map[string]cachedBoard
}

type cachedBoard struct {
	entries   []LeaderboardEntry
	fetchedAt time.Time
}

// NewLeaderboardService creates a new LeaderboardService
func NewLeaderboardService(ledgerRepo repositories.LedgerRepository, ttl time.Duration) *LeaderboardService {
	return &LeaderboardService{
		ledgerRepo: ledgerRepo,
		ttl:        ttl,
		now:        time.Now,
		cache:      make(map[string]cachedBoard),
	}
}

// Rank returns up to limit entries ordered by the metric descending, ties
// broken by earliest ledger creation. Scores are display values, never
// negative.
func (s *LeaderboardService) Rank(ctx context.Context, metric models.LeaderboardMetric, limit int) ([]LeaderboardEntry, error) {
	if metric != models.MetricTotal && metric != models.MetricWeekly {
		return nil, fmt.Errorf("unknown leaderboard metric %q", metric)
	}
	if limit < 1 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	key := fmt.Sprintf("%s:%d", metric, limit)

	s.mu.Lock()
	if board, ok := s.cache[key]; ok && s.now().Sub(board.fetchedAt) < s.ttl {
		entries := append([]LeaderboardEntry(nil), board.entries...)
		s.mu.Unlock()
		return entries, nil
	}
	s.mu.Unlock()

	ledgers, err := s.ledgerRepo.FindTop(ctx, metric, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(ledgers))
	for i, ledger := range ledgers {
		score := ledger.DisplayPoints()
		if metric == models.MetricWeekly {
			score = ledger.WeeklyPoints
			if score < 0 {
				score = 0
			}
		}
		entries = append(entries, LeaderboardEntry{
			Rank:   i + 1,
			UserID: ledger.UserID.Hex(),
			Score:  score,
		})
	}

	s.mu.Lock()
	s.cache[key] = cachedBoard{entries: entries, fetchedAt: s.now()}
	s.mu.Unlock()

	return append([]LeaderboardEntry(nil), entries...), nil
}

// Invalidate drops all cached boards, used after scheduled resets so
// clients see zeroed windows immediately.
func (s *LeaderboardService) Invalidate() {
	s.mu.Lock()
	s.cache = make(map[string]cachedBoard)
	s.mu.Unlock()
}
