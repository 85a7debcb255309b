// Package memory provides in-memory repository implementations. They back
// the service tests and keep the same contracts as the MongoDB
// implementations, including versioned ledger saves.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/models"
	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Compile-time checks
var (
	_ repositories.UserRepository             = (*UserRepository)(nil)
	_ repositories.PointTransactionRepository = (*PointTransactionRepository)(nil)
	_ repositories.LedgerRepository           = (*LedgerRepository)(nil)
	_ repositories.SpecialEventRepository     = (*SpecialEventRepository)(nil)
	_ repositories.NotificationRepository     = (*NotificationRepository)(nil)
)

// UserRepository is an in-memory UserRepository
type UserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
}

// NewUserRepository creates a new in-memory UserRepository
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[primitive.ObjectID]models.User)}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) FindAll(ctx context.Context, page, limit int) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*models.User, 0, len(r.users))
	for id := range r.users {
		u := r.users[id]
		all = append(all, &u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	return paginate(all, page, limit), nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.users)), nil
}

// PointTransactionRepository is an in-memory PointTransactionRepository
type PointTransactionRepository struct {
	mu           sync.RWMutex
	transactions map[primitive.ObjectID]models.PointTransaction
}

// NewPointTransactionRepository creates a new in-memory PointTransactionRepository
func NewPointTransactionRepository() *PointTransactionRepository {
	return &PointTransactionRepository{transactions: make(map[primitive.ObjectID]models.PointTransaction)}
}

func (r *PointTransactionRepository) Create(ctx context.Context, transaction *models.PointTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if transaction.ID.IsZero() {
		transaction.ID = primitive.NewObjectID()
	}
	if transaction.CreatedAt.IsZero() {
		transaction.CreatedAt = time.Now()
	}
	r.transactions[transaction.ID] = *transaction
	return nil
}

func (r *PointTransactionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.PointTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transactions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &t, nil
}

func (r *PointTransactionRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.PointTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []*models.PointTransaction
	for id := range r.transactions {
		t := r.transactions[id]
		if t.UserID == userID {
			matched = append(matched, &t)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Timestamp.After(matched[j].Timestamp) })
	return paginate(matched, page, limit), nil
}

// LedgerRepository is an in-memory LedgerRepository
type LedgerRepository struct {
	mu      sync.RWMutex
	ledgers map[primitive.ObjectID]models.PointsLedger // keyed by userId
}

// NewLedgerRepository creates a new in-memory LedgerRepository
func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{ledgers: make(map[primitive.ObjectID]models.PointsLedger)}
}

func (r *LedgerRepository) Create(ctx context.Context, ledger *models.PointsLedger) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ledger.ID.IsZero() {
		ledger.ID = primitive.NewObjectID()
	}
	if ledger.CreatedAt.IsZero() {
		ledger.CreatedAt = time.Now()
	}
	ledger.UpdatedAt = time.Now()
	r.ledgers[ledger.UserID] = *ledger.Clone()
	return nil
}

func (r *LedgerRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID) (*models.PointsLedger, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.ledgers[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return l.Clone(), nil
}

func (r *LedgerRepository) UpdateVersioned(ctx context.Context, ledger *models.PointsLedger) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.ledgers[ledger.UserID]
	if !ok {
		return repositories.ErrNotFound
	}
	if stored.Version != ledger.Version {
		return repositories.ErrConcurrentModification
	}
	ledger.Version++
	ledger.UpdatedAt = time.Now()
	r.ledgers[ledger.UserID] = *ledger.Clone()
	return nil
}

func (r *LedgerRepository) FindTop(ctx context.Context, metric models.LeaderboardMetric, limit int) ([]*models.PointsLedger, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*models.PointsLedger, 0, len(r.ledgers))
	for userID := range r.ledgers {
		l := r.ledgers[userID]
		all = append(all, l.Clone())
	}
	score := func(l *models.PointsLedger) int {
		if metric == models.MetricWeekly {
			return l.WeeklyPoints
		}
		return l.TotalPoints
	}
	sort.Slice(all, func(i, j int) bool {
		if score(all[i]) != score(all[j]) {
			return score(all[i]) > score(all[j])
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *LedgerRepository) ResetWindow(ctx context.Context, window string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for userID, l := range r.ledgers {
		switch window {
		case repositories.WindowWeekly:
			l.WeeklyPoints = 0
		case repositories.WindowMonthly:
			l.MonthlyPoints = 0
		}
		l.Version++
		l.UpdatedAt = time.Now()
		r.ledgers[userID] = l
		count++
	}
	return count, nil
}

// SpecialEventRepository is an in-memory SpecialEventRepository
type SpecialEventRepository struct {
	mu     sync.RWMutex
	events map[primitive.ObjectID]models.SpecialEvent
}

// NewSpecialEventRepository creates a new in-memory SpecialEventRepository
func NewSpecialEventRepository() *SpecialEventRepository {
	return &SpecialEventRepository{events: make(map[primitive.ObjectID]models.SpecialEvent)}
}

func (r *SpecialEventRepository) Create(ctx context.Context, event *models.SpecialEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	r.events[event.ID] = *event
	return nil
}

func (r *SpecialEventRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.SpecialEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.events[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &e, nil
}

func (r *SpecialEventRepository) Update(ctx context.Context, event *models.SpecialEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[event.ID]; !ok {
		return repositories.ErrNotFound
	}
	event.UpdatedAt = time.Now()
	r.events[event.ID] = *event
	return nil
}

func (r *SpecialEventRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.events, id)
	return nil
}

func (r *SpecialEventRepository) FindAll(ctx context.Context, page, limit int) ([]*models.SpecialEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*models.SpecialEvent, 0, len(r.events))
	for id := range r.events {
		e := r.events[id]
		all = append(all, &e)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].StartAt.After(all[j].StartAt) })
	return paginate(all, page, limit), nil
}

func (r *SpecialEventRepository) FindActive(ctx context.Context, at time.Time) ([]*models.SpecialEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := []*models.SpecialEvent{}
	for id := range r.events {
		e := r.events[id]
		if e.ActiveAt(at) {
			matched = append(matched, &e)
		}
	}
	return matched, nil
}

func (r *SpecialEventRepository) FindOverlapping(ctx context.Context, start, end time.Time, excludeID primitive.ObjectID) ([]*models.SpecialEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := []*models.SpecialEvent{}
	for id := range r.events {
		e := r.events[id]
		if e.ID == excludeID || e.Status != models.EventStatusActive {
			continue
		}
		if e.StartAt.Before(end) && e.EndAt.After(start) {
			matched = append(matched, &e)
		}
	}
	return matched, nil
}

// NotificationRepository is an in-memory NotificationRepository
type NotificationRepository struct {
	mu            sync.RWMutex
	notifications map[primitive.ObjectID]models.Notification
}

// NewNotificationRepository creates a new in-memory NotificationRepository
func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{notifications: make(map[primitive.ObjectID]models.Notification)}
}

func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if notification.ID.IsZero() {
		notification.ID = primitive.NewObjectID()
	}
	notification.CreatedAt = time.Now()
	notification.UpdatedAt = notification.CreatedAt
	r.notifications[notification.ID] = *notification
	return nil
}

func (r *NotificationRepository) Update(ctx context.Context, notification *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.notifications[notification.ID]; !ok {
		return repositories.ErrNotFound
	}
	notification.UpdatedAt = time.Now()
	r.notifications[notification.ID] = *notification
	return nil
}

func (r *NotificationRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []*models.Notification
	for id := range r.notifications {
		n := r.notifications[id]
		if n.UserID == userID {
			matched = append(matched, &n)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return paginate(matched, page, limit), nil
}

func paginate[T any](items []*T, page, limit int) []*T {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []*T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
