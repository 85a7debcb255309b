package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("not found")

// ErrConcurrentModification is returned when a versioned ledger save lost
// the race to another writer. Callers reload and retry with fresh state.
var ErrConcurrentModification = errors.New("concurrent ledger modification")

// Windowed counter fields resettable on schedule.
const (
	WindowWeekly  = "weeklyPoints"
	WindowMonthly = "monthlyPoints"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	FindAll(ctx context.Context, page, limit int) ([]*models.User, error)
	Count(ctx context.Context) (int64, error)
}

// PointTransactionRepository defines the interface for point transaction operations
type PointTransactionRepository interface {
	Create(ctx context.Context, transaction *models.PointTransaction) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.PointTransaction, error)
	FindByUserID(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.PointTransaction, error)
}

// LedgerRepository defines the interface for points ledger operations.
// UpdateVersioned must fail with ErrConcurrentModification when the stored
// version no longer matches the one the caller loaded.
type LedgerRepository interface {
	Create(ctx context.Context, ledger *models.PointsLedger) error
	FindByUserID(ctx context.Context, userID primitive.ObjectID) (*models.PointsLedger, error)
	UpdateVersioned(ctx context.Context, ledger *models.PointsLedger) error
	FindTop(ctx context.Context, metric models.LeaderboardMetric, limit int) ([]*models.PointsLedger, error)
	ResetWindow(ctx context.Context, window string) (int64, error)
}

// SpecialEventRepository defines the interface for special event operations
type SpecialEventRepository interface {
	Create(ctx context.Context, event *models.SpecialEvent) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.SpecialEvent, error)
	Update(ctx context.Context, event *models.SpecialEvent) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	FindAll(ctx context.Context, page, limit int) ([]*models.SpecialEvent, error)
	FindActive(ctx context.Context, at time.Time) ([]*models.SpecialEvent, error)
	FindOverlapping(ctx context.Context, start, end time.Time, excludeID primitive.ObjectID) ([]*models.SpecialEvent, error)
}

// NotificationRepository defines the interface for notification records
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	Update(ctx context.Context, notification *models.Notification) error
	FindByUserID(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.Notification, error)
}
