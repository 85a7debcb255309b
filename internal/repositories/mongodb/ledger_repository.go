package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/models"
	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure LedgerRepository implements the interface
var _ repositories.LedgerRepository = (*LedgerRepository)(nil)

// LedgerRepository handles MongoDB operations for PointsLedger
type LedgerRepository struct {
	collection *mongo.Collection
}

// NewLedgerRepository creates a new LedgerRepository
func NewLedgerRepository(db *mongo.Database) *LedgerRepository {
	return &LedgerRepository{
		collection: db.Collection("points_ledgers"),
	}
}

// Create inserts a new ledger
func (r *LedgerRepository) Create(ctx context.Context, ledger *models.PointsLedger) error {
	if ledger.ID.IsZero() {
		ledger.ID = primitive.NewObjectID()
	}
	ledger.CreatedAt = time.Now()
	ledger.UpdatedAt = ledger.CreatedAt
	_, err := r.collection.InsertOne(ctx, ledger)
	return err
}

// FindByUserID finds the ledger owned by a user
func (r *LedgerRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID) (*models.PointsLedger, error) {
	var ledger models.PointsLedger
	filter := bson.M{"userId": userID}
	err := r.collection.FindOne(ctx, filter).Decode(&ledger)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ledger, nil
}

// UpdateVersioned replaces the ledger document only if the stored version
// still matches the version the caller loaded. On success the in-memory
// ledger carries the bumped version.
func (r *LedgerRepository) UpdateVersioned(ctx context.Context, ledger *models.PointsLedger) error {
	next := ledger.Clone()
	next.Version = ledger.Version + 1
	next.UpdatedAt = time.Now()

	filter := bson.M{"_id": ledger.ID, "version": ledger.Version}
	res, err := r.collection.ReplaceOne(ctx, filter, next)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repositories.ErrConcurrentModification
	}
	*ledger = *next
	return nil
}

// FindTop returns up to limit ledgers ordered by the requested metric
// descending, ties broken by earliest ledger creation.
func (r *LedgerRepository) FindTop(ctx context.Context, metric models.LeaderboardMetric, limit int) ([]*models.PointsLedger, error) {
	field := "totalPoints"
	if metric == models.MetricWeekly {
		field = "weeklyPoints"
	}
	findOptions := options.Find().
		SetSort(bson.D{{Key: field, Value: -1}, {Key: "createdAt", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var ledgers []*models.PointsLedger
	if err = cursor.All(ctx, &ledgers); err != nil {
		return nil, err
	}
	if ledgers == nil {
		ledgers = []*models.PointsLedger{}
	}
	return ledgers, nil
}

// ResetWindow zeroes a windowed counter on every ledger. The version bump
// makes any in-flight versioned save lose and retry, keeping resets
// serialized with applies.
func (r *LedgerRepository) ResetWindow(ctx context.Context, window string) (int64, error) {
	update := bson.M{
		"$set": bson.M{window: 0, "updatedAt": time.Now()},
		"$inc": bson.M{"version": 1},
	}
	res, err := r.collection.UpdateMany(ctx, bson.M{}, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
