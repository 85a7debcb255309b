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

// Compile-time check to ensure SpecialEventRepository implements the interface
var _ repositories.SpecialEventRepository = (*SpecialEventRepository)(nil)

// SpecialEventRepository handles MongoDB operations for SpecialEvent
type SpecialEventRepository struct {
	collection *mongo.Collection
}

// NewSpecialEventRepository creates a new SpecialEventRepository
func NewSpecialEventRepository(db *mongo.Database) *SpecialEventRepository {
	return &SpecialEventRepository{
		collection: db.Collection("special_events"),
	}
}

// Create inserts a new special event
func (r *SpecialEventRepository) Create(ctx context.Context, event *models.SpecialEvent) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	_, err := r.collection.InsertOne(ctx, event)
	return err
}

// FindByID finds a special event by ID
func (r *SpecialEventRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.SpecialEvent, error) {
	var event models.SpecialEvent
	filter := bson.M{"_id": id}
	err := r.collection.FindOne(ctx, filter).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// Update updates a special event
func (r *SpecialEventRepository) Update(ctx context.Context, event *models.SpecialEvent) error {
	event.UpdatedAt = time.Now()
	filter := bson.M{"_id": event.ID}
	res, err := r.collection.ReplaceOne(ctx, filter, event)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// Delete removes a special event
func (r *SpecialEventRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// FindAll retrieves special events with pagination, newest window first
func (r *SpecialEventRepository) FindAll(ctx context.Context, page, limit int) ([]*models.SpecialEvent, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "startAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []*models.SpecialEvent
	if err = cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	if events == nil {
		events = []*models.SpecialEvent{}
	}
	return events, nil
}

// FindActive finds active events whose window covers the given instant
func (r *SpecialEventRepository) FindActive(ctx context.Context, at time.Time) ([]*models.SpecialEvent, error) {
	filter := bson.M{
		"status":  models.EventStatusActive,
		"startAt": bson.M{"$lte": at},
		"endAt":   bson.M{"$gt": at},
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []*models.SpecialEvent
	if err = cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	if events == nil {
		events = []*models.SpecialEvent{}
	}
	return events, nil
}

// FindOverlapping finds active events whose window intersects [start, end),
// optionally excluding one event (used when updating it).
func (r *SpecialEventRepository) FindOverlapping(ctx context.Context, start, end time.Time, excludeID primitive.ObjectID) ([]*models.SpecialEvent, error) {
	filter := bson.M{
		"status":  models.EventStatusActive,
		"startAt": bson.M{"$lt": end},
		"endAt":   bson.M{"$gt": start},
	}
	if !excludeID.IsZero() {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []*models.SpecialEvent
	if err = cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	if events == nil {
		events = []*models.SpecialEvent{}
	}
	return events, nil
}
