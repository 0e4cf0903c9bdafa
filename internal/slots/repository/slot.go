package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	slotserrors "roadbook/internal/slots/errors"
	"roadbook/pkg/config"
	"roadbook/pkg/model"
)

const (
	CollectionName = "Slots"
)

// SlotFilter narrows admin slot listings.
type SlotFilter struct {
	RoadID   string
	DateFrom *time.Time
	DateTo   *time.Time
}

// SlotRepository is the capacity ledger. Reserve and Release are the only
// writers of reserved_count and both are single conditional updates: the
// database, not the application, arbitrates concurrent claims on a slot.
type SlotRepository interface {
	EnsureIndexes(ctx context.Context) error
	Ensure(ctx context.Context, roadID, roadName string, start, end time.Time, capacity int) (*model.Slot, error)
	FindByID(ctx context.Context, id string) (*model.Slot, error)
	FindByRoadAndWindow(ctx context.Context, roadID string, from, to time.Time) ([]*model.Slot, error)
	Reserve(ctx context.Context, slotID string, quantity int) error
	Release(ctx context.Context, slotID string, quantity int) error
	FindFiltered(ctx context.Context, filter SlotFilter, limit int, offset int64) ([]*model.Slot, error)
	CountFiltered(ctx context.Context, filter SlotFilter) (int64, error)
	UpdateCapacity(ctx context.Context, id string, capacity int) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	TotalReserved(ctx context.Context) (int64, error)
}

type mongoSlotRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSlotRepository(cfg *config.Config) SlotRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoSlotRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// EnsureIndexes creates the unique (road_id, start_time) index that backs
// lazy slot materialization: two concurrent Ensure calls for the same bucket
// resolve to a single document.
func (r *mongoSlotRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "road_id", Value: 1}, {Key: "start_time", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "start_time", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create slot indexes: %w", err)
	}
	return nil
}

// Ensure returns the slot for (roadID, start), creating it from the road's
// baseline capacity if this bucket has never been booked.
func (r *mongoSlotRepository) Ensure(ctx context.Context, roadID, roadName string, start, end time.Time, capacity int) (*model.Slot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"road_id": roadID, "start_time": start}
	update := bson.M{
		"$setOnInsert": bson.M{
			"road_id":        roadID,
			"road_name":      roadName,
			"start_time":     start,
			"end_time":       end,
			"capacity":       capacity,
			"reserved_count": 0,
			"created_at":     time.Now().UTC().Truncate(time.Millisecond),
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var slot model.Slot
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&slot)
	if mongo.IsDuplicateKeyError(err) {
		// Lost the materialization race; the winner's document is there now.
		err = r.collection.FindOne(ctx, filter).Decode(&slot)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to ensure slot: %w", err)
	}
	return &slot, nil
}

func (r *mongoSlotRepository) FindByID(ctx context.Context, id string) (*model.Slot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", slotserrors.ErrInvalidID, id)
	}

	var slot model.Slot
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&slot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, slotserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find slot: %w", err)
	}
	return &slot, nil
}

func (r *mongoSlotRepository) FindByRoadAndWindow(ctx context.Context, roadID string, from, to time.Time) ([]*model.Slot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"road_id":    roadID,
		"start_time": bson.M{"$gte": from, "$lt": to},
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []*model.Slot
	if err = cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode slots: %w", err)
	}
	return slots, nil
}

// Reserve applies the capacity check and the increment in one conditional
// update. Two concurrent reservations against the last unit cannot both
// match the filter, which is the system's core mutual-exclusion guarantee.
func (r *mongoSlotRepository) Reserve(ctx context.Context, slotID string, quantity int) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(slotID)
	if err != nil {
		return fmt.Errorf("%w: %s", slotserrors.ErrInvalidID, slotID)
	}

	filter := bson.M{
		"_id": objectID,
		"$expr": bson.M{
			"$lte": bson.A{
				bson.M{"$add": bson.A{"$reserved_count", quantity}},
				"$capacity",
			},
		},
	}
	update := bson.M{"$inc": bson.M{"reserved_count": quantity}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to reserve slot: %w", err)
	}
	if result.MatchedCount == 0 {
		// Filter misses both for a missing slot and a full one; look once
		// more to tell the two apart.
		count, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": objectID})
		if countErr != nil {
			return fmt.Errorf("failed to check slot existence: %w", countErr)
		}
		if count == 0 {
			return slotserrors.ErrNotFound
		}
		return slotserrors.ErrSlotFull
	}
	return nil
}

// Release returns quantity units to the slot. The pipeline update floors
// reserved_count at zero; under correct operation the floor never engages,
// but corrupted data must not drive the counter negative.
func (r *mongoSlotRepository) Release(ctx context.Context, slotID string, quantity int) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(slotID)
	if err != nil {
		return fmt.Errorf("%w: %s", slotserrors.ErrInvalidID, slotID)
	}

	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"reserved_count": bson.M{
				"$max": bson.A{
					0,
					bson.M{"$subtract": bson.A{"$reserved_count", quantity}},
				},
			},
		}}},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to release slot: %w", err)
	}
	if result.MatchedCount == 0 {
		return slotserrors.ErrNotFound
	}
	return nil
}

func (r *mongoSlotRepository) buildFilter(filter SlotFilter) bson.M {
	query := bson.M{}
	if filter.RoadID != "" {
		query["road_id"] = filter.RoadID
	}
	if filter.DateFrom != nil || filter.DateTo != nil {
		timeFilter := bson.M{}
		if filter.DateFrom != nil {
			timeFilter["$gte"] = *filter.DateFrom
		}
		if filter.DateTo != nil {
			timeFilter["$lte"] = *filter.DateTo
		}
		query["start_time"] = timeFilter
	}
	return query
}

func (r *mongoSlotRepository) FindFiltered(ctx context.Context, filter SlotFilter, limit int, offset int64) ([]*model.Slot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, r.buildFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []*model.Slot
	if err = cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode slots: %w", err)
	}
	return slots, nil
}

func (r *mongoSlotRepository) CountFiltered(ctx context.Context, filter SlotFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, r.buildFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count slots: %w", err)
	}
	return count, nil
}

// UpdateCapacity changes a slot's total capacity. The conditional filter
// rejects any value below the current reserved count so the store invariant
// survives admin edits.
func (r *mongoSlotRepository) UpdateCapacity(ctx context.Context, id string, capacity int) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", slotserrors.ErrInvalidID, id)
	}

	filter := bson.M{
		"_id":            objectID,
		"reserved_count": bson.M{"$lte": capacity},
	}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"capacity": capacity}})
	if err != nil {
		return fmt.Errorf("failed to update slot capacity: %w", err)
	}
	if result.MatchedCount == 0 {
		count, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": objectID})
		if countErr != nil {
			return fmt.Errorf("failed to check slot existence: %w", countErr)
		}
		if count == 0 {
			return slotserrors.ErrNotFound
		}
		return slotserrors.ErrCapacityBelowReserved
	}
	return nil
}

func (r *mongoSlotRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", slotserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}
	if result.DeletedCount == 0 {
		return slotserrors.ErrNotFound
	}
	return nil
}

func (r *mongoSlotRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count slots: %w", err)
	}
	return count, nil
}

func (r *mongoSlotRepository) TotalReserved(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$reserved_count"},
		}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate reserved capacity: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total int64 `bson:"total"`
	}
	if err = cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("failed to decode reserved capacity: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}
