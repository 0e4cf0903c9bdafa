package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	roadserrors "roadbook/internal/roads/errors"
	"roadbook/pkg/config"
	"roadbook/pkg/model"
)

const (
	CollectionName = "Roads"
)

type RoadRepository interface {
	Create(ctx context.Context, road *model.Road) error
	FindByID(ctx context.Context, id string) (*model.Road, error)
	FindAll(ctx context.Context, search string, limit int, offset int64) ([]*model.Road, error)
	CountAll(ctx context.Context, search string) (int64, error)
	Update(ctx context.Context, id string, road *model.Road) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type mongoRoadRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoRoadRepository(cfg *config.Config) RoadRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRoadRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoRoadRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoRoadRepository) Create(ctx context.Context, road *model.Road) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	road.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, road)
	if err != nil {
		return fmt.Errorf("failed to create road: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		road.ID = oid.Hex()
	}
	return nil
}

func (r *mongoRoadRepository) FindByID(ctx context.Context, id string) (*model.Road, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", roadserrors.ErrInvalidID, id)
	}

	var road model.Road
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&road)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, roadserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find road: %w", err)
	}
	return &road, nil
}

// searchFilter matches road names case-insensitively. The search term is
// quoted so user input cannot inject regex metacharacters.
func searchFilter(search string) bson.M {
	if search == "" {
		return bson.M{}
	}
	return bson.M{"name": primitive.Regex{
		Pattern: regexp.QuoteMeta(search),
		Options: "i",
	}}
}

func (r *mongoRoadRepository) FindAll(ctx context.Context, search string, limit int, offset int64) ([]*model.Road, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, searchFilter(search), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find roads: %w", err)
	}
	defer cursor.Close(ctx)

	var roads []*model.Road
	if err = cursor.All(ctx, &roads); err != nil {
		return nil, fmt.Errorf("failed to decode roads: %w", err)
	}
	return roads, nil
}

func (r *mongoRoadRepository) CountAll(ctx context.Context, search string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, searchFilter(search))
	if err != nil {
		return 0, fmt.Errorf("failed to count roads: %w", err)
	}
	return count, nil
}

func (r *mongoRoadRepository) Update(ctx context.Context, id string, road *model.Road) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", roadserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"name":            road.Name,
			"road_type":       road.RoadType,
			"country":         road.Country,
			"region":          road.Region,
			"hourly_capacity": road.HourlyCapacity,
			"geometry":        road.Geometry,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update road: %w", err)
	}
	if result.MatchedCount == 0 {
		return roadserrors.ErrNotFound
	}
	return nil
}

func (r *mongoRoadRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", roadserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete road: %w", err)
	}
	if result.DeletedCount == 0 {
		return roadserrors.ErrNotFound
	}
	return nil
}

func (r *mongoRoadRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count roads: %w", err)
	}
	return count, nil
}
