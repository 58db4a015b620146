// AngelaMos | 2026
// repository.go

package activity

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "activities"

// DayFormat keys CountPerDay results.
const DayFormat = "2006-01-02"

type Repository interface {
	Insert(ctx context.Context, a *Activity) error
	ListByOrganization(
		ctx context.Context,
		orgID string,
		offset, limit int,
	) ([]Activity, error)
	CountByOrganization(ctx context.Context, orgID string) (int, error)
	CountSince(ctx context.Context, orgID string, since time.Time) (int, error)
	CountPerDay(
		ctx context.Context,
		orgID string,
		from time.Time,
	) (map[string]int, error)
	DistinctActorsSince(
		ctx context.Context,
		orgID string,
		since time.Time,
	) (int, error)
}

type repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) Repository {
	return &repository{collection: db.Collection(collectionName)}
}

// EnsureIndexes creates the feed and per-actor indexes if missing.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(collectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "organizationId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create activity indexes: %w", err)
	}
	return nil
}

func (r *repository) Insert(ctx context.Context, a *Activity) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.Details == nil {
		a.Details = map[string]any{}
	}

	res, err := r.collection.InsertOne(ctx, a)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		a.ID = oid
	}

	return nil
}

func (r *repository) ListByOrganization(
	ctx context.Context,
	orgID string,
	offset, limit int,
) ([]Activity, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cur, err := r.collection.Find(ctx, bson.M{"organizationId": orgID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	activities := []Activity{}
	if err := cur.All(ctx, &activities); err != nil {
		return nil, fmt.Errorf("decode activities: %w", err)
	}

	return activities, nil
}

func (r *repository) CountByOrganization(ctx context.Context, orgID string) (int, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"organizationId": orgID})
	if err != nil {
		return 0, fmt.Errorf("count activities: %w", err)
	}
	return int(n), nil
}

func (r *repository) CountSince(
	ctx context.Context,
	orgID string,
	since time.Time,
) (int, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{
		"organizationId": orgID,
		"createdAt":      bson.M{"$gte": since},
	})
	if err != nil {
		return 0, fmt.Errorf("count activities since: %w", err)
	}
	return int(n), nil
}

func (r *repository) CountPerDay(
	ctx context.Context,
	orgID string,
	from time.Time,
) (map[string]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"organizationId": orgID,
			"createdAt":      bson.M{"$gte": from},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format": "%Y-%m-%d",
				"date":   "$createdAt",
			}},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cur, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate activity per day: %w", err)
	}

	var rows []struct {
		Day   string `bson:"_id"`
		Count int    `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode activity per day: %w", err)
	}

	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Day] = row.Count
	}

	return out, nil
}

func (r *repository) DistinctActorsSince(
	ctx context.Context,
	orgID string,
	since time.Time,
) (int, error) {
	ids, err := r.collection.Distinct(ctx, "userId", bson.M{
		"organizationId": orgID,
		"createdAt":      bson.M{"$gte": since},
	})
	if err != nil {
		return 0, fmt.Errorf("distinct activity actors: %w", err)
	}
	return len(ids), nil
}
