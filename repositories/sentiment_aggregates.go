package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tool-pulse/models"
)

type SentimentAggregateRepository struct {
	col *mongo.Collection
}

func NewSentimentAggregateRepository(db *mongo.Database) *SentimentAggregateRepository {
	return &SentimentAggregateRepository{col: db.Collection("sentiment_aggregates")}
}

// Insert appends one aggregate and returns it with its generated id.
func (r *SentimentAggregateRepository) Insert(ctx context.Context, agg models.SentimentAggregate) (*models.SentimentAggregate, error) {
	if agg.CreatedAt.IsZero() {
		agg.CreatedAt = time.Now().UTC()
	}
	res, err := r.col.InsertOne(ctx, agg)
	if err != nil {
		return nil, err
	}
	agg.ID = res.InsertedID.(primitive.ObjectID)
	return &agg, nil
}

// Latest returns the most recent aggregate for a subject, or nil when the
// subject has no history yet.
func (r *SentimentAggregateRepository) Latest(ctx context.Context, subjectID primitive.ObjectID) (*models.SentimentAggregate, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var agg models.SentimentAggregate
	err := r.col.FindOne(ctx, bson.M{"subject_id": subjectID}, opts).Decode(&agg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &agg, nil
}

// History returns aggregates most-recent-first, up to limit.
func (r *SentimentAggregateRepository) History(ctx context.Context, subjectID primitive.ObjectID, limit int) ([]models.SentimentAggregate, error) {
	if limit <= 0 {
		limit = 20
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, bson.M{"subject_id": subjectID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.SentimentAggregate
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
