package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tool-pulse/models"
)

type SentimentRunRepository struct {
	col *mongo.Collection
}

func NewSentimentRunRepository(db *mongo.Database) *SentimentRunRepository {
	return &SentimentRunRepository{col: db.Collection("sentiment_runs")}
}

// Insert appends one run and returns it with its generated id.
// Runs are never updated or deleted.
func (r *SentimentRunRepository) Insert(ctx context.Context, run models.SentimentRun) (*models.SentimentRun, error) {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	res, err := r.col.InsertOne(ctx, run)
	if err != nil {
		return nil, err
	}
	run.ID = res.InsertedID.(primitive.ObjectID)
	return &run, nil
}

// LatestPerSource scans newest-first and keeps the first run seen per
// source. Derived view over the append-only log; there is no mutable
// "current" record to keep in sync.
func (r *SentimentRunRepository) LatestPerSource(ctx context.Context, subjectID primitive.ObjectID) (map[string]models.SentimentRun, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"subject_id": subjectID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	latest := make(map[string]models.SentimentRun)
	for cur.Next(ctx) {
		var run models.SentimentRun
		if err := cur.Decode(&run); err != nil {
			return nil, err
		}
		if _, ok := latest[run.Source]; !ok {
			latest[run.Source] = run
		}
		if len(latest) == len(models.AllSources) {
			break
		}
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return latest, nil
}
