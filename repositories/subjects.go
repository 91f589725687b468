package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tool-pulse/models"
)

type SubjectRepository struct {
	col *mongo.Collection
}

func NewSubjectRepository(db *mongo.Database) *SubjectRepository {
	return &SubjectRepository{col: db.Collection("subjects")}
}

// UpsertBySlug inserts or refreshes a subject keyed by its slug and returns
// the stored document.
func (r *SubjectRepository) UpsertBySlug(ctx context.Context, s *models.Subject) (*models.Subject, error) {
	filter := bson.M{"slug": s.Slug}
	update := bson.M{"$set": bson.M{
		"name":          s.Name,
		"slug":          s.Slug,
		"search_phrase": s.SearchPhrase,
	}}
	opts := options.Update().SetUpsert(true)
	if _, err := r.col.UpdateOne(ctx, filter, update, opts); err != nil {
		return nil, err
	}
	return r.GetBySlug(ctx, s.Slug)
}

func (r *SubjectRepository) GetBySlug(ctx context.Context, slug string) (*models.Subject, error) {
	var out models.Subject
	if err := r.col.FindOne(ctx, bson.M{"slug": slug}).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *SubjectRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Subject, error) {
	var out models.Subject
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
