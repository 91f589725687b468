package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SentimentAggregate combines the per-source runs of one pipeline execution
// into a single weighted result (append-only, like runs).
// Collection: sentiment_aggregates
type SentimentAggregate struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	SubjectID primitive.ObjectID `bson:"subject_id" json:"subject_id"`

	// Per-source scores; nil means that source's sub-pipeline failed and
	// contributed nothing to the weighted mean.
	ForumScore  *float64 `bson:"reddit_score" json:"reddit_score"`
	SocialScore *float64 `bson:"social_score" json:"social_score"`
	VideoScore  *float64 `bson:"video_score" json:"video_score"`

	FinalScore float64 `bson:"final_score" json:"final_score"`
	FinalLabel string  `bson:"final_label" json:"final_label"`

	Narrative string   `bson:"narrative" json:"narrative"`
	Positives []string `bson:"positives" json:"positives"`
	Negatives []string `bson:"negatives" json:"negatives"`
	Features  []string `bson:"features" json:"features"`

	RubricVersion string `bson:"rubric_version" json:"rubric_version"`
}
