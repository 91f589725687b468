package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Source tags for the three collectors. Persisted as-is, so these values
// must stay stable across releases.
const (
	SourceForum  = "reddit"
	SourceSocial = "social"
	SourceVideo  = "video"
)

// AllSources in the order the aggregate reports them.
var AllSources = []string{SourceForum, SourceSocial, SourceVideo}

// List caps for the narrative fields of a summary.
const (
	MaxPositives = 5
	MaxNegatives = 5
	MaxFeatures  = 10
)

// MetaReview 는 social 소스에 한해 소스 제공 점수를 루브릭과
// 대조(meta-review)한 결과다.
type MetaReview struct {
	SourceScore      float64 `bson:"source_score" json:"source_score"`
	ReconciledScore  float64 `bson:"reconciled_score" json:"reconciled_score"`
	AdjustmentReason string  `bson:"adjustment_reason" json:"adjustment_reason"`
	Confidence       float64 `bson:"confidence" json:"confidence"`
	ItemCount        int     `bson:"item_count" json:"item_count"`
}

// SentimentSummary is the validated, structured output of one summarization
// call. Score is always in [0,10] with one decimal and always consistent
// with Label under the rubric band table. For the social source the
// reconciled score, not the raw one, is what lands in Score.
type SentimentSummary struct {
	Score      float64            `bson:"score" json:"score"`
	Label      string             `bson:"label" json:"label"`
	Summary    string             `bson:"summary" json:"summary"`
	Positives  []string           `bson:"positives" json:"positives"`
	Negatives  []string           `bson:"negatives" json:"negatives"`
	Features   []string           `bson:"features" json:"features"`
	Subscores  map[string]float64 `bson:"subscores,omitempty" json:"subscores,omitempty"`
	MetaReview *MetaReview        `bson:"meta_review,omitempty" json:"meta_review,omitempty"`
}

// SentimentRun stores one per-source summarization result (append-only).
// Never updated or deleted; a subject accumulates unbounded history.
// Collection: sentiment_runs
type SentimentRun struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	SubjectID primitive.ObjectID `bson:"subject_id" json:"subject_id"`
	Source    string             `bson:"source" json:"source"`

	Summary SentimentSummary `bson:"summary" json:"summary"`

	// Declared collection window (from config lookback) vs. the window the
	// collector actually observed in the data.
	WindowStart       time.Time  `bson:"window_start" json:"window_start"`
	WindowEnd         time.Time  `bson:"window_end" json:"window_end"`
	ActualWindowStart *time.Time `bson:"actual_window_start,omitempty" json:"actual_window_start,omitempty"`
	ActualWindowEnd   *time.Time `bson:"actual_window_end,omitempty" json:"actual_window_end,omitempty"`

	SchemaVersion string `bson:"schema_version" json:"schema_version"`
	ModelName     string `bson:"model_name" json:"model_name"`
}
