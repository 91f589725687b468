package dto

import (
	"time"

	"tool-pulse/models"
)

// SubjectDTO exposes the minimal subject fields needed for API consumers
// ID is a hex string to keep transport simple
type SubjectDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	SearchPhrase string `json:"search_phrase,omitempty"`
}

func NewSubjectDTO(s models.Subject) SubjectDTO {
	return SubjectDTO{
		ID:           s.ID.Hex(),
		Name:         s.Name,
		Slug:         s.Slug,
		SearchPhrase: s.SearchPhrase,
	}
}

// SentimentAggregateDTO flattens models.SentimentAggregate for transport.
// Per-source scores stay nullable so clients can tell "source failed" from 0.
type SentimentAggregateDTO struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	SubjectID     string    `json:"subject_id"`
	RedditScore   *float64  `json:"reddit_score"`
	SocialScore   *float64  `json:"social_score"`
	VideoScore    *float64  `json:"video_score"`
	FinalScore    float64   `json:"final_score"`
	FinalLabel    string    `json:"final_label"`
	Narrative     string    `json:"narrative"`
	Positives     []string  `json:"positives"`
	Negatives     []string  `json:"negatives"`
	Features      []string  `json:"features"`
	RubricVersion string    `json:"rubric_version"`
}

func NewSentimentAggregateDTO(a models.SentimentAggregate) SentimentAggregateDTO {
	return SentimentAggregateDTO{
		ID:            a.ID.Hex(),
		CreatedAt:     a.CreatedAt,
		SubjectID:     a.SubjectID.Hex(),
		RedditScore:   a.ForumScore,
		SocialScore:   a.SocialScore,
		VideoScore:    a.VideoScore,
		FinalScore:    a.FinalScore,
		FinalLabel:    a.FinalLabel,
		Narrative:     a.Narrative,
		Positives:     a.Positives,
		Negatives:     a.Negatives,
		Features:      a.Features,
		RubricVersion: a.RubricVersion,
	}
}

// MetaReviewDTO mirrors the reconciliation block on social runs.
type MetaReviewDTO struct {
	SourceScore      float64 `json:"source_provided_score"`
	ReconciledScore  float64 `json:"reconciled_score"`
	AdjustmentReason string  `json:"reason_for_adjustment"`
	Confidence       float64 `json:"confidence"`
	ItemCount        int     `json:"item_count"`
}

// SentimentRunDTO exposes one per-source run, summary fields flattened.
type SentimentRunDTO struct {
	ID                string             `json:"id"`
	CreatedAt         time.Time          `json:"created_at"`
	SubjectID         string             `json:"subject_id"`
	Source            string             `json:"source"`
	Score             float64            `json:"score"`
	Label             string             `json:"label"`
	Summary           string             `json:"summary"`
	Positives         []string           `json:"positives"`
	Negatives         []string           `json:"negatives"`
	Features          []string           `json:"features"`
	Subscores         map[string]float64 `json:"subscores,omitempty"`
	MetaReview        *MetaReviewDTO     `json:"meta_review,omitempty"`
	WindowStart       time.Time          `json:"window_start"`
	WindowEnd         time.Time          `json:"window_end"`
	ActualWindowStart *time.Time         `json:"actual_window_start,omitempty"`
	ActualWindowEnd   *time.Time         `json:"actual_window_end,omitempty"`
	ModelName         string             `json:"model_name"`
}

func NewSentimentRunDTO(r models.SentimentRun) SentimentRunDTO {
	d := SentimentRunDTO{
		ID:                r.ID.Hex(),
		CreatedAt:         r.CreatedAt,
		SubjectID:         r.SubjectID.Hex(),
		Source:            r.Source,
		Score:             r.Summary.Score,
		Label:             r.Summary.Label,
		Summary:           r.Summary.Summary,
		Positives:         r.Summary.Positives,
		Negatives:         r.Summary.Negatives,
		Features:          r.Summary.Features,
		Subscores:         r.Summary.Subscores,
		WindowStart:       r.WindowStart,
		WindowEnd:         r.WindowEnd,
		ActualWindowStart: r.ActualWindowStart,
		ActualWindowEnd:   r.ActualWindowEnd,
		ModelName:         r.ModelName,
	}
	if mr := r.Summary.MetaReview; mr != nil {
		d.MetaReview = &MetaReviewDTO{
			SourceScore:      mr.SourceScore,
			ReconciledScore:  mr.ReconciledScore,
			AdjustmentReason: mr.AdjustmentReason,
			Confidence:       mr.Confidence,
			ItemCount:        mr.ItemCount,
		}
	}
	return d
}
