package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"tool-pulse/dto"
	"tool-pulse/models"
	"tool-pulse/pipeline"
	"tool-pulse/repositories"
)

// ErrSubjectNotFound is returned when a slug resolves to no subject.
var ErrSubjectNotFound = errors.New("subject not found")

// SentimentService encapsulates business logic for sentiment reads and
// pipeline triggering, plus DTO mapping.
type SentimentService struct {
	subjects   *repositories.SubjectRepository
	runs       *repositories.SentimentRunRepository
	aggregates *repositories.SentimentAggregateRepository
	runner     *pipeline.Runner
}

func NewSentimentService(
	subjects *repositories.SubjectRepository,
	runs *repositories.SentimentRunRepository,
	aggregates *repositories.SentimentAggregateRepository,
	runner *pipeline.Runner,
) *SentimentService {
	return &SentimentService{
		subjects:   subjects,
		runs:       runs,
		aggregates: aggregates,
		runner:     runner,
	}
}

func (s *SentimentService) subjectBySlug(ctx context.Context, slug string) (*models.Subject, error) {
	subject, err := s.subjects.GetBySlug(ctx, slug)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrSubjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return subject, nil
}

// Latest returns the most recent aggregate for a subject, with the latest
// per-source runs attached so clients get the full picture in one call.
func (s *SentimentService) Latest(ctx context.Context, slug string) (*dto.SentimentAggregateDTO, []dto.SentimentRunDTO, error) {
	subject, err := s.subjectBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}

	agg, err := s.aggregates.Latest(ctx, subject.ID)
	if err != nil {
		return nil, nil, err
	}
	if agg == nil {
		return nil, nil, nil
	}

	latest, err := s.runs.LatestPerSource(ctx, subject.ID)
	if err != nil {
		return nil, nil, err
	}
	runs := make([]dto.SentimentRunDTO, 0, len(latest))
	for _, source := range models.AllSources {
		if run, ok := latest[source]; ok {
			runs = append(runs, dto.NewSentimentRunDTO(run))
		}
	}

	d := dto.NewSentimentAggregateDTO(*agg)
	return &d, runs, nil
}

// History returns past aggregates for a subject, most recent first.
func (s *SentimentService) History(ctx context.Context, slug string, limit int) ([]dto.SentimentAggregateDTO, error) {
	subject, err := s.subjectBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	items, err := s.aggregates.History(ctx, subject.ID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SentimentAggregateDTO, 0, len(items))
	for _, a := range items {
		out = append(out, dto.NewSentimentAggregateDTO(a))
	}
	return out, nil
}

// ShouldRun reports whether enough time has passed since the subject's last
// aggregate. A subject with no aggregate yet is always due.
func (s *SentimentService) ShouldRun(ctx context.Context, subject models.Subject, rerunDays int) (bool, error) {
	if rerunDays <= 0 {
		return true, nil
	}
	latest, err := s.aggregates.Latest(ctx, subject.ID)
	if err != nil {
		return false, err
	}
	if latest == nil {
		return true, nil
	}
	due := latest.CreatedAt.Add(time.Duration(rerunDays) * 24 * time.Hour)
	return time.Now().UTC().After(due), nil
}

// Trigger runs the full pipeline for the subject behind the slug and blocks
// until the run finishes.
func (s *SentimentService) Trigger(ctx context.Context, slug string) (*pipeline.JobResult, error) {
	subject, err := s.subjectBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	result := s.runner.Run(ctx, *subject)
	return &result, nil
}

// RegisterSubject upserts a subject by slug so runs can be triggered for it.
func (s *SentimentService) RegisterSubject(ctx context.Context, name, slug, searchPhrase string) (*dto.SubjectDTO, error) {
	subject, err := s.subjects.UpsertBySlug(ctx, &models.Subject{
		Name:         name,
		Slug:         slug,
		SearchPhrase: searchPhrase,
	})
	if err != nil {
		return nil, err
	}
	d := dto.NewSubjectDTO(*subject)
	return &d, nil
}
