package pipeline

import (
	"context"

	"tool-pulse/eventbus"
	"tool-pulse/events"
	"tool-pulse/logger"
	"tool-pulse/models"
)

// EventPublisher is satisfied by eventbus.Publisher; nil disables
// publishing. Event delivery is best-effort and never fails a run.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event eventbus.Event) error
}

func (r *Runner) publishRunCompleted(ctx context.Context, subject models.Subject, run *models.SentimentRun) {
	if r.events == nil {
		return
	}
	payload := events.SentimentRunCompletedEvent{
		BaseEvent: events.NewBase(events.SentimentRunCompleted, "worker"),
		SubjectID: subject.ID,
		RunID:     run.ID,
		SourceTag: run.Source,
		Score:     run.Summary.Score,
		Label:     run.Summary.Label,
	}
	r.publish(ctx, subject, payload.ID, payload)
}

func (r *Runner) publishAggregateCompleted(ctx context.Context, subject models.Subject, agg *models.SentimentAggregate, sourceCount int) {
	if r.events == nil {
		return
	}
	payload := events.SentimentAggregateCompletedEvent{
		BaseEvent:   events.NewBase(events.SentimentAggregateCompleted, "worker"),
		SubjectID:   subject.ID,
		AggregateID: agg.ID,
		FinalScore:  agg.FinalScore,
		FinalLabel:  agg.FinalLabel,
		SourceCount: sourceCount,
	}
	r.publish(ctx, subject, payload.ID, payload)
}

func (r *Runner) publish(ctx context.Context, subject models.Subject, id string, payload any) {
	ev, err := eventbus.NewEvent(id, payload)
	if err != nil {
		logger.WarnWithFields("event marshal failed", logger.Fields{
			"subject": subject.Slug,
			"error":   err.Error(),
		})
		return
	}
	if err := r.events.Publish(ctx, eventbus.TopicSentiment, ev); err != nil {
		logger.WarnWithFields("event publish failed", logger.Fields{
			"subject": subject.Slug,
			"error":   err.Error(),
		})
	}
}
