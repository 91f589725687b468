package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"tool-pulse/aggregator"
	"tool-pulse/collectors"
	"tool-pulse/logger"
	"tool-pulse/models"
	"tool-pulse/summarizer"
)

// PersistenceError means the store rejected a write.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Collector matches collectors.Collector; declared here so tests can fake
// sources without touching browsers or APIs.
type Collector interface {
	Source() string
	Collect(ctx context.Context, subject models.Subject) (*collectors.RawSourceData, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, source, subjectName string, raw *collectors.RawSourceData) (*models.SentimentSummary, *summarizer.RequestLog, error)
}

type RunStore interface {
	Insert(ctx context.Context, run models.SentimentRun) (*models.SentimentRun, error)
}

type AggregateStore interface {
	Insert(ctx context.Context, agg models.SentimentAggregate) (*models.SentimentAggregate, error)
}

type AILogStore interface {
	Insert(ctx context.Context, log models.AILog) (*mongo.InsertOneResult, error)
}

// SourceResult reports one source sub-pipeline's outcome to the caller.
type SourceResult struct {
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
	Score   *float64 `json:"score,omitempty"`
}

type AggregateResult struct {
	FinalScore float64 `json:"final_score"`
	FinalLabel string  `json:"final_label"`
}

// JobResult is the orchestrator's final output for one subject.
type JobResult struct {
	SubjectID   string                  `json:"subject_id"`
	SubjectName string                  `json:"subject_name"`
	Success     bool                    `json:"success"`
	Sources     map[string]SourceResult `json:"sources"`
	Aggregate   *AggregateResult        `json:"aggregate,omitempty"`
	Errors      []string                `json:"errors"`
}

// Runner owns the lifecycle of one run: collect, summarize and store per
// source, then aggregate whatever succeeded and store that. Each source
// sub-pipeline is isolated; a failure there is recorded, never fatal.
type Runner struct {
	collectors []Collector
	summarizer Summarizer
	runs       RunStore
	aggregates AggregateStore
	aiLogs     AILogStore
	events     EventPublisher
}

func NewRunner(cols []Collector, sum Summarizer, runs RunStore, aggs AggregateStore, aiLogs AILogStore, events EventPublisher) *Runner {
	return &Runner{
		collectors: cols,
		summarizer: sum,
		runs:       runs,
		aggregates: aggs,
		aiLogs:     aiLogs,
		events:     events,
	}
}

type sourceOutcome struct {
	summary *models.SentimentSummary
	run     *models.SentimentRun
	err     error
}

// Run executes the full pipeline for one subject and blocks until done.
// The three source sub-pipelines run concurrently; aggregation is the join
// point and waits for all of them to reach a terminal state.
func (r *Runner) Run(ctx context.Context, subject models.Subject) JobResult {
	result := JobResult{
		SubjectID:   subject.ID.Hex(),
		SubjectName: subject.Name,
		Sources:     make(map[string]SourceResult, len(r.collectors)),
	}

	logger.InfoWithFields("sentiment run started", logger.Fields{
		"subject": subject.Slug,
		"sources": len(r.collectors),
	})

	outcomes := make(map[string]sourceOutcome, len(r.collectors))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, col := range r.collectors {
		wg.Add(1)
		go func(col Collector) {
			defer wg.Done()
			out := r.runSource(ctx, subject, col)
			mu.Lock()
			outcomes[col.Source()] = out
			mu.Unlock()
		}(col)
	}
	wg.Wait()

	summaries := make(map[string]*models.SentimentSummary)
	for source, out := range outcomes {
		if out.err != nil {
			result.Sources[source] = SourceResult{Success: false, Error: out.err.Error()}
			result.Errors = append(result.Errors, out.err.Error())
			continue
		}
		score := out.summary.Score
		result.Sources[source] = SourceResult{Success: true, Score: &score}
		summaries[source] = out.summary
	}

	agg := aggregator.Aggregate(aggregator.Input{
		Forum:  summaries[models.SourceForum],
		Social: summaries[models.SourceSocial],
		Video:  summaries[models.SourceVideo],
	})
	agg.SubjectID = subject.ID
	agg.CreatedAt = time.Now().UTC()

	stored, err := r.aggregates.Insert(ctx, agg)
	if err != nil {
		perr := &PersistenceError{Op: "aggregate", Err: err}
		result.Errors = append(result.Errors, perr.Error())
		result.Success = false
		logger.ErrorWithFields("aggregate store failed", logger.Fields{
			"subject": subject.Slug,
			"error":   err.Error(),
		})
		return result
	}

	result.Success = true
	result.Aggregate = &AggregateResult{FinalScore: stored.FinalScore, FinalLabel: stored.FinalLabel}
	r.publishAggregateCompleted(ctx, subject, stored, len(summaries))

	logger.InfoWithFields("sentiment run finished", logger.Fields{
		"subject":     subject.Slug,
		"final_score": stored.FinalScore,
		"final_label": stored.FinalLabel,
		"failed":      len(result.Errors),
	})
	return result
}

// runSource is one source's sub-pipeline: collect, summarize, store. Any
// error is returned to be recorded; siblings never see it.
func (r *Runner) runSource(ctx context.Context, subject models.Subject, col Collector) sourceOutcome {
	source := col.Source()

	raw, err := col.Collect(ctx, subject)
	if err != nil {
		return sourceOutcome{err: err}
	}

	summary, reqLog, err := r.summarizer.Summarize(ctx, source, subject.Name, raw)
	r.recordAILog(ctx, subject, source, reqLog, err)
	if err != nil {
		return sourceOutcome{err: err}
	}

	run := buildRun(subject, source, raw, summary, reqLog)
	stored, err := r.runs.Insert(ctx, run)
	if err != nil {
		return sourceOutcome{err: &PersistenceError{Op: "run " + source, Err: err}}
	}

	r.publishRunCompleted(ctx, subject, stored)
	return sourceOutcome{summary: summary, run: stored}
}

func buildRun(subject models.Subject, source string, raw *collectors.RawSourceData, summary *models.SentimentSummary, reqLog *summarizer.RequestLog) models.SentimentRun {
	start, end := raw.Window()
	run := models.SentimentRun{
		CreatedAt:     time.Now().UTC(),
		SubjectID:     subject.ID,
		Source:        source,
		Summary:       *summary,
		WindowStart:   start,
		WindowEnd:     end,
		SchemaVersion: summarizer.SchemaVersion,
	}
	if reqLog != nil {
		run.ModelName = reqLog.ModelName
	}
	if t, ok := raw.Meta[collectors.MetaActualStart].(time.Time); ok {
		run.ActualWindowStart = &t
	}
	if t, ok := raw.Meta[collectors.MetaActualEnd].(time.Time); ok {
		run.ActualWindowEnd = &t
	}
	return run
}

// recordAILog persists the LLM call log; failures here only warn, they do
// not affect the source outcome.
func (r *Runner) recordAILog(ctx context.Context, subject models.Subject, source string, reqLog *summarizer.RequestLog, sumErr error) {
	if r.aiLogs == nil || reqLog == nil {
		return
	}
	entry := models.AILog{
		SubjectID:      subject.ID,
		Source:         source,
		Purpose:        "summarize",
		ModelName:      reqLog.ModelName,
		ModelVersion:   reqLog.ModelVersion,
		InputTokens:    reqLog.InputTokens,
		OutputTokens:   reqLog.OutputTokens,
		TotalTokens:    reqLog.TotalTokens,
		DurationMs:     reqLog.LatencyMs,
		InputPrompt:    reqLog.Prompt,
		OutputResponse: reqLog.Response,
		RequestedAt:    reqLog.GeneratedAt,
		CompletedAt:    time.Now().UTC(),
	}
	if sumErr != nil {
		msg := sumErr.Error()
		entry.ErrorMessage = &msg
	}
	if _, err := r.aiLogs.Insert(ctx, entry); err != nil {
		logger.WarnWithFields("ai log insert failed", logger.Fields{
			"subject": subject.Slug,
			"source":  source,
			"error":   err.Error(),
		})
	}
}
