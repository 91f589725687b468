package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"tool-pulse/aggregator"
	"tool-pulse/collectors"
	"tool-pulse/models"
	"tool-pulse/summarizer"
)

type fakeCollector struct {
	source string
	err    error
}

func (f *fakeCollector) Source() string { return f.source }

func (f *fakeCollector) Collect(ctx context.Context, subject models.Subject) (*collectors.RawSourceData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &collectors.RawSourceData{
		Source:    f.source,
		SubjectID: subject.ID,
		Texts:     []string{"raw text from " + f.source},
		Meta:      map[string]any{},
	}, nil
}

type fakeSummarizer struct {
	scores map[string]float64
	errs   map[string]error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, source, subjectName string, raw *collectors.RawSourceData) (*models.SentimentSummary, *summarizer.RequestLog, error) {
	reqLog := &summarizer.RequestLog{ModelName: "fake-model"}
	if err := f.errs[source]; err != nil {
		return nil, reqLog, err
	}
	score := f.scores[source]
	return &models.SentimentSummary{Score: score, Label: "positive", Summary: "summary for " + source}, reqLog, nil
}

type fakeRunStore struct {
	inserted []models.SentimentRun
	errBy    map[string]error
}

func (f *fakeRunStore) Insert(ctx context.Context, run models.SentimentRun) (*models.SentimentRun, error) {
	if err := f.errBy[run.Source]; err != nil {
		return nil, err
	}
	run.ID = primitive.NewObjectID()
	f.inserted = append(f.inserted, run)
	return &run, nil
}

type fakeAggStore struct {
	inserted []models.SentimentAggregate
	err      error
}

func (f *fakeAggStore) Insert(ctx context.Context, agg models.SentimentAggregate) (*models.SentimentAggregate, error) {
	if f.err != nil {
		return nil, f.err
	}
	agg.ID = primitive.NewObjectID()
	f.inserted = append(f.inserted, agg)
	return &agg, nil
}

type fakeAILogStore struct {
	inserted []models.AILog
}

func (f *fakeAILogStore) Insert(ctx context.Context, log models.AILog) (*mongo.InsertOneResult, error) {
	f.inserted = append(f.inserted, log)
	return &mongo.InsertOneResult{}, nil
}

func testSubject() models.Subject {
	return models.Subject{ID: primitive.NewObjectID(), Name: "Acme", Slug: "acme"}
}

func allCollectors(forumErr error) []Collector {
	return []Collector{
		&fakeCollector{source: models.SourceForum, err: forumErr},
		&fakeCollector{source: models.SourceSocial},
		&fakeCollector{source: models.SourceVideo},
	}
}

func TestRunAllSourcesSucceed(t *testing.T) {
	runs := &fakeRunStore{}
	aggs := &fakeAggStore{}
	aiLogs := &fakeAILogStore{}
	sum := &fakeSummarizer{scores: map[string]float64{
		models.SourceForum:  8.0,
		models.SourceSocial: 8.0,
		models.SourceVideo:  8.0,
	}}
	r := NewRunner(allCollectors(nil), sum, runs, aggs, aiLogs, nil)

	result := r.Run(context.Background(), testSubject())

	assert.True(t, result.Success)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Sources, 3)
	for source, sr := range result.Sources {
		assert.True(t, sr.Success, source)
		require.NotNil(t, sr.Score)
		assert.Equal(t, 8.0, *sr.Score)
	}
	require.NotNil(t, result.Aggregate)
	assert.Equal(t, 8.0, result.Aggregate.FinalScore)
	assert.Equal(t, "very positive", result.Aggregate.FinalLabel)

	assert.Len(t, runs.inserted, 3)
	require.Len(t, aggs.inserted, 1)
	assert.Len(t, aiLogs.inserted, 3)
	assert.Equal(t, summarizer.SchemaVersion, runs.inserted[0].SchemaVersion)
	assert.Equal(t, "fake-model", runs.inserted[0].ModelName)
}

func TestRunPartialFailureStillAggregates(t *testing.T) {
	runs := &fakeRunStore{}
	aggs := &fakeAggStore{}
	collErr := &collectors.CollectionError{Source: models.SourceForum, Reason: "no qualifying answer within timeout"}
	sum := &fakeSummarizer{scores: map[string]float64{
		models.SourceSocial: 8.0,
		models.SourceVideo:  4.0,
	}}
	r := NewRunner(allCollectors(collErr), sum, runs, aggs, nil, nil)

	result := r.Run(context.Background(), testSubject())

	assert.True(t, result.Success)
	assert.False(t, result.Sources[models.SourceForum].Success)
	assert.NotEmpty(t, result.Sources[models.SourceForum].Error)
	assert.True(t, result.Sources[models.SourceSocial].Success)
	assert.True(t, result.Sources[models.SourceVideo].Success)
	assert.Len(t, result.Errors, 1)

	require.Len(t, aggs.inserted, 1)
	agg := aggs.inserted[0]
	assert.Nil(t, agg.ForumScore)
	require.NotNil(t, agg.SocialScore)
	require.NotNil(t, agg.VideoScore)
	assert.Equal(t, 6.0, agg.FinalScore)
	require.NotNil(t, result.Aggregate)
	assert.Equal(t, 6.0, result.Aggregate.FinalScore)
}

func TestRunSummarizationFailureIsIsolated(t *testing.T) {
	runs := &fakeRunStore{}
	aggs := &fakeAggStore{}
	aiLogs := &fakeAILogStore{}
	sum := &fakeSummarizer{
		scores: map[string]float64{models.SourceForum: 7.0, models.SourceVideo: 7.0},
		errs: map[string]error{models.SourceSocial: &summarizer.SummarizationError{
			Source: models.SourceSocial, Attempts: []string{"a", "b"}, Err: errors.New("both failed"),
		}},
	}
	r := NewRunner(allCollectors(nil), sum, runs, aggs, aiLogs, nil)

	result := r.Run(context.Background(), testSubject())

	assert.True(t, result.Success)
	assert.False(t, result.Sources[models.SourceSocial].Success)
	assert.Len(t, runs.inserted, 2)

	// the failed call is still logged, with its error recorded
	var failedLogs int
	for _, l := range aiLogs.inserted {
		if l.ErrorMessage != nil {
			failedLogs++
		}
	}
	assert.Equal(t, 1, failedLogs)
}

func TestRunStoreFailureFailsThatSourceOnly(t *testing.T) {
	runs := &fakeRunStore{errBy: map[string]error{models.SourceVideo: errors.New("write rejected")}}
	aggs := &fakeAggStore{}
	sum := &fakeSummarizer{scores: map[string]float64{
		models.SourceForum:  6.0,
		models.SourceSocial: 6.0,
		models.SourceVideo:  9.0,
	}}
	r := NewRunner(allCollectors(nil), sum, runs, aggs, nil, nil)

	result := r.Run(context.Background(), testSubject())

	assert.True(t, result.Success)
	assert.False(t, result.Sources[models.SourceVideo].Success)
	assert.Contains(t, result.Sources[models.SourceVideo].Error, "persist run")

	require.Len(t, aggs.inserted, 1)
	assert.Nil(t, aggs.inserted[0].VideoScore)
	assert.Equal(t, 6.0, aggs.inserted[0].FinalScore)
}

func TestRunAllSourcesFailStillStoresDegenerateAggregate(t *testing.T) {
	runs := &fakeRunStore{}
	aggs := &fakeAggStore{}
	collErr := errors.New("network down")
	cols := []Collector{
		&fakeCollector{source: models.SourceForum, err: collErr},
		&fakeCollector{source: models.SourceSocial, err: collErr},
		&fakeCollector{source: models.SourceVideo, err: collErr},
	}
	r := NewRunner(cols, &fakeSummarizer{}, runs, aggs, nil, nil)

	result := r.Run(context.Background(), testSubject())

	assert.True(t, result.Success)
	assert.Len(t, result.Errors, 3)
	require.Len(t, aggs.inserted, 1)
	assert.Equal(t, 0.0, aggs.inserted[0].FinalScore)
	assert.Equal(t, aggregator.UnknownLabel, aggs.inserted[0].FinalLabel)
}

func TestRunAggregateStoreFailureFailsJob(t *testing.T) {
	runs := &fakeRunStore{}
	aggs := &fakeAggStore{err: errors.New("store unavailable")}
	sum := &fakeSummarizer{scores: map[string]float64{
		models.SourceForum:  7.0,
		models.SourceSocial: 7.0,
		models.SourceVideo:  7.0,
	}}
	r := NewRunner(allCollectors(nil), sum, runs, aggs, nil, nil)

	result := r.Run(context.Background(), testSubject())

	assert.False(t, result.Success)
	assert.Nil(t, result.Aggregate)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[len(result.Errors)-1], "persist aggregate")
}
