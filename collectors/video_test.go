package collectors

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tool-pulse/config"
	"tool-pulse/models"
)

type fakeVideoAPI struct {
	searchItems    []videoItem
	searchErr      error
	detailItems    []videoItem
	commentsByID   map[string][]string
	commentErrByID map[string]error
}

func (f *fakeVideoAPI) Search(ctx context.Context, query string, publishedAfter time.Time, max int64) ([]videoItem, error) {
	return f.searchItems, f.searchErr
}

func (f *fakeVideoAPI) Details(ctx context.Context, ids []string) ([]videoItem, error) {
	return f.detailItems, nil
}

func (f *fakeVideoAPI) Comments(ctx context.Context, videoID string, max int) ([]string, error) {
	if err := f.commentErrByID[videoID]; err != nil {
		return nil, err
	}
	return f.commentsByID[videoID], nil
}

func videoTestConfig() config.SentimentConfig {
	return config.SentimentConfig{
		LookbackMonths: 6,
		Video:          config.VideoSourceConfig{Enabled: true, MaxVideos: 5, MaxCommentsPerVideo: 50},
	}
}

func TestVideoCollectorToleratesSingleCommentFailure(t *testing.T) {
	published := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	api := &fakeVideoAPI{
		searchItems: []videoItem{{ID: "a"}, {ID: "b"}},
		detailItems: []videoItem{
			{ID: "a", Title: "Review A", Channel: "ch1", ViewCount: 100, PublishedAt: published},
			{ID: "b", Title: "Review B", Channel: "ch2", ViewCount: 900, PublishedAt: published.AddDate(0, 1, 0)},
		},
		commentsByID:   map[string][]string{"b": {"love it", "solid"}},
		commentErrByID: map[string]error{"a": errors.New("commentsDisabled")},
	}
	c := &VideoCollector{cfg: videoTestConfig(), api: api}

	raw, err := c.Collect(context.Background(), models.Subject{Name: "Acme", Slug: "acme"})
	require.NoError(t, err)
	require.Len(t, raw.Texts, 2)

	// highest view count first
	assert.Contains(t, raw.Texts[0], "Review B")
	assert.Contains(t, raw.Texts[0], "love it")
	assert.Contains(t, raw.Texts[1], "Review A")

	assert.Equal(t, 2, raw.Meta[MetaVideoCount])
	assert.Equal(t, 2, raw.Meta[MetaCommentCount])
	assert.Equal(t, 1, raw.Meta[MetaCommentFailures])
	assert.Equal(t, published, raw.Meta[MetaActualStart])
	assert.Equal(t, published.AddDate(0, 1, 0), raw.Meta[MetaActualEnd])
}

func TestVideoCollectorNoResults(t *testing.T) {
	c := &VideoCollector{cfg: videoTestConfig(), api: &fakeVideoAPI{}}

	_, err := c.Collect(context.Background(), models.Subject{Name: "Acme", Slug: "acme"})
	var collErr *CollectionError
	require.ErrorAs(t, err, &collErr)
	assert.Equal(t, models.SourceVideo, collErr.Source)
	assert.Contains(t, collErr.Reason, "no matching videos")
}

func TestVideoCollectorSearchRejected(t *testing.T) {
	c := &VideoCollector{cfg: videoTestConfig(), api: &fakeVideoAPI{searchErr: errors.New("quotaExceeded")}}

	_, err := c.Collect(context.Background(), models.Subject{Name: "Acme", Slug: "acme"})
	var collErr *CollectionError
	require.ErrorAs(t, err, &collErr)
	assert.Contains(t, collErr.Reason, "rejected")
}

func TestLookbackWindow(t *testing.T) {
	start, end := LookbackWindow(6)
	assert.True(t, end.After(start))
	assert.WithinDuration(t, end.AddDate(0, -6, 0), start, time.Second)

	// zero falls back to the default
	start, end = LookbackWindow(0)
	assert.WithinDuration(t, end.AddDate(0, -6, 0), start, time.Second)
}
