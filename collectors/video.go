package collectors

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"tool-pulse/config"
	"tool-pulse/logger"
	"tool-pulse/models"
)

// Meta keys specific to the video source.
const (
	MetaVideoCount      = "video_count"
	MetaCommentCount    = "comment_count"
	MetaCommentFailures = "comment_failures"
	MetaActualStart     = "actual_window_start"
	MetaActualEnd       = "actual_window_end"
)

type videoItem struct {
	ID          string
	Title       string
	Channel     string
	Description string
	PublishedAt time.Time
	ViewCount   uint64
}

// videoAPI is the slice of the video platform the collector needs. The
// production implementation wraps the YouTube Data API; tests substitute a
// fake to exercise partial-failure behavior.
type videoAPI interface {
	Search(ctx context.Context, query string, publishedAfter time.Time, max int64) ([]videoItem, error)
	Details(ctx context.Context, ids []string) ([]videoItem, error)
	Comments(ctx context.Context, videoID string, max int) ([]string, error)
}

// VideoCollector performs a two-stage fetch: search for matching videos,
// enrich with metadata, then paginate top-engagement comments per video up
// to a cap. One video's comment failure (comments disabled) degrades to a
// partial result instead of aborting the collection.
type VideoCollector struct {
	cfg config.SentimentConfig
	api videoAPI
}

func NewVideoCollector(ctx context.Context, cfg config.SentimentConfig) (*VideoCollector, error) {
	apiKey := os.Getenv("YOUTUBE_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("YOUTUBE_API_KEY environment variable is not set")
	}
	svc, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &VideoCollector{cfg: cfg, api: &youtubeAPI{svc: svc}}, nil
}

func (c *VideoCollector) Source() string { return models.SourceVideo }

func (c *VideoCollector) Collect(ctx context.Context, subject models.Subject) (*RawSourceData, error) {
	start, end := LookbackWindow(c.cfg.LookbackMonths)
	query := subject.Query() + " review"

	found, err := c.api.Search(ctx, query, start, int64(c.cfg.Video.MaxVideos))
	if err != nil {
		return nil, &CollectionError{Source: c.Source(), Reason: "search rejected by upstream", Err: err}
	}
	if len(found) == 0 {
		return nil, &CollectionError{Source: c.Source(), Reason: "no matching videos found"}
	}

	ids := make([]string, 0, len(found))
	for _, v := range found {
		ids = append(ids, v.ID)
	}
	videos, err := c.api.Details(ctx, ids)
	if err != nil {
		return nil, &CollectionError{Source: c.Source(), Reason: "metadata fetch failed", Err: err}
	}

	// highest engagement first
	sort.Slice(videos, func(i, j int) bool { return videos[i].ViewCount > videos[j].ViewCount })

	var texts []string
	commentTotal := 0
	commentFailures := 0
	var actualStart, actualEnd time.Time

	for _, v := range videos {
		comments, err := c.api.Comments(ctx, v.ID, c.cfg.Video.MaxCommentsPerVideo)
		if err != nil {
			// comments disabled or restricted; keep the video's own text
			commentFailures++
			logger.WarnWithFields("video comment fetch failed, keeping partial result", logger.Fields{
				"subject":  subject.Slug,
				"video_id": v.ID,
				"error":    err.Error(),
			})
		}
		commentTotal += len(comments)
		texts = append(texts, videoText(v, comments))

		if !v.PublishedAt.IsZero() {
			if actualStart.IsZero() || v.PublishedAt.Before(actualStart) {
				actualStart = v.PublishedAt
			}
			if v.PublishedAt.After(actualEnd) {
				actualEnd = v.PublishedAt
			}
		}
	}

	meta := baseMeta(start, end)
	meta[MetaVideoCount] = len(videos)
	meta[MetaCommentCount] = commentTotal
	meta[MetaCommentFailures] = commentFailures
	if !actualStart.IsZero() {
		meta[MetaActualStart] = actualStart
		meta[MetaActualEnd] = actualEnd
	}

	return &RawSourceData{
		Source:    c.Source(),
		SubjectID: subject.ID,
		Texts:     texts,
		Meta:      meta,
	}, nil
}

func videoText(v videoItem, comments []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Video: %s (channel: %s, views: %d)\n", v.Title, v.Channel, v.ViewCount)
	if v.Description != "" {
		b.WriteString(v.Description)
		b.WriteString("\n")
	}
	if len(comments) > 0 {
		b.WriteString("Top comments:\n")
		for _, cm := range comments {
			b.WriteString("- ")
			b.WriteString(cm)
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String())
}

// youtubeAPI adapts the YouTube Data API v3 to the videoAPI interface.
type youtubeAPI struct {
	svc *youtube.Service
}

func (y *youtubeAPI) Search(ctx context.Context, query string, publishedAfter time.Time, max int64) ([]videoItem, error) {
	call := y.svc.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		Order("relevance").
		PublishedAfter(publishedAfter.Format(time.RFC3339)).
		MaxResults(max).
		Context(ctx)
	resp, err := call.Do()
	if err != nil {
		return nil, err
	}

	var items []videoItem
	for _, it := range resp.Items {
		if it.Id == nil || it.Id.VideoId == "" || it.Snippet == nil {
			continue
		}
		published, _ := time.Parse(time.RFC3339, it.Snippet.PublishedAt)
		items = append(items, videoItem{
			ID:          it.Id.VideoId,
			Title:       it.Snippet.Title,
			Channel:     it.Snippet.ChannelTitle,
			Description: it.Snippet.Description,
			PublishedAt: published,
		})
	}
	return items, nil
}

func (y *youtubeAPI) Details(ctx context.Context, ids []string) ([]videoItem, error) {
	call := y.svc.Videos.List([]string{"snippet", "statistics"}).
		Id(ids...).
		Context(ctx)
	resp, err := call.Do()
	if err != nil {
		return nil, err
	}

	var items []videoItem
	for _, it := range resp.Items {
		if it.Snippet == nil {
			continue
		}
		published, _ := time.Parse(time.RFC3339, it.Snippet.PublishedAt)
		item := videoItem{
			ID:          it.Id,
			Title:       it.Snippet.Title,
			Channel:     it.Snippet.ChannelTitle,
			Description: it.Snippet.Description,
			PublishedAt: published,
		}
		if it.Statistics != nil {
			item.ViewCount = it.Statistics.ViewCount
		}
		items = append(items, item)
	}
	return items, nil
}

func (y *youtubeAPI) Comments(ctx context.Context, videoID string, max int) ([]string, error) {
	var comments []string
	pageToken := ""
	for len(comments) < max {
		call := y.svc.CommentThreads.List([]string{"snippet"}).
			VideoId(videoID).
			Order("relevance").
			TextFormat("plainText").
			MaxResults(100).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, err
		}
		for _, th := range resp.Items {
			if th.Snippet == nil || th.Snippet.TopLevelComment == nil || th.Snippet.TopLevelComment.Snippet == nil {
				continue
			}
			comments = append(comments, th.Snippet.TopLevelComment.Snippet.TextDisplay)
			if len(comments) >= max {
				break
			}
		}
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}
	return comments, nil
}
