package collectors

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"tool-pulse/config"
	"tool-pulse/logger"
	"tool-pulse/models"
)

const defaultSocialBaseURL = "https://api.x.ai/v1"

var defaultSocialModels = []string{"grok-3", "grok-3-mini"}

// Meta keys specific to the social source.
const (
	MetaSourceScore     = "source_score"
	MetaPostCount       = "post_count"
	MetaEngagementTotal = "engagement_total"
	MetaModelUsed       = "model_used"
	MetaParseMode       = "parse_mode"
)

// socialReply is the structured JSON the conversational search assistant is
// asked to return. Every field is optional on the wire; the parse ladder
// degrades gracefully when the reply is not even JSON.
type socialReply struct {
	SentimentScore  *float64 `json:"sentiment_score"`
	PostCount       int      `json:"post_count"`
	EngagementTotal int      `json:"engagement_total"`
	Summary         string   `json:"summary"`
	Highlights      []string `json:"highlights"`
	Complaints      []string `json:"complaints"`
}

// SocialCollector queries a conversational search assistant over an
// OpenAI-compatible API for recent chatter about the subject. Models are
// tried in configured order; the first successful call wins.
type SocialCollector struct {
	cfg    config.SentimentConfig
	client openai.Client
}

func NewSocialCollector(cfg config.SentimentConfig) (*SocialCollector, error) {
	apiKey := os.Getenv("XAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("XAI_API_KEY environment variable is not set")
	}
	baseURL := cfg.Social.BaseURL
	if baseURL == "" {
		baseURL = defaultSocialBaseURL
	}
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	)
	return &SocialCollector{cfg: cfg, client: client}, nil
}

func (c *SocialCollector) Source() string { return models.SourceSocial }

func (c *SocialCollector) Collect(ctx context.Context, subject models.Subject) (*RawSourceData, error) {
	start, end := LookbackWindow(c.cfg.LookbackMonths)

	chain := c.cfg.Social.Models
	if len(chain) == 0 {
		chain = defaultSocialModels
	}

	var content, modelUsed string
	var lastErr error
	for _, model := range chain {
		text, err := c.ask(ctx, model, subject.Query())
		if err != nil {
			logger.WarnWithFields("social model failed, trying next in chain", logger.Fields{
				"subject": subject.Slug,
				"model":   model,
				"error":   err.Error(),
			})
			lastErr = err
			continue
		}
		content, modelUsed = text, model
		break
	}
	if content == "" {
		if lastErr != nil {
			return nil, &CollectionError{Source: c.Source(), Reason: "all source models rejected the query", Err: lastErr}
		}
		return nil, &CollectionError{Source: c.Source(), Reason: "assistant returned no content"}
	}

	reply, mode := parseSocialReply(content)

	meta := baseMeta(start, end)
	meta[MetaModelUsed] = modelUsed
	meta[MetaParseMode] = mode

	var texts []string
	if reply != nil {
		meta[MetaPostCount] = reply.PostCount
		meta[MetaEngagementTotal] = reply.EngagementTotal
		if reply.SentimentScore != nil {
			meta[MetaSourceScore] = *reply.SentimentScore
		}
		texts = replyTexts(reply)
	}
	if len(texts) == 0 {
		// last resort: keep the raw reply as a single opaque block
		texts = []string{content}
	}

	return &RawSourceData{
		Source:    c.Source(),
		SubjectID: subject.ID,
		Texts:     texts,
		Meta:      meta,
	}, nil
}

func (c *SocialCollector) ask(ctx context.Context, model, query string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(socialSystemPrompt),
			openai.UserMessage(socialQuestion(query, c.cfg.LookbackMonths)),
		},
		Temperature: openai.Float(0),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty choices from model %s", model)
	}
	return resp.Choices[0].Message.Content, nil
}

const socialSystemPrompt = `You are a social media research assistant with live search access.
Reply with a single JSON object and nothing else. Schema:
{
  "sentiment_score": number,      // overall sentiment 0.0-10.0, one decimal
  "post_count": number,           // how many posts you considered
  "engagement_total": number,     // combined likes/reposts/replies
  "summary": string,              // 3-5 sentence plain-text summary
  "highlights": [string],         // most common praise, short phrases
  "complaints": [string]          // most common complaints, short phrases
}`

func socialQuestion(query string, lookbackMonths int) string {
	return fmt.Sprintf(
		"Search recent public posts from the last %d months about %q. "+
			"What is the overall sentiment? What do people praise and complain about? "+
			"Respond with the JSON object described in the system message.",
		lookbackMonths, query,
	)
}

// parseSocialReply tries the reply as strict JSON, then as the largest
// embedded JSON object, then gives up and reports "raw" so the caller keeps
// the text as an opaque block.
func parseSocialReply(content string) (*socialReply, string) {
	var reply socialReply
	if err := json.Unmarshal([]byte(content), &reply); err == nil {
		return &reply, "json"
	}

	if obj, ok := extractLargestJSONObject(content); ok {
		if err := json.Unmarshal([]byte(obj), &reply); err == nil {
			return &reply, "embedded_json"
		}
	}
	return nil, "raw"
}

// extractLargestJSONObject scans for balanced top-level {...} spans,
// skipping brace characters inside string literals, and returns the longest
// candidate.
func extractLargestJSONObject(s string) (string, bool) {
	var best string
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i, ch := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				candidate := s[start : i+1]
				if len(candidate) > len(best) {
					best = candidate
				}
				start = -1
			}
		}
	}
	return best, best != ""
}

func replyTexts(reply *socialReply) []string {
	var texts []string
	if s := strings.TrimSpace(reply.Summary); s != "" {
		texts = append(texts, s)
	}
	if len(reply.Highlights) > 0 {
		texts = append(texts, "Common praise:\n- "+strings.Join(reply.Highlights, "\n- "))
	}
	if len(reply.Complaints) > 0 {
		texts = append(texts, "Common complaints:\n- "+strings.Join(reply.Complaints, "\n- "))
	}
	return texts
}
