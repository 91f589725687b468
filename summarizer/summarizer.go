package summarizer

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"google.golang.org/genai"

	"tool-pulse/collectors"
	"tool-pulse/config"
	"tool-pulse/models"
)

// SchemaVersion tags every persisted run with the summary schema in effect.
const SchemaVersion = "v1"

// SummarizationError means both the primary and the fallback completion
// attempt failed, or every response failed schema validation after repair.
type SummarizationError struct {
	Source   string
	Attempts []string
	Err      error
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("summarize %s: all models failed (%s): %v", e.Source, strings.Join(e.Attempts, ", "), e.Err)
}

func (e *SummarizationError) Unwrap() error { return e.Err }

// RequestLog captures one LLM call for the ai_logs collection.
type RequestLog struct {
	Prompt       string
	Response     string
	LatencyMs    int64
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
	ModelName    string
	ModelVersion string
	GeneratedAt  time.Time
}

// GenResult is one raw completion from the model.
type GenResult struct {
	Text         string
	ModelVersion string
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// Client abstracts the completion service so tests can substitute a fake.
type Client interface {
	Generate(ctx context.Context, model, systemInstruction, prompt string) (*GenResult, error)
}

// GeminiClient calls the Gemini API at zero sampling temperature with a
// strict-JSON response mode.
type GeminiClient struct {
	client *genai.Client
}

func NewGeminiClient(ctx context.Context) (*GeminiClient, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{client: client}, nil
}

func (g *GeminiClient) Generate(ctx context.Context, model, systemInstruction, prompt string) (*GenResult, error) {
	result, err := g.client.Models.GenerateContent(
		ctx,
		model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
			Temperature:       genai.Ptr[float32](0),
			ResponseMIMEType:  "application/json",
		},
	)
	if err != nil {
		return nil, err
	}

	out := &GenResult{
		Text:         result.Text(),
		ModelVersion: result.ModelVersion,
	}
	if result.UsageMetadata != nil {
		out.InputTokens = int64(result.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int64(result.UsageMetadata.CandidatesTokenCount)
		out.TotalTokens = int64(result.UsageMetadata.TotalTokenCount)
	}
	return out, nil
}

// Summarizer turns one collector's raw text into a validated SentimentSummary.
// The primary model is tried once; on failure (or an invalid response) the
// fallback model is tried exactly once before giving up.
type Summarizer struct {
	client        Client
	model         string
	fallbackModel string
}

func New(client Client, llmCfg config.LLMConfig) *Summarizer {
	return &Summarizer{
		client:        client,
		model:         llmCfg.Model,
		fallbackModel: llmCfg.FallbackModel,
	}
}

// Summarize runs the model chain over the raw data and returns a validated
// summary plus the request log of the winning (or last failing) call.
func (s *Summarizer) Summarize(ctx context.Context, source, subjectName string, raw *collectors.RawSourceData) (*models.SentimentSummary, *RequestLog, error) {
	var sourceScore *float64
	itemCount := 0
	if source == models.SourceSocial {
		if v, ok := raw.Meta[collectors.MetaSourceScore].(float64); ok {
			sourceScore = &v
		}
		if n, ok := raw.Meta[collectors.MetaPostCount].(int); ok {
			itemCount = n
		}
	}

	system := systemInstruction(sourceScore != nil)
	prompt := buildPrompt(source, subjectName, raw.Texts, sourceScore)

	chain := make([]string, 0, 2)
	chain = append(chain, s.model)
	if s.fallbackModel != "" && s.fallbackModel != s.model {
		chain = append(chain, s.fallbackModel)
	}

	var lastLog *RequestLog
	var lastErr error
	for _, model := range chain {
		startTime := time.Now()
		res, err := s.client.Generate(ctx, model, system, prompt)
		if err != nil {
			lastErr = err
			continue
		}

		lastLog = &RequestLog{
			Prompt:       fmt.Sprintf("%s\n\n%s", system, prompt),
			Response:     res.Text,
			LatencyMs:    time.Since(startTime).Milliseconds(),
			InputTokens:  res.InputTokens,
			OutputTokens: res.OutputTokens,
			TotalTokens:  res.TotalTokens,
			ModelName:    model,
			ModelVersion: res.ModelVersion,
			GeneratedAt:  time.Now().UTC(),
		}

		summary, err := decodeSummary(res.Text, sourceScore, itemCount)
		if err != nil {
			lastErr = err
			continue
		}
		return summary, lastLog, nil
	}

	return nil, lastLog, &SummarizationError{Source: source, Attempts: chain, Err: lastErr}
}
