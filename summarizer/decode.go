package summarizer

import (
	"encoding/json"
	"fmt"
	"strings"

	"tool-pulse/models"
	"tool-pulse/rubric"
)

// llmSummary mirrors the JSON the model is asked to emit. List fields stay
// raw so a non-array value degrades to empty instead of failing the whole
// decode.
type llmSummary struct {
	Score               *float64        `json:"score"`
	Label               string          `json:"label"`
	Summary             string          `json:"summary"`
	Positives           json.RawMessage `json:"positives"`
	Negatives           json.RawMessage `json:"negatives"`
	Features            json.RawMessage `json:"features"`
	Subscores           json.RawMessage `json:"subscores"`
	SourceProvidedScore *float64        `json:"source_provided_score"`
	ReconciledScore     *float64        `json:"reconciled_score"`
	ReasonForAdjustment string          `json:"reason_for_adjustment"`
	Confidence          *float64        `json:"confidence"`
	ItemCount           *int            `json:"item_count"`
}

// decodeSummary validates and repairs one model response. sourceScore is
// non-nil only for the social source when the collector captured a
// source-provided score; in that case the meta-review fields are required
// and the reconciled score becomes the summary's final score.
func decodeSummary(text string, sourceScore *float64, itemCount int) (*models.SentimentSummary, error) {
	var js llmSummary
	if err := json.Unmarshal([]byte(repairJSON(text)), &js); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}

	if js.Score == nil {
		return nil, fmt.Errorf("response is missing a numeric score")
	}
	score := rubric.Normalize(*js.Score)

	summary := &models.SentimentSummary{
		Score:     score,
		Summary:   strings.TrimSpace(js.Summary),
		Positives: coerceStrings(js.Positives, models.MaxPositives),
		Negatives: coerceStrings(js.Negatives, models.MaxNegatives),
		Features:  coerceStrings(js.Features, models.MaxFeatures),
		Subscores: coerceSubscores(js.Subscores),
	}

	if sourceScore != nil {
		// Reconciliation must not be skipped, even when the reconciled
		// score equals the original.
		if js.ReconciledScore == nil {
			return nil, fmt.Errorf("meta-review response is missing reconciled_score")
		}
		reason := strings.TrimSpace(js.ReasonForAdjustment)
		if reason == "" {
			return nil, fmt.Errorf("meta-review response is missing reason_for_adjustment")
		}
		reconciled := rubric.Normalize(*js.ReconciledScore)
		summary.Score = reconciled

		confidence := 0.0
		if js.Confidence != nil {
			confidence = clamp01(*js.Confidence)
		}
		count := itemCount
		if js.ItemCount != nil && *js.ItemCount > 0 {
			count = *js.ItemCount
		}
		summary.MetaReview = &models.MetaReview{
			SourceScore:      rubric.Normalize(*sourceScore),
			ReconciledScore:  reconciled,
			AdjustmentReason: reason,
			Confidence:       confidence,
			ItemCount:        count,
		}
	}

	// The label is always derived from the final (possibly reconciled)
	// score whenever the model's label is missing, unrecognized, or
	// inconsistent with the band table.
	label := js.Label
	if !rubric.IsLabel(label) || rubric.Label(label) != rubric.LabelForScore(summary.Score) {
		label = string(rubric.LabelForScore(summary.Score))
	}
	summary.Label = label

	return summary, nil
}

// repairJSON strips markdown code fences some models insist on emitting
// despite the instruction not to.
func repairJSON(text string) string {
	t := strings.TrimSpace(text)
	if strings.HasPrefix(t, "```") {
		t = strings.TrimPrefix(t, "```json")
		t = strings.TrimPrefix(t, "```")
		t = strings.TrimSuffix(strings.TrimSpace(t), "```")
		t = strings.TrimSpace(t)
	}
	return t
}

// coerceStrings turns a raw list field into at most max trimmed strings;
// any non-array value becomes an empty list.
func coerceStrings(raw json.RawMessage, max int) []string {
	var items []string
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &items)
	}
	out := make([]string, 0, max)
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		out = append(out, it)
		if len(out) == max {
			break
		}
	}
	return out
}

func coerceSubscores(raw json.RawMessage) map[string]float64 {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]float64
	if err := json.Unmarshal(raw, &m); err != nil || len(m) == 0 {
		return nil
	}
	for k, v := range m {
		m[k] = rubric.Normalize(v)
	}
	return m
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
