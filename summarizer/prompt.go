package summarizer

import (
	"fmt"
	"strings"

	"tool-pulse/rubric"
)

const baseInstruction = `You are a sentiment analysis assistant for a software tool directory.
Your task is to read raw community opinion text about one tool and produce a structured sentiment summary.

%s

The response MUST be a valid JSON object with these keys:
1. score: A number between 0.0 and 10.0 with one decimal, per the rubric above.
2. label: One of "very negative", "negative", "mixed", "positive", "very positive", consistent with the score.
3. summary: A plain-text summary of the community's opinion, no more than 600 characters.
4. positives: Up to 5 short phrases users praise most often.
5. negatives: Up to 5 short phrases users complain about most often.
6. features: Up to 10 specific features or capabilities mentioned in the text.
7. subscores: An optional object of named aspect scores (e.g. {"ease_of_use": 7.5}), or null.

You MUST NOT wrap the JSON output in a markdown code block (e.g. ` + "```json ... ```" + `).
The response should contain ONLY the raw JSON string.
Base every value strictly on the provided text; do not invent evidence.`

const metaReviewInstruction = `

Additionally, the source platform reported its own sentiment score for this tool.
Act as a meta-reviewer: compare that score against the rubric and the evidence in the text, then also emit:
8. source_provided_score: The score the source reported, echoed back.
9. reconciled_score: Your corrected score per the rubric. If the source score already matches the evidence, repeat it.
10. reason_for_adjustment: A short sentence explaining the change, or explicitly stating the score was kept because it matches the evidence. Never leave this empty.
11. confidence: Your confidence in the reconciled score, between 0 and 1.
12. item_count: How many distinct opinions the evidence covers, if you can tell.`

func systemInstruction(withMetaReview bool) string {
	s := fmt.Sprintf(baseInstruction, rubric.PromptTable())
	if withMetaReview {
		s += metaReviewInstruction
	}
	return s
}

// buildPrompt concatenates the collector's text blocks under a short header.
// Block order carries no ranking meaning; the separator only keeps
// independent opinions from bleeding into each other.
func buildPrompt(source, subjectName string, texts []string, sourceScore *float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tool: %s\nSource: %s\n", subjectName, source)
	if sourceScore != nil {
		fmt.Fprintf(&b, "Source-provided sentiment score: %.1f\n", *sourceScore)
	}
	b.WriteString("\nCommunity opinion text:\n\n")
	b.WriteString(strings.Join(texts, "\n\n---\n\n"))
	return b.String()
}
