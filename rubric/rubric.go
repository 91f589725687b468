package rubric

import "math"

// Version tags every persisted aggregate so historical scores stay
// comparable if the bands ever change.
const Version = "v1"

// Label is one of the five ordered sentiment categories.
type Label string

const (
	VeryNegative Label = "very negative"
	Negative     Label = "negative"
	Mixed        Label = "mixed"
	Positive     Label = "positive"
	VeryPositive Label = "very positive"
)

// band is a half-open [Min, Max) score range mapped to a label.
// The top band is closed at 10 (handled in LabelForScore).
type band struct {
	Min   float64
	Max   float64
	Label Label
}

var bands = []band{
	{0, 2, VeryNegative},
	{2, 4, Negative},
	{4, 6, Mixed},
	{6, 8, Positive},
	{8, 10, VeryPositive},
}

// LabelForScore maps a score in [0,10] to its label. Total over the whole
// range: out-of-range inputs are clamped first, and exactly 10 maps to
// VeryPositive even though the bands are half-open.
func LabelForScore(score float64) Label {
	score = Clamp(score)
	if score >= 10 {
		return VeryPositive
	}
	for _, b := range bands {
		if score >= b.Min && score < b.Max {
			return b.Label
		}
	}
	return VeryPositive
}

// IsLabel reports whether s is one of the five recognized label values.
func IsLabel(s string) bool {
	switch Label(s) {
	case VeryNegative, Negative, Mixed, Positive, VeryPositive:
		return true
	}
	return false
}

// Clamp restricts a score to [0,10].
func Clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}

// Round1 rounds a score to one decimal place.
func Round1(score float64) float64 {
	return math.Round(score*10) / 10
}

// Normalize clamps and rounds a raw score into its persisted form.
func Normalize(score float64) float64 {
	return Round1(Clamp(score))
}

// PromptTable renders the band table for inclusion in LLM prompts. Keeping
// the wording in one place guarantees the summarizer and the meta-reviewer
// see the same rubric the aggregator labels with.
func PromptTable() string {
	return `Scoring rubric (0.0 - 10.0, one decimal):
- 0.0 to 1.9  -> "very negative": overwhelmingly critical, users advise against it
- 2.0 to 3.9  -> "negative": mostly complaints, few redeeming mentions
- 4.0 to 5.9  -> "mixed": praise and criticism in similar measure
- 6.0 to 7.9  -> "positive": generally recommended, some caveats
- 8.0 to 10.0 -> "very positive": strong enthusiasm, widely recommended`
}
