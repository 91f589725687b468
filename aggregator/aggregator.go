package aggregator

import (
	"fmt"
	"sort"
	"strings"

	"tool-pulse/models"
	"tool-pulse/rubric"
)

// UnknownLabel is the degenerate label emitted when no source produced a
// score; the band table is never applied to an empty aggregate.
const UnknownLabel = "unknown"

// Input carries up to three per-source summaries. A nil field means that
// source's sub-pipeline failed and contributes neither numerator nor
// denominator to the weighted mean.
type Input struct {
	Forum  *models.SentimentSummary
	Social *models.SentimentSummary
	Video  *models.SentimentSummary
}

// Aggregate combines the present summaries into one weighted result with a
// merged narrative and deduplicated, frequency-ranked lists. Subject and
// timestamps are the caller's concern.
func Aggregate(in Input) models.SentimentAggregate {
	agg := models.SentimentAggregate{
		RubricVersion: rubric.Version,
	}

	type sourced struct {
		name    string
		summary *models.SentimentSummary
	}
	present := make([]sourced, 0, 3)
	if in.Forum != nil {
		score := in.Forum.Score
		agg.ForumScore = &score
		present = append(present, sourced{models.SourceForum, in.Forum})
	}
	if in.Social != nil {
		score := in.Social.Score
		agg.SocialScore = &score
		present = append(present, sourced{models.SourceSocial, in.Social})
	}
	if in.Video != nil {
		score := in.Video.Score
		agg.VideoScore = &score
		present = append(present, sourced{models.SourceVideo, in.Video})
	}

	if len(present) == 0 {
		agg.FinalScore = 0
		agg.FinalLabel = UnknownLabel
		return agg
	}

	// equal weight across present sources
	total := 0.0
	for _, p := range present {
		total += p.summary.Score
	}
	agg.FinalScore = rubric.Round1(total / float64(len(present)))
	agg.FinalLabel = string(rubric.LabelForScore(agg.FinalScore))

	var narrative []string
	positives := make([][]string, 0, len(present))
	negatives := make([][]string, 0, len(present))
	features := make([][]string, 0, len(present))
	for _, p := range present {
		if s := strings.TrimSpace(p.summary.Summary); s != "" {
			narrative = append(narrative, fmt.Sprintf("[%s] %s", p.name, s))
		}
		positives = append(positives, p.summary.Positives)
		negatives = append(negatives, p.summary.Negatives)
		features = append(features, p.summary.Features)
	}
	agg.Narrative = strings.Join(narrative, "\n\n")
	agg.Positives = MergeRanked(models.MaxPositives, positives...)
	agg.Negatives = MergeRanked(models.MaxNegatives, negatives...)
	agg.Features = MergeRanked(models.MaxFeatures, features...)

	return agg
}

// MergeRanked deduplicates strings across sources by trimmed, lower-cased
// comparison, ranks them by descending cross-source count with a
// lexicographic tie-break, keeps the casing of the first occurrence, and
// truncates to max.
func MergeRanked(max int, lists ...[]string) []string {
	type entry struct {
		display string
		count   int
	}
	byKey := make(map[string]*entry)
	var keys []string

	for _, list := range lists {
		for _, item := range list {
			display := strings.TrimSpace(item)
			if display == "" {
				continue
			}
			key := strings.ToLower(display)
			if e, ok := byKey[key]; ok {
				e.count++
				continue
			}
			byKey[key] = &entry{display: display, count: 1}
			keys = append(keys, key)
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		if byKey[keys[i]].count != byKey[keys[j]].count {
			return byKey[keys[i]].count > byKey[keys[j]].count
		}
		return keys[i] < keys[j]
	})

	out := make([]string, 0, max)
	for _, k := range keys {
		out = append(out, byKey[k].display)
		if len(out) == max {
			break
		}
	}
	return out
}
