package aggregator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tool-pulse/aggregator"
	"tool-pulse/models"
	"tool-pulse/rubric"
)

func summaryWithScore(score float64) *models.SentimentSummary {
	return &models.SentimentSummary{
		Score: score,
		Label: string(rubric.LabelForScore(score)),
	}
}

func TestAggregateEqualWeightsAllPresent(t *testing.T) {
	agg := aggregator.Aggregate(aggregator.Input{
		Forum:  summaryWithScore(8.0),
		Social: summaryWithScore(8.0),
		Video:  summaryWithScore(8.0),
	})
	assert.Equal(t, 8.0, agg.FinalScore)
	assert.Equal(t, "very positive", agg.FinalLabel)
	require.NotNil(t, agg.ForumScore)
	assert.Equal(t, 8.0, *agg.ForumScore)
	assert.Equal(t, rubric.Version, agg.RubricVersion)
}

func TestAggregateAbsentSourceContributesNothing(t *testing.T) {
	agg := aggregator.Aggregate(aggregator.Input{
		Forum: summaryWithScore(8.0),
		Video: summaryWithScore(4.0),
	})
	assert.Equal(t, 6.0, agg.FinalScore)
	assert.Equal(t, "positive", agg.FinalLabel)
	assert.Nil(t, agg.SocialScore)
}

func TestAggregateZeroSourcesIsDegenerate(t *testing.T) {
	agg := aggregator.Aggregate(aggregator.Input{})
	assert.Equal(t, 0.0, agg.FinalScore)
	assert.Equal(t, aggregator.UnknownLabel, agg.FinalLabel)
	assert.Nil(t, agg.ForumScore)
	assert.Nil(t, agg.SocialScore)
	assert.Nil(t, agg.VideoScore)
}

func TestAggregateExactTenMapsToVeryPositive(t *testing.T) {
	agg := aggregator.Aggregate(aggregator.Input{Forum: summaryWithScore(10.0)})
	assert.Equal(t, 10.0, agg.FinalScore)
	assert.Equal(t, "very positive", agg.FinalLabel)
}

func TestAggregateMergesNarrativeAndLists(t *testing.T) {
	forum := summaryWithScore(7.0)
	forum.Summary = "Forum users like it."
	forum.Positives = []string{"Fast", "cheap"}
	video := summaryWithScore(6.0)
	video.Summary = "Reviewers agree."
	video.Positives = []string{"fast", "polished"}

	agg := aggregator.Aggregate(aggregator.Input{Forum: forum, Video: video})
	assert.Contains(t, agg.Narrative, "[reddit] Forum users like it.")
	assert.Contains(t, agg.Narrative, "[video] Reviewers agree.")
	// "fast" seen twice ranks first, first-seen casing kept
	assert.Equal(t, []string{"Fast", "cheap", "polished"}, agg.Positives)
}

func TestMergeRankedOrderingAndCaps(t *testing.T) {
	out := aggregator.MergeRanked(5,
		[]string{"slow", "buggy", "pricey"},
		[]string{"Buggy", "pricey", "slow"},
		[]string{"pricey"},
	)
	// pricey x3, then buggy/slow x2 tie broken lexicographically
	assert.Equal(t, []string{"pricey", "buggy", "slow"}, out)

	capped := aggregator.MergeRanked(2, []string{"a", "b", "c"})
	assert.Equal(t, []string{"a", "b"}, capped)
}

func TestMergeRankedIdempotent(t *testing.T) {
	list := []string{"fast", "cheap", "fast"}

	once := aggregator.MergeRanked(5, list)
	twice := aggregator.MergeRanked(5, list, list)
	assert.Equal(t, once, twice)
}

func TestMergeRankedSkipsBlanks(t *testing.T) {
	out := aggregator.MergeRanked(5, []string{"  ", "", "ok"})
	assert.Equal(t, []string{"ok"}, out)
}
