package rubric_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tool-pulse/rubric"
)

func TestLabelForScoreBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  rubric.Label
	}{
		{0, rubric.VeryNegative},
		{1.9, rubric.VeryNegative},
		{2, rubric.Negative},
		{3.9, rubric.Negative},
		{4, rubric.Mixed},
		{5.9, rubric.Mixed},
		{6, rubric.Positive},
		{7.9, rubric.Positive},
		{8, rubric.VeryPositive},
		{9.9, rubric.VeryPositive},
		{10, rubric.VeryPositive},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, rubric.LabelForScore(c.score), "score %v", c.score)
	}
}

func TestLabelForScoreIsTotal(t *testing.T) {
	// every representable one-decimal score in [0,10] must get a label
	for i := 0; i <= 100; i++ {
		s := float64(i) / 10
		label := rubric.LabelForScore(s)
		assert.True(t, rubric.IsLabel(string(label)), "score %v got %q", s, label)
	}
}

func TestLabelForScoreClampsOutOfRange(t *testing.T) {
	assert.Equal(t, rubric.VeryNegative, rubric.LabelForScore(-3))
	assert.Equal(t, rubric.VeryPositive, rubric.LabelForScore(12.5))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, 7.3, rubric.Normalize(7.349))
	assert.Equal(t, 7.4, rubric.Normalize(7.351))
	assert.Equal(t, 0.0, rubric.Normalize(-1))
	assert.Equal(t, 10.0, rubric.Normalize(11.2))
}

func TestIsLabel(t *testing.T) {
	assert.True(t, rubric.IsLabel("mixed"))
	assert.False(t, rubric.IsLabel("neutral"))
	assert.False(t, rubric.IsLabel(""))
}
