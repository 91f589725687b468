package collectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSocialReplyStrictJSON(t *testing.T) {
	content := `{"sentiment_score": 7.5, "post_count": 42, "engagement_total": 1200,
		"summary": "Mostly positive chatter.", "highlights": ["fast"], "complaints": ["pricing"]}`

	reply, mode := parseSocialReply(content)
	require.NotNil(t, reply)
	assert.Equal(t, "json", mode)
	require.NotNil(t, reply.SentimentScore)
	assert.Equal(t, 7.5, *reply.SentimentScore)
	assert.Equal(t, 42, reply.PostCount)
	assert.Equal(t, []string{"fast"}, reply.Highlights)
}

func TestParseSocialReplyEmbeddedJSON(t *testing.T) {
	content := "Here is what I found:\n```json\n" +
		`{"sentiment_score": 4.0, "post_count": 7, "summary": "Mixed.", "highlights": [], "complaints": ["bugs"]}` +
		"\n```\nLet me know if you need more."

	reply, mode := parseSocialReply(content)
	require.NotNil(t, reply)
	assert.Equal(t, "embedded_json", mode)
	assert.Equal(t, 7, reply.PostCount)
	assert.Equal(t, []string{"bugs"}, reply.Complaints)
}

func TestParseSocialReplyOpaqueText(t *testing.T) {
	reply, mode := parseSocialReply("People generally like it but I could not quantify the sentiment.")
	assert.Nil(t, reply)
	assert.Equal(t, "raw", mode)
}

func TestExtractLargestJSONObject(t *testing.T) {
	s := `prefix {"a": 1} middle {"b": {"c": "with } brace in string"}, "d": [1,2,3]} suffix`
	obj, ok := extractLargestJSONObject(s)
	require.True(t, ok)
	assert.Equal(t, `{"b": {"c": "with } brace in string"}, "d": [1,2,3]}`, obj)
}

func TestExtractLargestJSONObjectNoObject(t *testing.T) {
	_, ok := extractLargestJSONObject("no braces here")
	assert.False(t, ok)

	// unbalanced brace never closes
	_, ok = extractLargestJSONObject(`{"a": 1`)
	assert.False(t, ok)
}

func TestReplyTextsSkipsEmptySections(t *testing.T) {
	texts := replyTexts(&socialReply{Summary: "ok", Highlights: []string{"fast", "cheap"}})
	require.Len(t, texts, 2)
	assert.Equal(t, "ok", texts[0])
	assert.Contains(t, texts[1], "- fast")
	assert.Contains(t, texts[1], "- cheap")
}
