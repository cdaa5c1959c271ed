package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finshorts-pipeline/types"
)

func TestParseAnalysis(t *testing.T) {
	a, err := ParseAnalysis([]byte(`{
		"title": "Tesla Just Shocked Wall Street",
		"script": "Tesla dropped twelve percent in a single day.",
		"hook": "Tesla dropped twelve percent in a single day.",
		"tickers": ["TSLA"],
		"sentiment": "bearish"
	}`))
	require.NoError(t, err)
	assert.Equal(t, "Tesla Just Shocked Wall Street", a.Title)
	assert.Equal(t, []string{"TSLA"}, a.Tickers)
}

func TestParseAnalysisRejectsEmptyScript(t *testing.T) {
	_, err := ParseAnalysis([]byte(`{"title": "t", "script": "  "}`))
	assert.ErrorIs(t, err, types.ErrMalformedInput)

	_, err = ParseAnalysis([]byte(`not json`))
	assert.ErrorIs(t, err, types.ErrMalformedInput)
}

func TestParseAnalysisDefaultsTitle(t *testing.T) {
	a, err := ParseAnalysis([]byte(`{"script": "something happened"}`))
	require.NoError(t, err)
	assert.Equal(t, "Financial Short", a.Title)
}

func TestCleanJSONStripsFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanJSON("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanJSON(`{"a":1}`))
}

func TestBuildUserPromptIncludesTweet(t *testing.T) {
	tweet := &types.Tweet{
		Author: "Jane Trader", Handle: "@janetrader",
		Text: "$TSLA down 12% after earnings", Likes: 5000, Reposts: 900, Replies: 400,
		Tickers: []string{"TSLA"},
	}
	prompt := buildUserPrompt(tweet, 55)
	assert.Contains(t, prompt, "~55 second")
	assert.Contains(t, prompt, "@janetrader")
	assert.Contains(t, prompt, "$TSLA down 12% after earnings")
	assert.Contains(t, prompt, "TICKERS: TSLA")
}
