package illustrate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finshorts-pipeline/types"
)

func TestBuildPromptsUsesTickers(t *testing.T) {
	a := &types.Analysis{Tickers: []string{"TSLA"}}
	prompts := BuildPrompts(a, 3)
	require.Len(t, prompts, 3)
	for _, p := range prompts {
		assert.Contains(t, p, "TSLA stock")
	}
	// Angles cycle, so consecutive prompts differ.
	assert.NotEqual(t, prompts[0], prompts[1])
}

func TestBuildPromptsFallsBackToMarket(t *testing.T) {
	prompts := BuildPrompts(&types.Analysis{}, 2)
	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[0], "stock market")
}

func TestBuildPromptsDefaultCount(t *testing.T) {
	assert.Len(t, BuildPrompts(&types.Analysis{}, 0), 5)
}

func TestBuildPromptsIsDeterministic(t *testing.T) {
	a := &types.Analysis{Tickers: []string{"NVDA"}}
	assert.Equal(t, BuildPrompts(a, 6), BuildPrompts(a, 6))
}

func TestEnhancePromptAppendsStyle(t *testing.T) {
	out := enhancePrompt("  dramatic chart  ")
	assert.True(t, strings.HasPrefix(out, "dramatic chart,"))
	assert.Contains(t, out, "no watermark")
}
