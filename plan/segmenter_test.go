package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finshorts-pipeline/types"
)

func word(text string, start, end float64) types.Word {
	return types.Word{Text: text, Start: start, End: end}
}

func TestSegmentEmptyInput(t *testing.T) {
	assert.Empty(t, Segment(nil, 8.0, 0.5))
}

func TestSegmentSplitsOnPause(t *testing.T) {
	words := []types.Word{
		word("a", 0, 1),
		word("b", 1.6, 2),
	}
	scenes := Segment(words, 8.0, 0.5)
	require.Len(t, scenes, 2, "gap of 0.6s exceeds the 0.5s threshold")

	assert.Equal(t, 0.0, scenes[0].Start)
	assert.Equal(t, 1.0, scenes[0].End)
	// Next scene starts at the next word's start, preserving the gap
	// outside of any scene's bounds.
	assert.Equal(t, 1.6, scenes[1].Start)
	assert.Equal(t, 2.0, scenes[1].End)
}

func TestSegmentKeepsShortPause(t *testing.T) {
	words := []types.Word{
		word("a", 0, 1),
		word("b", 1.2, 2),
	}
	scenes := Segment(words, 8.0, 0.5)
	require.Len(t, scenes, 1, "gap of 0.2s stays within one scene")
	assert.Equal(t, "a b", scenes[0].Text)
	assert.Equal(t, 2.0, scenes[0].Duration)
}

func TestSegmentSplitsOnMaxDuration(t *testing.T) {
	// Continuous speech, no pauses; the ceiling forces boundaries.
	var words []types.Word
	for i := 0; i < 20; i++ {
		start := float64(i)
		words = append(words, word("w", start, start+1))
	}
	scenes := Segment(words, 8.0, 0.5)
	require.Greater(t, len(scenes), 1)
	for _, s := range scenes[:len(scenes)-1] {
		// The boundary fires on the first word that pushes past the
		// ceiling, so a scene may exceed it by at most one word.
		assert.LessOrEqual(t, s.Duration, 9.0)
	}
}

func TestSegmentOversizedSingleWord(t *testing.T) {
	// A single word longer than the ceiling still forms one scene;
	// the ceiling never pre-splits an already-started scene.
	scenes := Segment([]types.Word{word("loooong", 0, 12.5)}, 8.0, 0.5)
	require.Len(t, scenes, 1)
	assert.Equal(t, 12.5, scenes[0].Duration)
}

func TestSegmentPartitionInvariant(t *testing.T) {
	words := []types.Word{
		word("one", 0, 0.3),
		word("two", 0.35, 0.8),
		word("three", 2.0, 2.4),
		word("four", 2.5, 9.0),
		word("five", 9.1, 9.5),
		word("six", 11.0, 11.2),
	}
	scenes := Segment(words, 8.0, 0.5)

	var flattened []types.Word
	for _, s := range scenes {
		flattened = append(flattened, s.Words...)
	}
	require.Equal(t, words, flattened, "scene word lists must partition the input exactly")

	for i, s := range scenes {
		assert.Equal(t, i+1, s.Number)
		assert.Equal(t, s.Words[0].Start, s.Start)
		assert.Equal(t, s.Words[len(s.Words)-1].End, s.End)
		assert.InDelta(t, s.End-s.Start, s.Duration, 1e-9)
		if i > 0 {
			assert.GreaterOrEqual(t, s.Start, scenes[i-1].End, "scenes must not overlap")
		}
	}
}

func TestSegmentEndToEndScenario(t *testing.T) {
	words := []types.Word{
		word("Hi", 0, 0.4),
		word("there", 0.45, 0.9),
		word("friend", 2.0, 2.6),
	}
	scenes := Segment(words, 8.0, 0.5)
	require.Len(t, scenes, 2)

	assert.Equal(t, []types.Word{words[0], words[1]}, scenes[0].Words)
	assert.Equal(t, 0.0, scenes[0].Start)
	assert.Equal(t, 0.9, scenes[0].End)

	assert.Equal(t, []types.Word{words[2]}, scenes[1].Words)
	assert.Equal(t, 2.0, scenes[1].Start)
	assert.Equal(t, 2.6, scenes[1].End)
}
