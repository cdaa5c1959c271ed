package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finshorts-pipeline/types"
)

func sampleScenes(n int) []types.Scene {
	scenes := make([]types.Scene, n)
	for i := range scenes {
		start := float64(i) * 2
		scenes[i] = types.Scene{
			Number:   i + 1,
			Start:    start,
			End:      start + 1.5,
			Duration: 1.5,
			Words:    []types.Word{{Text: "w", Start: start, End: start + 1.5}},
		}
	}
	return scenes
}

func TestAssignRoundRobinIsDeterministic(t *testing.T) {
	pool := []string{"x.png", "y.png", "z.png"}
	opts := AssignOptions{Background: "bg.png", TickerFile: "ticker.png", TickerSpeed: 100, FadeSec: 0.5}

	scenes := Assign(sampleScenes(5), pool, opts)
	var got []string
	for _, s := range scenes {
		got = append(got, s.Visuals.MainContent.File)
	}
	assert.Equal(t, []string{"x.png", "y.png", "z.png", "x.png", "y.png"}, got)

	// Identical inputs, identical output — no randomness anywhere.
	again := Assign(sampleScenes(5), pool, opts)
	assert.Equal(t, scenes, again)
}

func TestAssignEffectPaletteCycles(t *testing.T) {
	scenes := Assign(sampleScenes(7), []string{"a.png"}, AssignOptions{})
	want := []string{
		types.EffectZoomIn, types.EffectStatic, types.EffectZoomCenter,
		types.EffectZoomIn, types.EffectStatic, types.EffectZoomCenter,
		types.EffectZoomIn,
	}
	for i, s := range scenes {
		assert.Equal(t, want[i], s.Visuals.MainContent.Effect, "scene %d", i)
	}
}

func TestAssignEmptyPoolShowsBackgroundOnly(t *testing.T) {
	scenes := Assign(sampleScenes(2), nil, AssignOptions{Background: "bg.png"})
	for _, s := range scenes {
		require.NotNil(t, s.Visuals.MainContent)
		assert.Equal(t, types.ContentNone, s.Visuals.MainContent.Type)
		assert.Empty(t, s.Visuals.MainContent.File)
		assert.Equal(t, "bg.png", s.Visuals.Background)
	}
}

func TestAssignCaptionsEchoSceneWords(t *testing.T) {
	scenes := Assign(sampleScenes(3), []string{"a.png"}, AssignOptions{FadeSec: 0.5})
	for _, s := range scenes {
		assert.True(t, s.Captions.Enabled)
		assert.Equal(t, s.Words, s.Captions.Words, "caption timing must come from the scene's own words")
		assert.Equal(t, "fade", s.Transition.Type)
		assert.Equal(t, 0.5, s.Transition.Duration)
	}
}
