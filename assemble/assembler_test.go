package assemble

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finshorts-pipeline/config"
	"finshorts-pipeline/plan"
	"finshorts-pipeline/types"
)

func TestTotalDuration(t *testing.T) {
	scenes := []types.Scene{
		{Words: []types.Word{{Text: "a", Start: 0, End: 2.0}}},
		{Words: []types.Word{{Text: "b", Start: 2.5, End: 54.2}}},
	}
	total, err := TotalDuration(scenes, 1.0)
	require.NoError(t, err)
	assert.InDelta(t, 55.2, total, 1e-9)
}

func TestTotalDurationNoWordsIsInvalidTimeline(t *testing.T) {
	_, err := TotalDuration([]types.Scene{{Number: 1}}, 1.0)
	assert.ErrorIs(t, err, types.ErrInvalidTimeline)
}

func TestAssetRequestsDedupeViaCacheKeys(t *testing.T) {
	p := &types.ProductionPlan{
		Scenes: []types.Scene{
			{
				Visuals: types.VisualSpec{
					Background: "bg.png",
					MainContent: &types.MainContent{
						Type: types.ContentIllustration, File: "a.png",
						Position: types.Rect{X: 75, Y: 300, Width: 930, Height: 700},
					},
					Ticker: types.Ticker{File: "ticker.png", Position: types.Rect{Height: 120}},
				},
			},
		},
		GlobalLayers: types.GlobalLayers{TweetChartAlternator: &types.Alternator{
			Enabled: true, TweetFile: "tweet.png", ChartFile: "chart.png",
			Position: types.AlternatorPosition{Y: 1120, MaxWidth: 900, MaxHeight: 400},
		}},
	}

	reqs := assetRequests(p, 1080, 1920)
	require.Len(t, reqs, 5)
	assert.True(t, reqs[0].Stretch, "background fills the frame")
	assert.Equal(t, "bg.png", reqs[0].Path)
}

// fullPlan writes a complete one-scene plan plus every asset it names
// and returns the plan path.
func fullPlan(t *testing.T, dir string, illustration string) string {
	t.Helper()
	bg := writePNG(t, dir, "bg.png", 54, 96, color.RGBA{R: 20, G: 20, B: 40, A: 255})
	ticker := writePNG(t, dir, "ticker.png", 400, 24, color.RGBA{R: 200, A: 255})
	tweet := writePNG(t, dir, "tweet.png", 90, 40, color.White)
	chart := writePNG(t, dir, "chart.png", 90, 40, color.White)
	narration := touch(t, dir, "narration.mp3")

	words := []types.Word{{Text: "markets", Start: 0, End: 0.5}, {Text: "moved", Start: 0.5, End: 1.0}}
	scene := types.Scene{
		Number: 1, Start: 0, End: 1.0, Duration: 1.0, Text: "markets moved", Words: words,
		Visuals: types.VisualSpec{
			Background: bg,
			MainContent: &types.MainContent{
				Type: types.ContentIllustration, File: illustration, Effect: types.EffectZoomIn,
				Position: types.Rect{X: 5, Y: 20, Width: 44, Height: 33},
			},
			Ticker: types.Ticker{File: ticker, ScrollSpeed: 100, Position: types.Rect{X: 0, Y: 70, Width: 54, Height: 12}},
		},
		Captions: types.CaptionSpec{Enabled: true, Words: words, Style: types.CaptionStyle{FontSize: 72}},
	}

	p := &types.ProductionPlan{
		SchemaVersion: types.PlanSchemaVersion,
		Metadata:      types.VideoMetadata{Title: "t", DurationSeconds: 1.0, Resolution: "54x96", FPS: 30},
		Audio:         types.AudioSpec{Narration: types.AudioTrack{File: narration, Volume: 1.0}},
		Scenes:        []types.Scene{scene},
		GlobalLayers: types.GlobalLayers{TweetChartAlternator: &types.Alternator{
			Enabled: true, TweetFile: tweet, ChartFile: chart, Interval: 30, TransitionDuration: 1.0,
			Position: types.AlternatorPosition{Y: 56, MaxWidth: 45, MaxHeight: 20},
		}},
	}

	path := filepath.Join(dir, plan.PlanFile)
	require.NoError(t, plan.Save(p, path))
	return path
}

func TestRunFailsFastOnMissingIllustration(t *testing.T) {
	dir := t.TempDir()
	planPath := fullPlan(t, dir, filepath.Join(dir, "missing_illustration.png"))
	outPath := filepath.Join(dir, "out.mp4")

	cfg := &config.Config{}
	cfg.Video.TrailingBufferSec = 1.0
	cfg.Video.CacheWorkers = 2

	a := New(cfg)
	err := a.Run(context.Background(), planPath, outPath)
	assert.ErrorIs(t, err, types.ErrMissingInput)

	_, statErr := os.Stat(outPath)
	assert.True(t, os.IsNotExist(statErr), "no output file may exist after a failed prefetch")
}

func TestRunFailsOnMissingPlan(t *testing.T) {
	cfg := &config.Config{}
	a := New(cfg)
	err := a.Run(context.Background(), filepath.Join(t.TempDir(), "nope.json"), "out.mp4")
	assert.ErrorIs(t, err, types.ErrMissingInput)
}

func TestBuildLayersStackOrder(t *testing.T) {
	dir := t.TempDir()
	illustration := writePNG(t, dir, "ill.png", 44, 33, color.RGBA{G: 255, A: 255})
	planPath := fullPlan(t, dir, illustration)

	p, err := plan.Load(planPath)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Video.CrossfadeSec = 0.3
	cfg.Video.ZoomIntensity = 0.12

	cache := NewCache()
	defer cache.Release()
	layers, err := New(cfg).buildLayers(p, cache, 54, 96, 2.0)
	require.NoError(t, err)

	// background, illustrations, alternator, ticker — in that order.
	require.Len(t, layers, 4)
	assert.IsType(t, &backgroundLayer{}, layers[0])
	assert.IsType(t, &illustrationLayer{}, layers[1])
	assert.IsType(t, &alternatorLayer{}, layers[2])
	assert.IsType(t, &tickerLayer{}, layers[3])

	// The last (only) clip extends to total duration.
	ill := layers[1].(*illustrationLayer)
	require.Len(t, ill.clips, 1)
	assert.Equal(t, 2.0, ill.clips[0].end)
	assert.True(t, ill.clips[0].last)
}

func TestFrameSize(t *testing.T) {
	w, h, err := frameSize("1080x1920")
	require.NoError(t, err)
	assert.Equal(t, 1080, w)
	assert.Equal(t, 1920, h)

	_, _, err = frameSize("vertical")
	assert.Error(t, err)
}
