package plan

import (
	"finshorts-pipeline/types"
)

// effectPalette cycles by scene index. The assignment is a pure
// function of the index so identical inputs always produce an
// identical plan.
var effectPalette = []string{
	types.EffectZoomIn,
	types.EffectStatic,
	types.EffectZoomCenter,
}

// Frame regions for the vertical 1080x1920 layout: illustrations on
// top, captions mid-frame, tweet/chart panel below, ticker above the
// black YouTube UI strip.
var (
	illustrationRect = types.Rect{X: 75, Y: 300, Width: 930, Height: 700}
	tickerRect       = types.Rect{X: 0, Y: 1400, Width: 1080, Height: 120}
)

// AssignOptions carries the file references and style knobs the
// assigner stamps onto every scene.
type AssignOptions struct {
	Background  string
	TickerFile  string
	TickerSpeed int
	FadeSec     float64
	Style       types.CaptionStyle
}

// Assign populates visuals, captions and transition on each scene.
// Illustration i is illustrations[i mod len] (round-robin, content
// agnostic); with an empty pool only the background shows. Captions
// always echo the scene's own word list. Pure: no I/O, no randomness.
func Assign(scenes []types.Scene, illustrations []string, opts AssignOptions) []types.Scene {
	for i := range scenes {
		scene := &scenes[i]

		scene.Visuals = types.VisualSpec{
			Background: opts.Background,
			Ticker: types.Ticker{
				File:        opts.TickerFile,
				ScrollSpeed: opts.TickerSpeed,
				Position:    tickerRect,
			},
		}

		if len(illustrations) > 0 {
			scene.Visuals.MainContent = &types.MainContent{
				Type:     types.ContentIllustration,
				File:     illustrations[i%len(illustrations)],
				Effect:   effectPalette[i%len(effectPalette)],
				Position: illustrationRect,
			}
		} else {
			scene.Visuals.MainContent = &types.MainContent{Type: types.ContentNone}
		}

		scene.Captions = types.CaptionSpec{
			Enabled: true,
			Words:   scene.Words,
			Style:   opts.Style,
		}

		scene.Transition = types.TransitionSpec{
			Type:     "fade",
			Duration: opts.FadeSec,
		}
	}
	return scenes
}
