package assemble

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"finshorts-pipeline/config"
	"finshorts-pipeline/plan"
	"finshorts-pipeline/types"
)

// The ticker strip scales by height only; the width cap just has to be
// larger than any plausible strip.
const tickerStripMaxW = 1 << 20

// Assembler turns a production plan plus the asset files it names into
// one finished MP4. It owns no policy: every timing and placement
// decision was already frozen into the plan by the planner.
type Assembler struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Assembler {
	return &Assembler{cfg: cfg}
}

// Run loads the plan at planPath, prefetches every asset, composites
// the layer stack, and encodes outPath. All asset failures surface
// before the first frame is rendered.
func (a *Assembler) Run(ctx context.Context, planPath, outPath string) error {
	p, err := plan.Load(planPath)
	if err != nil {
		return err
	}

	width, height, err := frameSize(p.Metadata.Resolution)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrMalformedInput, err)
	}
	fps := p.Metadata.FPS
	if fps <= 0 {
		fps = a.cfg.Video.FPS
	}

	total, err := TotalDuration(p.Scenes, a.cfg.Video.TrailingBufferSec)
	if err != nil {
		return err
	}
	log.Printf("[assemble] plan %s: %d scenes, %.2fs total at %dfps", planPath, len(p.Scenes), total, fps)

	cache := NewCache()
	defer cache.Release()

	reqs := assetRequests(p, width, height)
	if err := cache.Prefetch(ctx, reqs, a.cfg.Video.CacheWorkers); err != nil {
		return fmt.Errorf("prefetch assets: %w", err)
	}
	log.Printf("[assemble] warmed %d assets (%d decodes)", len(reqs), cache.Decodes())

	layers, err := a.buildLayers(p, cache, width, height, total)
	if err != nil {
		return err
	}

	assPath, err := WriteASS(p.Scenes, captionStyle(p.Scenes), width, height,
		filepath.Join(filepath.Dir(outPath), "captions.ass"))
	if err != nil {
		return err
	}

	mix, err := resolveAudio(p.Audio, total)
	if err != nil {
		return err
	}

	comp := &Compositor{Width: width, Height: height, FPS: fps, Total: total, Layers: layers}

	renderCtx := ctx
	if a.cfg.Video.RenderTimeoutMin > 0 {
		var cancel context.CancelFunc
		renderCtx, cancel = context.WithTimeout(ctx, time.Duration(a.cfg.Video.RenderTimeoutMin)*time.Minute)
		defer cancel()
	}

	return render(renderCtx, comp, RenderSettings{
		Width:    width,
		Height:   height,
		FPS:      fps,
		Bitrate:  a.cfg.Video.Bitrate,
		ASSPath:  assPath,
		AudioMix: mix,
		OutPath:  outPath,
	})
}

// TotalDuration is the video length: the latest word end across all
// scenes plus a trailing buffer so the last word is never clipped.
func TotalDuration(scenes []types.Scene, trailingBuffer float64) (float64, error) {
	lastEnd := 0.0
	for _, s := range scenes {
		for _, w := range s.Words {
			if w.End > lastEnd {
				lastEnd = w.End
			}
		}
	}
	if lastEnd <= 0 {
		return 0, fmt.Errorf("%w: plan has no timed words", types.ErrInvalidTimeline)
	}
	return lastEnd + trailingBuffer, nil
}

// assetRequests lists every image the render will touch. Duplicate
// files at the same size collapse to one decode inside the cache.
func assetRequests(p *types.ProductionPlan, width, height int) []Request {
	var reqs []Request
	if len(p.Scenes) > 0 && p.Scenes[0].Visuals.Background != "" {
		reqs = append(reqs, Request{Path: p.Scenes[0].Visuals.Background, W: width, H: height, Stretch: true})
	}
	for _, s := range p.Scenes {
		mc := s.Visuals.MainContent
		if mc != nil && mc.Type == types.ContentIllustration && mc.File != "" {
			reqs = append(reqs, Request{Path: mc.File, W: mc.Position.Width, H: mc.Position.Height})
		}
		if s.Visuals.Ticker.File != "" {
			reqs = append(reqs, Request{Path: s.Visuals.Ticker.File, W: tickerStripMaxW, H: s.Visuals.Ticker.Position.Height})
		}
	}
	if alt := p.GlobalLayers.TweetChartAlternator; alt != nil && alt.Enabled {
		reqs = append(reqs,
			Request{Path: alt.TweetFile, W: alt.Position.MaxWidth, H: alt.Position.MaxHeight},
			Request{Path: alt.ChartFile, W: alt.Position.MaxWidth, H: alt.Position.MaxHeight},
		)
	}
	return reqs
}

// buildLayers assembles the z-ordered stack: background, illustration
// clips, tweet/chart alternator, scrolling ticker. Captions sit above
// all of these but are burned in by the encoder, not composited here.
func (a *Assembler) buildLayers(p *types.ProductionPlan, cache *Cache, width, height int, total float64) ([]Layer, error) {
	var layers []Layer

	if len(p.Scenes) > 0 && p.Scenes[0].Visuals.Background != "" {
		bg, err := cache.Stretch(p.Scenes[0].Visuals.Background, width, height)
		if err != nil {
			return nil, err
		}
		layers = append(layers, &backgroundLayer{img: bg})
	}

	var clips []illustrationClip
	for i, s := range p.Scenes {
		mc := s.Visuals.MainContent
		if mc == nil || mc.Type != types.ContentIllustration || mc.File == "" {
			continue
		}
		img, err := cache.Fit(mc.File, mc.Position.Width, mc.Position.Height)
		if err != nil {
			return nil, err
		}
		clip := illustrationClip{
			img:    img,
			start:  s.Start,
			end:    s.End,
			effect: mc.Effect,
			rect:   mc.Position,
			first:  len(clips) == 0,
			last:   i == len(p.Scenes)-1,
		}
		if clip.last {
			// Keep the final visual up through the trailing buffer.
			clip.end = total
		}
		clips = append(clips, clip)
	}
	if len(clips) > 0 {
		layers = append(layers, &illustrationLayer{
			clips:     clips,
			fadeSec:   a.cfg.Video.CrossfadeSec,
			intensity: a.cfg.Video.ZoomIntensity,
		})
	}

	if alt := p.GlobalLayers.TweetChartAlternator; alt != nil && alt.Enabled {
		tweet, err := cache.Fit(alt.TweetFile, alt.Position.MaxWidth, alt.Position.MaxHeight)
		if err != nil {
			return nil, err
		}
		chart, err := cache.Fit(alt.ChartFile, alt.Position.MaxWidth, alt.Position.MaxHeight)
		if err != nil {
			return nil, err
		}
		layers = append(layers, &alternatorLayer{
			tweet:    padToBox(tweet, alt.Position.MaxWidth, alt.Position.MaxHeight),
			chart:    padToBox(chart, alt.Position.MaxWidth, alt.Position.MaxHeight),
			interval: alt.Interval,
			fade:     alt.TransitionDuration,
			x:        (width - alt.Position.MaxWidth) / 2,
			y:        alt.Position.Y,
		})
	}

	if len(p.Scenes) > 0 && p.Scenes[0].Visuals.Ticker.File != "" {
		tk := p.Scenes[0].Visuals.Ticker
		strip, err := cache.Fit(tk.File, tickerStripMaxW, tk.Position.Height)
		if err != nil {
			return nil, err
		}
		layers = append(layers, &tickerLayer{strip: strip, speed: tk.ScrollSpeed, rect: tk.Position})
	}

	return layers, nil
}

// frameSize parses the plan's "WxH" resolution string.
func frameSize(res string) (int, int, error) {
	parts := strings.SplitN(res, "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("bad resolution %q, want WxH", res)
	}
	w, errW := strconv.Atoi(parts[0])
	h, errH := strconv.Atoi(parts[1])
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("bad resolution %q, want WxH", res)
	}
	return w, h, nil
}

// captionStyle returns the first enabled scene's caption style; scenes
// share one style by construction.
func captionStyle(scenes []types.Scene) types.CaptionStyle {
	for _, s := range scenes {
		if s.Captions.Enabled {
			return s.Captions.Style
		}
	}
	return types.CaptionStyle{}
}
