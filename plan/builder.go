package plan

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"finshorts-pipeline/config"
	"finshorts-pipeline/types"
)

// Artifact file names under the output directory.
const (
	TimestampsFile = "timestamps.json"
	AnalysisFile   = "financial_analysis.json"
	ManifestFile   = "illustrations_manifest.json"
	PlanFile       = "production_plan.json"
	NarrationFile  = "narration.mp3"
)

// Planner builds the production plan from the upstream artifacts
type Planner struct {
	cfg *config.Config
}

// New creates a new Planner
func New(cfg *config.Config) *Planner {
	return &Planner{cfg: cfg}
}

// Run loads timestamps and the illustration manifest, segments the
// narration into scenes, assigns visuals, and writes the plan JSON.
// Returns the plan file path.
func (p *Planner) Run() (string, error) {
	log.Println("[plan] Building production plan...")

	outDir := p.cfg.Paths.Output
	ts, err := LoadTimestamps(filepath.Join(outDir, TimestampsFile))
	if err != nil {
		return "", err
	}
	log.Printf("[plan] Loaded %d word-level timestamps", len(ts.Words))

	title := "Financial Short"
	if a, err := loadAnalysis(filepath.Join(outDir, AnalysisFile)); err != nil {
		log.Printf("[plan] ⚠️  No analysis title available: %v", err)
	} else if a.Title != "" {
		title = a.Title
	}

	illustrations, err := LoadManifest(filepath.Join(p.cfg.Paths.Illustrations, ManifestFile))
	if err != nil {
		log.Printf("[plan] ⚠️  No illustration manifest: %v — scenes will use background only", err)
	} else {
		log.Printf("[plan] %d illustrations available", len(illustrations))
	}

	v := p.cfg.Video
	scenes := Segment(ts.Words, v.MaxSceneSec, v.PauseThresholdSec)
	log.Printf("[plan] Created %d scenes", len(scenes))

	scenes = Assign(scenes, illustrations, AssignOptions{
		Background:  p.cfg.Paths.Background,
		TickerFile:  p.cfg.Paths.TickerStrip,
		TickerSpeed: v.TickerScrollSpeed,
		FadeSec:     v.SceneFadeSec,
		Style: types.CaptionStyle{
			FontSize:      v.CaptionFontSize,
			FontWeight:    "bold",
			ActiveColor:   v.CaptionActiveColor,
			InactiveColor: v.CaptionColor,
			PositionY:     1350,
		},
	})

	plan, err := Build(scenes, BuildInputs{
		Title:      title,
		Resolution: v.Resolution,
		FPS:        v.FPS,
		Narration:  filepath.Join(outDir, NarrationFile),
		Music:      p.cfg.Paths.Music,
		MusicVol:   v.MusicVolume,
		Alternator: &types.Alternator{
			Enabled:            true,
			TweetFile:          p.cfg.Paths.TweetScreenshot,
			ChartFile:          p.cfg.Paths.StockChart,
			Interval:           v.AlternationSec,
			TransitionDuration: v.AlternationFadeSec,
			Position:           types.AlternatorPosition{Y: 1120, MaxWidth: 900, MaxHeight: 400},
		},
	})
	if err != nil {
		return "", err
	}

	planPath := filepath.Join(outDir, PlanFile)
	if err := Save(plan, planPath); err != nil {
		return "", err
	}

	log.Printf("[plan] ✅ Plan saved: %s (%d scenes, %.2fs)", planPath, len(plan.Scenes), plan.Metadata.DurationSeconds)
	return planPath, nil
}

// BuildInputs aggregates the global plan fields around the scene list.
type BuildInputs struct {
	Title      string
	Resolution string
	FPS        int
	Narration  string
	Music      string
	MusicVol   float64
	Alternator *types.Alternator
}

// Build assembles the final plan and validates the scene timeline.
// Zero scenes is an invalid timeline, not an empty plan.
func Build(scenes []types.Scene, in BuildInputs) (*types.ProductionPlan, error) {
	if len(scenes) == 0 {
		return nil, fmt.Errorf("%w: segmentation produced zero scenes", types.ErrInvalidTimeline)
	}
	if err := checkTimeline(scenes); err != nil {
		return nil, err
	}

	p := &types.ProductionPlan{
		SchemaVersion: types.PlanSchemaVersion,
		Metadata: types.VideoMetadata{
			Title:           in.Title,
			DurationSeconds: scenes[len(scenes)-1].End,
			Resolution:      in.Resolution,
			FPS:             in.FPS,
		},
		Audio: types.AudioSpec{
			Narration: types.AudioTrack{File: in.Narration, Volume: 1.0},
		},
		Scenes:       scenes,
		GlobalLayers: types.GlobalLayers{TweetChartAlternator: in.Alternator},
	}
	if in.Music != "" {
		p.Audio.Music = &types.AudioTrack{File: in.Music, Volume: in.MusicVol, Loop: true}
	}
	return p, nil
}

// checkTimeline rejects non-monotonic or overlapping scenes. This
// should be unreachable given correct segmentation, but the builder is
// the contract boundary and verifies it defensively.
func checkTimeline(scenes []types.Scene) error {
	for i, s := range scenes {
		if s.End < s.Start {
			return fmt.Errorf("%w: scene %d ends (%.3f) before it starts (%.3f)", types.ErrInvalidTimeline, s.Number, s.End, s.Start)
		}
		if i > 0 && s.Start < scenes[i-1].End {
			return fmt.Errorf("%w: scene %d starts (%.3f) before scene %d ends (%.3f)",
				types.ErrInvalidTimeline, s.Number, s.Start, scenes[i-1].Number, scenes[i-1].End)
		}
	}
	return nil
}

// LoadTimestamps reads and validates the whisper word-timestamp file.
func LoadTimestamps(path string) (*types.Timestamps, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: timestamps file %s (run the transcribe step first)", types.ErrMissingInput, path)
		}
		return nil, err
	}
	var ts types.Timestamps
	if err := json.Unmarshal(data, &ts); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrMalformedInput, path, err)
	}
	if len(ts.Words) == 0 {
		return nil, fmt.Errorf("%w: %s has no word-level timestamps", types.ErrMalformedInput, path)
	}
	for i, w := range ts.Words {
		if w.Text == "" {
			return nil, fmt.Errorf("%w: %s: words[%d] has no text", types.ErrMalformedInput, path, i)
		}
		if w.End < w.Start {
			return nil, fmt.Errorf("%w: %s: words[%d] %q ends before it starts", types.ErrMalformedInput, path, i, w.Text)
		}
		if i > 0 && w.Start < ts.Words[i-1].Start {
			return nil, fmt.Errorf("%w: %s: words[%d] %q starts before its predecessor", types.ErrMalformedInput, path, i, w.Text)
		}
	}
	return &ts, nil
}

// LoadManifest reads the optional illustration manifest and returns the
// image paths in manifest order.
func LoadManifest(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m types.IllustrationManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrMalformedInput, path, err)
	}
	paths := make([]string, 0, len(m.Images))
	for _, img := range m.Images {
		if p := img.Path(); p != "" {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

func loadAnalysis(path string) (*types.Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var a types.Analysis
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrMalformedInput, path, err)
	}
	return &a, nil
}

// Load reads a saved plan and re-validates it; the assembler trusts
// nothing about the file beyond its path.
func Load(path string) (*types.ProductionPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: production plan %s (run the plan step first)", types.ErrMissingInput, path)
		}
		return nil, err
	}
	var p types.ProductionPlan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrMalformedInput, path, err)
	}
	if err := Validate(&p); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &p, nil
}

// Validate schema-checks a plan before it is saved or consumed.
func Validate(p *types.ProductionPlan) error {
	if p.SchemaVersion != types.PlanSchemaVersion {
		return fmt.Errorf("%w: unsupported schema_version %d (want %d)", types.ErrMalformedInput, p.SchemaVersion, types.PlanSchemaVersion)
	}
	if len(p.Scenes) == 0 {
		return fmt.Errorf("%w: plan has zero scenes", types.ErrInvalidTimeline)
	}
	if p.Audio.Narration.File == "" {
		return fmt.Errorf("%w: plan names no narration file", types.ErrMalformedInput)
	}
	if p.Metadata.FPS <= 0 {
		return fmt.Errorf("%w: plan has no fps", types.ErrMalformedInput)
	}
	return checkTimeline(p.Scenes)
}

// Save writes the plan JSON atomically enough for a batch pipeline:
// marshal first, single write after.
func Save(p *types.ProductionPlan, path string) error {
	if err := Validate(p); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
