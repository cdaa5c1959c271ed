package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"finshorts-pipeline/assemble"
	"finshorts-pipeline/audio"
	"finshorts-pipeline/config"
	"finshorts-pipeline/illustrate"
	"finshorts-pipeline/plan"
	"finshorts-pipeline/research"
	"finshorts-pipeline/screenshot"
	"finshorts-pipeline/script"
	"finshorts-pipeline/transcribe"
	"finshorts-pipeline/types"
	"finshorts-pipeline/upload"
)

// runPipeline executes every stage end to end for one fresh run
// directory. Each stage writes its artifact to disk before the next
// starts, so a failed run can be resumed stage-by-stage with the
// individual subcommands.
func runPipeline(ctx context.Context, cfg *config.Config, skipUpload bool) error {
	for _, dir := range []string{cfg.Paths.Output, cfg.Paths.Logs} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create dir %s: %w", dir, err)
		}
	}

	runID := uuid.NewString()[:8]
	runDir := filepath.Join(cfg.Paths.Output, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return fmt.Errorf("create run dir: %w", err)
	}

	log.Printf("🎬 FinShorts Pipeline starting — Run ID: %s", runID)
	log.Printf("📁 Output dir: %s", runDir)

	state := &types.PipelineState{
		RunID:     runID,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	}
	defer func() {
		state.CompletedAt = time.Now().UTC().Format(time.RFC3339)
		saveJSON(filepath.Join(runDir, "pipeline_state.json"), state)
	}()

	fail := func(stage string, err error) error {
		state.Error = fmt.Sprintf("%s: %v", stage, err)
		return fmt.Errorf("%s: %w", stage, err)
	}

	// ─────────────────────────────────────────────
	// STAGE 1: Research
	// ─────────────────────────────────────────────
	log.Println("\n━━━ STAGE 1: Research ━━━")
	reportPath, err := research.New(cfg).Run(ctx, runDir)
	if err != nil {
		return fail("Stage 1 Research", err)
	}
	state.TweetReport = reportPath
	report, err := loadReport(reportPath)
	if err != nil {
		return fail("Stage 1 Research", err)
	}
	tweet := &report.SelectedTweet

	// ─────────────────────────────────────────────
	// STAGE 2: Script Writing
	// ─────────────────────────────────────────────
	log.Println("\n━━━ STAGE 2: Script Writing ━━━")
	analysisPath, err := script.New(cfg).Run(ctx, tweet, runDir)
	if err != nil {
		return fail("Stage 2 Script", err)
	}
	state.Analysis = analysisPath
	analysis, err := loadAnalysis(analysisPath)
	if err != nil {
		return fail("Stage 2 Script", err)
	}

	// ─────────────────────────────────────────────
	// STAGE 3: Narration Audio
	// ─────────────────────────────────────────────
	log.Println("\n━━━ STAGE 3: Narration Audio ━━━")
	narrationPath, err := audio.New(cfg).Run(ctx, analysis.Script, runDir)
	if err != nil {
		return fail("Stage 3 Audio", err)
	}
	state.Narration = narrationPath

	// ─────────────────────────────────────────────
	// STAGE 4: Transcription
	// ─────────────────────────────────────────────
	log.Println("\n━━━ STAGE 4: Transcription ━━━")
	timestampsPath, err := transcribe.New(cfg).Run(ctx, narrationPath, runDir)
	if err != nil {
		return fail("Stage 4 Transcribe", err)
	}
	state.Timestamps = timestampsPath

	// ─────────────────────────────────────────────
	// STAGE 5: Illustrations
	// ─────────────────────────────────────────────
	log.Println("\n━━━ STAGE 5: Illustrations ━━━")
	illustrationsDir := cfg.Paths.Illustrations
	if illustrationsDir == "" {
		illustrationsDir = filepath.Join(runDir, "illustrations")
	}
	prompts := illustrate.BuildPrompts(analysis, cfg.Illustrations.Count)
	if _, err := illustrate.New(cfg).Run(ctx, prompts, illustrationsDir); err != nil {
		log.Printf("⚠️  Stage 5 Illustrations failed: %v — scenes will use background only", err)
	}

	// ─────────────────────────────────────────────
	// STAGE 6: Tweet Card + Chart
	// ─────────────────────────────────────────────
	log.Println("\n━━━ STAGE 6: Tweet Card + Chart ━━━")
	tweetShot, err := screenshot.New(cfg).Run(ctx, tweet, runDir)
	if err != nil {
		return fail("Stage 6 Screenshot", err)
	}

	chartPath := cfg.Paths.StockChart
	if len(analysis.Tickers) > 0 {
		if p, err := screenshot.NewChartFetcher().Fetch(ctx, analysis.Tickers[0], runDir); err != nil {
			log.Printf("⚠️  Chart fetch failed: %v — using configured chart", err)
		} else {
			chartPath = p
		}
	}

	// ─────────────────────────────────────────────
	// STAGE 7: Production Plan
	// ─────────────────────────────────────────────
	log.Println("\n━━━ STAGE 7: Production Plan ━━━")
	runCfg := *cfg
	runCfg.Paths.Output = runDir
	runCfg.Paths.Illustrations = illustrationsDir
	runCfg.Paths.TweetScreenshot = tweetShot
	runCfg.Paths.StockChart = chartPath
	planPath, err := plan.New(&runCfg).Run()
	if err != nil {
		return fail("Stage 7 Plan", err)
	}
	state.PlanFile = planPath

	// ─────────────────────────────────────────────
	// STAGE 8: Video Assembly
	// ─────────────────────────────────────────────
	log.Println("\n━━━ STAGE 8: Video Assembly ━━━")
	videoPath := filepath.Join(runDir, "final_video.mp4")
	if err := assemble.New(cfg).Run(ctx, planPath, videoPath); err != nil {
		return fail("Stage 8 Assemble", err)
	}
	state.VideoFile = videoPath

	// ─────────────────────────────────────────────
	// STAGE 9: Upload
	// ─────────────────────────────────────────────
	if skipUpload {
		log.Println("\n━━━ STAGE 9: Upload skipped (--no-upload) ━━━")
		log.Printf("✅ Pipeline complete! Video: %s", videoPath)
		return nil
	}
	log.Println("\n━━━ STAGE 9: YouTube Upload ━━━")
	uploader := upload.New(cfg)
	meta := uploader.BuildMetadata(analysis, tweet)
	videoID, videoURL, err := uploader.Run(ctx, videoPath, meta)
	if err != nil {
		return fail("Stage 9 Upload", err)
	}
	state.YouTubeURL = videoURL
	_ = upload.LogUpload(videoID, videoURL, videoPath, cfg.Paths.Logs, meta)

	log.Printf("✅ Pipeline complete! Video: %s", videoURL)
	return nil
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

func loadReport(path string) (*types.TweetReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r types.TweetReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrMalformedInput, path, err)
	}
	return &r, nil
}

func loadAnalysis(path string) (*types.Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return script.ParseAnalysis(data)
}

func saveJSON(path string, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Printf("Warning: could not marshal JSON for %s: %v", path, err)
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Printf("Warning: could not save %s: %v", path, err)
	}
}
