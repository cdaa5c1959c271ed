package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"finshorts-pipeline/config"
	"finshorts-pipeline/types"
)

// Transcriber runs the Whisper CLI to get word-level timestamps for
// the narration. The planner consumes the words; everything else in
// whisper's output is ignored.
type Transcriber struct {
	cfg *config.Config
}

// New creates a new Transcriber
func New(cfg *config.Config) *Transcriber {
	return &Transcriber{cfg: cfg}
}

// Run transcribes audioFile and writes timestamps.json under
// outputDir. Returns the timestamps file path.
func (t *Transcriber) Run(ctx context.Context, audioFile, outputDir string) (string, error) {
	log.Println("[transcribe] Running Whisper transcription...")

	if _, err := os.Stat(audioFile); err != nil {
		return "", fmt.Errorf("%w: narration audio %s", types.ErrMissingInput, audioFile)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}

	model := t.cfg.Transcribe.WhisperModel
	if model == "" {
		model = "base"
	}
	language := t.cfg.Transcribe.Language
	if language == "" {
		language = "en"
	}

	// whisper narration.mp3 --model base --output_format json --word_timestamps True
	cmd := exec.CommandContext(ctx,
		"whisper",
		audioFile,
		"--model", model,
		"--output_format", "json",
		"--output_dir", outputDir,
		"--language", language,
		"--word_timestamps", "True",
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("whisper failed: %w", err)
	}

	// Whisper saves as <audioFilename>.json — find it
	base := strings.TrimSuffix(filepath.Base(audioFile), filepath.Ext(audioFile))
	whisperOut := filepath.Join(outputDir, base+".json")

	ts, err := parseWhisperJSON(whisperOut)
	if err != nil {
		return "", err
	}

	outPath := filepath.Join(outputDir, "timestamps.json")
	data, err := json.MarshalIndent(ts, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return "", err
	}

	log.Printf("[transcribe] ✅ %d word timestamps: %s", len(ts.Words), outPath)
	return outPath, nil
}

// whisperOutput is the subset of whisper's JSON output we read. Word
// timings live under each segment.
type whisperOutput struct {
	Text     string `json:"text"`
	Segments []struct {
		Words []struct {
			Word  string  `json:"word"`
			Start float64 `json:"start"`
			End   float64 `json:"end"`
		} `json:"words"`
	} `json:"segments"`
}

// parseWhisperJSON flattens whisper's per-segment word lists into one
// ordered word sequence.
func parseWhisperJSON(path string) (*types.Timestamps, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: whisper output %s", types.ErrMissingInput, path)
		}
		return nil, err
	}

	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrMalformedInput, path, err)
	}

	ts := &types.Timestamps{Text: strings.TrimSpace(out.Text)}
	for _, seg := range out.Segments {
		for _, w := range seg.Words {
			text := strings.TrimSpace(w.Word)
			if text == "" {
				continue
			}
			ts.Words = append(ts.Words, types.Word{Text: text, Start: w.Start, End: w.End})
		}
	}
	if len(ts.Words) == 0 {
		return nil, fmt.Errorf("%w: %s produced no word timestamps", types.ErrMalformedInput, path)
	}
	ts.Duration = ts.Words[len(ts.Words)-1].End
	return ts, nil
}
