package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"finshorts-pipeline/config"
)

// Generator produces the narration audio via the ElevenLabs TTS API.
type Generator struct {
	cfg        *config.Config
	httpClient *http.Client
}

// New creates a new Generator
func New(cfg *config.Config) *Generator {
	return &Generator{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Run synthesizes the script into narration.mp3 under outputDir and
// returns the file path. Transient API failures are retried with
// backoff; the voice credit cost makes silent partial writes worse
// than a loud failure, so the file is only written on a 200.
func (g *Generator) Run(ctx context.Context, script string, outputDir string) (string, error) {
	log.Println("[audio] Generating narration via ElevenLabs...")

	apiKey := os.Getenv("ELEVENLABS_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("ELEVENLABS_API_KEY not set")
	}

	voiceID := g.cfg.Audio.VoiceID
	if voiceID == "" {
		voiceID = "21m00Tcm4TlvDq8ikWAM"
	}
	model := g.cfg.Audio.Model
	if model == "" {
		model = "eleven_turbo_v2_5"
	}

	body, err := json.Marshal(ttsRequest{
		Text:    script,
		ModelID: model,
		VoiceSettings: voiceSettings{
			Stability:       g.cfg.Audio.Stability,
			SimilarityBoost: g.cfg.Audio.Similarity,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("https://api.elevenlabs.io/v1/text-to-speech/%s?output_format=%s",
		voiceID, outputFormat(g.cfg.Audio.OutputFormat))

	var audio []byte
	for attempt := 1; attempt <= 3; attempt++ {
		audio, err = g.request(ctx, url, apiKey, body)
		if err == nil {
			break
		}
		if attempt < 3 {
			log.Printf("[audio] TTS attempt %d failed: %v — retrying...", attempt, err)
			select {
			case <-time.After(time.Duration(attempt) * 2 * time.Second):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	if err != nil {
		return "", fmt.Errorf("elevenlabs TTS: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("create audio dir: %w", err)
	}
	outPath := filepath.Join(outputDir, "narration.mp3")
	if err := os.WriteFile(outPath, audio, 0644); err != nil {
		return "", err
	}

	log.Printf("[audio] ✅ Narration saved: %s (%d KB)", outPath, len(audio)/1024)
	return outPath, nil
}

func (g *Generator) request(ctx context.Context, url, apiKey string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(msg))
	}
	return io.ReadAll(resp.Body)
}

func outputFormat(f string) string {
	if f == "" {
		return "mp3_44100_128"
	}
	return f
}
