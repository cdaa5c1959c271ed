package illustrate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"finshorts-pipeline/config"
	"finshorts-pipeline/types"
)

// Generator produces illustration images via Pollinations.ai (free,
// no key needed) and writes the manifest the planner reads.
type Generator struct {
	cfg        *config.Config
	httpClient *http.Client
}

// New creates a new Generator
func New(cfg *config.Config) *Generator {
	return &Generator{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Run generates one illustration per prompt concurrently and writes
// illustrations_manifest.json under outputDir. Seeds derive from the
// prompt index, so rerunning a failed batch regenerates the same
// images. Returns the manifest path.
func (g *Generator) Run(ctx context.Context, prompts []string, outputDir string) (string, error) {
	if len(prompts) == 0 {
		return "", fmt.Errorf("%w: no illustration prompts", types.ErrMissingInput)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}

	log.Printf("[illustrate] Generating %d illustrations via Pollinations...", len(prompts))

	// Each worker writes its own slot, so the slice needs no locking.
	images := make([]types.ManifestImage, len(prompts))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.cfg.Illustrations.Concurrency)
	for i, prompt := range prompts {
		i, prompt := i, prompt
		eg.Go(func() error {
			outFile := filepath.Join(outputDir, fmt.Sprintf("illustration_%03d.jpg", i+1))
			if err := g.fetch(ctx, prompt, i, outFile); err != nil {
				return fmt.Errorf("illustration %d: %w", i+1, err)
			}
			images[i] = types.ManifestImage{ImageID: i + 1, ImagePath: outFile, Prompt: prompt}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return "", err
	}

	manifest := types.IllustrationManifest{Images: images, TotalCount: len(images)}
	manifestPath := filepath.Join(outputDir, "illustrations_manifest.json")
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return "", err
	}

	log.Printf("[illustrate] ✅ %d illustrations saved, manifest: %s", len(images), manifestPath)
	return manifestPath, nil
}

func (g *Generator) fetch(ctx context.Context, prompt string, index int, outFile string) error {
	width := g.cfg.Illustrations.Width
	if width == 0 {
		width = 1024
	}
	height := g.cfg.Illustrations.Height
	if height == 0 {
		height = 768
	}
	model := g.cfg.Illustrations.Model
	if model == "" {
		model = "flux"
	}

	imageURL := fmt.Sprintf(
		"https://image.pollinations.ai/prompt/%s?width=%d&height=%d&nologo=true&model=%s&seed=%d",
		url.PathEscape(enhancePrompt(prompt)),
		width, height, model,
		index*42+7, // deterministic seed per prompt for reproducibility
	)

	log.Printf("[illustrate] Image %d: %q", index+1, truncate(prompt, 60))

	// Retry up to 3 times (Pollinations occasionally times out)
	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		err = g.download(ctx, imageURL, outFile)
		if err == nil {
			return nil
		}
		log.Printf("[illustrate] Attempt %d failed for image %d: %v", attempt, index+1, err)
		select {
		case <-time.After(time.Duration(attempt) * 3 * time.Second):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("pollinations fetch failed after 3 attempts: %w", err)
}

func (g *Generator) download(ctx context.Context, imageURL, outFile string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; FinShortsPipeline/1.0)")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from Pollinations", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	// Validate it's actually an image (not an error HTML page)
	if len(data) < 100 {
		return fmt.Errorf("response too small (%d bytes) — likely an error", len(data))
	}

	return os.WriteFile(outFile, data, 0644)
}

// enhancePrompt adds the channel's editorial style to the base prompt.
func enhancePrompt(base string) string {
	style := "clean financial editorial illustration, bold flat colors, modern vector style, high contrast"
	safety := "no text, no watermark, no logos"
	return fmt.Sprintf("%s, %s, %s", strings.TrimSpace(base), style, safety)
}

// BuildPrompts derives illustration prompts from the analysis: one
// per requested image, cycling through the script's key angles.
func BuildPrompts(a *types.Analysis, count int) []string {
	if count <= 0 {
		count = 5
	}
	subject := "stock market"
	if len(a.Tickers) > 0 {
		subject = strings.Join(a.Tickers, " and ") + " stock"
	}

	angles := []string{
		"dramatic %s price chart on a trading terminal",
		"investor reacting to %s news on a phone screen",
		"%s company headquarters with market data overlay",
		"bull and bear figures facing off over a %s chart",
		"stack of dollar bills and a rising %s graph",
		"trading floor screens showing %s volatility",
	}

	prompts := make([]string, count)
	for i := 0; i < count; i++ {
		prompts[i] = fmt.Sprintf(angles[i%len(angles)], subject)
	}
	return prompts
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
