package screenshot

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"finshorts-pipeline/config"
	"finshorts-pipeline/types"
)

// Renderer produces the tweet card screenshot shown in the video. The
// card is a local HTML template rendered in headless Chrome, so no
// network or auth is involved and the layout is fully ours.
type Renderer struct {
	cfg *config.Config
}

// New creates a new Renderer
func New(cfg *config.Config) *Renderer {
	return &Renderer{cfg: cfg}
}

const cardTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { margin: 0; background: transparent; font-family: -apple-system, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; }
  #card {
    width: {{.Width}}px; box-sizing: border-box; padding: 28px 32px;
    background: #ffffff; border-radius: 20px; border: 1px solid #e1e8ed;
  }
  .author { font-weight: 700; font-size: 26px; color: #0f1419; }
  .handle { font-size: 22px; color: #536471; margin-left: 6px; }
  .text { font-size: 28px; line-height: 1.35; color: #0f1419; margin-top: 14px; white-space: pre-wrap; }
  .metrics { margin-top: 18px; font-size: 20px; color: #536471; }
  .metrics b { color: #0f1419; }
</style>
</head>
<body>
<div id="card">
  <span class="author">{{.Author}}</span><span class="handle">{{.Handle}}</span>
  <div class="text">{{.Text}}</div>
  <div class="metrics"><b>{{.Likes}}</b> Likes &nbsp; <b>{{.Reposts}}</b> Reposts &nbsp; <b>{{.Replies}}</b> Replies</div>
</div>
</body>
</html>`

var cardTmpl = template.Must(template.New("card").Parse(cardTemplate))

// Run renders the tweet card and writes tweet_screenshot.png under
// outputDir. Returns the screenshot path.
func (r *Renderer) Run(ctx context.Context, tweet *types.Tweet, outputDir string) (string, error) {
	log.Println("[screenshot] Rendering tweet card...")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}

	width := r.cfg.Screenshot.Width
	if width == 0 {
		width = 900
	}

	htmlPath := filepath.Join(outputDir, "tweet_card.html")
	var buf bytes.Buffer
	err := cardTmpl.Execute(&buf, struct {
		Width   int
		Author  string
		Handle  string
		Text    string
		Likes   int
		Reposts int
		Replies int
	}{width, tweet.Author, tweet.Handle, tweet.Text, tweet.Likes, tweet.Reposts, tweet.Replies})
	if err != nil {
		return "", fmt.Errorf("render card template: %w", err)
	}
	if err := os.WriteFile(htmlPath, buf.Bytes(), 0644); err != nil {
		return "", err
	}

	outPath := filepath.Join(outputDir, "tweet_screenshot.png")
	if err := r.capture(ctx, htmlPath, outPath, width); err != nil {
		return "", err
	}

	log.Printf("[screenshot] ✅ Tweet card saved: %s", outPath)
	return outPath, nil
}

func (r *Renderer) capture(ctx context.Context, htmlPath, outPath string, width int) error {
	l := launcher.New().Headless(true)
	url, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	defer l.Cleanup()

	browser := rod.New().ControlURL(url).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect browser: %w", err)
	}
	defer browser.Close()

	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return err
	}
	page, err := browser.Page(proto.TargetCreateTarget{URL: "file://" + abs})
	if err != nil {
		return fmt.Errorf("open card page: %w", err)
	}
	page = page.Timeout(30 * time.Second)
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait for card load: %w", err)
	}

	scale := r.cfg.Screenshot.Scale
	if scale == 0 {
		scale = 2
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width + 40,
		Height:            1200,
		DeviceScaleFactor: float64(scale),
	}); err != nil {
		return fmt.Errorf("set viewport: %w", err)
	}

	card, err := page.Element("#card")
	if err != nil {
		return fmt.Errorf("find card element: %w", err)
	}
	data, err := card.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return fmt.Errorf("screenshot card: %w", err)
	}
	return os.WriteFile(outPath, data, 0644)
}
