package screenshot

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// ChartFetcher downloads a daily price chart for the video's primary
// ticker. Finviz serves static chart PNGs without auth; when that
// fails the fetcher falls back to stockcharts.
type ChartFetcher struct {
	httpClient *http.Client
}

// NewChartFetcher creates a new ChartFetcher
func NewChartFetcher() *ChartFetcher {
	return &ChartFetcher{
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

// Fetch downloads a chart for ticker and writes stock_chart.png under
// outputDir. Returns the chart path.
func (c *ChartFetcher) Fetch(ctx context.Context, ticker, outputDir string) (string, error) {
	if ticker == "" {
		return "", fmt.Errorf("no ticker to chart")
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}

	outFile := filepath.Join(outputDir, "stock_chart.png")

	sources := []string{
		fmt.Sprintf("https://charts2.finviz.com/chart.ashx?t=%s&ty=c&ta=1&p=d&s=l", ticker),
		fmt.Sprintf("https://stockcharts.com/c-sc/sc?s=%s&p=D&b=5&g=0&i=0", ticker),
	}

	var err error
	for _, src := range sources {
		if err = c.download(ctx, src, outFile); err == nil {
			log.Printf("[screenshot] ✅ %s chart saved: %s", ticker, outFile)
			return outFile, nil
		}
		log.Printf("[screenshot] Chart source failed for %s: %v", ticker, err)
	}
	return "", fmt.Errorf("no chart source worked for %s: %w", ticker, err)
}

func (c *ChartFetcher) download(ctx context.Context, fileURL, outPath string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", fileURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; FinShortsPipeline/1.0)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024)) // max 10MB
	if err != nil {
		return err
	}
	if len(data) < 1000 {
		return fmt.Errorf("file too small (%d bytes)", len(data))
	}
	return os.WriteFile(outPath, data, 0644)
}
