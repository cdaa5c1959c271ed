package script

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
	"strings"
	"time"

	"finshorts-pipeline/config"
	"finshorts-pipeline/types"
)

const systemPrompt = `You are a financial content writer for a faceless YouTube Shorts channel. You turn viral finance tweets into punchy 45-60 second narration scripts.

Your scripts MUST follow this structure:
1. HOOK (first sentence) - The single most surprising number or claim. No preamble.
2. CONTEXT (2-3 sentences) - What happened, who said it, why it matters.
3. STAKES (2-3 sentences) - What this means for the stock, the sector, or regular investors.
4. CLOSER (last sentence) - One sharp takeaway or open question.

You MUST respond with ONLY valid JSON — no preamble, no markdown, no explanation.

The JSON must have:
- "title": a YouTube Shorts title under 80 characters
- "script": the full narration as one string of plain spoken sentences
- "hook": the first sentence, repeated
- "tickers": array of stock tickers mentioned, like ["TSLA"]
- "sentiment": one of "bullish" | "bearish" | "neutral"

Rules:
- Never use symbols that sound wrong when read aloud ($ becomes "dollars", % becomes "percent")
- Target 110-150 words total (~45-60 seconds at natural pace)
- State numbers precisely; never invent figures not in the tweet`

// Analyst turns a selected tweet into a narration script via the Groq
// chat completions API.
type Analyst struct {
	cfg        *config.Config
	httpClient *http.Client
}

// New creates a new Analyst
func New(cfg *config.Config) *Analyst {
	return &Analyst{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Run generates the analysis for a tweet and writes it next to the
// other run artifacts. Returns the analysis file path.
func (a *Analyst) Run(ctx context.Context, tweet *types.Tweet, outputDir string) (string, error) {
	log.Println("[script] Generating narration script via Groq...")

	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("GROQ_API_KEY not set")
	}

	reqBody := chatRequest{
		Model: a.cfg.Script.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(tweet, a.cfg.Script.TargetSeconds)},
		},
		Temperature: a.cfg.Script.Temperature,
		MaxTokens:   2048,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", "https://api.groq.com/openai/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("groq request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBytes, &chatResp); err != nil {
		return "", fmt.Errorf("parse groq response: %w", err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("groq error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("groq returned no choices")
	}

	content := cleanJSON(chatResp.Choices[0].Message.Content)

	analysis, err := ParseAnalysis([]byte(content))
	if err != nil {
		return "", fmt.Errorf("%w\nraw content: %s", err, content[:min(200, len(content))])
	}
	if len(analysis.Tickers) == 0 {
		analysis.Tickers = tweet.Tickers
	}

	outPath := filepath.Join(outputDir, "financial_analysis.json")
	data, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return "", err
	}

	log.Printf("[script] ✅ Script ready: %q (%d words)", analysis.Title, len(strings.Fields(analysis.Script)))
	return outPath, nil
}

// ParseAnalysis validates the model's JSON into an Analysis.
func ParseAnalysis(data []byte) (*types.Analysis, error) {
	var a types.Analysis
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: parse analysis JSON: %v", types.ErrMalformedInput, err)
	}
	if strings.TrimSpace(a.Script) == "" {
		return nil, fmt.Errorf("%w: analysis has an empty script", types.ErrMalformedInput)
	}
	if a.Title == "" {
		a.Title = "Financial Short"
	}
	return &a, nil
}

func buildUserPrompt(tweet *types.Tweet, targetSeconds int) string {
	if targetSeconds == 0 {
		targetSeconds = 55
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Write a ~%d second narration script about the following tweet.\n\n", targetSeconds))
	sb.WriteString(fmt.Sprintf("AUTHOR: %s (%s)\n", tweet.Author, tweet.Handle))
	sb.WriteString(fmt.Sprintf("ENGAGEMENT: %d likes, %d reposts, %d replies\n\n", tweet.Likes, tweet.Reposts, tweet.Replies))
	sb.WriteString(fmt.Sprintf("TWEET:\n%s\n\n", tweet.Text))
	if len(tweet.Tickers) > 0 {
		sb.WriteString("TICKERS: " + strings.Join(tweet.Tickers, ", ") + "\n\n")
	}
	sb.WriteString("Respond ONLY with valid JSON. No markdown. No explanation.")
	return sb.String()
}

// cleanJSON strips markdown fences if the model wraps its response in ```json ... ```
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
