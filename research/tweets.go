package research

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"finshorts-pipeline/config"
	"finshorts-pipeline/types"
)

// hookKeywords boost a tweet's score when present
var hookKeywords = []string{
	"earnings", "crash", "surge", "bankrupt", "merger",
	"acquisition", "short squeeze", "all-time high", "sec", "lawsuit",
	"layoffs", "buyback", "dividend", "guidance", "downgrade",
	"upgrade", "halted", "insider", "fed", "rate cut",
}

var tickerPattern = regexp.MustCompile(`\$([A-Z]{1,5})\b`)

// Researcher finds the most viral finance post to build a video
// around. X search is the primary source; Reddit is the fallback when
// the X API is unavailable or returns nothing usable.
type Researcher struct {
	cfg        *config.Config
	httpClient *http.Client
	usedTweets map[string]bool
}

// New creates a new Researcher
func New(cfg *config.Config) *Researcher {
	return &Researcher{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		usedTweets: loadUsedTweets(usedTweetsLog(cfg)),
	}
}

// Run fetches, scores, deduplicates and writes the tweet report under
// outputDir. Returns the report file path.
func (r *Researcher) Run(ctx context.Context, outputDir string) (string, error) {
	log.Println("[research] Searching for viral finance posts...")

	var candidates []*types.Tweet

	tweets, err := r.searchX(ctx)
	if err != nil {
		log.Printf("[research] X search warning: %v", err)
	} else {
		candidates = append(candidates, tweets...)
		log.Printf("[research] X: found %d candidates", len(tweets))
	}

	if len(candidates) == 0 {
		redditPosts, err := r.scrapeReddit(ctx)
		if err != nil {
			log.Printf("[research] Reddit fallback warning: %v", err)
		} else {
			candidates = append(candidates, redditPosts...)
			log.Printf("[research] Reddit: found %d candidates", len(redditPosts))
		}
	}

	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: no candidate posts from any source", types.ErrMissingInput)
	}

	for _, t := range candidates {
		t.Score = r.scoreTweet(t)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	var selected *types.Tweet
	for _, t := range candidates {
		if !r.usedTweets[t.ID] {
			selected = t
			break
		}
	}
	if selected == nil {
		return "", fmt.Errorf("all candidate posts have been used already")
	}

	log.Printf("[research] ✅ Selected: %q by %s (score: %d)", truncate(selected.Text, 60), selected.Handle, selected.Score)
	r.markUsed(selected)

	report := types.TweetReport{
		SelectedTweet: *selected,
		Candidates:    capCandidates(candidates, r.cfg.Research.MaxCandidates),
		SelectedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	reportPath := filepath.Join(outputDir, "tweet_report.json")
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(reportPath, data, 0644); err != nil {
		return "", err
	}
	return reportPath, nil
}

// --- X recent search ---

type xSearchResponse struct {
	Data []struct {
		ID            string `json:"id"`
		Text          string `json:"text"`
		AuthorID      string `json:"author_id"`
		CreatedAt     string `json:"created_at"`
		PublicMetrics struct {
			LikeCount    int `json:"like_count"`
			RetweetCount int `json:"retweet_count"`
			ReplyCount   int `json:"reply_count"`
		} `json:"public_metrics"`
	} `json:"data"`
	Includes struct {
		Users []struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Username string `json:"username"`
		} `json:"users"`
	} `json:"includes"`
	Errors []struct {
		Detail string `json:"detail"`
	} `json:"errors"`
}

func (r *Researcher) searchX(ctx context.Context) ([]*types.Tweet, error) {
	bearer := os.Getenv("X_BEARER_TOKEN")
	if bearer == "" {
		return nil, fmt.Errorf("X_BEARER_TOKEN not set")
	}

	query := r.cfg.Research.Query
	if query == "" {
		query = "(stocks OR earnings OR \"stock market\") -is:retweet -is:reply lang:en"
	}

	lookback := r.cfg.Research.LookbackHours
	if lookback == 0 {
		lookback = 24
	}
	startTime := time.Now().Add(-time.Duration(lookback) * time.Hour).UTC().Format(time.RFC3339)

	params := url.Values{}
	params.Set("query", query)
	params.Set("start_time", startTime)
	params.Set("max_results", "100")
	params.Set("tweet.fields", "public_metrics,created_at,author_id")
	params.Set("expansions", "author_id")
	params.Set("user.fields", "name,username")

	req, err := http.NewRequestWithContext(ctx, "GET",
		"https://api.x.com/2/tweets/search/recent?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("x search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("x search HTTP %d", resp.StatusCode)
	}

	var result xSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("parse x response: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("x search error: %s", result.Errors[0].Detail)
	}

	users := make(map[string]struct{ name, username string }, len(result.Includes.Users))
	for _, u := range result.Includes.Users {
		users[u.ID] = struct{ name, username string }{u.Name, u.Username}
	}

	var tweets []*types.Tweet
	for _, d := range result.Data {
		if d.PublicMetrics.LikeCount < r.cfg.Research.MinLikes {
			continue
		}
		if d.PublicMetrics.RetweetCount < r.cfg.Research.MinReposts {
			continue
		}
		u := users[d.AuthorID]
		tweets = append(tweets, &types.Tweet{
			ID:       "x_" + d.ID,
			Author:   u.name,
			Handle:   "@" + u.username,
			Text:     d.Text,
			Likes:    d.PublicMetrics.LikeCount,
			Reposts:  d.PublicMetrics.RetweetCount,
			Replies:  d.PublicMetrics.ReplyCount,
			Source:   "x",
			URL:      fmt.Sprintf("https://x.com/%s/status/%s", u.username, d.ID),
			PostedAt: d.CreatedAt,
			Tickers:  ExtractTickers(d.Text),
		})
	}
	return tweets, nil
}

// --- Scoring ---

// scoreTweet weights replies above reposts above likes: arguments in
// the comments are what travel on Shorts.
func (r *Researcher) scoreTweet(t *types.Tweet) int {
	score := t.Likes + 3*t.Reposts + 5*t.Replies

	textLower := strings.ToLower(t.Text)
	for _, kw := range hookKeywords {
		if strings.Contains(textLower, kw) {
			score += 500
		}
	}

	if len(t.Tickers) > 0 {
		score += 1000
	}

	// Recency bonus: posted within the last 6 hours
	if ts, err := time.Parse(time.RFC3339, t.PostedAt); err == nil {
		if time.Since(ts) < 6*time.Hour {
			score += 2000
		}
	}

	return score
}

// --- Helpers ---

// ExtractTickers pulls cashtag symbols like $TSLA from post text.
func ExtractTickers(text string) []string {
	seen := make(map[string]bool)
	var tickers []string
	for _, m := range tickerPattern.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			tickers = append(tickers, m[1])
		}
	}
	return tickers
}

func capCandidates(all []*types.Tweet, max int) []types.Tweet {
	if max <= 0 {
		max = 10
	}
	if len(all) > max {
		all = all[:max]
	}
	out := make([]types.Tweet, len(all))
	for i, t := range all {
		out[i] = *t
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// --- Used posts dedup log ---

func usedTweetsLog(cfg *config.Config) string {
	dir := cfg.Paths.Logs
	if dir == "" {
		dir = "logs"
	}
	return filepath.Join(dir, "used_tweets.json")
}

func loadUsedTweets(path string) map[string]bool {
	used := make(map[string]bool)
	data, err := os.ReadFile(path)
	if err != nil {
		return used
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return used
	}
	for _, id := range ids {
		used[id] = true
	}
	return used
}

func (r *Researcher) markUsed(t *types.Tweet) {
	r.usedTweets[t.ID] = true
	ids := make([]string, 0, len(r.usedTweets))
	for id := range r.usedTweets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	path := usedTweetsLog(r.cfg)
	_ = os.MkdirAll(filepath.Dir(path), 0755)
	data, _ := json.MarshalIndent(ids, "", "  ")
	_ = os.WriteFile(path, data, 0644)
}
