package research

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/vartanbeno/go-reddit/v2/reddit"

	"finshorts-pipeline/types"
)

// scrapeReddit pulls the day's top posts from the configured finance
// subreddits. Reddit posts have no repost metric, so upvotes stand in
// for likes and the score weighting compensates via comments.
func (r *Researcher) scrapeReddit(ctx context.Context) ([]*types.Tweet, error) {
	client, err := r.redditClient()
	if err != nil {
		return nil, fmt.Errorf("reddit client: %w", err)
	}

	subreddits := r.cfg.Research.Subreddits
	if len(subreddits) == 0 {
		subreddits = []string{"wallstreetbets", "stocks", "investing"}
	}

	var posts []*types.Tweet
	for _, sub := range subreddits {
		top, _, err := client.Subreddit.TopPosts(ctx, sub, &reddit.ListPostOptions{
			ListOptions: reddit.ListOptions{Limit: 25},
			Time:        "day",
		})
		if err != nil {
			log.Printf("[research] Reddit r/%s error: %v", sub, err)
			continue
		}

		for _, p := range top {
			if p.Stickied || p.NSFW {
				continue
			}
			if p.Score < r.cfg.Research.MinRedditScore {
				continue
			}
			if p.NumberOfComments < r.cfg.Research.MinComments {
				continue
			}

			text := p.Title
			if p.Body != "" {
				text = p.Title + "\n\n" + p.Body
			}
			posted := ""
			if p.Created != nil {
				posted = p.Created.Time.UTC().Format(time.RFC3339)
			}
			posts = append(posts, &types.Tweet{
				ID:       "reddit_" + p.ID,
				Author:   p.Author,
				Handle:   "u/" + p.Author,
				Text:     text,
				Likes:    p.Score,
				Replies:  p.NumberOfComments,
				Source:   "reddit/" + sub,
				URL:      "https://reddit.com" + p.Permalink,
				PostedAt: posted,
				Tickers:  ExtractTickers(text),
			})
		}
	}
	return posts, nil
}

// redditClient prefers script-app credentials from the environment and
// falls back to the read-only client, which needs none.
func (r *Researcher) redditClient() (*reddit.Client, error) {
	id := os.Getenv("REDDIT_CLIENT_ID")
	secret := os.Getenv("REDDIT_CLIENT_SECRET")
	username := os.Getenv("REDDIT_USERNAME")
	password := os.Getenv("REDDIT_PASSWORD")

	if id != "" && secret != "" && username != "" && password != "" {
		return reddit.NewClient(reddit.Credentials{
			ID:       id,
			Secret:   secret,
			Username: username,
			Password: password,
		})
	}
	return reddit.NewReadonlyClient()
}
