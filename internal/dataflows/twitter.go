package dataflows

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/aletheia-intel/aletheia/config"
	"github.com/aletheia-intel/aletheia/models"
)

// TwitterClient searches recent tweets and reads list timelines through
// the Twitter API v2 with an app-only bearer token.
type TwitterClient struct {
	client *resty.Client
	bearer string
	listID string
	cache  *CacheManager
	guard  *ProviderGuard
}

// NewTwitterClient creates a Twitter client.
func NewTwitterClient(cfg *config.Config) *TwitterClient {
	client := resty.New()
	client.SetBaseURL("https://api.twitter.com/2")
	client.SetTimeout(30 * time.Second)
	if cfg.TwitterBearerToken != "" {
		client.SetAuthToken(cfg.TwitterBearerToken)
	}

	cacheDir := filepath.Join(cfg.DataCacheDir, "twitter")
	return &TwitterClient{
		client: client,
		bearer: cfg.TwitterBearerToken,
		listID: cfg.TwitterListID,
		cache:  NewCacheManager(cacheDir, 15*time.Minute, cfg.CacheEnabled),
		guard:  NewProviderGuard("twitter", 1, 2),
	}
}

type twitterTweet struct {
	ID            string    `json:"id"`
	Text          string    `json:"text"`
	AuthorID      string    `json:"author_id"`
	CreatedAt     time.Time `json:"created_at"`
	PublicMetrics struct {
		RetweetCount int `json:"retweet_count"`
		ReplyCount   int `json:"reply_count"`
		LikeCount    int `json:"like_count"`
	} `json:"public_metrics"`
}

type twitterUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type twitterResponse struct {
	Data     []twitterTweet `json:"data"`
	Includes struct {
		Users []twitterUser `json:"users"`
	} `json:"includes"`
}

var tweetFields = map[string]string{
	"tweet.fields": "created_at,public_metrics,author_id",
	"expansions":   "author_id",
	"user.fields":  "name,username",
}

// SearchTweets searches English tweets matching the query over the past
// `days` days.
func (tc *TwitterClient) SearchTweets(ctx context.Context, query string, days, maxResults int) ([]*models.SocialPost, error) {
	if tc.bearer == "" {
		return nil, fmt.Errorf("twitter bearer token not configured")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty twitter query")
	}
	if days <= 0 {
		days = 7
	}
	maxResults = clampTweetCount(maxResults)

	// Recent search covers seven days; clamp instead of erroring so a
	// longer hunt window still returns what the API can serve.
	if days > 7 {
		days = 7
	}
	startTime := time.Now().UTC().AddDate(0, 0, -days).Add(time.Minute)

	cacheKey := fmt.Sprintf("%s_%d_%d", query, days, maxResults)
	var cached []*models.SocialPost
	if tc.cache.Get("twitter", "search", cacheKey, &cached) {
		return cached, nil
	}

	var result twitterResponse
	params := map[string]string{
		"query":       query + " lang:en -is:retweet",
		"start_time":  startTime.Format(time.RFC3339),
		"max_results": strconv.Itoa(maxResults),
	}
	for k, v := range tweetFields {
		params[k] = v
	}

	if err := tc.fetch(ctx, "/tweets/search/recent", params, &result); err != nil {
		return nil, err
	}

	posts := tweetsToPosts(&result, "twitter")
	tc.cache.Set("twitter", "search", cacheKey, posts)
	return posts, nil
}

// ListID returns the curated list configured for the hunts, if any.
func (tc *TwitterClient) ListID() string {
	return tc.listID
}

// ListTweets reads the timeline of a curated list.
func (tc *TwitterClient) ListTweets(ctx context.Context, listID string, maxResults int) ([]*models.SocialPost, error) {
	if tc.bearer == "" {
		return nil, fmt.Errorf("twitter bearer token not configured")
	}
	listID = strings.TrimSpace(listID)
	if listID == "" {
		return nil, fmt.Errorf("empty twitter list id")
	}
	maxResults = clampTweetCount(maxResults)

	cacheKey := fmt.Sprintf("%s_%d", listID, maxResults)
	var cached []*models.SocialPost
	if tc.cache.Get("twitter", "list", cacheKey, &cached) {
		return cached, nil
	}

	var result twitterResponse
	params := map[string]string{
		"max_results": strconv.Itoa(maxResults),
	}
	for k, v := range tweetFields {
		params[k] = v
	}

	if err := tc.fetch(ctx, "/lists/"+listID+"/tweets", params, &result); err != nil {
		return nil, err
	}

	posts := tweetsToPosts(&result, "twitter_list")
	tc.cache.Set("twitter", "list", cacheKey, posts)
	return posts, nil
}

func (tc *TwitterClient) fetch(ctx context.Context, path string, params map[string]string, result *twitterResponse) error {
	return WithRetry(DefaultRetryConfig(), func() error {
		return tc.guard.Do(ctx, func() error {
			resp, err := tc.client.R().
				SetContext(ctx).
				SetQueryParams(params).
				SetResult(result).
				Get(path)
			if err != nil {
				return fmt.Errorf("failed to fetch tweets: %w", err)
			}
			if resp.StatusCode() != 200 {
				return fmt.Errorf("twitter HTTP %d for %s", resp.StatusCode(), path)
			}
			return nil
		})
	})
}

// clampTweetCount keeps max_results inside the v2 10..100 window.
func clampTweetCount(n int) int {
	if n <= 0 || n > 100 {
		return 100
	}
	if n < 10 {
		return 10
	}
	return n
}

func tweetsToPosts(resp *twitterResponse, source string) []*models.SocialPost {
	authors := make(map[string]twitterUser, len(resp.Includes.Users))
	for _, u := range resp.Includes.Users {
		authors[u.ID] = u
	}

	posts := make([]*models.SocialPost, 0, len(resp.Data))
	for _, tweet := range resp.Data {
		author := tweet.AuthorID
		if u, ok := authors[tweet.AuthorID]; ok {
			author = u.Username
		}
		posts = append(posts, &models.SocialPost{
			ID:          tweet.ID,
			Text:        tweet.Text,
			URL:         "https://twitter.com/i/web/status/" + tweet.ID,
			Author:      author,
			Score:       tweet.PublicMetrics.LikeCount + tweet.PublicMetrics.RetweetCount,
			NumComments: tweet.PublicMetrics.ReplyCount,
			CreatedAt:   tweet.CreatedAt,
			Source:      source,
		})
	}
	return posts
}
