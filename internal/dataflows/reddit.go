package dataflows

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/aletheia-intel/aletheia/config"
	"github.com/aletheia-intel/aletheia/models"
)

// RedditClient reads posts from Reddit. With API credentials configured
// it authenticates against oauth.reddit.com; otherwise it falls back to
// the public JSON listings.
type RedditClient struct {
	client    *resty.Client
	cache     *CacheManager
	guard     *ProviderGuard
	clientID  string
	secret    string
	userAgent string

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewRedditClient creates a Reddit client.
func NewRedditClient(cfg *config.Config) *RedditClient {
	userAgent := cfg.RedditUserAgent
	if userAgent == "" {
		userAgent = "aletheia/1.0"
	}

	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", userAgent)

	cacheDir := filepath.Join(cfg.DataCacheDir, "reddit")
	return &RedditClient{
		client:    client,
		cache:     NewCacheManager(cacheDir, 1*time.Hour, cfg.CacheEnabled),
		guard:     NewProviderGuard("reddit", 1, 2),
		clientID:  cfg.RedditClientID,
		secret:    cfg.RedditSecret,
		userAgent: userAgent,
	}
}

type redditListing struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Data redditPostData `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPostData struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	Subreddit   string  `json:"subreddit"`
	Author      string  `json:"author"`
	Score       int     `json:"score"`
	UpvoteRatio float64 `json:"upvote_ratio"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	Stickied    bool    `json:"stickied"`
}

type redditTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// ensureToken fetches an application-only OAuth token when credentials
// are configured. Returns empty string when running unauthenticated.
func (rc *RedditClient) ensureToken(ctx context.Context) (string, error) {
	if rc.clientID == "" || rc.secret == "" {
		return "", nil
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.token != "" && time.Now().Before(rc.tokenExpiry) {
		return rc.token, nil
	}

	var tokenResp redditTokenResponse
	resp, err := rc.client.R().
		SetContext(ctx).
		SetBasicAuth(rc.clientID, rc.secret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		SetResult(&tokenResp).
		Post("https://www.reddit.com/api/v1/access_token")
	if err != nil {
		return "", fmt.Errorf("failed to get reddit token: %w", err)
	}
	if resp.StatusCode() != 200 || tokenResp.AccessToken == "" {
		return "", fmt.Errorf("reddit token HTTP %d", resp.StatusCode())
	}

	rc.token = tokenResp.AccessToken
	rc.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn-60) * time.Second)
	return rc.token, nil
}

func (rc *RedditClient) baseURL(token string) string {
	if token != "" {
		return "https://oauth.reddit.com"
	}
	return "https://www.reddit.com"
}

// GetSubredditPosts retrieves posts from a subreddit listing.
func (rc *RedditClient) GetSubredditPosts(ctx context.Context, subreddit, sort string, limit int) ([]*models.SocialPost, error) {
	subreddit = strings.TrimSpace(subreddit)
	if subreddit == "" {
		return nil, fmt.Errorf("subreddit cannot be empty")
	}
	if sort == "" {
		sort = "hot"
	}
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	cacheKey := fmt.Sprintf("%s_%s_%d", subreddit, sort, limit)
	var cached []*models.SocialPost
	if rc.cache.Get("reddit", "subreddit", cacheKey, &cached) {
		return cached, nil
	}

	path := fmt.Sprintf("/r/%s/%s.json?limit=%d", subreddit, sort, limit)
	posts, err := rc.fetchListing(ctx, path)
	if err != nil {
		return nil, err
	}

	rc.cache.Set("reddit", "subreddit", cacheKey, posts)
	return posts, nil
}

// SearchPosts searches a subreddit (or all of Reddit when subreddit is
// empty) for posts matching query.
func (rc *RedditClient) SearchPosts(ctx context.Context, subreddit, query, timeFilter string, limit int) ([]*models.SocialPost, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	if timeFilter == "" {
		timeFilter = "week"
	}
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	cacheKey := fmt.Sprintf("%s_%s_%s_%d", subreddit, query, timeFilter, limit)
	var cached []*models.SocialPost
	if rc.cache.Get("reddit", "search", cacheKey, &cached) {
		return cached, nil
	}

	values := url.Values{}
	values.Set("q", query)
	values.Set("sort", "relevance")
	values.Set("t", timeFilter)
	values.Set("limit", fmt.Sprintf("%d", limit))

	var path string
	if subreddit != "" {
		values.Set("restrict_sr", "1")
		path = fmt.Sprintf("/r/%s/search.json?%s", subreddit, values.Encode())
	} else {
		path = "/search.json?" + values.Encode()
	}

	posts, err := rc.fetchListing(ctx, path)
	if err != nil {
		return nil, err
	}

	rc.cache.Set("reddit", "search", cacheKey, posts)
	return posts, nil
}

func (rc *RedditClient) fetchListing(ctx context.Context, path string) ([]*models.SocialPost, error) {
	token, err := rc.ensureToken(ctx)
	if err != nil {
		// Fall back to the public endpoint on auth failure.
		token = ""
	}

	var listing redditListing
	err = WithRetry(DefaultRetryConfig(), func() error {
		return rc.guard.Do(ctx, func() error {
			req := rc.client.R().SetContext(ctx).SetResult(&listing)
			if token != "" {
				req.SetAuthToken(token)
			}
			resp, err := req.Get(rc.baseURL(token) + path)
			if err != nil {
				return fmt.Errorf("failed to fetch reddit listing: %w", err)
			}
			if resp.StatusCode() != 200 {
				return fmt.Errorf("reddit HTTP %d", resp.StatusCode())
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return redditToPosts(listing), nil
}

func redditToPosts(listing redditListing) []*models.SocialPost {
	posts := make([]*models.SocialPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		data := child.Data
		if data.Stickied {
			continue
		}
		postURL := data.URL
		if data.Permalink != "" {
			postURL = "https://www.reddit.com" + data.Permalink
		}
		posts = append(posts, &models.SocialPost{
			ID:          data.ID,
			Title:       data.Title,
			Text:        data.Selftext,
			URL:         postURL,
			Author:      data.Author,
			Subreddit:   data.Subreddit,
			Score:       data.Score,
			UpvoteRatio: data.UpvoteRatio,
			NumComments: data.NumComments,
			CreatedAt:   time.Unix(int64(data.CreatedUTC), 0).UTC(),
			Source:      "reddit",
		})
	}
	return posts
}
