package dataflows

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/aletheia-intel/aletheia/config"
	"github.com/aletheia-intel/aletheia/models"
)

type googleNewsRSS struct {
	XMLName xml.Name          `xml:"rss"`
	Channel googleNewsChannel `xml:"channel"`
}

type googleNewsChannel struct {
	Title string           `xml:"title"`
	Items []googleNewsItem `xml:"item"`
}

type googleNewsItem struct {
	Title       string           `xml:"title"`
	Link        string           `xml:"link"`
	Description string           `xml:"description"`
	PubDate     string           `xml:"pubDate"`
	Source      googleNewsSource `xml:"source"`
	GUID        string           `xml:"guid"`
}

type googleNewsSource struct {
	URL  string `xml:"url,attr"`
	Text string `xml:",chardata"`
}

// GoogleNewsClient searches the Google News RSS feed.
type GoogleNewsClient struct {
	client *resty.Client
	cache  *CacheManager
	guard  *ProviderGuard
}

// NewGoogleNewsClient creates a Google News client.
func NewGoogleNewsClient(cfg *config.Config) *GoogleNewsClient {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")

	cacheDir := filepath.Join(cfg.DataCacheDir, "google_news")
	return &GoogleNewsClient{
		client: client,
		cache:  NewCacheManager(cacheDir, 30*time.Minute, cfg.CacheEnabled),
		guard:  NewProviderGuard("google_news", 2, 4),
	}
}

// Search queries the Google News RSS feed. Results are capped at
// maxResults; zero means 25.
func (gnc *GoogleNewsClient) Search(ctx context.Context, query string, maxResults int) ([]*models.NewsArticle, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	if maxResults <= 0 {
		maxResults = 25
	}

	cacheKey := fmt.Sprintf("%s_%d", query, maxResults)
	var cached []*models.NewsArticle
	if gnc.cache.Get("google_news", "search", cacheKey, &cached) {
		return cached, nil
	}

	feedURL := fmt.Sprintf("https://news.google.com/rss/search?q=%s&hl=en-US&gl=US&ceid=US:en",
		url.QueryEscape(query))

	var rss googleNewsRSS
	err := WithRetry(DefaultRetryConfig(), func() error {
		return gnc.guard.Do(ctx, func() error {
			resp, err := gnc.client.R().SetContext(ctx).Get(feedURL)
			if err != nil {
				return fmt.Errorf("failed to fetch news feed: %w", err)
			}
			if resp.StatusCode() != 200 {
				return fmt.Errorf("google news HTTP %d", resp.StatusCode())
			}
			if err := xml.Unmarshal(resp.Body(), &rss); err != nil {
				return fmt.Errorf("failed to parse news feed: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	articles := make([]*models.NewsArticle, 0, maxResults)
	for _, item := range rss.Channel.Items {
		if len(articles) >= maxResults {
			break
		}
		published, _ := time.Parse(time.RFC1123, item.PubDate)
		source := item.Source.Text
		if source == "" {
			source = "google_news"
		}
		articles = append(articles, &models.NewsArticle{
			Title:       strings.TrimSpace(item.Title),
			Description: strings.TrimSpace(item.Description),
			URL:         item.Link,
			Source:      source,
			PublishedAt: published,
		})
	}

	gnc.cache.Set("google_news", "search", cacheKey, articles)
	return articles, nil
}
