package dataflows

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/aletheia-intel/aletheia/config"
	"github.com/aletheia-intel/aletheia/models"
)

// TavilyClient performs deep web search through the Tavily API.
type TavilyClient struct {
	client *resty.Client
	apiKey string
	cache  *CacheManager
	guard  *ProviderGuard
}

// NewTavilyClient creates a Tavily client.
func NewTavilyClient(cfg *config.Config) *TavilyClient {
	client := resty.New()
	client.SetBaseURL("https://api.tavily.com")
	client.SetTimeout(60 * time.Second)
	if cfg.TavilyAPIKey != "" {
		client.SetAuthToken(cfg.TavilyAPIKey)
	}

	cacheDir := filepath.Join(cfg.DataCacheDir, "tavily")
	return &TavilyClient{
		client: client,
		apiKey: cfg.TavilyAPIKey,
		cache:  NewCacheManager(cacheDir, 30*time.Minute, cfg.CacheEnabled),
		guard:  NewProviderGuard("tavily", 1, 2),
	}
}

// TavilySearchParams controls a search request.
type TavilySearchParams struct {
	Query      string   `json:"query"`
	Topic      string   `json:"topic,omitempty"` // general or news
	Days       int      `json:"days,omitempty"`
	MaxResults int      `json:"max_results,omitempty"`
	Include    []string `json:"include_domains,omitempty"`
	Exclude    []string `json:"exclude_domains,omitempty"`
}

type tavilySearchRequest struct {
	Query          string   `json:"query"`
	Topic          string   `json:"topic,omitempty"`
	SearchDepth    string   `json:"search_depth"`
	Days           int      `json:"days,omitempty"`
	MaxResults     int      `json:"max_results"`
	IncludeDomains []string `json:"include_domains,omitempty"`
	ExcludeDomains []string `json:"exclude_domains,omitempty"`
}

type tavilySearchResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// Search runs a Tavily search and returns normalized pages.
func (tc *TavilyClient) Search(ctx context.Context, params TavilySearchParams) ([]*models.WebPage, error) {
	if tc.apiKey == "" {
		return nil, fmt.Errorf("tavily API key not configured")
	}
	params.Query = strings.TrimSpace(params.Query)
	if params.Query == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	if params.MaxResults <= 0 {
		params.MaxResults = 10
	}

	var cached []*models.WebPage
	if tc.cache.Get("tavily", "search", params, &cached) {
		return cached, nil
	}

	request := tavilySearchRequest{
		Query:          params.Query,
		Topic:          params.Topic,
		SearchDepth:    "advanced",
		Days:           params.Days,
		MaxResults:     params.MaxResults,
		IncludeDomains: params.Include,
		ExcludeDomains: params.Exclude,
	}

	var result tavilySearchResponse
	err := WithRetry(DefaultRetryConfig(), func() error {
		return tc.guard.Do(ctx, func() error {
			resp, err := tc.client.R().
				SetContext(ctx).
				SetBody(request).
				SetResult(&result).
				Post("/search")
			if err != nil {
				return fmt.Errorf("failed to run web search: %w", err)
			}
			if resp.StatusCode() != 200 {
				return fmt.Errorf("tavily HTTP %d", resp.StatusCode())
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	pages := make([]*models.WebPage, 0, len(result.Results))
	for _, r := range result.Results {
		pages = append(pages, &models.WebPage{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
			Score:   r.Score,
			Source:  "tavily",
		})
	}

	tc.cache.Set("tavily", "search", params, pages)
	return pages, nil
}

// SearchNews is a convenience wrapper for the news topic.
func (tc *TavilyClient) SearchNews(ctx context.Context, query string, days, maxResults int) ([]*models.WebPage, error) {
	if days <= 0 {
		days = 7
	}
	return tc.Search(ctx, TavilySearchParams{
		Query:      query,
		Topic:      "news",
		Days:       days,
		MaxResults: maxResults,
	})
}

type tavilyCrawlRequest struct {
	URL          string `json:"url"`
	MaxDepth     int    `json:"max_depth"`
	Limit        int    `json:"limit"`
	Instructions string `json:"instructions,omitempty"`
}

type tavilyCrawlResponse struct {
	Results []struct {
		URL        string `json:"url"`
		RawContent string `json:"raw_content"`
	} `json:"results"`
}

// Crawl fetches the content of a site and its immediate links.
func (tc *TavilyClient) Crawl(ctx context.Context, siteURL, instructions string, limit int) ([]*models.WebPage, error) {
	if tc.apiKey == "" {
		return nil, fmt.Errorf("tavily API key not configured")
	}
	siteURL = strings.TrimSpace(siteURL)
	if siteURL == "" {
		return nil, fmt.Errorf("crawl URL cannot be empty")
	}
	if limit <= 0 {
		limit = 10
	}

	request := tavilyCrawlRequest{
		URL:          siteURL,
		MaxDepth:     1,
		Limit:        limit,
		Instructions: instructions,
	}

	var cached []*models.WebPage
	if tc.cache.Get("tavily", "crawl", request, &cached) {
		return cached, nil
	}

	var result tavilyCrawlResponse
	err := WithRetry(DefaultRetryConfig(), func() error {
		return tc.guard.Do(ctx, func() error {
			resp, err := tc.client.R().
				SetContext(ctx).
				SetBody(request).
				SetResult(&result).
				Post("/crawl")
			if err != nil {
				return fmt.Errorf("failed to crawl site: %w", err)
			}
			if resp.StatusCode() != 200 {
				return fmt.Errorf("tavily HTTP %d", resp.StatusCode())
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	pages := make([]*models.WebPage, 0, len(result.Results))
	for _, r := range result.Results {
		pages = append(pages, &models.WebPage{
			URL:     r.URL,
			Content: r.RawContent,
			Source:  "tavily_crawl",
		})
	}

	tc.cache.Set("tavily", "crawl", request, pages)
	return pages, nil
}
