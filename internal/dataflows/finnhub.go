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

// FinnhubClient fetches company and market news from the Finnhub API.
type FinnhubClient struct {
	client *resty.Client
	apiKey string
	cache  *CacheManager
	guard  *ProviderGuard
}

// NewFinnhubClient creates a Finnhub client.
func NewFinnhubClient(cfg *config.Config) *FinnhubClient {
	client := resty.New()
	client.SetBaseURL("https://finnhub.io/api/v1")
	client.SetTimeout(30 * time.Second)

	cacheDir := filepath.Join(cfg.DataCacheDir, "finnhub")
	return &FinnhubClient{
		client: client,
		apiKey: cfg.FinnhubAPIKey,
		cache:  NewCacheManager(cacheDir, 30*time.Minute, cfg.CacheEnabled),
		guard:  NewProviderGuard("finnhub", 10, 20),
	}
}

type finnhubNewsItem struct {
	Category string `json:"category"`
	Datetime int64  `json:"datetime"`
	Headline string `json:"headline"`
	ID       int64  `json:"id"`
	Image    string `json:"image"`
	Related  string `json:"related"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

// GetCompanyNews retrieves news for a ticker over the past `days` days.
func (fc *FinnhubClient) GetCompanyNews(ctx context.Context, symbol string, days int) ([]*models.NewsArticle, error) {
	if fc.apiKey == "" {
		return nil, fmt.Errorf("finnhub API key not configured")
	}
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 7
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	to := time.Now()
	from := to.AddDate(0, 0, -days)

	cacheKey := fmt.Sprintf("%s_%d_%s", symbol, days, to.Format("2006-01-02"))
	var cached []*models.NewsArticle
	if fc.cache.Get("finnhub", "company_news", cacheKey, &cached) {
		return cached, nil
	}

	var items []finnhubNewsItem
	err := WithRetry(DefaultRetryConfig(), func() error {
		return fc.guard.Do(ctx, func() error {
			resp, err := fc.client.R().
				SetContext(ctx).
				SetQueryParams(map[string]string{
					"symbol": symbol,
					"from":   from.Format("2006-01-02"),
					"to":     to.Format("2006-01-02"),
					"token":  fc.apiKey,
				}).
				SetResult(&items).
				Get("/company-news")
			if err != nil {
				return fmt.Errorf("failed to fetch company news: %w", err)
			}
			if resp.StatusCode() != 200 {
				return fmt.Errorf("finnhub HTTP %d for company news", resp.StatusCode())
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	articles := finnhubToArticles(items)
	fc.cache.Set("finnhub", "company_news", cacheKey, articles)
	return articles, nil
}

// GetMarketNews retrieves general market news.
func (fc *FinnhubClient) GetMarketNews(ctx context.Context, category string) ([]*models.NewsArticle, error) {
	if fc.apiKey == "" {
		return nil, fmt.Errorf("finnhub API key not configured")
	}
	if category == "" {
		category = "general"
	}

	var cached []*models.NewsArticle
	if fc.cache.Get("finnhub", "market_news", category, &cached) {
		return cached, nil
	}

	var items []finnhubNewsItem
	err := WithRetry(DefaultRetryConfig(), func() error {
		return fc.guard.Do(ctx, func() error {
			resp, err := fc.client.R().
				SetContext(ctx).
				SetQueryParams(map[string]string{
					"category": category,
					"token":    fc.apiKey,
				}).
				SetResult(&items).
				Get("/news")
			if err != nil {
				return fmt.Errorf("failed to fetch market news: %w", err)
			}
			if resp.StatusCode() != 200 {
				return fmt.Errorf("finnhub HTTP %d for market news", resp.StatusCode())
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	articles := finnhubToArticles(items)
	fc.cache.Set("finnhub", "market_news", category, articles)
	return articles, nil
}

func finnhubToArticles(items []finnhubNewsItem) []*models.NewsArticle {
	articles := make([]*models.NewsArticle, 0, len(items))
	for _, item := range items {
		if item.Headline == "" {
			continue
		}
		articles = append(articles, &models.NewsArticle{
			Title:       item.Headline,
			Description: item.Summary,
			URL:         item.URL,
			Source:      item.Source,
			PublishedAt: time.Unix(item.Datetime, 0).UTC(),
		})
	}
	return articles
}
