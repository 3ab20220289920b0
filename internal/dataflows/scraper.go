package dataflows

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/aletheia-intel/aletheia/config"
	"github.com/aletheia-intel/aletheia/models"
)

// ArticleScraper fetches a page and extracts readable article content.
type ArticleScraper struct {
	client *resty.Client
	cache  *CacheManager
	guard  *ProviderGuard
}

// NewArticleScraper creates an article scraper.
func NewArticleScraper(cfg *config.Config) *ArticleScraper {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")

	cacheDir := filepath.Join(cfg.DataCacheDir, "articles")
	return &ArticleScraper{
		client: client,
		cache:  NewCacheManager(cacheDir, 24*time.Hour, cfg.CacheEnabled),
		guard:  NewProviderGuard("scraper", 2, 4),
	}
}

// Fetch downloads and extracts one article.
func (as *ArticleScraper) Fetch(ctx context.Context, articleURL string) (*models.NewsArticle, error) {
	articleURL = strings.TrimSpace(articleURL)
	if articleURL == "" {
		return nil, fmt.Errorf("article URL cannot be empty")
	}

	var cached models.NewsArticle
	if as.cache.Get("article", "content", articleURL, &cached) {
		return &cached, nil
	}

	var article *models.NewsArticle
	err := WithRetry(DefaultRetryConfig(), func() error {
		return as.guard.Do(ctx, func() error {
			resp, err := as.client.R().SetContext(ctx).Get(articleURL)
			if err != nil {
				return fmt.Errorf("failed to fetch article: %w", err)
			}
			if resp.StatusCode() != 200 {
				return fmt.Errorf("HTTP %d when fetching article", resp.StatusCode())
			}

			doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
			if err != nil {
				return fmt.Errorf("failed to parse HTML: %w", err)
			}
			article = extractArticle(doc, articleURL)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	as.cache.Set("article", "content", articleURL, article)
	return article, nil
}

func extractArticle(doc *goquery.Document, articleURL string) *models.NewsArticle {
	title := ""
	for _, selector := range []string{"h1", "title", ".headline", ".article-title", ".entry-title"} {
		if t := strings.TrimSpace(doc.Find(selector).First().Text()); t != "" {
			title = t
			break
		}
	}

	content := ""
	contentSelectors := []string{
		".article-content", ".entry-content", ".post-content",
		".content", "article p", ".article-body", ".story-body",
	}
	for _, selector := range contentSelectors {
		if c := strings.TrimSpace(doc.Find(selector).Text()); c != "" {
			content = c
			break
		}
	}

	source := ""
	if meta := doc.Find("meta[property='og:site_name']"); meta.Length() > 0 {
		source, _ = meta.Attr("content")
	}
	if source == "" {
		if u, err := url.Parse(articleURL); err == nil {
			source = u.Host
		}
	}

	publishedAt := time.Now()
	if meta := doc.Find("meta[property='article:published_time']"); meta.Length() > 0 {
		if dateStr, exists := meta.Attr("content"); exists {
			if t, err := time.Parse(time.RFC3339, dateStr); err == nil {
				publishedAt = t
			}
		}
	}

	return &models.NewsArticle{
		Title:       title,
		Content:     content,
		URL:         articleURL,
		Source:      source,
		PublishedAt: publishedAt,
	}
}
