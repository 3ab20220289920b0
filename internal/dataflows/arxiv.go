package dataflows

import (
	"context"
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/aletheia-intel/aletheia/config"
	"github.com/aletheia-intel/aletheia/models"
)

// ArxivClient searches the arXiv Atom API for research papers.
type ArxivClient struct {
	client *resty.Client
	cache  *CacheManager
	guard  *ProviderGuard
}

// NewArxivClient creates an arXiv client.
func NewArxivClient(cfg *config.Config) *ArxivClient {
	client := resty.New()
	client.SetBaseURL("http://export.arxiv.org/api")
	client.SetTimeout(30 * time.Second)

	cacheDir := filepath.Join(cfg.DataCacheDir, "arxiv")
	return &ArxivClient{
		client: client,
		cache:  NewCacheManager(cacheDir, 6*time.Hour, cfg.CacheEnabled),
		// arXiv asks for no more than one request every three seconds.
		guard: NewProviderGuard("arxiv", 0.33, 1),
	}
}

type arxivFeed struct {
	XMLName xml.Name     `xml:"feed"`
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID         string          `xml:"id"`
	Title      string          `xml:"title"`
	Summary    string          `xml:"summary"`
	Published  string          `xml:"published"`
	Updated    string          `xml:"updated"`
	Authors    []arxivAuthor   `xml:"author"`
	Links      []arxivLink     `xml:"link"`
	Categories []arxivCategory `xml:"category"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
}

type arxivCategory struct {
	Term string `xml:"term,attr"`
}

// Search queries arXiv, sorted by relevance.
func (ax *ArxivClient) Search(ctx context.Context, query string, maxResults int) ([]*models.ResearchPaper, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	if maxResults <= 0 || maxResults > 100 {
		maxResults = 10
	}

	cacheKey := fmt.Sprintf("%s_%d", query, maxResults)
	var cached []*models.ResearchPaper
	if ax.cache.Get("arxiv", "search", cacheKey, &cached) {
		return cached, nil
	}

	var feed arxivFeed
	err := WithRetry(DefaultRetryConfig(), func() error {
		return ax.guard.Do(ctx, func() error {
			resp, err := ax.client.R().
				SetContext(ctx).
				SetQueryParams(map[string]string{
					"search_query": "all:" + query,
					"start":        "0",
					"max_results":  fmt.Sprintf("%d", maxResults),
					"sortBy":       "relevance",
					"sortOrder":    "descending",
				}).
				Get("/query")
			if err != nil {
				return fmt.Errorf("failed to query arXiv: %w", err)
			}
			if resp.StatusCode() != 200 {
				return fmt.Errorf("arXiv HTTP %d", resp.StatusCode())
			}
			if err := xml.Unmarshal(resp.Body(), &feed); err != nil {
				return fmt.Errorf("failed to parse arXiv feed: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	papers := make([]*models.ResearchPaper, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		paper := &models.ResearchPaper{
			ID:      entry.ID,
			Title:   normalizeWhitespace(entry.Title),
			Summary: normalizeWhitespace(entry.Summary),
			Source:  "arxiv",
		}
		paper.Published, _ = time.Parse(time.RFC3339, entry.Published)
		paper.Updated, _ = time.Parse(time.RFC3339, entry.Updated)
		for _, author := range entry.Authors {
			paper.Authors = append(paper.Authors, author.Name)
		}
		for _, link := range entry.Links {
			if link.Title == "pdf" || link.Type == "application/pdf" {
				paper.PDFURL = link.Href
			}
		}
		for _, cat := range entry.Categories {
			paper.Categories = append(paper.Categories, cat.Term)
		}
		papers = append(papers, paper)
	}

	ax.cache.Set("arxiv", "search", cacheKey, papers)
	return papers, nil
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
