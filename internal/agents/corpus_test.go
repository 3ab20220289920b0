package agents

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aletheia-intel/aletheia/models"
)

func TestBuildCorpusPrefersLongFields(t *testing.T) {
	collected := map[string]*models.CollectedData{
		"t1": {
			Source: "test",
			News: []*models.NewsArticle{
				{Title: "Chips rally", Description: "short desc", Content: "full article body", Source: "reuters"},
				{Title: "Fed holds", Description: "rates unchanged", Source: "wsj"},
			},
			Social: []*models.SocialPost{
				{Title: "YOLO calls", Text: "diamond hands", Subreddit: "wallstreetbets", Score: 99},
			},
			Research: []*models.ResearchPaper{
				{Title: "Attention is all you need", Summary: "transformers"},
			},
			Notes: []string{"finnhub unavailable: no key"},
		},
	}

	corpus := BuildCorpus(collected)
	assert.Contains(t, corpus, "full article body")
	assert.NotContains(t, corpus, "short desc")
	assert.Contains(t, corpus, "rates unchanged")
	assert.Contains(t, corpus, "[SOCIAL | wallstreetbets] YOLO calls (score 99)")
	assert.Contains(t, corpus, "[RESEARCH | arxiv]")
	assert.Contains(t, corpus, "finnhub unavailable")
}

func TestBuildCorpusCapsEntries(t *testing.T) {
	news := make([]*models.NewsArticle, 80)
	for i := range news {
		news[i] = &models.NewsArticle{Title: fmt.Sprintf("headline %d", i), Source: "feed"}
	}
	collected := map[string]*models.CollectedData{"t1": {News: news}}

	corpus := BuildCorpus(collected)
	assert.Equal(t, maxCorpusNews, strings.Count(corpus, "[NEWS"))
}

func TestBuildCorpusEmpty(t *testing.T) {
	assert.Empty(t, BuildCorpus(nil))
	assert.Empty(t, BuildCorpus(map[string]*models.CollectedData{"t1": {}}))
}

func TestExtractTickers(t *testing.T) {
	tickers := ExtractTickers("What is driving $NVDA and AMD versus the US market?")
	assert.Equal(t, []string{"NVDA", "AMD"}, tickers)

	assert.Empty(t, ExtractTickers("how is the economy doing"))
}
