// Package agents implements the analyst roles: planning, data hunting,
// intelligence analysis, risk assessment and the conversational
// strategist that fronts them.
package agents

import (
	"fmt"
	"strings"

	"github.com/aletheia-intel/aletheia/models"
)

// Caps keep the assembled corpus inside the model context window.
const (
	maxCorpusNews     = 50
	maxCorpusSocial   = 40
	maxCorpusResearch = 30
)

// BuildCorpus flattens collected data into the text corpus the
// analysts reason over. Longer fields are preferred when present:
// article content over description, post text over title alone.
func BuildCorpus(collected map[string]*models.CollectedData) string {
	var b strings.Builder

	for _, data := range collected {
		news := data.News
		if len(news) > maxCorpusNews {
			news = news[:maxCorpusNews]
		}
		for _, article := range news {
			body := article.Content
			if body == "" {
				body = article.Description
			}
			writeCorpusEntry(&b, "NEWS", article.Source, article.Title, body)
		}

		social := data.Social
		if len(social) > maxCorpusSocial {
			social = social[:maxCorpusSocial]
		}
		for _, post := range social {
			title := post.Title
			if title == "" && post.Text != "" {
				title = firstLine(post.Text)
			}
			label := post.Subreddit
			if label == "" {
				label = post.Source
			}
			writeCorpusEntry(&b, "SOCIAL", label, fmt.Sprintf("%s (score %d)", title, post.Score), post.Text)
		}

		research := data.Research
		if len(research) > maxCorpusResearch {
			research = research[:maxCorpusResearch]
		}
		for _, paper := range research {
			writeCorpusEntry(&b, "RESEARCH", "arxiv", paper.Title, paper.Summary)
		}

		for _, page := range data.Web {
			writeCorpusEntry(&b, "WEB", page.Source, page.Title, page.Content)
		}

		for _, summary := range data.Market {
			writeCorpusEntry(&b, "MARKET", summary.Source,
				fmt.Sprintf("%s latest %.2f change %+.2f%% volatility %.4f",
					summary.Ticker, summary.LatestPrice, summary.PriceChangePct, summary.Volatility), "")
		}

		for _, series := range data.Economic {
			writeCorpusEntry(&b, "ECONOMIC", series.Source,
				fmt.Sprintf("%s (%s) latest %.2f %s", series.Title, series.IndicatorID, series.LatestValue, series.Units), "")
		}

		for _, note := range data.Notes {
			writeCorpusEntry(&b, "NOTE", data.Source, note, "")
		}
	}

	return strings.TrimSpace(b.String())
}

func writeCorpusEntry(b *strings.Builder, kind, source, title, body string) {
	title = strings.TrimSpace(title)
	if title == "" && strings.TrimSpace(body) == "" {
		return
	}
	if source != "" {
		fmt.Fprintf(b, "[%s | %s] %s\n", kind, source, title)
	} else {
		fmt.Fprintf(b, "[%s] %s\n", kind, title)
	}
	body = strings.TrimSpace(body)
	if body != "" {
		if len(body) > 1500 {
			body = body[:1500]
		}
		b.WriteString(body)
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
