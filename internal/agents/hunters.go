package agents

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aletheia-intel/aletheia/internal/dataflows"
	"github.com/aletheia-intel/aletheia/models"
)

// CollectionRequest describes what a data-collection task should
// gather.
type CollectionRequest struct {
	TaskID  string
	Query   string
	Tickers []string
	Days    int
}

// tickerPattern matches cashtags and bare uppercase symbols.
var tickerPattern = regexp.MustCompile(`\$([A-Z]{1,5})\b|\b([A-Z]{2,5})\b`)

// commonWords are uppercase tokens that are not tickers.
var commonWords = map[string]bool{
	"AI": true, "US": true, "USA": true, "UK": true, "EU": true, "THE": true,
	"AND": true, "FOR": true, "ETF": true, "IPO": true, "CEO": true, "FED": true,
	"GDP": true, "CPI": true, "SEC": true, "ON": true, "OF": true, "IN": true,
	"TO": true, "VS": true, "NEWS": true, "RISK": true, "WHAT": true, "HOW": true,
}

// ExtractTickers pulls likely ticker symbols out of a directive.
// Cashtags always count; bare uppercase words count unless they are
// common English tokens.
func ExtractTickers(text string) []string {
	seen := make(map[string]bool)
	var tickers []string
	for _, match := range tickerPattern.FindAllStringSubmatch(text, -1) {
		symbol := match[1]
		if symbol == "" {
			symbol = match[2]
			if commonWords[symbol] {
				continue
			}
		}
		if !seen[symbol] {
			seen[symbol] = true
			tickers = append(tickers, symbol)
		}
	}
	return tickers
}

// NarrativeHunter gathers qualitative data: news, social posts,
// research papers, filings and deep web search results.
type NarrativeHunter struct {
	flows *dataflows.DataFlows
}

// NewNarrativeHunter creates the hunter over the provider bundle.
func NewNarrativeHunter(flows *dataflows.DataFlows) *NarrativeHunter {
	return &NarrativeHunter{flows: flows}
}

// Collect runs every qualitative source for the request. Individual
// provider failures are noted and skipped; the hunt only fails when
// online tools are disabled.
func (nh *NarrativeHunter) Collect(ctx context.Context, req CollectionRequest) (*models.CollectedData, error) {
	if err := nh.flows.RequireOnline("narrative sources"); err != nil {
		return nil, err
	}
	if req.Days <= 0 {
		req.Days = 7
	}

	data := &models.CollectedData{
		TaskID:    req.TaskID,
		Source:    "narrative_hunter",
		Timestamp: time.Now().UTC(),
	}

	note := func(provider string, err error) {
		log.Warn().Err(err).Str("provider", provider).Msg("collection source failed")
		data.Notes = append(data.Notes, fmt.Sprintf("%s unavailable: %v", provider, err))
	}

	if articles, err := nh.flows.GoogleNews.Search(ctx, req.Query, 25); err != nil {
		note("google_news", err)
	} else {
		data.News = append(data.News, articles...)
	}

	for _, ticker := range req.Tickers {
		if articles, err := nh.flows.Finnhub.GetCompanyNews(ctx, ticker, req.Days); err != nil {
			note("finnhub", err)
			break
		} else {
			data.News = append(data.News, articles...)
		}
	}

	if posts, err := nh.flows.Twitter.SearchTweets(ctx, req.Query, req.Days, 50); err != nil {
		note("twitter", err)
	} else {
		data.Social = append(data.Social, posts...)
	}

	if listID := nh.flows.Twitter.ListID(); listID != "" {
		if posts, err := nh.flows.Twitter.ListTweets(ctx, listID, 50); err != nil {
			note("twitter_list", err)
		} else {
			data.Social = append(data.Social, posts...)
		}
	}

	for _, subreddit := range []string{"investing", "stocks", "wallstreetbets"} {
		posts, err := nh.flows.Reddit.SearchPosts(ctx, subreddit, req.Query, "week", 15)
		if err != nil {
			note("reddit", err)
			break
		}
		data.Social = append(data.Social, posts...)
	}

	if papers, err := nh.flows.Arxiv.Search(ctx, req.Query, 10); err != nil {
		note("arxiv", err)
	} else {
		data.Research = append(data.Research, papers...)
	}

	for _, ticker := range req.Tickers {
		filings, err := nh.flows.Edgar.GetFilings(ctx, ticker, []string{"10-K", "10-Q", "8-K"}, 3)
		if err != nil {
			note("sec_edgar", err)
			break
		}
		data.Filings = append(data.Filings, filings...)
	}

	if pages, err := nh.flows.Tavily.SearchNews(ctx, req.Query, req.Days, 10); err != nil {
		note("tavily", err)
	} else {
		data.Web = append(data.Web, pages...)
	}

	return data, nil
}

// QuantAnalyst gathers quantitative data: market history with derived
// statistics, technical indicators, financial statements, economic
// series and the release calendar.
type QuantAnalyst struct {
	flows *dataflows.DataFlows
}

// NewQuantAnalyst creates the analyst over the provider bundle.
func NewQuantAnalyst(flows *dataflows.DataFlows) *QuantAnalyst {
	return &QuantAnalyst{flows: flows}
}

// defaultEconomicSeries are the FRED series pulled for every hunt.
var defaultEconomicSeries = []string{"FEDFUNDS", "CPIAUCSL", "UNRATE", "GDP", "T10Y2Y"}

// Collect runs the quantitative sources for the request.
func (qa *QuantAnalyst) Collect(ctx context.Context, req CollectionRequest) (*models.CollectedData, error) {
	if err := qa.flows.RequireOnline("market data sources"); err != nil {
		return nil, err
	}

	data := &models.CollectedData{
		TaskID:    req.TaskID,
		Source:    "quant_analyst",
		Timestamp: time.Now().UTC(),
	}

	note := func(provider string, err error) {
		log.Warn().Err(err).Str("provider", provider).Msg("collection source failed")
		data.Notes = append(data.Notes, fmt.Sprintf("%s unavailable: %v", provider, err))
	}

	for _, ticker := range req.Tickers {
		summary, err := qa.flows.Yahoo.GetStockSummary(ticker, "1y")
		if err != nil {
			note("yahoo_finance", err)
			continue
		}
		data.Market = append(data.Market, summary)

		if indicators, err := dataflows.ComputeIndicators(ticker, "1y", summary.Bars); err != nil {
			note("indicators", err)
		} else {
			data.Indicators = append(data.Indicators, indicators)
		}

		if statements, err := qa.flows.Edgar.GetFinancialStatements(ctx, ticker, "income", "annual"); err != nil {
			note("sec_edgar", err)
		} else {
			data.Statements = append(data.Statements, statements)
		}
	}

	if series, err := qa.flows.FRED.GetIndicators(ctx, defaultEconomicSeries, 365); err != nil {
		note("fred", err)
	} else {
		data.Economic = append(data.Economic, series...)
	}

	data.Calendar = dataflows.GetMarketCalendar(14)

	return data, nil
}

// CollectAll runs both hunters for one task and merges their output.
func CollectAll(ctx context.Context, narrative *NarrativeHunter, quant *QuantAnalyst, req CollectionRequest) (*models.CollectedData, error) {
	qualData, err := narrative.Collect(ctx, req)
	if err != nil {
		return nil, err
	}
	quantData, err := quant.Collect(ctx, req)
	if err != nil {
		return nil, err
	}

	merged := qualData
	merged.Source = "narrative_hunter+quant_analyst"
	merged.Market = quantData.Market
	merged.Indicators = quantData.Indicators
	merged.Statements = quantData.Statements
	merged.Economic = quantData.Economic
	merged.Calendar = quantData.Calendar
	merged.Notes = append(merged.Notes, quantData.Notes...)
	return merged, nil
}

// DescribeCollection summarizes what a hunt produced, for progress
// logging.
func DescribeCollection(data *models.CollectedData) string {
	parts := []string{}
	add := func(n int, label string) {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, label))
		}
	}
	add(len(data.News), "articles")
	add(len(data.Social), "posts")
	add(len(data.Research), "papers")
	add(len(data.Filings), "filings")
	add(len(data.Web), "web pages")
	add(len(data.Market), "market summaries")
	add(len(data.Economic), "economic series")
	if len(parts) == 0 {
		return "nothing collected"
	}
	return strings.Join(parts, ", ")
}
