// Package dataflows provides the external data providers the agents
// draw on: market data, news, social sentiment, research, filings and
// economic series. Every provider caches to disk and goes through a
// per-provider rate limiter and circuit breaker.
package dataflows

import (
	"fmt"

	"github.com/aletheia-intel/aletheia/config"
)

// DataFlows bundles all provider clients behind one handle.
type DataFlows struct {
	Yahoo      *YahooFinanceClient
	Finnhub    *FinnhubClient
	GoogleNews *GoogleNewsClient
	Tavily     *TavilyClient
	FRED       *FREDClient
	Arxiv      *ArxivClient
	Edgar      *EdgarClient
	Reddit     *RedditClient
	Twitter    *TwitterClient
	Scraper    *ArticleScraper

	online bool
}

// New creates the provider bundle from configuration.
func New(cfg *config.Config) *DataFlows {
	return &DataFlows{
		Yahoo:      NewYahooFinanceClient(cfg),
		Finnhub:    NewFinnhubClient(cfg),
		GoogleNews: NewGoogleNewsClient(cfg),
		Tavily:     NewTavilyClient(cfg),
		FRED:       NewFREDClient(cfg),
		Arxiv:      NewArxivClient(cfg),
		Edgar:      NewEdgarClient(cfg),
		Reddit:     NewRedditClient(cfg),
		Twitter:    NewTwitterClient(cfg),
		Scraper:    NewArticleScraper(cfg),
		online:     cfg.OnlineTools,
	}
}

// Online reports whether live provider calls are enabled.
func (df *DataFlows) Online() bool {
	return df.online
}

// RequireOnline returns an error naming the provider when live calls
// are disabled. Cached data is still served by the individual clients.
func (df *DataFlows) RequireOnline(provider string) error {
	if !df.online {
		return fmt.Errorf("online tools disabled, cannot reach %s", provider)
	}
	return nil
}
