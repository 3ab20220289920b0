package dataflows

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/equity"
	"github.com/rs/zerolog/log"

	"github.com/aletheia-intel/aletheia/config"
	"github.com/aletheia-intel/aletheia/models"
)

// YahooFinanceClient fetches quotes and daily history.
type YahooFinanceClient struct {
	cache *CacheManager
	guard *ProviderGuard
}

// NewYahooFinanceClient creates a Yahoo Finance client.
func NewYahooFinanceClient(cfg *config.Config) *YahooFinanceClient {
	cacheDir := filepath.Join(cfg.DataCacheDir, "yahoo")
	return &YahooFinanceClient{
		cache: NewCacheManager(cacheDir, 15*time.Minute, cfg.CacheEnabled),
		guard: NewProviderGuard("yahoo", 4, 8),
	}
}

// periodDays maps yfinance-style period strings to a day count.
func periodDays(period string) int {
	switch strings.ToLower(strings.TrimSpace(period)) {
	case "1d":
		return 1
	case "5d":
		return 5
	case "1mo":
		return 30
	case "3mo":
		return 90
	case "6mo":
		return 180
	case "1y", "":
		return 365
	case "2y":
		return 730
	case "5y":
		return 1825
	case "10y":
		return 3650
	case "max":
		return 7300
	default:
		return 365
	}
}

// GetHistory retrieves daily bars for symbol over a yfinance-style
// period ("1mo", "1y", ...).
func (yf *YahooFinanceClient) GetHistory(symbol, period string) ([]*models.MarketBar, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	end := time.Now()
	start := end.AddDate(0, 0, -periodDays(period))

	cacheKey := fmt.Sprintf("%s_%s", symbol, period)
	var cached []*models.MarketBar
	if yf.cache.Get("yahoo", "history", cacheKey, &cached) {
		return cached, nil
	}

	var bars []*models.MarketBar
	err := WithRetry(DefaultRetryConfig(), func() error {
		return yf.guard.Do(context.Background(), func() error {
			return yf.fetchHistory(symbol, start, end, &bars)
		})
	})
	if err != nil {
		return nil, err
	}

	yf.cache.Set("yahoo", "history", cacheKey, bars)
	return bars, nil
}

func (yf *YahooFinanceClient) fetchHistory(symbol string, start, end time.Time, out *[]*models.MarketBar) error {
	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	iter := chart.Get(params)

	bars := make([]*models.MarketBar, 0)
	for iter.Next() {
		bar := iter.Bar()
		bars = append(bars, &models.MarketBar{
			Symbol:   symbol,
			Date:     time.Unix(int64(bar.Timestamp), 0).UTC(),
			Open:     bar.Open,
			High:     bar.High,
			Low:      bar.Low,
			Close:    bar.Close,
			AdjClose: bar.AdjClose,
			Volume:   int64(bar.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to get history for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return fmt.Errorf("no history returned for %s", symbol)
	}
	*out = bars
	return nil
}

// GetStockSummary fetches history for symbol and derives the headline
// statistics the quant agent reports: latest price, change over the
// window, volatility (stddev of daily returns, in percent) and the
// 50/200-day moving averages when enough bars are available.
func (yf *YahooFinanceClient) GetStockSummary(symbol, period string) (*models.StockSummary, error) {
	bars, err := yf.GetHistory(symbol, period)
	if err != nil {
		return nil, err
	}

	summary := &models.StockSummary{
		Ticker:   strings.ToUpper(strings.TrimSpace(symbol)),
		Period:   period,
		Interval: "1d",
		Bars:     bars,
		Source:   "yahoo_finance",
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i], _ = b.Close.Float64()
	}

	summary.LatestPrice = closes[len(closes)-1]
	summary.PriceChange = closes[len(closes)-1] - closes[0]
	if closes[0] != 0 {
		summary.PriceChangePct = summary.PriceChange / closes[0] * 100
	}
	summary.Volatility = volatilityPct(closes)
	if ma := simpleMovingAverage(closes, 50); ma > 0 {
		summary.MA50 = ma
	}
	if ma := simpleMovingAverage(closes, 200); ma > 0 {
		summary.MA200 = ma
	}

	yf.enrichQuote(summary)
	return summary, nil
}

// enrichQuote adds company metadata from the equity endpoint. Failures
// are logged and ignored since history already succeeded.
func (yf *YahooFinanceClient) enrichQuote(summary *models.StockSummary) {
	e, err := equity.Get(summary.Ticker)
	if err != nil || e == nil {
		log.Debug().Err(err).Str("ticker", summary.Ticker).Msg("equity lookup failed")
		return
	}
	summary.CompanyName = e.ShortName
	summary.MarketCap = int64(e.MarketCap)
	summary.PERatio = e.TrailingPE
}

// volatilityPct is the standard deviation of simple daily returns,
// expressed in percent.
func volatilityPct(closes []float64) float64 {
	return returnStddev(closes) * 100
}

// returnStddev computes the standard deviation of simple daily returns.
func returnStddev(closes []float64) float64 {
	if len(closes) < 3 {
		return 0
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		returns = append(returns, closes[i]/closes[i-1]-1)
	}
	if len(returns) < 2 {
		return 0
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))
	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)
	return math.Sqrt(variance)
}

// simpleMovingAverage returns the mean of the last n values, or 0 when
// fewer than n values exist.
func simpleMovingAverage(values []float64, n int) float64 {
	if len(values) < n || n <= 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values[len(values)-n:] {
		sum += v
	}
	return sum / float64(n)
}
