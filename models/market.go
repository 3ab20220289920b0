package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketBar is one OHLCV bar.
type MarketBar struct {
	Symbol   string          `json:"symbol"`
	Date     time.Time       `json:"date"`
	Open     decimal.Decimal `json:"open"`
	High     decimal.Decimal `json:"high"`
	Low      decimal.Decimal `json:"low"`
	Close    decimal.Decimal `json:"close"`
	AdjClose decimal.Decimal `json:"adj_close"`
	Volume   int64           `json:"volume"`
}

// StockSummary aggregates history plus derived statistics for a ticker.
type StockSummary struct {
	Ticker         string       `json:"ticker"`
	Period         string       `json:"period"`
	Interval       string       `json:"interval"`
	Bars           []*MarketBar `json:"bars"`
	LatestPrice    float64      `json:"latest_price"`
	PriceChange    float64      `json:"price_change"`
	PriceChangePct float64      `json:"price_change_pct"`
	Volatility     float64      `json:"volatility"`
	MA50           float64      `json:"ma_50,omitempty"`
	MA200          float64      `json:"ma_200,omitempty"`
	CompanyName    string       `json:"company_name,omitempty"`
	MarketCap      int64        `json:"market_cap,omitempty"`
	PERatio        float64      `json:"pe_ratio,omitempty"`
	DividendYield  float64      `json:"dividend_yield,omitempty"`
	Source         string       `json:"source"`
}

// StatementRow is one line item of a financial statement.
type StatementRow struct {
	Item   string             `json:"item"`
	Values map[string]float64 `json:"values"` // period label -> value
}

// FinancialStatements holds one statement type for one ticker.
type FinancialStatements struct {
	Ticker        string          `json:"ticker"`
	StatementType string          `json:"statement_type"` // income, balance, cash
	Period        string          `json:"period"`         // annual, quarterly
	Rows          []*StatementRow `json:"rows"`
	Source        string          `json:"source"`
}

// EconomicPoint is one observation of an economic series.
type EconomicPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// EconomicSeries is a FRED series with metadata.
type EconomicSeries struct {
	IndicatorID string           `json:"indicator_id"`
	Title       string           `json:"title"`
	Units       string           `json:"units"`
	Frequency   string           `json:"frequency"`
	StartDate   time.Time        `json:"start_date"`
	EndDate     time.Time        `json:"end_date"`
	Points      []*EconomicPoint `json:"points"`
	LatestValue float64          `json:"latest_value"`
	Source      string           `json:"source"`
}

// CalendarEvent is one scheduled economic release.
type CalendarEvent struct {
	Date       time.Time `json:"date"`
	Time       string    `json:"time"`
	Event      string    `json:"event"`
	Country    string    `json:"country"`
	Importance string    `json:"importance"`
	Previous   string    `json:"previous,omitempty"`
	Forecast   string    `json:"forecast,omitempty"`
}

// IndicatorValue is one dated technical indicator value.
type IndicatorValue struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// TechnicalIndicators is the derived indicator snapshot for a ticker.
type TechnicalIndicators struct {
	Ticker    string             `json:"ticker"`
	Period    string             `json:"period"`
	SMA       map[string]float64 `json:"sma,omitempty"`
	EMA       map[string]float64 `json:"ema,omitempty"`
	RSI       *RSISummary        `json:"rsi,omitempty"`
	MACD      *MACDSummary       `json:"macd,omitempty"`
	Bollinger *BollingerSummary  `json:"bollinger,omitempty"`
	VWMA      float64            `json:"vwma,omitempty"`
	ATR       float64            `json:"atr,omitempty"`
	MFI       float64            `json:"mfi,omitempty"`
	Source    string             `json:"source"`
}

type RSISummary struct {
	RSI14        float64 `json:"rsi_14"`
	IsOverbought bool    `json:"is_overbought"`
	IsOversold   bool    `json:"is_oversold"`
}

type MACDSummary struct {
	MACDLine   float64 `json:"macd_line"`
	SignalLine float64 `json:"signal_line"`
	Histogram  float64 `json:"histogram"`
	IsBullish  bool    `json:"is_bullish"`
}

type BollingerSummary struct {
	SMA20        float64 `json:"sma_20"`
	UpperBand    float64 `json:"upper_band"`
	LowerBand    float64 `json:"lower_band"`
	IsAboveUpper bool    `json:"is_above_upper"`
	IsBelowLower bool    `json:"is_below_lower"`
	Bandwidth    float64 `json:"bandwidth"`
}
