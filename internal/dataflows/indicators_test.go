package dataflows

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aletheia-intel/aletheia/models"
)

func makeBars(closes []float64) []*models.MarketBar {
	bars := make([]*models.MarketBar, len(closes))
	base := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = &models.MarketBar{
			Symbol: "TEST",
			Date:   base.AddDate(0, 0, i),
			Open:   decimal.NewFromFloat(c - 0.5),
			High:   decimal.NewFromFloat(c + 1),
			Low:    decimal.NewFromFloat(c - 1),
			Close:  decimal.NewFromFloat(c),
			Volume: 1000 + int64(i),
		}
	}
	return bars
}

func risingCloses(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	return closes
}

func TestComputeIndicatorsRequiresHistory(t *testing.T) {
	_, err := ComputeIndicators("TEST", "1mo", makeBars(risingCloses(10)))
	require.Error(t, err)
}

func TestComputeIndicatorsRisingMarket(t *testing.T) {
	ind, err := ComputeIndicators("TEST", "1y", makeBars(risingCloses(60)))
	require.NoError(t, err)

	require.NotNil(t, ind.RSI)
	assert.InDelta(t, 100, ind.RSI.RSI14, 0.001)
	assert.True(t, ind.RSI.IsOverbought)
	assert.False(t, ind.RSI.IsOversold)

	require.NotNil(t, ind.MACD)
	assert.True(t, ind.MACD.IsBullish)
	assert.Greater(t, ind.MACD.MACDLine, 0.0)

	// SMA20 of the last 20 closes 140..159 is 149.5.
	assert.InDelta(t, 149.5, ind.SMA["sma_20"], 0.001)
	assert.InDelta(t, 134.5, ind.SMA["sma_50"], 0.001)
	_, has200 := ind.SMA["sma_200"]
	assert.False(t, has200)

	require.NotNil(t, ind.Bollinger)
	assert.InDelta(t, 149.5, ind.Bollinger.SMA20, 0.001)
	assert.Greater(t, ind.Bollinger.UpperBand, ind.Bollinger.LowerBand)
	assert.True(t, ind.Bollinger.IsAboveUpper)
	assert.Greater(t, ind.Bollinger.Bandwidth, 0.0)

	// The true range of each synthetic bar is high minus low.
	assert.InDelta(t, 2.0, ind.ATR, 0.25)
	assert.Greater(t, ind.VWMA, 0.0)
	assert.InDelta(t, 100, ind.MFI, 0.001)
}

func TestComputeIndicatorsFallingMarket(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 200 - float64(i)
	}
	ind, err := ComputeIndicators("TEST", "1y", makeBars(closes))
	require.NoError(t, err)

	require.NotNil(t, ind.RSI)
	assert.InDelta(t, 0, ind.RSI.RSI14, 0.001)
	assert.True(t, ind.RSI.IsOversold)

	require.NotNil(t, ind.MACD)
	assert.False(t, ind.MACD.IsBullish)
	require.NotNil(t, ind.Bollinger)
	assert.True(t, ind.Bollinger.IsBelowLower)
}

func TestEMASeriesSeedsWithSMA(t *testing.T) {
	series := emaSeries([]float64{1, 2, 3, 4, 5}, 5)
	require.Len(t, series, 1)
	assert.InDelta(t, 3, series[0], 0.001)
}
