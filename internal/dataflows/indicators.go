package dataflows

import (
	"fmt"
	"math"

	"github.com/aletheia-intel/aletheia/models"
)

// ComputeIndicators derives the standard technical indicator snapshot
// from daily bars: SMA 20/50/200, EMA 12/26/50, RSI-14, MACD 12/26/9,
// Bollinger 20-day two-sigma bands, plus VWMA, ATR and MFI over 14
// periods when volume data is present.
func ComputeIndicators(ticker, period string, bars []*models.MarketBar) (*models.TechnicalIndicators, error) {
	if len(bars) < 20 {
		return nil, fmt.Errorf("need at least 20 bars to compute indicators, got %d", len(bars))
	}

	closes := make([]float64, len(bars))
	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i], _ = b.Close.Float64()
		highs[i], _ = b.High.Float64()
		lows[i], _ = b.Low.Float64()
		volumes[i] = float64(b.Volume)
	}

	ind := &models.TechnicalIndicators{
		Ticker: ticker,
		Period: period,
		SMA:    map[string]float64{},
		EMA:    map[string]float64{},
		Source: "computed",
	}

	for _, n := range []int{20, 50, 200} {
		if v := simpleMovingAverage(closes, n); v > 0 {
			ind.SMA[fmt.Sprintf("sma_%d", n)] = v
		}
	}
	for _, n := range []int{12, 26, 50} {
		if series := emaSeries(closes, n); len(series) > 0 {
			ind.EMA[fmt.Sprintf("ema_%d", n)] = series[len(series)-1]
		}
	}

	if rsi := rsi14(closes); !math.IsNaN(rsi) {
		ind.RSI = &models.RSISummary{
			RSI14:        rsi,
			IsOverbought: rsi > 70,
			IsOversold:   rsi < 30,
		}
	}

	if macd, signal, ok := macdLine(closes); ok {
		ind.MACD = &models.MACDSummary{
			MACDLine:   macd,
			SignalLine: signal,
			Histogram:  macd - signal,
			IsBullish:  macd > signal,
		}
	}

	ind.Bollinger = bollingerBands(closes)

	if hasVolume(volumes) {
		ind.VWMA = vwma(closes, volumes, 14)
		ind.MFI = mfi(highs, lows, closes, volumes, 14)
	}
	ind.ATR = atr(highs, lows, closes, 14)

	return ind, nil
}

func emaSeries(values []float64, n int) []float64 {
	if len(values) < n || n <= 0 {
		return nil
	}
	k := 2.0 / (float64(n) + 1.0)
	series := make([]float64, 0, len(values)-n+1)

	// Seed with the SMA of the first n values.
	seed := 0.0
	for _, v := range values[:n] {
		seed += v
	}
	seed /= float64(n)
	series = append(series, seed)

	for _, v := range values[n:] {
		prev := series[len(series)-1]
		series = append(series, v*k+prev*(1-k))
	}
	return series
}

func rsi14(closes []float64) float64 {
	const n = 14
	if len(closes) < n+1 {
		return math.NaN()
	}

	gains, losses := 0.0, 0.0
	for i := 1; i <= n; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	avgGain := gains / n
	avgLoss := losses / n

	// Wilder smoothing over the remaining bars.
	for i := n + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*(n-1) + gain) / n
		avgLoss = (avgLoss*(n-1) + loss) / n
	}

	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

func macdLine(closes []float64) (macd, signal float64, ok bool) {
	fast := emaSeries(closes, 12)
	slow := emaSeries(closes, 26)
	if len(slow) == 0 {
		return 0, 0, false
	}

	// Align the fast series to the slow series tail.
	offset := len(fast) - len(slow)
	macdSeries := make([]float64, len(slow))
	for i := range slow {
		macdSeries[i] = fast[i+offset] - slow[i]
	}

	signalSeries := emaSeries(macdSeries, 9)
	if len(signalSeries) == 0 {
		return 0, 0, false
	}
	return macdSeries[len(macdSeries)-1], signalSeries[len(signalSeries)-1], true
}

func bollingerBands(closes []float64) *models.BollingerSummary {
	const n = 20
	if len(closes) < n {
		return nil
	}
	window := closes[len(closes)-n:]

	mean := 0.0
	for _, v := range window {
		mean += v
	}
	mean /= n

	variance := 0.0
	for _, v := range window {
		variance += (v - mean) * (v - mean)
	}
	stddev := math.Sqrt(variance / n)

	latest := closes[len(closes)-1]
	upper := mean + 2*stddev
	lower := mean - 2*stddev

	summary := &models.BollingerSummary{
		SMA20:        mean,
		UpperBand:    upper,
		LowerBand:    lower,
		IsAboveUpper: latest > upper,
		IsBelowLower: latest < lower,
	}
	if mean != 0 {
		summary.Bandwidth = (upper - lower) / mean
	}
	return summary
}

func vwma(closes, volumes []float64, n int) float64 {
	if len(closes) < n {
		return 0
	}
	pv, v := 0.0, 0.0
	for i := len(closes) - n; i < len(closes); i++ {
		pv += closes[i] * volumes[i]
		v += volumes[i]
	}
	if v == 0 {
		return 0
	}
	return pv / v
}

func atr(highs, lows, closes []float64, n int) float64 {
	if len(closes) < n+1 {
		return 0
	}
	trs := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		tr := math.Max(highs[i]-lows[i],
			math.Max(math.Abs(highs[i]-closes[i-1]), math.Abs(lows[i]-closes[i-1])))
		trs = append(trs, tr)
	}

	sum := 0.0
	for _, tr := range trs[len(trs)-n:] {
		sum += tr
	}
	return sum / float64(n)
}

func mfi(highs, lows, closes, volumes []float64, n int) float64 {
	if len(closes) < n+1 {
		return 0
	}

	positive, negative := 0.0, 0.0
	for i := len(closes) - n; i < len(closes); i++ {
		typical := (highs[i] + lows[i] + closes[i]) / 3
		prevTypical := (highs[i-1] + lows[i-1] + closes[i-1]) / 3
		flow := typical * volumes[i]
		if typical > prevTypical {
			positive += flow
		} else if typical < prevTypical {
			negative += flow
		}
	}
	if negative == 0 {
		return 100
	}
	ratio := positive / negative
	return 100 - 100/(1+ratio)
}

func hasVolume(volumes []float64) bool {
	for _, v := range volumes {
		if v > 0 {
			return true
		}
	}
	return false
}
