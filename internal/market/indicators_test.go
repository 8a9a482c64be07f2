package market

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphaquant/idx-screener-go/internal/analysis"
	"github.com/alphaquant/idx-screener-go/internal/config"
)

func testIndicatorConfig() config.IndicatorConfig {
	return config.IndicatorConfig{
		SMALongPeriod:   200,
		EMAMidPeriod:    50,
		RSIPeriod:       14,
		StochRSIPeriod:  14,
		StochKSmoothing: 3,
		StochDSmoothing: 3,
		MACDFast:        12,
		MACDSlow:        26,
		MACDSignal:      9,
		BBPeriod:        20,
		BBStdDev:        2.0,
		ADXPeriod:       14,
		VolumeAvgPeriod: 20,
	}
}

func trendingSeries(n int) *analysis.Series {
	day := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]analysis.Bar, n)
	price := 1000.0
	for i := range bars {
		// Gentle rise with a wobble so every indicator sees movement.
		price += 2
		if i%7 == 0 {
			price -= 5
		}
		bars[i] = analysis.Bar{
			Date:   day.AddDate(0, 0, i),
			Open:   price - 3,
			High:   price + 5,
			Low:    price - 6,
			Close:  price,
			Volume: 10000 + float64(i%13)*500,
		}
	}
	return &analysis.Series{Symbol: "TEST.JK", Bars: bars}
}

func TestEnricher_ColumnsAlignedAndDefined(t *testing.T) {
	series := trendingSeries(300)
	NewEnricher(testIndicatorConfig()).Enrich(series)

	n := series.Len()
	columns := map[string][]float64{
		"sma_long":    series.SMALong,
		"ema_mid":     series.EMAMid,
		"rsi":         series.RSI,
		"stoch_k":     series.StochK,
		"stoch_d":     series.StochD,
		"macd":        series.MACD,
		"macd_signal": series.MACDSignal,
		"bb_upper":    series.BBUpper,
		"bb_middle":   series.BBMiddle,
		"bb_lower":    series.BBLower,
		"adx":         series.ADX,
		"volume_avg":  series.VolumeAvg,
		"obv":         series.OBV,
	}

	for name, col := range columns {
		require.Len(t, col, n, "column %s misaligned", name)
		assert.True(t, analysis.Defined(col[n-1]), "column %s undefined at final bar", name)
	}

	// The long SMA needs 200 bars: early positions must stay undefined.
	assert.False(t, analysis.Defined(series.SMALong[100]))
	assert.True(t, analysis.Defined(series.SMALong[n-1]))
}

func TestEnricher_CompletesOnLongSeries(t *testing.T) {
	// The paired MACD outputs share one unbuffered upstream; draining them
	// out of step stalls the producer once a real-length series flows
	// through. Guard the call with a deadline so a regression fails instead
	// of hanging the suite.
	series := trendingSeries(600)

	done := make(chan struct{})
	go func() {
		NewEnricher(testIndicatorConfig()).Enrich(series)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Enrich did not finish on a 600-bar series")
	}

	i := series.Len() - 1
	require.True(t, analysis.Defined(series.MACD[i]))
	require.True(t, analysis.Defined(series.MACDSignal[i]))
	require.Len(t, series.MACDSignal, series.Len())
}

func TestEnricher_BoundsSanity(t *testing.T) {
	series := trendingSeries(300)
	NewEnricher(testIndicatorConfig()).Enrich(series)

	i := series.Len() - 1
	assert.GreaterOrEqual(t, series.RSI[i], 0.0)
	assert.LessOrEqual(t, series.RSI[i], 100.0)
	assert.GreaterOrEqual(t, series.StochK[i], 0.0)
	assert.LessOrEqual(t, series.StochK[i], 100.0)
	assert.Greater(t, series.BBUpper[i], series.BBMiddle[i])
	assert.Less(t, series.BBLower[i], series.BBMiddle[i])
	assert.GreaterOrEqual(t, series.ADX[i], 0.0)
	assert.LessOrEqual(t, series.ADX[i], 100.0)
}

func TestPadLeft(t *testing.T) {
	out := padLeft([]float64{1, 2, 3}, 5)

	require.Len(t, out, 5)
	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.Equal(t, []float64{1, 2, 3}, out[2:])

	// Already aligned output passes through unchanged.
	assert.Equal(t, []float64{1, 2}, padLeft([]float64{1, 2}, 2))

	// An over-long output keeps its most recent values.
	assert.Equal(t, []float64{2, 3}, padLeft([]float64{1, 2, 3}, 2))
}

func TestRollingMean(t *testing.T) {
	out := rollingMean([]float64{2, 4, 6, 8}, 2)

	assert.True(t, math.IsNaN(out[0]))
	assert.InDelta(t, 3.0, out[1], 1e-9)
	assert.InDelta(t, 5.0, out[2], 1e-9)
	assert.InDelta(t, 7.0, out[3], 1e-9)
}

func TestRollingMean_UndefinedInputsPropagate(t *testing.T) {
	out := rollingMean([]float64{analysis.Undefined(), 4, 6, 8}, 2)

	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 5.0, out[2], 1e-9)
}

func TestStochasticRSI_FlatWindowFallsBackToMidpoint(t *testing.T) {
	rsi := []float64{50, 50, 50, 50, 50, 50}
	k, d := stochasticRSI(rsi, 3, 1, 1)

	// With kSmooth=1 the %K equals the raw stochastic; a flat RSI window
	// pins it at the midpoint instead of dividing by zero.
	assert.InDelta(t, 50.0, k[5], 1e-9)
	assert.InDelta(t, 50.0, d[5], 1e-9)
}

func TestStochasticRSI_TracksExtremes(t *testing.T) {
	rsi := []float64{30, 40, 50, 60, 70}
	k, _ := stochasticRSI(rsi, 3, 1, 1)

	// The latest RSI is the window high: raw stochastic reads 100.
	assert.InDelta(t, 100.0, k[4], 1e-9)
}

func TestBollingerBands(t *testing.T) {
	closes := []float64{10, 12, 14, 16}
	middle := rollingMean(closes, 4)
	upper, lower := bollingerBands(closes, middle, 4, 2.0)

	// Mean 13, population stddev sqrt(5) = 2.2360679...
	require.True(t, analysis.Defined(middle[3]))
	assert.InDelta(t, 13.0+2*2.2360679, upper[3], 1e-6)
	assert.InDelta(t, 13.0-2*2.2360679, lower[3], 1e-6)
	assert.True(t, math.IsNaN(upper[2]))
}

func TestAverageDirectionalIndex_DefinedAfterDoublePeriod(t *testing.T) {
	series := trendingSeries(100)
	adx := averageDirectionalIndex(series.Bars, 14)

	require.Len(t, adx, 100)
	assert.True(t, math.IsNaN(adx[26]))
	assert.True(t, analysis.Defined(adx[27]))
	for i := 27; i < 100; i++ {
		assert.GreaterOrEqual(t, adx[i], 0.0)
		assert.LessOrEqual(t, adx[i], 100.0)
	}
}

func TestAverageDirectionalIndex_ShortSeries(t *testing.T) {
	series := trendingSeries(20)
	adx := averageDirectionalIndex(series.Bars, 14)

	for _, v := range adx {
		assert.True(t, math.IsNaN(v))
	}
}
