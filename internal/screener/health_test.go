package screener

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphaquant/idx-screener-go/internal/analysis"
	"github.com/alphaquant/idx-screener-go/internal/models"
)

// healthSeries builds a one-observation series with the columns the brief
// reads. Unset indicator values stay undefined.
type healthSeries struct {
	close     float64
	volume    float64
	smaLong   float64
	emaMid    float64
	rsi       float64
	volumeAvg float64
	bbUpper   float64
	bbMiddle  float64
	bbLower   float64
}

func (h healthSeries) build(symbol string) *analysis.Series {
	orDefault := func(v float64) float64 {
		if v == 0 {
			return analysis.Undefined()
		}
		return v
	}
	return &analysis.Series{
		Symbol:    symbol,
		Bars:      []analysis.Bar{{Close: h.close, Volume: h.volume}},
		SMALong:   []float64{h.smaLong},
		EMAMid:    []float64{orDefault(h.emaMid)},
		RSI:       []float64{orDefault(h.rsi)},
		VolumeAvg: []float64{orDefault(h.volumeAvg)},
		BBUpper:   []float64{orDefault(h.bbUpper)},
		BBMiddle:  []float64{orDefault(h.bbMiddle)},
		BBLower:   []float64{orDefault(h.bbLower)},
	}
}

func TestHealthAnalyzer_Evaluate(t *testing.T) {
	market := &fakeMarket{series: map[string]*analysis.Series{
		// Uptrend, sitting right on the mid average: pullback watch.
		"UPPB.JK": healthSeries{close: 101, smaLong: 90, emaMid: 100, rsi: 55}.build("UPPB.JK"),
		// Downtrend and oversold.
		"DOWN.JK": healthSeries{close: 80, smaLong: 90, rsi: 25}.build("DOWN.JK"),
		// Overbought with a volume spike.
		"HOTT.JK": healthSeries{close: 120, smaLong: 90, emaMid: 95, rsi: 75, volume: 4000, volumeAvg: 1000}.build("HOTT.JK"),
		// Tight bands: squeeze.
		"SQZE.JK": healthSeries{close: 100, smaLong: 110, rsi: 50, bbUpper: 102, bbMiddle: 100, bbLower: 98}.build("SQZE.JK"),
	}}
	analyzer := NewHealthAnalyzer(market, quietTestLogger())

	stocks := []models.Stock{
		{Ticker: "UPPB.JK"}, {Ticker: "DOWN.JK"}, {Ticker: "HOTT.JK"}, {Ticker: "SQZE.JK"},
	}
	health, err := analyzer.Evaluate(context.Background(), stocks)
	require.NoError(t, err)

	assert.Equal(t, 4, health.Evaluated)
	assert.Equal(t, 2, health.AboveLongTrend)
	assert.InDelta(t, 50.0, health.BreadthPct, 1e-9)
	assert.Equal(t, []string{"DOWN.JK"}, health.Oversold)
	assert.Equal(t, []string{"HOTT.JK"}, health.Overbought)
	assert.Equal(t, []string{"HOTT.JK"}, health.VolumeSpikes)
	assert.Equal(t, []string{"SQZE.JK"}, health.Squeezes)
	assert.Equal(t, []string{"UPPB.JK"}, health.PullbackWatch)
}

func TestHealthAnalyzer_SkipsUnloadableInstruments(t *testing.T) {
	market := &fakeMarket{series: map[string]*analysis.Series{
		"UPPB.JK": healthSeries{close: 101, smaLong: 90, rsi: 55}.build("UPPB.JK"),
	}}
	analyzer := NewHealthAnalyzer(market, quietTestLogger())

	health, err := analyzer.Evaluate(context.Background(), []models.Stock{
		{Ticker: "UPPB.JK"}, {Ticker: "MISS.JK"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, health.Evaluated)
}

func TestMarketHealth_Brief(t *testing.T) {
	health := &MarketHealth{
		Evaluated:      10,
		AboveLongTrend: 6,
		BreadthPct:     60,
		Oversold:       []string{"DOWN.JK"},
		PullbackWatch:  []string{"UPPB.JK", "BBCA.JK"},
	}

	brief := health.Brief()

	assert.Contains(t, brief, "Breadth: 6/10 above long trend (60.0%)")
	assert.Contains(t, brief, "Oversold: DOWN.JK")
	assert.Contains(t, brief, "Pullback watch: UPPB.JK, BBCA.JK")
	assert.NotContains(t, brief, "Squeezes:")
}
