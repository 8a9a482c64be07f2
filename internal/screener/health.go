package screener

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alphaquant/idx-screener-go/internal/analysis"
	"github.com/alphaquant/idx-screener-go/internal/models"
)

// Thresholds for the daily market brief.
const (
	oversoldRSI       = 30.0
	overboughtRSI     = 70.0
	volumeSpikeRatio  = 3.0
	squeezeBandwidth  = 0.05
	pullbackProximity = 0.02
)

// MarketHealth is an aggregate read of the scanned universe for the daily
// brief: breadth, extremes and watchlists.
type MarketHealth struct {
	GeneratedAt time.Time `json:"generated_at"`
	Evaluated   int       `json:"evaluated"`

	// AboveLongTrend counts closes above the long moving average.
	AboveLongTrend int     `json:"above_long_trend"`
	BreadthPct     float64 `json:"breadth_pct"`

	Oversold     []string `json:"oversold"`
	Overbought   []string `json:"overbought"`
	VolumeSpikes []string `json:"volume_spikes"`
	Squeezes     []string `json:"squeezes"`
	// PullbackWatch lists uptrending names sitting on the mid moving
	// average, the highest-odds entries for the next sessions.
	PullbackWatch []string `json:"pullback_watch"`
}

// HealthAnalyzer builds the daily brief from per-instrument enriched series.
type HealthAnalyzer struct {
	market MarketData
	logger *logrus.Logger
}

func NewHealthAnalyzer(market MarketData, logger *logrus.Logger) *HealthAnalyzer {
	return &HealthAnalyzer{market: market, logger: logger}
}

// Evaluate scans the universe and aggregates breadth and watchlists.
// Instruments that fail to load are skipped.
func (h *HealthAnalyzer) Evaluate(ctx context.Context, stocks []models.Stock) (*MarketHealth, error) {
	health := &MarketHealth{
		GeneratedAt:   time.Now(),
		Oversold:      []string{},
		Overbought:    []string{},
		VolumeSpikes:  []string{},
		Squeezes:      []string{},
		PullbackWatch: []string{},
	}

	for _, stock := range stocks {
		if err := ctx.Err(); err != nil {
			return health, err
		}

		series, err := h.market.EnrichedSeries(ctx, stock.Ticker)
		if err != nil {
			h.logger.WithFields(logrus.Fields{
				"ticker": stock.Ticker,
				"reason": err.Error(),
			}).Debug("Excluding instrument from market brief")
			continue
		}
		h.observe(health, series)
	}

	if health.Evaluated > 0 {
		health.BreadthPct = float64(health.AboveLongTrend) / float64(health.Evaluated) * 100
	}
	return health, nil
}

func (h *HealthAnalyzer) observe(health *MarketHealth, series *analysis.Series) {
	i := series.Len() - 1
	if i < 0 {
		return
	}
	bar := series.Bars[i]
	close := bar.Close
	if close <= 0 {
		return
	}

	smaLong := seriesAt(series.SMALong, i)
	if !analysis.Defined(close, smaLong) {
		return
	}
	health.Evaluated++

	if close > smaLong {
		health.AboveLongTrend++
	}

	if rsi := seriesAt(series.RSI, i); analysis.Defined(rsi) {
		switch {
		case rsi < oversoldRSI:
			health.Oversold = append(health.Oversold, series.Symbol)
		case rsi > overboughtRSI:
			health.Overbought = append(health.Overbought, series.Symbol)
		}
	}

	if volAvg := seriesAt(series.VolumeAvg, i); analysis.Defined(volAvg) && volAvg > 0 {
		if bar.Volume/volAvg > volumeSpikeRatio {
			health.VolumeSpikes = append(health.VolumeSpikes, series.Symbol)
		}
	}

	upper := seriesAt(series.BBUpper, i)
	lower := seriesAt(series.BBLower, i)
	middle := seriesAt(series.BBMiddle, i)
	if analysis.Defined(upper, lower, middle) && middle > 0 {
		if (upper-lower)/middle < squeezeBandwidth {
			health.Squeezes = append(health.Squeezes, series.Symbol)
		}
	}

	emaMid := seriesAt(series.EMAMid, i)
	if analysis.Defined(emaMid) && emaMid > 0 && close > smaLong {
		dist := (close - emaMid) / emaMid
		if dist < 0 {
			dist = -dist
		}
		if dist < pullbackProximity {
			health.PullbackWatch = append(health.PullbackWatch, series.Symbol)
		}
	}
}

// Brief renders the health snapshot as a plain-text daily summary.
func (m *MarketHealth) Brief() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Market Brief %s\n", m.GeneratedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Breadth: %d/%d above long trend (%.1f%%)\n",
		m.AboveLongTrend, m.Evaluated, m.BreadthPct)

	writeList := func(label string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&b, "%s: %s\n", label, strings.Join(items, ", "))
	}
	writeList("Oversold", m.Oversold)
	writeList("Overbought", m.Overbought)
	writeList("Volume spikes", m.VolumeSpikes)
	writeList("Squeezes", m.Squeezes)
	writeList("Pullback watch", m.PullbackWatch)

	return b.String()
}

func seriesAt(col []float64, i int) float64 {
	if i < 0 || i >= len(col) {
		return analysis.Undefined()
	}
	return col[i]
}
