package market

import (
	"math"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"
	"github.com/cinar/indicator/v2/volume"

	"github.com/alphaquant/idx-screener-go/internal/analysis"
	"github.com/alphaquant/idx-screener-go/internal/config"
)

// Enricher computes the indicator columns of a series. Positions before an
// indicator's lookback window is satisfied stay undefined, never a fabricated
// numeric placeholder.
type Enricher struct {
	cfg config.IndicatorConfig
}

// NewEnricher builds an enricher from the indicator configuration.
func NewEnricher(cfg config.IndicatorConfig) *Enricher {
	return &Enricher{cfg: cfg}
}

// Enrich fills every indicator column of the series in place.
func (e *Enricher) Enrich(series *analysis.Series) {
	n := series.Len()
	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i, bar := range series.Bars {
		closes[i] = bar.Close
		volumes[i] = bar.Volume
	}

	sma := trend.NewSmaWithPeriod[float64](e.cfg.SMALongPeriod)
	series.SMALong = padLeft(helper.ChanToSlice(sma.Compute(helper.SliceToChan(closes))), n)

	ema := trend.NewEmaWithPeriod[float64](e.cfg.EMAMidPeriod)
	series.EMAMid = padLeft(helper.ChanToSlice(ema.Compute(helper.SliceToChan(closes))), n)

	rsi := momentum.NewRsiWithPeriod[float64](e.cfg.RSIPeriod)
	series.RSI = padLeft(helper.ChanToSlice(rsi.Compute(helper.SliceToChan(closes))), n)

	series.StochK, series.StochD = stochasticRSI(series.RSI, e.cfg.StochRSIPeriod, e.cfg.StochKSmoothing, e.cfg.StochDSmoothing)

	macd := trend.NewMacdWithPeriod[float64](e.cfg.MACDFast, e.cfg.MACDSlow, e.cfg.MACDSignal)
	macdLine, macdSignal := macd.Compute(helper.SliceToChan(closes))
	// Both outputs come off one duplicated unbuffered stream, so they must be
	// drained concurrently or the producer stalls.
	lineDone := make(chan []float64, 1)
	go func() {
		lineDone <- helper.ChanToSlice(macdLine)
	}()
	signalValues := helper.ChanToSlice(macdSignal)
	series.MACD = padLeft(<-lineDone, n)
	series.MACDSignal = padLeft(signalValues, n)

	series.BBMiddle = rollingMean(closes, e.cfg.BBPeriod)
	series.BBUpper, series.BBLower = bollingerBands(closes, series.BBMiddle, e.cfg.BBPeriod, e.cfg.BBStdDev)

	series.ADX = averageDirectionalIndex(series.Bars, e.cfg.ADXPeriod)
	series.VolumeAvg = rollingMean(volumes, e.cfg.VolumeAvgPeriod)

	obv := volume.NewObv[float64]()
	series.OBV = padLeft(helper.ChanToSlice(obv.Compute(helper.SliceToChan(closes), helper.SliceToChan(volumes))), n)
}

// padLeft aligns a shortened indicator output back to the series length by
// marking the warm-up positions undefined.
func padLeft(values []float64, total int) []float64 {
	out := make([]float64, total)
	pad := total - len(values)
	if pad < 0 {
		values = values[len(values)-total:]
		pad = 0
	}
	for i := 0; i < pad; i++ {
		out[i] = analysis.Undefined()
	}
	copy(out[pad:], values)
	return out
}

// rollingMean computes a simple moving average, undefined until the window
// is full and whenever the window contains an undefined value.
func rollingMean(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = analysis.Undefined()
	}
	if period <= 0 {
		return out
	}

	for i := period - 1; i < len(values); i++ {
		sum := 0.0
		defined := true
		for j := i - period + 1; j <= i; j++ {
			if math.IsNaN(values[j]) {
				defined = false
				break
			}
			sum += values[j]
		}
		if defined {
			out[i] = sum / float64(period)
		}
	}

	return out
}

// stochasticRSI derives the %K/%D oscillator pair from the RSI column:
// raw stochastic of RSI over period, then two rounds of smoothing.
func stochasticRSI(rsi []float64, period, kSmooth, dSmooth int) (k, d []float64) {
	raw := make([]float64, len(rsi))
	for i := range raw {
		raw[i] = analysis.Undefined()
	}

	for i := period - 1; i < len(rsi); i++ {
		lowest := math.Inf(1)
		highest := math.Inf(-1)
		defined := true
		for j := i - period + 1; j <= i; j++ {
			if math.IsNaN(rsi[j]) {
				defined = false
				break
			}
			lowest = math.Min(lowest, rsi[j])
			highest = math.Max(highest, rsi[j])
		}
		if !defined {
			continue
		}
		if highest == lowest {
			raw[i] = 50
			continue
		}
		raw[i] = (rsi[i] - lowest) / (highest - lowest) * 100
	}

	k = rollingMean(raw, kSmooth)
	d = rollingMean(k, dSmooth)
	return k, d
}

// bollingerBands derives the upper and lower bands from the middle band and
// the population standard deviation of each window.
func bollingerBands(closes, middle []float64, period int, stdDev float64) (upper, lower []float64) {
	upper = make([]float64, len(closes))
	lower = make([]float64, len(closes))
	for i := range upper {
		upper[i] = analysis.Undefined()
		lower[i] = analysis.Undefined()
	}

	for i := period - 1; i < len(closes); i++ {
		if math.IsNaN(middle[i]) {
			continue
		}
		variance := 0.0
		for j := i - period + 1; j <= i; j++ {
			diff := closes[j] - middle[i]
			variance += diff * diff
		}
		sd := math.Sqrt(variance / float64(period))
		upper[i] = middle[i] + stdDev*sd
		lower[i] = middle[i] - stdDev*sd
	}

	return upper, lower
}

// averageDirectionalIndex computes ADX with Wilder smoothing. The first
// defined value sits at index 2*period-1.
func averageDirectionalIndex(bars []analysis.Bar, period int) []float64 {
	n := len(bars)
	out := make([]float64, n)
	for i := range out {
		out[i] = analysis.Undefined()
	}
	if period <= 0 || n < 2*period {
		return out
	}

	trueRange := make([]float64, n)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		highDiff := bars[i].High - bars[i-1].High
		lowDiff := bars[i-1].Low - bars[i].Low
		if highDiff > lowDiff && highDiff > 0 {
			plusDM[i] = highDiff
		}
		if lowDiff > highDiff && lowDiff > 0 {
			minusDM[i] = lowDiff
		}
		trueRange[i] = math.Max(bars[i].High-bars[i].Low, math.Max(
			math.Abs(bars[i].High-bars[i-1].Close),
			math.Abs(bars[i].Low-bars[i-1].Close),
		))
	}

	// Wilder seeding: plain sums over the first period, then recursive
	// smoothing s = s - s/period + x.
	var smTR, smPlus, smMinus float64
	for i := 1; i <= period; i++ {
		smTR += trueRange[i]
		smPlus += plusDM[i]
		smMinus += minusDM[i]
	}

	dx := make([]float64, n)
	for i := range dx {
		dx[i] = analysis.Undefined()
	}

	for i := period; i < n; i++ {
		if i > period {
			smTR = smTR - smTR/float64(period) + trueRange[i]
			smPlus = smPlus - smPlus/float64(period) + plusDM[i]
			smMinus = smMinus - smMinus/float64(period) + minusDM[i]
		}
		if smTR == 0 {
			continue
		}
		plusDI := 100 * smPlus / smTR
		minusDI := 100 * smMinus / smTR
		if sum := plusDI + minusDI; sum > 0 {
			dx[i] = 100 * math.Abs(plusDI-minusDI) / sum
		} else {
			dx[i] = 0
		}
	}

	// ADX: period-mean of DX, then Wilder smoothing.
	var adxPrev float64
	seeded := false
	for i := 2*period - 1; i < n; i++ {
		if !seeded {
			sum := 0.0
			count := 0
			for j := i - period + 1; j <= i; j++ {
				if !math.IsNaN(dx[j]) {
					sum += dx[j]
					count++
				}
			}
			if count == 0 {
				continue
			}
			adxPrev = sum / float64(count)
			seeded = true
		} else if !math.IsNaN(dx[i]) {
			adxPrev = (adxPrev*float64(period-1) + dx[i]) / float64(period)
		}
		out[i] = adxPrev
	}

	return out
}
