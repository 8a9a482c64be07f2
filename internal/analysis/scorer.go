package analysis

import "fmt"

// Signal is the discrete setup label resolved from a composite score.
type Signal string

const (
	SignalWait          Signal = "WAIT"
	SignalAggressiveBuy Signal = "AGGRESSIVE_BUY"
	SignalDiamondSetup  Signal = "DIAMOND_SETUP"
)

// Score contributions. Criteria are additive and not mutually exclusive.
const (
	scoreTrend    = 20
	scoreMomentum = 30
	scoreMACD     = 10
	scoreVolume   = 10
	scoreZone     = 30

	aggressiveBuyThreshold = 40
	diamondSetupThreshold  = 70
)

// ZoneTolerance parameterizes how close to the value zone a price has to sit.
// The live scan uses a proximity check around the 0.618 level; the backtest
// uses a deliberately wider band between the scaled 0.618 and 0.5 levels to
// generate enough historical trade frequency. Keeping both in one struct
// stops the two paths from drifting apart silently.
type ZoneTolerance struct {
	// Proximity bounds |close - level_0.618| / close for the live scoring
	// value-zone criterion.
	Proximity float64
	// BandLow and BandHigh define the backtest entry band
	// [level_0.618*BandLow, level_0.5*BandHigh].
	BandLow  float64
	BandHigh float64
}

// LiveZoneTolerance is the tolerance used when scoring for alerts: a tight
// proximity check around the 0.618 level.
func LiveZoneTolerance() ZoneTolerance {
	return ZoneTolerance{Proximity: 0.15}
}

// BacktestZoneTolerance is the looser band the simulator admits entries in.
func BacktestZoneTolerance() ZoneTolerance {
	return ZoneTolerance{BandLow: 0.85, BandHigh: 1.15}
}

// ScorerConfig parameterizes a Scorer instance.
type ScorerConfig struct {
	FibLookback int
	Zone        ZoneTolerance
}

// SetupScore is the composite result of scoring the most recent bar of an
// enriched series. Produced fresh per bar and never mutated afterwards.
type SetupScore struct {
	Score    int      `json:"score"`
	Signal   Signal   `json:"signal"`
	Reasons  []string `json:"reasons"`
	Warnings []string `json:"warnings"`

	// MomentumCross records whether the stochastic %K crossed above %D on
	// this bar. Both non-WAIT signals require it regardless of score.
	MomentumCross bool `json:"momentum_cross"`

	// Thesis context for notifications.
	Trend       Trend           `json:"trend"`
	Strength    Strength        `json:"strength"`
	ADX         float64         `json:"adx"`
	RSI         float64         `json:"rsi"`
	VolumeRatio float64         `json:"volume_ratio"`
	Fib         FibonacciLevels `json:"fib"`
}

// Scorer combines trend, momentum-cross, volume and zone criteria into one
// composite setup score. A single parameterized implementation serves both
// the live scan and the backtest entry rule.
type Scorer struct {
	fibLookback int
	zone        ZoneTolerance
}

// NewScorer builds a scorer. A zero FibLookback falls back to the default
// 120-bar window.
func NewScorer(cfg ScorerConfig) *Scorer {
	lookback := cfg.FibLookback
	if lookback <= 0 {
		lookback = DefaultFibLookback
	}
	return &Scorer{fibLookback: lookback, zone: cfg.Zone}
}

// Score evaluates the two most recent bars of an indicator-enriched series.
// The series needs at least two bars with every scoring input defined.
func (s *Scorer) Score(series *Series) (*SetupScore, error) {
	curr, prev, err := s.lastTwo(series)
	if err != nil {
		return nil, err
	}

	bar := series.Bars[curr]
	close := bar.Close
	smaLong := at(series.SMALong, curr)
	emaMid := at(series.EMAMid, curr)
	adx := at(series.ADX, curr)
	rsi := at(series.RSI, curr)
	kCurr := at(series.StochK, curr)
	dCurr := at(series.StochD, curr)
	kPrev := at(series.StochK, prev)
	dPrev := at(series.StochD, prev)
	macd := at(series.MACD, curr)

	if !Defined(close, smaLong, emaMid, adx, rsi, kCurr, dCurr, kPrev, dPrev, macd) {
		return nil, fmt.Errorf("score %s: indicator columns undefined: %w", series.Symbol, ErrInsufficientData)
	}

	fib, err := ComputeFibonacci(series.Bars, s.fibLookback)
	if err != nil {
		return nil, err
	}

	result := &SetupScore{
		Signal:   SignalWait,
		Reasons:  []string{},
		Warnings: []string{},
		ADX:      adx,
		RSI:      rsi,
		Fib:      fib,
	}
	result.Trend, result.Strength = ClassifyStructure(close, smaLong, emaMid, adx)

	// Trend participation.
	if close > smaLong || close > emaMid {
		result.Score += scoreTrend
	} else {
		result.Warnings = append(result.Warnings, "Weak Trend")
	}

	// Momentum: %K crossing above %D in the lower half. A cross that happens
	// above 50 is a late, overbought entry and does not count.
	result.MomentumCross = kCurr > dCurr && kPrev <= dPrev && kCurr < 50
	if result.MomentumCross {
		result.Score += scoreMomentum
		result.Reasons = append(result.Reasons, fmt.Sprintf("Stoch Momentum (%.0f)", kCurr))
	}

	if macd > 0 {
		result.Score += scoreMACD
	}

	// Volume confirmation, guarded against an undefined or zero average.
	volAvg := at(series.VolumeAvg, curr)
	if Defined(volAvg) && volAvg > 0 {
		result.VolumeRatio = bar.Volume / volAvg
		if result.VolumeRatio > 1.0 {
			result.Score += scoreVolume
			result.Reasons = append(result.Reasons, "Vol > Avg")
		}
	}

	// Value zone proximity to the 0.618 retracement.
	if s.inValueZone(close, fib) {
		result.Score += scoreZone
		result.Reasons = append(result.Reasons, "In Value Zone")
	}

	// A high score alone never produces a buy signal: without a fresh
	// stochastic cross the setup is already extended and stays WAIT.
	if result.MomentumCross && result.Score >= aggressiveBuyThreshold {
		result.Signal = SignalAggressiveBuy
		if result.Score >= diamondSetupThreshold {
			result.Signal = SignalDiamondSetup
		}
	}

	return result, nil
}

// EvaluateEntry is the backtest entry rule: a fresh momentum cross, trend
// participation, and the close inside the wider entry band. Used on the
// trailing window ending at the simulated bar.
func (s *Scorer) EvaluateEntry(series *Series) (bool, FibonacciLevels, error) {
	curr, prev, err := s.lastTwo(series)
	if err != nil {
		return false, FibonacciLevels{}, err
	}

	close := series.Bars[curr].Close
	smaLong := at(series.SMALong, curr)
	emaMid := at(series.EMAMid, curr)
	kCurr := at(series.StochK, curr)
	dCurr := at(series.StochD, curr)
	kPrev := at(series.StochK, prev)
	dPrev := at(series.StochD, prev)

	if !Defined(close, smaLong, emaMid, kCurr, dCurr, kPrev, dPrev) {
		return false, FibonacciLevels{}, fmt.Errorf("entry %s: indicator columns undefined: %w", series.Symbol, ErrInsufficientData)
	}

	fib, err := ComputeFibonacci(series.Bars, s.fibLookback)
	if err != nil {
		return false, FibonacciLevels{}, err
	}

	cross := kCurr > dCurr && kPrev <= dPrev && kCurr < 50
	trendOK := close > smaLong || close > emaMid
	zoneOK := close >= fib.Level618*s.zone.BandLow && close <= fib.Level50*s.zone.BandHigh

	return cross && trendOK && zoneOK, fib, nil
}

func (s *Scorer) inValueZone(close float64, fib FibonacciLevels) bool {
	if close == 0 {
		return false
	}
	dist := close - fib.Level618
	if dist < 0 {
		dist = -dist
	}
	return dist/close < s.zone.Proximity
}

func (s *Scorer) lastTwo(series *Series) (curr, prev int, err error) {
	if series == nil || series.Len() < 2 {
		return 0, 0, fmt.Errorf("scorer needs at least two bars: %w", ErrInsufficientData)
	}
	return series.Len() - 1, series.Len() - 2, nil
}
