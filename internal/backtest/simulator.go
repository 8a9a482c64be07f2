package backtest

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alphaquant/idx-screener-go/internal/analysis"
)

// DefaultWarmupBars covers the longest indicator lookback (the 200-day SMA)
// before the simulator starts evaluating entries.
const DefaultWarmupBars = 200

// Report aggregates one instrument's simulated performance over its whole
// price history. Immutable once returned.
type Report struct {
	Symbol         string    `json:"symbol"`
	TradeCount     int       `json:"trade_count"`
	WinCount       int       `json:"win_count"`
	WinRate        float64   `json:"win_rate"`
	NetReturnPct   float64   `json:"net_return_pct"`
	MaxDrawdownPct float64   `json:"max_drawdown_pct"`
	FinalCapital   float64   `json:"final_capital"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// position is the single open slot per instrument. No pyramiding: a second
// entry cannot fire while one is open.
type position struct {
	entryPrice float64
	stopLoss   float64
	takeProfit float64
	shares     int
	entryDate  time.Time
}

// SimulatorConfig parameterizes a simulation run.
type SimulatorConfig struct {
	InitialCapital float64
	RiskFraction   float64
	WarmupBars     int
	FibLookback    int
	Zone           analysis.ZoneTolerance
}

// Simulator replays a price history day by day, opening positions on the
// entry rule and closing them on stop-loss or take-profit touches. It owns
// no shared state: one instance can be reused sequentially, and independent
// instruments run on independent simulators.
type Simulator struct {
	cfg    SimulatorConfig
	scorer *analysis.Scorer
	logger *logrus.Logger
}

// NewSimulator builds a simulator. Zone defaults to the backtest band and
// WarmupBars to the 200-bar default when left zero.
func NewSimulator(cfg SimulatorConfig, logger *logrus.Logger) *Simulator {
	if cfg.WarmupBars <= 0 {
		cfg.WarmupBars = DefaultWarmupBars
	}
	zero := analysis.ZoneTolerance{}
	if cfg.Zone == zero {
		cfg.Zone = analysis.BacktestZoneTolerance()
	}
	return &Simulator{
		cfg: cfg,
		scorer: analysis.NewScorer(analysis.ScorerConfig{
			FibLookback: cfg.FibLookback,
			Zone:        cfg.Zone,
		}),
		logger: logger,
	}
}

// Run replays the series once and returns the aggregate report.
//
// Exit checks run before entry checks on every bar, and the stop-loss check
// runs before the take-profit check: a bar that touches both levels intrabar
// closes as a loss, modeling the worst-case fill. Drawdown tracks realized
// equity only; an adverse excursion inside an open trade is invisible to the
// statistic until the trade closes.
func (s *Simulator) Run(series *analysis.Series) (*Report, error) {
	if series == nil || series.Len() <= s.cfg.WarmupBars+1 {
		length := 0
		if series != nil {
			length = series.Len()
		}
		return nil, fmt.Errorf("simulate: %d bars, warmup %d: %w", length, s.cfg.WarmupBars, analysis.ErrInsufficientData)
	}

	capital := s.cfg.InitialCapital
	peak := capital
	maxDrawdown := 0.0

	var open *position
	trades := 0
	wins := 0

	for i := s.cfg.WarmupBars; i < series.Len(); i++ {
		bar := series.Bars[i]

		if open != nil {
			switch {
			case bar.Low <= open.stopLoss:
				capital += (open.stopLoss - open.entryPrice) * float64(open.shares)
				trades++
				open = nil
			case bar.High >= open.takeProfit:
				capital += (open.takeProfit - open.entryPrice) * float64(open.shares)
				trades++
				wins++
				open = nil
			}
		} else {
			open = s.tryEnter(series, i, capital)
		}

		if capital > peak {
			peak = capital
		}
		if peak > 0 {
			if drawdown := (peak - capital) / peak; drawdown > maxDrawdown {
				maxDrawdown = drawdown
			}
		}
	}

	// A position still open on the final bar is discarded: it contributes to
	// neither the trade count nor realized P&L.
	winRate := 0.0
	if trades > 0 {
		winRate = float64(wins) / float64(trades) * 100
	}

	netReturn := 0.0
	if s.cfg.InitialCapital > 0 {
		netReturn = (capital - s.cfg.InitialCapital) / s.cfg.InitialCapital * 100
	}

	return &Report{
		Symbol:         series.Symbol,
		TradeCount:     trades,
		WinCount:       wins,
		WinRate:        winRate,
		NetReturnPct:   netReturn,
		MaxDrawdownPct: maxDrawdown * 100,
		FinalCapital:   capital,
		GeneratedAt:    time.Now(),
	}, nil
}

// tryEnter evaluates the entry rule on the trailing window ending at bar i
// and sizes a position under the risk budget, capped by available capital.
func (s *Simulator) tryEnter(series *analysis.Series, i int, capital float64) *position {
	window := series.Slice(0, i+1)

	ok, fib, err := s.scorer.EvaluateEntry(window)
	if err != nil {
		// Undefined indicator columns right after warmup: not an entry.
		if !errors.Is(err, analysis.ErrInsufficientData) && s.logger != nil {
			s.logger.WithFields(logrus.Fields{
				"symbol": series.Symbol,
				"bar":    i,
			}).WithError(err).Warn("entry evaluation failed")
		}
		return nil
	}
	if !ok {
		return nil
	}

	bar := series.Bars[i]
	risk := bar.Close - fib.Level786
	if risk <= 0 {
		return nil
	}

	plan := analysis.BuildPlan(bar.Close, fib, capital, s.cfg.RiskFraction)
	lots := plan.Lots
	if bar.Close > 0 {
		if affordable := int(math.Floor(capital / (bar.Close * analysis.LotSize))); lots > affordable {
			lots = affordable
		}
	}
	if lots <= 0 {
		return nil
	}

	return &position{
		entryPrice: bar.Close,
		stopLoss:   fib.Level786,
		takeProfit: fib.High,
		shares:     lots * analysis.LotSize,
		entryDate:  bar.Date,
	}
}
