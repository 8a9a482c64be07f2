package analysis

import "fmt"

// DefaultFibLookback is the trailing window the retracement levels are
// derived from.
const DefaultFibLookback = 120

// FibonacciLevels holds retracement levels derived from a trailing window:
// level r sits at high - r*(high-low). Level 0.0 is the window high itself.
type FibonacciLevels struct {
	High     float64 `json:"high"`
	Level50  float64 `json:"level_0_5"`
	Level618 float64 `json:"level_0_618"`
	Level786 float64 `json:"level_0_786"`
}

// Degenerate reports a zero-width window: every level collapsed onto the
// high. Callers must treat this as "no tradable structure" rather than feed
// the levels into ratio math.
func (f FibonacciLevels) Degenerate() bool {
	return f.High == f.Level786
}

// ComputeFibonacci derives retracement levels from the trailing lookback
// window of bars. A series shorter than the lookback uses all available bars.
func ComputeFibonacci(bars []Bar, lookback int) (FibonacciLevels, error) {
	if len(bars) == 0 {
		return FibonacciLevels{}, fmt.Errorf("fibonacci: %w", ErrInsufficientData)
	}
	if lookback <= 0 {
		lookback = DefaultFibLookback
	}

	start := len(bars) - lookback
	if start < 0 {
		start = 0
	}
	window := bars[start:]

	high := window[0].High
	low := window[0].Low
	for _, bar := range window[1:] {
		if bar.High > high {
			high = bar.High
		}
		if bar.Low < low {
			low = bar.Low
		}
	}

	diff := high - low
	return FibonacciLevels{
		High:     high,
		Level50:  high - 0.5*diff,
		Level618: high - 0.618*diff,
		Level786: high - 0.786*diff,
	}, nil
}
