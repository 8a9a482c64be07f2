package analysis

import (
	"math"
	"time"
)

// Bar is one trading day. Timestamps are calendar dates with no intraday
// component; missing days are simply absent from the sequence.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Series is an ordered bar sequence for one instrument plus the indicator
// columns computed by the enrichment step. Indicator values are NaN until
// their lookback window is satisfied; Defined distinguishes the two states.
type Series struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"bars"`

	SMALong    []float64 `json:"sma_long"`
	EMAMid     []float64 `json:"ema_mid"`
	RSI        []float64 `json:"rsi"`
	StochK     []float64 `json:"stoch_k"`
	StochD     []float64 `json:"stoch_d"`
	MACD       []float64 `json:"macd"`
	MACDSignal []float64 `json:"macd_signal"`
	BBUpper    []float64 `json:"bb_upper"`
	BBMiddle   []float64 `json:"bb_middle"`
	BBLower    []float64 `json:"bb_lower"`
	ADX        []float64 `json:"adx"`
	VolumeAvg  []float64 `json:"volume_avg"`
	OBV        []float64 `json:"obv"`
}

// Len returns the number of bars.
func (s *Series) Len() int {
	return len(s.Bars)
}

// Slice returns a view over bars [start, end). The backing arrays are shared;
// the view must not be mutated.
func (s *Series) Slice(start, end int) *Series {
	return &Series{
		Symbol:     s.Symbol,
		Bars:       s.Bars[start:end],
		SMALong:    sliceColumn(s.SMALong, start, end),
		EMAMid:     sliceColumn(s.EMAMid, start, end),
		RSI:        sliceColumn(s.RSI, start, end),
		StochK:     sliceColumn(s.StochK, start, end),
		StochD:     sliceColumn(s.StochD, start, end),
		MACD:       sliceColumn(s.MACD, start, end),
		MACDSignal: sliceColumn(s.MACDSignal, start, end),
		BBUpper:    sliceColumn(s.BBUpper, start, end),
		BBMiddle:   sliceColumn(s.BBMiddle, start, end),
		BBLower:    sliceColumn(s.BBLower, start, end),
		ADX:        sliceColumn(s.ADX, start, end),
		VolumeAvg:  sliceColumn(s.VolumeAvg, start, end),
		OBV:        sliceColumn(s.OBV, start, end),
	}
}

// Tail returns a view over the trailing n bars, or the whole series when it
// holds fewer than n.
func (s *Series) Tail(n int) *Series {
	start := s.Len() - n
	if start < 0 {
		start = 0
	}
	return s.Slice(start, s.Len())
}

func sliceColumn(col []float64, start, end int) []float64 {
	if col == nil {
		return nil
	}
	return col[start:end]
}

// Undefined marks an indicator position before its lookback is satisfied.
func Undefined() float64 {
	return math.NaN()
}

// Defined reports whether every given indicator value carries a real number.
func Defined(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return false
		}
	}
	return true
}

// at reads a column at index i, treating a missing column as undefined.
func at(col []float64, i int) float64 {
	if i < 0 || i >= len(col) {
		return Undefined()
	}
	return col[i]
}
