package analysis

// Trend labels the price position relative to the long and mid moving
// averages.
type Trend string

const (
	TrendStrongUptrend Trend = "Strong Uptrend"
	TrendDeepPullback  Trend = "Uptrend (Deep Pullback)"
	TrendRecovery      Trend = "Recovery Attempt"
	TrendDowntrend     Trend = "Downtrend"
)

// Strength labels directional conviction from ADX.
type Strength string

const (
	StrengthStrong Strength = "Strong"
	StrengthWeak   Strength = "Weak"
)

// adxStrongThreshold is the conventional ADX reading above which a trend is
// considered established.
const adxStrongThreshold = 25.0

// ClassifyStructure labels the market structure from the close against the
// long SMA and mid EMA, and trend strength from ADX. Pure function.
func ClassifyStructure(close, smaLong, emaMid, adx float64) (Trend, Strength) {
	var trend Trend
	switch {
	case close > smaLong && close > emaMid:
		trend = TrendStrongUptrend
	case close > smaLong:
		trend = TrendDeepPullback
	case close > emaMid:
		trend = TrendRecovery
	default:
		trend = TrendDowntrend
	}

	strength := StrengthWeak
	if adx > adxStrongThreshold {
		strength = StrengthStrong
	}

	return trend, strength
}
