package analysis

import "context"

// ConfidenceScorer is an auxiliary capability that grades a bar window with
// a confidence value in [0, 1]. The production implementation lives outside
// this module; tests and default wiring use the static stub.
type ConfidenceScorer interface {
	Score(ctx context.Context, window []Bar) (float64, error)
}

// StaticConfidenceScorer always returns a fixed confidence. The default
// wiring uses 1.0 so the threshold gate passes everything through.
type StaticConfidenceScorer struct {
	Value float64
}

func (s StaticConfidenceScorer) Score(_ context.Context, _ []Bar) (float64, error) {
	return s.Value, nil
}
