package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeries_SliceAndTail(t *testing.T) {
	s := &Series{
		Bars:    []Bar{{Close: 1}, {Close: 2}, {Close: 3}, {Close: 4}},
		SMALong: []float64{10, 20, 30, 40},
	}

	view := s.Slice(1, 3)
	require.Equal(t, 2, view.Len())
	assert.InDelta(t, 2.0, view.Bars[0].Close, 1e-9)
	assert.Equal(t, []float64{20, 30}, view.SMALong)
	// Columns never computed stay nil in the view.
	assert.Nil(t, view.RSI)

	tail := s.Tail(3)
	require.Equal(t, 3, tail.Len())
	assert.InDelta(t, 2.0, tail.Bars[0].Close, 1e-9)

	// Asking for more bars than exist returns the whole series.
	assert.Equal(t, 4, s.Tail(10).Len())
}

func TestDefined(t *testing.T) {
	assert.True(t, Defined(1, 2, 3))
	assert.False(t, Defined(1, Undefined(), 3))
	assert.True(t, math.IsNaN(Undefined()))
	assert.True(t, Defined())
}
