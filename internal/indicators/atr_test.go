package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestATR_Empty(t *testing.T) {
	a := NewATR(12)
	_, err := a.Calculate(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestATR_StartsFromFirstBar(t *testing.T) {
	a := NewATR(12)
	series, first, err := a.Series(makeCandles(3))
	require.NoError(t, err)

	assert.Equal(t, 0, first)
	// First bar true range is plain high-low.
	assert.InDelta(t, 1.0, series[0], 1e-9)
}

func TestATR_GapDominatesTrueRange(t *testing.T) {
	a := NewATR(2)
	data := makeCandles(3)
	// Gap the last bar far above the previous close.
	data[2].Open = 150
	data[2].High = 151
	data[2].Low = 149.5
	data[2].Close = 150.5

	series, _, err := a.Series(data)
	require.NoError(t, err)

	// Previous close is 101, so TR = max(1.5, |151-101|, |149.5-101|) = 50.
	tr2 := 50.0
	// Bar 1: close 101, high 101.5, low 100.5, prev close 100 -> TR 1.5.
	tr1 := 1.5
	assert.InDelta(t, (tr1+tr2)/2, series[2], 1e-9)
}

func TestATR_FlatSeriesIsZero(t *testing.T) {
	a := NewATR(5)
	value, err := a.Calculate(makeFlatCandles(10, 100))
	require.NoError(t, err)
	assert.Equal(t, 0.0, value)
}
