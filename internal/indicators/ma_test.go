package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovingAverage_InsufficientData(t *testing.T) {
	ma := NewMovingAverage(MASimple, 20)
	_, err := ma.Calculate(makeCandles(10))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestMovingAverage_Simple(t *testing.T) {
	ma := NewMovingAverage(MASimple, 5)
	data := makeCandles(10)

	value, err := ma.Calculate(data)
	require.NoError(t, err)

	// Last five closes are 105..109.
	assert.InDelta(t, 107.0, value, 1e-9)
}

func TestMovingAverage_SimpleSeriesFirstIndex(t *testing.T) {
	ma := NewMovingAverage(MASimple, 5)
	series, first, err := ma.Series(makeCandles(10))
	require.NoError(t, err)

	assert.Equal(t, 4, first)
	assert.Len(t, series, 10)
	assert.InDelta(t, 102.0, series[4], 1e-9) // closes 100..104
}

func TestMovingAverage_ExponentialConvergesOnFlatData(t *testing.T) {
	ma := NewMovingAverage(MAExponential, 5)
	value, err := ma.Calculate(makeFlatCandles(30, 100))
	require.NoError(t, err)
	assert.InDelta(t, 100.0, value, 1e-9)
}

func TestMovingAverage_WeightedFavorsRecentBars(t *testing.T) {
	wma := NewMovingAverage(MAWeighted, 5)
	sma := NewMovingAverage(MASimple, 5)
	data := makeCandles(10) // strictly rising closes

	w, err := wma.Calculate(data)
	require.NoError(t, err)
	s, err := sma.Calculate(data)
	require.NoError(t, err)

	assert.Greater(t, w, s)
	// Weights 5..1 over closes 109..105: (5*109+4*108+3*107+2*106+1*105)/15.
	assert.InDelta(t, 107.0+2.0/3.0, w, 1e-9)
}

func TestMovingAverage_PeriodOne(t *testing.T) {
	ma := NewMovingAverage(MASimple, 1)
	data := makeCandles(5)
	value, err := ma.Calculate(data)
	require.NoError(t, err)
	assert.Equal(t, data[4].Close, value)
}
