package indicators

import (
	"testing"

	"github.com/haruquant/swingrisk/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var adrMeta = types.SymbolMeta{Symbol: "EURUSD", TickSize: 0.00001, TickValue: 1}

func TestADR_InsufficientData(t *testing.T) {
	a := NewADR(10)
	_, err := a.Calculate(makeCandles(10), adrMeta) // needs period+1
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestADR_LaggedAverageExcludesLastBar(t *testing.T) {
	a := NewADR(3)
	data := makeCandles(5)
	// Widen the last bar; the lagged ADR must not see it.
	data[4].High = data[4].Close + 5
	data[4].Low = data[4].Close - 5

	reading, err := a.Calculate(data, adrMeta)
	require.NoError(t, err)

	// Each unmodified bar has range 1.0 price units = 10000 pips at pip 0.0001.
	assert.InDelta(t, 10000.0, reading.ADR, 1e-9)
	assert.InDelta(t, 100000.0, reading.Range, 1e-9)
	assert.InDelta(t, 1000.0, reading.RangePct, 1e-9)
}

func TestADR_MissingTickSize(t *testing.T) {
	a := NewADR(3)
	_, err := a.Calculate(makeCandles(5), types.SymbolMeta{Symbol: "XXX"})
	require.Error(t, err)
}
