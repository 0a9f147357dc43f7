package sizing

import (
	"testing"
	"time"

	"github.com/haruquant/swingrisk/internal/indicators"
	"github.com/haruquant/swingrisk/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dailyBars builds n daily candles with a constant high-low range in price
// units, so the ADR is exact.
func dailyBars(n int, priceRange float64) []types.Candle {
	out := make([]types.Candle, n)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		mid := 1.10
		out[i] = types.Candle{
			Timestamp: t0.AddDate(0, 0, i),
			Open:      mid,
			High:      mid + priceRange/2,
			Low:       mid - priceRange/2,
			Close:     mid,
		}
	}
	return out
}

func fxMeta() types.SymbolMeta {
	return types.SymbolMeta{
		Symbol:    "EURUSD",
		TickValue: 1,
		TickSize:  0.0001,
		Point:     0.0001,
		MinLot:    0.01,
		MaxLot:    100,
		LotStep:   0.01,
	}
}

func testPolicy() *Policy {
	return NewPolicy(Config{ADRPeriod: 10, StopADRRatio: 3, RiskPct: 2, RiskThreshold: 10})
}

func TestSize_KnownNumbers(t *testing.T) {
	// Constant 30-pip daily range (pip = 0.001), ADR 30, stop = 30/3 = 10.
	// Risk 2% of 10000 = 200; pip value 10 per lot; lot = 200/(10*10) = 2.
	daily := dailyBars(11, 0.0300)

	s, err := testPolicy().Size(daily, fxMeta(), 10000)
	require.NoError(t, err)

	assert.Equal(t, 30.0, s.ADR)
	assert.Equal(t, 10.0, s.StopPips)
	assert.InDelta(t, 2.0, s.Lots, 1e-9)
}

func TestSize_FlooredToLotStep(t *testing.T) {
	// Risk 2% of 10287 = 205.74 → raw lot 2.0574 → floored to 2.05.
	daily := dailyBars(11, 0.0300)

	s, err := testPolicy().Size(daily, fxMeta(), 10287)
	require.NoError(t, err)

	assert.InDelta(t, 2.05, s.Lots, 1e-9)
}

func TestSize_InsufficientHistory(t *testing.T) {
	daily := dailyBars(10, 0.0300) // needs period+1 = 11

	_, err := testPolicy().Size(daily, fxMeta(), 10000)
	assert.ErrorIs(t, err, indicators.ErrInsufficientData)
}

func TestSize_ZeroStopRejected(t *testing.T) {
	// Sub-pip ranges round the ADR-derived stop to zero.
	daily := dailyBars(11, 0.0001)

	_, err := testPolicy().Size(daily, fxMeta(), 10000)
	assert.Error(t, err)
}

func TestVerdict_Accepted(t *testing.T) {
	ok, reason := testPolicy().Verdict(Sizing{Lots: 2}, fxMeta(), 4.2)

	assert.True(t, ok)
	assert.Equal(t, types.ReasonAccepted, reason)
}

func TestVerdict_RiskThresholdExceeded(t *testing.T) {
	ok, reason := testPolicy().Verdict(Sizing{Lots: 2}, fxMeta(), 10.5)

	assert.False(t, ok)
	assert.Equal(t, types.ReasonRiskExceeded, reason)
}

func TestVerdict_RiskCheckedBeforeLotLimits(t *testing.T) {
	// An oversized lot on an out-of-budget book is a risk rejection.
	ok, reason := testPolicy().Verdict(Sizing{Lots: 500}, fxMeta(), 50)

	assert.False(t, ok)
	assert.Equal(t, types.ReasonRiskExceeded, reason)
}

func TestVerdict_LotBelowMinimum(t *testing.T) {
	ok, reason := testPolicy().Verdict(Sizing{Lots: 0.0}, fxMeta(), 1)

	assert.False(t, ok)
	assert.Equal(t, types.ReasonLotBelowMinimum, reason)
}

func TestVerdict_LotAboveMaximum(t *testing.T) {
	ok, reason := testPolicy().Verdict(Sizing{Lots: 250}, fxMeta(), 1)

	assert.False(t, ok)
	assert.Equal(t, types.ReasonLotAboveMaximum, reason)
}
