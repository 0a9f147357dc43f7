package scheduler

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haruquant/swingrisk/internal/engine"
	"github.com/haruquant/swingrisk/internal/exchange"
	"github.com/haruquant/swingrisk/internal/logger"
	"github.com/haruquant/swingrisk/internal/recorder"
	"github.com/haruquant/swingrisk/internal/risk"
	"github.com/haruquant/swingrisk/internal/sizing"
	"github.com/haruquant/swingrisk/internal/swing"
	"github.com/haruquant/swingrisk/pkg/types"
)

// gatedMarket blocks every kline fetch until released, so a decision cycle
// can be held in flight from the test.
type gatedMarket struct {
	daily   []types.Candle
	signal  []types.Candle
	meta    types.SymbolMeta
	started sync.Once
	inCycle chan struct{}
	release chan struct{}
}

func (m *gatedMarket) Klines(_ context.Context, _, timeframe string, _ int) ([]types.Candle, error) {
	m.started.Do(func() { close(m.inCycle) })
	<-m.release
	if timeframe == exchange.TimeframeDaily {
		return m.daily, nil
	}
	return m.signal, nil
}

func (m *gatedMarket) SymbolMeta(context.Context, string) (types.SymbolMeta, error) {
	return m.meta, nil
}

func (m *gatedMarket) Price(context.Context, string) (float64, error) {
	return 1.10, nil
}

type fixedAccount struct{ balance float64 }

func (a fixedAccount) Balance(context.Context) (float64, error) { return a.balance, nil }

// driftingDaily builds daily bars with a constant 30-pip range and gently
// drifting closes so log returns are nonzero.
func driftingDaily(n int) []types.Candle {
	out := make([]types.Candle, n)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		mid := 1.10 + 0.001*math.Sin(1+float64(i)*0.9)
		out[i] = types.Candle{
			Timestamp: t0.AddDate(0, 0, i),
			Open:      mid,
			High:      mid + 0.0150,
			Low:       mid - 0.0150,
			Close:     mid,
		}
	}
	return out
}

// reversalSignal builds hourly bars whose Williams %R(2) swingline ends on
// a DOWN->UP reversal.
func reversalSignal() []types.Candle {
	closes := []float64{1, 1, 9, 9, 1, 1, 1, 9, 9}
	out := make([]types.Candle, len(closes))
	t0 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		out[i] = types.Candle{
			Timestamp: t0.Add(time.Duration(i) * time.Hour),
			Open:      c,
			High:      10,
			Low:       0,
			Close:     c,
		}
	}
	return out
}

func testScheduler(t *testing.T, market *gatedMarket) *Scheduler {
	t.Helper()
	log, err := logger.NewLoggerAt(t.TempDir(), "test", exchange.TimeframeH1)
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })

	eng := engine.New(engine.Config{
		Symbols:         []string{"EURUSD"},
		SignalTimeframe: exchange.TimeframeH1,
		Workers:         1,
		Swing:           swing.Config{OscillatorPeriod: 2},
		SignalMode:      swing.ModeBase,
		ATRPeriod:       3,
		Risk:            risk.Config{VolatilityPeriod: 10, CorrelationPeriod: 20, Confidence: 0.95},
		Sizing:          sizing.Config{ADRPeriod: 10, StopADRRatio: 3, RiskPct: 5, RiskThreshold: 150},
	}, market, fixedAccount{balance: 10000}, log)

	sched := NewScheduler(context.Background(), eng, nil, recorder.NewNoopRecorder(), nil)
	sched.Console = nil
	return sched
}

func TestRunCycleNow_OverlappingTriggerIsSkipped(t *testing.T) {
	market := &gatedMarket{
		daily:  driftingDaily(40),
		signal: reversalSignal(),
		meta: types.SymbolMeta{
			Symbol:    "EURUSD",
			TickValue: 1,
			TickSize:  0.0001,
			Point:     0.0001,
			MinLot:    0.01,
			MaxLot:    100,
			LotStep:   0.01,
		},
		inCycle: make(chan struct{}),
		release: make(chan struct{}),
	}
	sched := testScheduler(t, market)

	done := make(chan struct{})
	go func() {
		sched.RunCycleNow()
		close(done)
	}()

	// Hold the first cycle in flight, then fire a second trigger. Cycles
	// serialize on one lock, so the second trigger returns without touching
	// the engine or its position book.
	<-market.inCycle
	sched.RunCycleNow()

	close(market.release)
	<-done

	// Exactly one cycle ran and committed the buy once.
	assert.Equal(t, 1, sched.Engine.Book().Len())
	assert.InDelta(t, 5.0, sched.Engine.Book().Lots("EURUSD"), 1e-9)

	decisions, cycles := sched.Session()
	require.Len(t, decisions, 1)
	assert.True(t, decisions[0].Accepted)
	assert.Len(t, cycles, 1)
}

func TestRunCycleNow_SequentialTriggersEachRun(t *testing.T) {
	market := &gatedMarket{
		daily:  driftingDaily(40),
		signal: reversalSignal(),
		meta: types.SymbolMeta{
			Symbol:    "EURUSD",
			TickValue: 1,
			TickSize:  0.0001,
			Point:     0.0001,
			MinLot:    0.01,
			MaxLot:    100,
			LotStep:   0.01,
		},
		inCycle: make(chan struct{}),
		release: make(chan struct{}),
	}
	close(market.release)
	sched := testScheduler(t, market)

	sched.RunCycleNow()
	sched.RunCycleNow()

	_, cycles := sched.Session()
	assert.Len(t, cycles, 2)
}
