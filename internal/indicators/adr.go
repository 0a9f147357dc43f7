package indicators

import (
	"fmt"
	"math"

	"github.com/haruquant/swingrisk/pkg/types"
)

// ADR computes the Average Daily Range in pips over a rolling window of
// daily bars, lagged by one bar so today's reading never includes the bar
// still forming.
//
// Unit convention: one pip is ten ticks (range / tick size / 10). The same
// convention is used by the sizing policy's pip value per lot.
type ADR struct {
	period int
}

// ADRReading is the lagged average range plus where today sits inside it.
type ADRReading struct {
	ADR      float64 // average daily range, whole pips
	Range    float64 // current (last bar) daily range, pips
	RangePct float64 // current range as % of ADR
}

// NewADR creates an ADR with the given rolling window of daily bars.
func NewADR(period int) *ADR {
	return &ADR{period: period}
}

// Period returns the rolling window length in bars.
func (a *ADR) Period() int {
	return a.period
}

// Calculate returns the ADR reading at the most recent daily bar. Because of
// the one-bar lag it needs period+1 bars.
func (a *ADR) Calculate(daily []types.Candle, meta types.SymbolMeta) (ADRReading, error) {
	if len(daily) < a.period+1 {
		return ADRReading{}, fmt.Errorf("adr needs %d daily bars, have %d: %w", a.period+1, len(daily), ErrInsufficientData)
	}
	if meta.TickSize <= 0 {
		return ADRReading{}, fmt.Errorf("adr for %s: tick size not set", meta.Symbol)
	}

	pip := meta.TickSize * 10
	ranges := make([]float64, len(daily))
	for i, c := range daily {
		ranges[i] = (c.High - c.Low) / pip
	}

	// Lagged window: the average over the period ending one bar back.
	last := len(ranges) - 1
	avg := math.Round(mean(ranges[last-a.period : last]))

	reading := ADRReading{
		ADR:   avg,
		Range: ranges[last],
	}
	if avg > 0 {
		reading.RangePct = math.Round(ranges[last] / avg * 100)
	}
	return reading, nil
}
