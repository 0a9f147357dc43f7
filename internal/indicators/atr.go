package indicators

import (
	"fmt"
	"math"

	"github.com/haruquant/swingrisk/pkg/types"
)

// ATR computes the Average True Range: a rolling mean of the per-bar true
// range. The rolling mean starts with a single sample, so the series is
// defined from the first bar.
type ATR struct {
	period int
}

// NewATR creates an ATR with the given smoothing period.
func NewATR(period int) *ATR {
	return &ATR{period: period}
}

// Period returns the smoothing length in bars.
func (a *ATR) Period() int {
	return a.period
}

// Calculate returns the ATR at the most recent bar.
func (a *ATR) Calculate(data []types.Candle) (float64, error) {
	series, _, err := a.Series(data)
	if err != nil {
		return 0, err
	}
	return series[len(series)-1], nil
}

// Series returns per-bar ATR values aligned with data. The first bar has no
// previous close, so its true range is plain high-low.
func (a *ATR) Series(data []types.Candle) ([]float64, int, error) {
	if len(data) == 0 {
		return nil, 0, fmt.Errorf("atr needs at least one bar: %w", ErrInsufficientData)
	}

	tr := make([]float64, len(data))
	tr[0] = data[0].High - data[0].Low
	for i := 1; i < len(data); i++ {
		prevClose := data[i-1].Close
		tr[i] = math.Max(data[i].High-data[i].Low,
			math.Max(math.Abs(data[i].High-prevClose), math.Abs(data[i].Low-prevClose)))
	}

	out := make([]float64, len(data))
	sum := 0.0
	for i := range tr {
		sum += tr[i]
		n := i + 1
		if n > a.period {
			sum -= tr[i-a.period]
			n = a.period
		}
		out[i] = sum / float64(n)
	}

	return out, 0, nil
}
