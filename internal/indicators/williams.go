package indicators

import (
	"fmt"

	"github.com/haruquant/swingrisk/pkg/types"
)

// WilliamsR computes the Williams %R momentum oscillator, bounded in
// [-100, 0]: the position of the close inside the high/low range of the
// trailing window.
type WilliamsR struct {
	period int
}

// NewWilliamsR creates a Williams %R oscillator with the given period.
func NewWilliamsR(period int) *WilliamsR {
	return &WilliamsR{period: period}
}

// Period returns the warm-up length in bars.
func (w *WilliamsR) Period() int {
	return w.period
}

// Calculate returns the oscillator value at the most recent bar.
func (w *WilliamsR) Calculate(data []types.Candle) (float64, error) {
	series, _, err := w.Series(data)
	if err != nil {
		return 0, err
	}
	return series[len(series)-1], nil
}

// Series returns per-bar oscillator values aligned with data and the index
// of the first defined value (period-1).
func (w *WilliamsR) Series(data []types.Candle) ([]float64, int, error) {
	if len(data) < w.period {
		return nil, 0, fmt.Errorf("williams %%R needs %d bars, have %d: %w", w.period, len(data), ErrInsufficientData)
	}

	out := make([]float64, len(data))
	first := w.period - 1

	for i := first; i < len(data); i++ {
		hh := data[i].High
		ll := data[i].Low
		for j := i - w.period + 1; j < i; j++ {
			if data[j].High > hh {
				hh = data[j].High
			}
			if data[j].Low < ll {
				ll = data[j].Low
			}
		}

		if hh == ll {
			// Flat window has no range; midpoint keeps the value defined.
			out[i] = -50
			continue
		}
		out[i] = 100*(data[i].Close-ll)/(hh-ll) - 100
	}

	return out, first, nil
}
