package indicators

import (
	"fmt"

	"github.com/haruquant/swingrisk/pkg/types"
)

// MAType selects the moving average flavour.
type MAType string

const (
	MASimple      MAType = "SMA"
	MAExponential MAType = "EMA"
	MAWeighted    MAType = "WMA"
)

// MovingAverage computes a moving average of candle closes.
type MovingAverage struct {
	maType MAType
	period int
}

// NewMovingAverage creates a moving average of the given type and period.
func NewMovingAverage(maType MAType, period int) *MovingAverage {
	return &MovingAverage{maType: maType, period: period}
}

// Period returns the warm-up length in bars.
func (m *MovingAverage) Period() int {
	return m.period
}

// Calculate returns the moving average at the most recent bar.
func (m *MovingAverage) Calculate(data []types.Candle) (float64, error) {
	series, _, err := m.Series(data)
	if err != nil {
		return 0, err
	}
	return series[len(series)-1], nil
}

// Series returns per-bar values aligned with data and the index of the first
// defined value. Entries before that index are meaningless.
func (m *MovingAverage) Series(data []types.Candle) ([]float64, int, error) {
	if len(data) < m.period {
		return nil, 0, fmt.Errorf("moving average needs %d bars, have %d: %w", m.period, len(data), ErrInsufficientData)
	}

	closes := types.Closes(data)
	out := make([]float64, len(data))
	first := m.period - 1

	switch m.maType {
	case MAExponential:
		// Seed with the SMA of the first window, then smooth.
		seed := mean(closes[:m.period])
		out[first] = seed
		k := 2.0 / float64(m.period+1)
		for i := first + 1; i < len(closes); i++ {
			out[i] = closes[i]*k + out[i-1]*(1-k)
		}
	case MAWeighted:
		denom := float64(m.period*(m.period+1)) / 2
		for i := first; i < len(closes); i++ {
			sum := 0.0
			for j := 0; j < m.period; j++ {
				sum += closes[i-j] * float64(m.period-j)
			}
			out[i] = sum / denom
		}
	default: // MASimple
		for i := first; i < len(closes); i++ {
			out[i] = mean(closes[i-m.period+1 : i+1])
		}
	}

	return out, first, nil
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
