package indicators

import (
	"time"

	"github.com/haruquant/swingrisk/pkg/types"
)

// makeCandles builds a rising series with a fixed 1.0 high-low range.
func makeCandles(n int) []types.Candle {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]types.Candle, n)
	for i := 0; i < n; i++ {
		close := 100.0 + float64(i)
		out[i] = types.Candle{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      close - 0.5,
			High:      close + 0.5,
			Low:       close - 0.5,
			Close:     close,
		}
	}
	return out
}

// makeFlatCandles builds a series where every bar is identical.
func makeFlatCandles(n, price int) []types.Candle {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]types.Candle, n)
	for i := 0; i < n; i++ {
		p := float64(price)
		out[i] = types.Candle{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      p, High: p, Low: p, Close: p,
		}
	}
	return out
}
