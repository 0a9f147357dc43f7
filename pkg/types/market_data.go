package types

import "time"

// Candle is one completed OHLC bar. Series are ordered by strictly
// increasing timestamps, one series per symbol and timeframe.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
}

// SymbolMeta carries the instrument metadata needed to convert price moves
// into account-currency amounts and to round lot sizes.
type SymbolMeta struct {
	Symbol    string
	TickValue float64 // account-currency value of one tick per lot
	TickSize  float64 // minimum price increment
	Point     float64 // smallest quoted price unit
	MinLot    float64
	MaxLot    float64
	LotStep   float64
}

// Position is one entry of the position book. Positive lots are long,
// negative lots are short.
type Position struct {
	Symbol string
	Lots   float64
}

// Closes extracts the close column from a candle series.
func Closes(data []Candle) []float64 {
	out := make([]float64, len(data))
	for i, c := range data {
		out[i] = c.Close
	}
	return out
}
