// Package exchange defines the collaborator interfaces the decision engine
// consumes: market data, account state and trade execution.
package exchange

import (
	"context"
	"errors"

	"github.com/haruquant/swingrisk/pkg/types"
)

// Timeframes understood by the market-data provider. Values follow the
// Bybit kline interval notation.
const (
	TimeframeH1    = "60"
	TimeframeH4    = "240"
	TimeframeDaily = "D"
)

// ErrNoData signals the provider returned an empty kline response.
var ErrNoData = errors.New("no kline data returned")

// MarketData supplies candle history, instrument metadata and current
// prices per symbol.
type MarketData interface {
	// Klines returns up to limit closed candles for the symbol and
	// timeframe, oldest first.
	Klines(ctx context.Context, symbol, timeframe string, limit int) ([]types.Candle, error)

	// SymbolMeta returns the instrument metadata used for nominal-value and
	// pip-value calculations.
	SymbolMeta(ctx context.Context, symbol string) (types.SymbolMeta, error)

	// Price returns the last traded price for the symbol.
	Price(ctx context.Context, symbol string) (float64, error)
}

// Account supplies the balance figure the per-trade risk percentage
// applies to.
type Account interface {
	Balance(ctx context.Context) (float64, error)
}
