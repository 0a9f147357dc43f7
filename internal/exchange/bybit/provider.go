package bybit

import (
	"context"

	"github.com/haruquant/swingrisk/internal/exchange"
	"github.com/haruquant/swingrisk/pkg/types"
)

// Provider adapts the Bybit client to the engine's MarketData and Account
// interfaces over one market category.
type Provider struct {
	client      *Client
	instruments *InstrumentManager
	category    string
}

// NewProvider creates a provider over linear (USDT-settled) contracts.
func NewProvider(client *Client) *Provider {
	return &Provider{
		client:      client,
		instruments: NewInstrumentManager(client),
		category:    "linear",
	}
}

func (p *Provider) Klines(ctx context.Context, symbol, timeframe string, limit int) ([]types.Candle, error) {
	candles, err := p.client.GetKlines(ctx, p.category, symbol, timeframe, limit)
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, exchange.ErrNoData
	}
	return candles, nil
}

func (p *Provider) SymbolMeta(ctx context.Context, symbol string) (types.SymbolMeta, error) {
	return p.instruments.GetSymbolMeta(ctx, p.category, symbol)
}

func (p *Provider) Price(ctx context.Context, symbol string) (float64, error) {
	return p.client.GetLatestPrice(ctx, p.category, symbol)
}

func (p *Provider) Balance(ctx context.Context) (float64, error) {
	return p.client.GetTotalEquity(ctx, AccountTypeUnified)
}

var (
	_ exchange.MarketData = (*Provider)(nil)
	_ exchange.Account    = (*Provider)(nil)
)
