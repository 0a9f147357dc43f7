package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"

	"github.com/haruquant/swingrisk/pkg/types"
)

// instrumentInfo is the subset of the Bybit instrument payload the engine
// needs for pricing and lot validation.
type instrumentInfo struct {
	Symbol      string `json:"symbol"`
	Status      string `json:"status"`
	PriceFilter struct {
		MinPrice string `json:"minPrice"`
		MaxPrice string `json:"maxPrice"`
		TickSize string `json:"tickSize"`
	} `json:"priceFilter"`
	LotSizeFilter struct {
		MaxOrderQty string `json:"maxOrderQty"`
		MinOrderQty string `json:"minOrderQty"`
		QtyStep     string `json:"qtyStep"`
	} `json:"lotSizeFilter"`
}

// InstrumentManager fetches and caches symbol metadata.
type InstrumentManager struct {
	client         *Client
	instruments    map[string]types.SymbolMeta
	mutex          sync.RWMutex
	lastUpdate     time.Time
	updateInterval time.Duration
}

// NewInstrumentManager creates a new instrument manager
func NewInstrumentManager(client *Client) *InstrumentManager {
	return &InstrumentManager{
		client:         client,
		instruments:    make(map[string]types.SymbolMeta),
		updateInterval: 1 * time.Hour, // Update every hour
	}
}

// GetSymbolMeta retrieves and caches the metadata for one symbol.
func (im *InstrumentManager) GetSymbolMeta(ctx context.Context, category, symbol string) (types.SymbolMeta, error) {
	im.mutex.RLock()
	if meta, exists := im.instruments[symbol]; exists && time.Since(im.lastUpdate) < im.updateInterval {
		im.mutex.RUnlock()
		return meta, nil
	}
	im.mutex.RUnlock()

	meta, err := im.fetchSymbolMeta(ctx, category, symbol)
	if err != nil {
		return types.SymbolMeta{}, err
	}

	im.mutex.Lock()
	im.instruments[symbol] = meta
	im.lastUpdate = time.Now()
	im.mutex.Unlock()

	return meta, nil
}

func (im *InstrumentManager) fetchSymbolMeta(ctx context.Context, category, symbol string) (types.SymbolMeta, error) {
	if category == "" {
		category = "linear"
	}
	params := map[string]interface{}{
		"category": category,
		"symbol":   symbol,
	}

	result, err := im.client.httpClient.NewUtaBybitServiceWithParams(params).GetInstrumentInfo(ctx)
	if err != nil {
		return types.SymbolMeta{}, fmt.Errorf("failed to fetch instrument info: %w", err)
	}

	return parseInstrumentResponse(result, symbol)
}

func parseInstrumentResponse(response interface{}, targetSymbol string) (types.SymbolMeta, error) {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return types.SymbolMeta{}, fmt.Errorf("invalid response type")
	}

	if serverResp.RetCode != 0 {
		return types.SymbolMeta{}, fmt.Errorf("API error: %s (code: %d)", serverResp.RetMsg, serverResp.RetCode)
	}

	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return types.SymbolMeta{}, fmt.Errorf("failed to marshal result: %w", err)
	}

	var instrumentResult struct {
		Category string           `json:"category"`
		List     []instrumentInfo `json:"list"`
	}
	if err := json.Unmarshal(resultBytes, &instrumentResult); err != nil {
		return types.SymbolMeta{}, fmt.Errorf("failed to unmarshal instrument result: %w", err)
	}

	for _, info := range instrumentResult.List {
		if info.Symbol != targetSymbol {
			continue
		}
		tickSize := parseFloat64(info.PriceFilter.TickSize)
		// Linear contracts settle in the quote currency: a one-tick move on
		// one contract is worth one tick size.
		return types.SymbolMeta{
			Symbol:    info.Symbol,
			TickValue: tickSize,
			TickSize:  tickSize,
			Point:     tickSize,
			MinLot:    parseFloat64(info.LotSizeFilter.MinOrderQty),
			MaxLot:    parseFloat64(info.LotSizeFilter.MaxOrderQty),
			LotStep:   parseFloat64(info.LotSizeFilter.QtyStep),
		}, nil
	}
	return types.SymbolMeta{}, fmt.Errorf("instrument %s not found", targetSymbol)
}
