// Package risk maintains the position book and computes the correlated
// parametric Value-at-Risk used to accept, reject, or size trades.
//
// The engine is a pure function of its inputs: identical histories, prices,
// metadata and book always produce bit-identical VaR. It holds no internal
// mutable state and walks the book in sorted-symbol order.
package risk

import (
	"fmt"
	"log"

	"github.com/haruquant/swingrisk/pkg/types"
)

// Config holds the risk engine tunables.
type Config struct {
	VolatilityPeriod  int     // rolling window of daily log-returns
	CorrelationPeriod int     // rolling window for pairwise correlations
	Confidence        float64 // VaR confidence level, e.g. 0.95
}

func (c Config) withDefaults() Config {
	if c.VolatilityPeriod == 0 {
		c.VolatilityPeriod = 10
	}
	if c.CorrelationPeriod == 0 {
		c.CorrelationPeriod = 20
	}
	if c.Confidence == 0 {
		c.Confidence = 0.95
	}
	return c
}

// Inputs is the immutable market snapshot one risk run reads: daily candle
// history, instrument metadata and the current price per booked symbol.
// Histories are assumed bar-aligned across symbols (one daily feed).
type Inputs struct {
	Histories map[string][]types.Candle
	Metas     map[string]types.SymbolMeta
	Prices    map[string]float64
}

// CorrelationMatrix is symmetric with a unit diagonal, ordered by Symbols.
type CorrelationMatrix struct {
	Symbols []string
	cells   [][]float64
}

// At returns the correlation between the i-th and j-th symbol.
func (m *CorrelationMatrix) At(i, j int) float64 {
	return m.cells[i][j]
}

// Pair returns the correlation between two symbols by name.
func (m *CorrelationMatrix) Pair(a, b string) (float64, bool) {
	ia, ib := -1, -1
	for i, s := range m.Symbols {
		if s == a {
			ia = i
		}
		if s == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return 0, false
	}
	return m.cells[ia][ib], true
}

// Snapshot is the result of one risk run over a consistent book.
type Snapshot struct {
	Positions     []types.Position
	NominalValues map[string]float64 // signed, account currency
	Weights       map[string]float64 // signed, sum of |w| = 1 when nominal != 0
	Volatility    map[string]float64
	Correlations  *CorrelationMatrix
	NominalValue  float64 // sum of |nominal|
	StdDev        float64
	VaR           float64
	Excluded      map[string]error // booked symbols dropped this run, with cause
}

// Evaluation is the outcome of a what-if run: the book as it stands against
// the book with one candidate position applied.
type Evaluation struct {
	Current     *Snapshot
	Proposed    *Snapshot
	DeltaVaRPct float64
}

// Engine computes portfolio snapshots and what-if evaluations.
type Engine struct {
	cfg Config
}

// NewEngine creates a risk engine with the given configuration.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg.withDefaults()}
}

// MinHistory returns the number of daily bars a symbol needs before it can
// be priced for risk: the longest rolling window, one bar of lag, plus the
// extra close that log-returns consume.
func (e *Engine) MinHistory() int {
	period := e.cfg.VolatilityPeriod
	if e.cfg.CorrelationPeriod > period {
		period = e.cfg.CorrelationPeriod
	}
	return period + 2
}

// Run computes the full risk snapshot for the book: per-symbol volatility,
// pairwise correlations, nominal values, weights, portfolio standard
// deviation and parametric VaR. Booked symbols that cannot be priced
// (missing metadata, short history, missing price) are excluded with a
// warning rather than silently zeroed.
func (e *Engine) Run(in Inputs, book *Book) (*Snapshot, error) {
	snap := &Snapshot{
		Positions:     book.Positions(),
		NominalValues: make(map[string]float64),
		Weights:       make(map[string]float64),
		Volatility:    make(map[string]float64),
		Excluded:      make(map[string]error),
	}

	symbols, returns := e.usableSymbols(in, book, snap)
	if len(symbols) == 0 {
		snap.Correlations = &CorrelationMatrix{Symbols: nil, cells: nil}
		return snap, nil
	}

	vols := make([]float64, len(symbols))
	for i, s := range symbols {
		v, err := Volatility(returns[s], e.cfg.VolatilityPeriod)
		if err != nil {
			return nil, fmt.Errorf("volatility for %s: %w", s, err)
		}
		vols[i] = v
		snap.Volatility[s] = v
	}

	corr, err := e.correlations(symbols, returns)
	if err != nil {
		return nil, err
	}
	snap.Correlations = corr

	// Nominal value per symbol and the portfolio total.
	for _, s := range symbols {
		meta := in.Metas[s]
		nominal := book.Lots(s) * (meta.TickValue / meta.TickSize) * in.Prices[s]
		snap.NominalValues[s] = nominal
		snap.NominalValue += abs(nominal)
	}

	weights := make([]float64, len(symbols))
	if snap.NominalValue != 0 {
		for i, s := range symbols {
			weights[i] = snap.NominalValues[s] / snap.NominalValue
			snap.Weights[s] = weights[i]
		}
	} else {
		for _, s := range symbols {
			snap.Weights[s] = 0
		}
	}

	snap.StdDev = PortfolioStdDev(weights, vols, corr.cells)
	snap.VaR = snap.StdDev * zScore(e.cfg.Confidence) * snap.NominalValue
	return snap, nil
}

// WhatIf evaluates the book with one candidate position applied, reporting
// the absolute VaR on both sides and the relative change. A previously
// empty book reports DeltaVaRPct = 100.
func (e *Engine) WhatIf(in Inputs, book *Book, symbol string, lots float64) (*Evaluation, error) {
	current, err := e.Run(in, book)
	if err != nil {
		return nil, err
	}

	proposed := book.Clone()
	proposed.Add(symbol, lots)

	next, err := e.Run(in, proposed)
	if err != nil {
		return nil, err
	}

	eval := &Evaluation{Current: current, Proposed: next}
	if book.Len() == 0 || current.VaR == 0 {
		eval.DeltaVaRPct = 100
	} else {
		eval.DeltaVaRPct = (next.VaR - current.VaR) / current.VaR * 100
	}
	return eval, nil
}

// usableSymbols filters the book down to symbols that can be priced for
// risk and returns their log-return series.
func (e *Engine) usableSymbols(in Inputs, book *Book, snap *Snapshot) ([]string, map[string][]float64) {
	var symbols []string
	returns := make(map[string][]float64)

	for _, s := range book.Symbols() {
		meta, ok := in.Metas[s]
		if !ok || meta.TickSize <= 0 || meta.TickValue <= 0 {
			snap.Excluded[s] = fmt.Errorf("missing or invalid symbol metadata")
			log.Printf("[WARN] risk: excluding %s from book: no usable metadata", s)
			continue
		}
		hist := in.Histories[s]
		if len(hist) < e.MinHistory() {
			snap.Excluded[s] = fmt.Errorf("have %d daily bars, need %d", len(hist), e.MinHistory())
			log.Printf("[WARN] risk: excluding %s from book: insufficient history", s)
			continue
		}
		if _, ok := in.Prices[s]; !ok {
			snap.Excluded[s] = fmt.Errorf("no current price")
			log.Printf("[WARN] risk: excluding %s from book: no current price", s)
			continue
		}
		symbols = append(symbols, s)
		returns[s] = LogReturns(types.Closes(hist))
	}
	return symbols, returns
}

func (e *Engine) correlations(symbols []string, returns map[string][]float64) (*CorrelationMatrix, error) {
	n := len(symbols)
	cells := make([][]float64, n)
	for i := range cells {
		cells[i] = make([]float64, n)
		cells[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			c, err := Correlation(returns[symbols[i]], returns[symbols[j]], e.cfg.CorrelationPeriod)
			if err != nil {
				return nil, fmt.Errorf("correlation %s/%s: %w", symbols[i], symbols[j], err)
			}
			cells[i][j] = c
			cells[j][i] = c
		}
	}
	return &CorrelationMatrix{Symbols: symbols, cells: cells}, nil
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
