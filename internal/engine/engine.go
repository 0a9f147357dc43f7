// Package engine drives the per-bar decision cycle: fan signal computation
// out across symbols, then run candidates through sizing and the portfolio
// risk gate one at a time against a consistent book.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/haruquant/swingrisk/internal/exchange"
	"github.com/haruquant/swingrisk/internal/logger"
	"github.com/haruquant/swingrisk/internal/risk"
	"github.com/haruquant/swingrisk/internal/sizing"
	"github.com/haruquant/swingrisk/internal/swing"
	"github.com/haruquant/swingrisk/pkg/types"
)

// Config holds the engine tunables. Component configs are embedded so one
// immutable object wires the whole pipeline.
type Config struct {
	Symbols         []string
	SignalTimeframe string // timeframe driving the swingline
	HistoryBars     int    // signal-timeframe bars fetched per cycle
	Workers         int    // signal fan-out width; 0 = NumCPU

	Swing      swing.Config
	SignalMode swing.Mode
	ATRPeriod  int

	Risk   risk.Config
	Sizing sizing.Config
}

func (c Config) withDefaults() Config {
	if c.SignalTimeframe == "" {
		c.SignalTimeframe = exchange.TimeframeH1
	}
	if c.HistoryBars == 0 {
		c.HistoryBars = 200
	}
	if c.ATRPeriod == 0 {
		c.ATRPeriod = 12
	}
	return c
}

// Engine evaluates one decision cycle per closed bar. It is the single
// writer of the position book: a candidate is added, evaluated and either
// committed or rolled back before the next candidate is considered.
type Engine struct {
	cfg     Config
	market  exchange.MarketData
	account exchange.Account
	log     *logger.Logger

	swingline *swing.Swingline
	generator *swing.Generator
	riskEng   *risk.Engine
	policy    *sizing.Policy

	book          *risk.Book
	lastOptimized map[string]float64
}

// New creates a decision engine over the given collaborators.
func New(cfg Config, market exchange.MarketData, account exchange.Account, log *logger.Logger) *Engine {
	cfg = cfg.withDefaults()
	return &Engine{
		cfg:       cfg,
		market:    market,
		account:   account,
		log:       log,
		swingline: swing.NewSwingline(cfg.Swing),
		generator: swing.NewGenerator(cfg.SignalMode, cfg.ATRPeriod),
		riskEng:   risk.NewEngine(cfg.Risk),
		policy:    sizing.NewPolicy(cfg.Sizing),
		book:      risk.NewBook(),
	}
}

// Book returns the engine's position book.
func (e *Engine) Book() *risk.Book {
	return e.book
}

// CycleResult is everything one cycle produced: the decisions, the closing
// risk snapshot and the symbols skipped with their causes.
type CycleResult struct {
	Decisions []types.Decision
	Snapshot  *risk.Snapshot
	Skipped   map[string]error
	Elapsed   time.Duration
}

// EvaluateCycle runs one full decision cycle: snapshot market data, compute
// signals in parallel, then gate each candidate through sizing and the
// what-if VaR check sequentially. Per-symbol failures skip the symbol; only
// a total market-data outage aborts the cycle.
func (e *Engine) EvaluateCycle(ctx context.Context) (*CycleResult, error) {
	start := time.Now()

	balance, err := e.account.Balance(ctx)
	if err != nil {
		return nil, newError(ErrCodeProviderUnavailable, "", "account balance unavailable", err)
	}

	inputs, skipped, err := e.collectInputs(ctx)
	if err != nil {
		return nil, err
	}

	results := e.computeSignals(ctx, inputs)

	var decisions []types.Decision
	now := time.Now().UTC()
	for _, res := range results {
		if res.Err != nil {
			// An ambiguous double pattern is a contradictory signal and gets
			// surfaced as a rejected decision; anything else is a data
			// problem, so the symbol just sits out the cycle.
			var engErr *EngineError
			if errors.As(res.Err, &engErr) && engErr.Code == ErrCodeAmbiguousPattern {
				e.log.Warning("%s: no decision this cycle: %v", res.Symbol, res.Err)
				decisions = append(decisions, types.Decision{
					Timestamp: now,
					Symbol:    res.Symbol,
					Reason:    types.ReasonAmbiguousPattern,
				})
			} else {
				skipped[res.Symbol] = res.Err
			}
			continue
		}
		if res.Direction == types.DirectionNone {
			continue
		}
		decisions = append(decisions, e.decide(now, res.Symbol, res.Direction, inputs, balance))
	}

	snap, err := e.riskEng.Run(inputs, e.book)
	if err != nil {
		return nil, fmt.Errorf("closing risk snapshot: %w", err)
	}

	result := &CycleResult{
		Decisions: decisions,
		Snapshot:  snap,
		Skipped:   skipped,
		Elapsed:   time.Since(start),
	}
	e.logCycle(result)
	return result, nil
}

// decide sizes one candidate and runs it through the what-if risk gate.
// The book mutation is commit-or-rollback: only an accepted candidate
// changes the book, and the next candidate sees the committed state.
func (e *Engine) decide(now time.Time, symbol string, dir types.Direction, inputs risk.Inputs, balance float64) types.Decision {
	d := types.Decision{Timestamp: now, Symbol: symbol, Direction: dir}

	meta, ok := inputs.Metas[symbol]
	if !ok {
		d.Reason = types.ReasonNoMetadata
		e.log.Warning("%s: signal %s dropped, no symbol metadata", symbol, dir)
		return d
	}

	size, err := e.policy.Size(inputs.Histories[symbol], meta, balance)
	if err != nil {
		d.Reason = types.ReasonDataInsufficient
		e.log.Warning("%s: signal %s dropped, sizing failed: %v", symbol, dir, err)
		return d
	}
	d.Lots = dir.Sign() * size.Lots
	d.StopPips = size.StopPips
	d.ADR = size.ADR
	d.RangePct = size.RangePct

	eval, err := e.riskEng.WhatIf(inputs, e.book, symbol, d.Lots)
	if err != nil {
		d.Reason = types.ReasonDataInsufficient
		e.log.Warning("%s: what-if evaluation failed: %v", symbol, err)
		return d
	}
	d.CurrentVaR = eval.Current.VaR
	d.ProposedVaR = eval.Proposed.VaR
	d.DeltaVaRPct = eval.DeltaVaRPct

	d.Accepted, d.Reason = e.policy.Verdict(size, meta, eval.DeltaVaRPct)
	if d.Accepted {
		e.book.Add(symbol, d.Lots)
	}
	e.log.LogDecision(d)
	return d
}

// collectInputs fetches the daily histories, metadata and prices the risk
// engine and sizing policy need. A symbol that cannot be fetched is skipped
// for the cycle; if every symbol fails the cycle is aborted.
func (e *Engine) collectInputs(ctx context.Context) (risk.Inputs, map[string]error, error) {
	dailyBars := e.riskEng.MinHistory()
	if p := e.policy.MinHistory(); p > dailyBars {
		dailyBars = p
	}

	inputs := risk.Inputs{
		Histories: make(map[string][]types.Candle),
		Metas:     make(map[string]types.SymbolMeta),
		Prices:    make(map[string]float64),
	}
	skipped := make(map[string]error)

	for _, symbol := range sortedSymbols(e.cfg.Symbols) {
		daily, err := e.market.Klines(ctx, symbol, exchange.TimeframeDaily, dailyBars)
		if err != nil {
			skipped[symbol] = fmt.Errorf("daily klines: %w", err)
			continue
		}
		meta, err := e.market.SymbolMeta(ctx, symbol)
		if err != nil {
			skipped[symbol] = fmt.Errorf("symbol metadata: %w", err)
			continue
		}
		price, err := e.market.Price(ctx, symbol)
		if err != nil {
			skipped[symbol] = fmt.Errorf("price: %w", err)
			continue
		}
		inputs.Histories[symbol] = daily
		inputs.Metas[symbol] = meta
		inputs.Prices[symbol] = price
	}

	if len(inputs.Histories) == 0 && len(e.cfg.Symbols) > 0 {
		return inputs, skipped, newError(ErrCodeProviderUnavailable, "",
			fmt.Sprintf("no price history for any of %d symbols", len(e.cfg.Symbols)), nil)
	}
	return inputs, skipped, nil
}

// computeSignals fans the per-symbol signal computation out across the
// worker pool and gathers the results in symbol order.
func (e *Engine) computeSignals(ctx context.Context, inputs risk.Inputs) []signalResult {
	symbols := make([]string, 0, len(inputs.Histories))
	for s := range inputs.Histories {
		symbols = append(symbols, s)
	}
	symbols = sortedSymbols(symbols)

	pool := newWorkerPool(e.cfg.Workers, len(symbols), e.signalFor)
	pool.start(ctx)

	submitted := 0
	for _, s := range symbols {
		if err := pool.submit(ctx, signalJob{Symbol: s}); err != nil {
			break
		}
		submitted++
	}

	bySymbol := make(map[string]signalResult, submitted)
	for i := 0; i < submitted; i++ {
		res := <-pool.results()
		bySymbol[res.Symbol] = res
	}
	pool.stop()

	// Gather in sorted order so decisions are evaluated deterministically.
	out := make([]signalResult, 0, len(bySymbol))
	for _, s := range symbols {
		if res, ok := bySymbol[s]; ok {
			out = append(out, res)
		}
	}
	return out
}

// signalFor computes one symbol's signal at the most recent closed bar.
func (e *Engine) signalFor(ctx context.Context, symbol string) signalResult {
	res := signalResult{Symbol: symbol}

	data, err := e.market.Klines(ctx, symbol, e.cfg.SignalTimeframe, e.cfg.HistoryBars)
	if err != nil {
		res.Err = newError(ErrCodeDataInsufficient, symbol, "signal klines unavailable", err)
		return res
	}

	states, err := e.swingline.States(data)
	if err != nil {
		res.Err = newError(ErrCodeDataInsufficient, symbol, "swingline warm-up incomplete", err)
		return res
	}

	dir, err := e.generator.At(data, states)
	if err != nil {
		code := ErrCodeDataInsufficient
		if errors.Is(err, swing.ErrAmbiguousPattern) {
			code = ErrCodeAmbiguousPattern
		}
		res.Err = newError(code, symbol, "signal evaluation", err)
		return res
	}
	res.Direction = dir
	return res
}

// OptimizeBook runs the mean-variance weight solver over the current book
// and translates the result into lot sizes. On non-convergence the previous
// optimized allocation is kept and a warning is logged; the caller proceeds
// with a degraded allocation rather than failing.
func (e *Engine) OptimizeBook(inputs risk.Inputs) (map[string]float64, error) {
	snap, err := e.riskEng.Run(inputs, e.book)
	if err != nil {
		return e.lastOptimized, err
	}
	symbols := snap.Correlations.Symbols
	if len(symbols) == 0 {
		return e.lastOptimized, nil
	}

	vols := make([]float64, len(symbols))
	corr := make([][]float64, len(symbols))
	for i, s := range symbols {
		vols[i] = snap.Volatility[s]
		corr[i] = make([]float64, len(symbols))
		for j := range symbols {
			corr[i][j] = snap.Correlations.At(i, j)
		}
	}

	weights, err := risk.MinVariance(vols, corr)
	if err != nil {
		e.log.Warning("weight optimization failed, keeping previous allocation: %v", err)
		return e.lastOptimized, nil
	}

	e.lastOptimized = risk.OptimizedLots(snap, weights)
	return e.lastOptimized, nil
}

func (e *Engine) logCycle(r *CycleResult) {
	accepted, rejected := 0, 0
	for _, d := range r.Decisions {
		if d.Accepted {
			accepted++
		} else {
			rejected++
		}
	}
	for symbol, cause := range r.Skipped {
		e.log.Warning("%s skipped this cycle: %v", symbol, cause)
	}
	e.log.LogCycleSummary(len(r.Decisions), accepted, rejected, len(r.Skipped), r.Snapshot.VaR, r.Elapsed)
}

func sortedSymbols(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
