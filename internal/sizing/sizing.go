// Package sizing turns a validated signal into a concrete lot size: a stop
// distance derived from the average daily range, a lot computed from the
// per-trade risk allowance, and the accept/reject verdict against the broker
// limits and the portfolio risk budget.
package sizing

import (
	"fmt"
	"math"

	"github.com/haruquant/swingrisk/internal/indicators"
	"github.com/haruquant/swingrisk/pkg/types"
)

// Config holds the sizing tunables.
type Config struct {
	ADRPeriod     int     // rolling window of daily bars for the ADR
	StopADRRatio  float64 // stop distance = ADR / ratio
	RiskPct       float64 // % of the risk base staked per trade
	RiskThreshold float64 // max tolerated VaR increase, percent
}

func (c Config) withDefaults() Config {
	if c.ADRPeriod == 0 {
		c.ADRPeriod = 10
	}
	if c.StopADRRatio == 0 {
		c.StopADRRatio = 3
	}
	if c.RiskPct == 0 {
		c.RiskPct = 5
	}
	if c.RiskThreshold == 0 {
		c.RiskThreshold = 10
	}
	return c
}

// Sizing is the computed size for one candidate trade. Lots is unsigned;
// the decision layer applies the trade direction.
type Sizing struct {
	Lots     float64
	StopPips float64
	ADR      float64
	RangePct float64
}

// Policy computes lot sizes and verdicts.
type Policy struct {
	cfg Config
	adr *indicators.ADR
}

// NewPolicy creates a sizing policy with the given configuration.
func NewPolicy(cfg Config) *Policy {
	cfg = cfg.withDefaults()
	return &Policy{cfg: cfg, adr: indicators.NewADR(cfg.ADRPeriod)}
}

// MinHistory returns the number of daily bars needed for one sizing.
func (p *Policy) MinHistory() int {
	return p.cfg.ADRPeriod + 1
}

// Size computes the stop distance and lot for a candidate trade on the
// symbol. riskBase is the account figure the per-trade risk percentage
// applies to. The lot is floored to the broker's lot step so the staked
// amount never exceeds the allowance.
func (p *Policy) Size(daily []types.Candle, meta types.SymbolMeta, riskBase float64) (Sizing, error) {
	reading, err := p.adr.Calculate(daily, meta)
	if err != nil {
		return Sizing{}, fmt.Errorf("sizing %s: %w", meta.Symbol, err)
	}

	stopPips := math.Round(reading.ADR / p.cfg.StopADRRatio)
	if stopPips <= 0 {
		return Sizing{}, fmt.Errorf("sizing %s: zero stop distance from adr %.0f", meta.Symbol, reading.ADR)
	}

	// One pip is ten ticks, so a one-pip move on one lot is worth 10x the
	// tick value.
	pipValue := 10 * meta.TickValue
	riskAmount := riskBase * p.cfg.RiskPct / 100
	lots := riskAmount / (stopPips * pipValue)

	if meta.LotStep > 0 {
		lots = math.Floor(lots/meta.LotStep) * meta.LotStep
	}

	return Sizing{
		Lots:     lots,
		StopPips: stopPips,
		ADR:      reading.ADR,
		RangePct: reading.RangePct,
	}, nil
}

// Verdict checks a computed size against the portfolio risk budget and the
// broker's lot limits. The risk budget is checked first: an oversized trade
// on an out-of-budget book is a risk rejection, not a lot-limit one.
func (p *Policy) Verdict(s Sizing, meta types.SymbolMeta, deltaVaRPct float64) (bool, types.ReasonCode) {
	if deltaVaRPct > p.cfg.RiskThreshold {
		return false, types.ReasonRiskExceeded
	}
	if s.Lots < meta.MinLot {
		return false, types.ReasonLotBelowMinimum
	}
	if meta.MaxLot > 0 && s.Lots > meta.MaxLot {
		return false, types.ReasonLotAboveMaximum
	}
	return true, types.ReasonAccepted
}
