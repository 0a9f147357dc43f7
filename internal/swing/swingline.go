// Package swing turns price history into a persistent directional state (the
// swingline), extracts one pivot per directional run, and generates
// edge-triggered trade signals on swingline reversals.
package swing

import (
	"fmt"

	"github.com/haruquant/swingrisk/internal/indicators"
	"github.com/haruquant/swingrisk/pkg/types"
)

// State is the per-bar swingline value. Once defined it never returns to
// StateUndefined; it changes only at threshold-crossing bars.
type State int8

const (
	StateUndefined State = 0
	StateUp        State = 1
	StateDown      State = -1
)

func (s State) String() string {
	switch s {
	case StateUp:
		return "UP"
	case StateDown:
		return "DOWN"
	default:
		return "UNDEFINED"
	}
}

// Variant selects the crossing predicate driving the state machine.
type Variant string

const (
	// VariantOscillator flips state on Williams %R threshold crossings.
	VariantOscillator Variant = "oscillator"
	// VariantBreakout flips state when the previous close breaks beyond the
	// highs or lows of the bars before it.
	VariantBreakout Variant = "breakout"
)

// Config holds the swingline tunables. Zero values fall back to the
// defaults the strategy was tuned with.
type Config struct {
	Variant          Variant
	OscillatorPeriod int     // Williams %R period
	UpperThreshold   float64 // cross above -> UP
	LowerThreshold   float64 // cross below -> DOWN
	BreakoutLookback int     // bars checked by the breakout variant
}

func (c Config) withDefaults() Config {
	if c.Variant == "" {
		c.Variant = VariantOscillator
	}
	if c.OscillatorPeriod == 0 {
		c.OscillatorPeriod = 6
	}
	if c.UpperThreshold == 0 {
		c.UpperThreshold = -20
	}
	if c.LowerThreshold == 0 {
		c.LowerThreshold = -80
	}
	if c.BreakoutLookback == 0 {
		c.BreakoutLookback = 2
	}
	return c
}

// Swingline computes the per-bar directional state for one candle series.
type Swingline struct {
	cfg Config
	osc *indicators.WilliamsR
}

// NewSwingline creates a swingline engine for the given configuration.
func NewSwingline(cfg Config) *Swingline {
	cfg = cfg.withDefaults()
	return &Swingline{
		cfg: cfg,
		osc: indicators.NewWilliamsR(cfg.OscillatorPeriod),
	}
}

// States returns the swingline value for every bar, aligned with data.
// All crossing predicates read only fully closed bars: the oscillator value
// is lagged one bar, the breakout close is the previous bar's.
func (s *Swingline) States(data []types.Candle) ([]State, error) {
	switch s.cfg.Variant {
	case VariantBreakout:
		return s.breakoutStates(data)
	default:
		return s.oscillatorStates(data)
	}
}

func (s *Swingline) oscillatorStates(data []types.Candle) ([]State, error) {
	osc, first, err := s.osc.Series(data)
	if err != nil {
		return nil, err
	}

	states := make([]State, len(data))
	// Bar i compares the oscillator at i-1 against i-2, so the first bar
	// that can flip is first+2.
	for i := first + 2; i < len(data); i++ {
		lagged, prev := osc[i-1], osc[i-2]
		switch {
		case lagged > s.cfg.UpperThreshold && prev <= s.cfg.UpperThreshold:
			states[i] = StateUp
		case lagged < s.cfg.LowerThreshold && prev >= s.cfg.LowerThreshold:
			states[i] = StateDown
		default:
			states[i] = states[i-1]
		}
	}
	return states, nil
}

func (s *Swingline) breakoutStates(data []types.Candle) ([]State, error) {
	lookback := s.cfg.BreakoutLookback
	if len(data) < lookback+2 {
		return nil, fmt.Errorf("breakout swingline needs %d bars, have %d: %w",
			lookback+2, len(data), indicators.ErrInsufficientData)
	}

	states := make([]State, len(data))
	for i := lookback + 1; i < len(data); i++ {
		close := data[i-1].Close
		above, below := true, true
		for j := i - 1 - lookback; j < i-1; j++ {
			if close <= data[j].High {
				above = false
			}
			if close >= data[j].Low {
				below = false
			}
		}
		switch {
		case above:
			states[i] = StateUp
		case below:
			states[i] = StateDown
		default:
			states[i] = states[i-1]
		}
	}
	return states, nil
}
