package swing

import (
	"errors"
	"math"

	"github.com/haruquant/swingrisk/internal/indicators"
	"github.com/haruquant/swingrisk/pkg/types"
)

// Mode selects how much structure validation a reversal needs before it
// becomes a tradable signal.
type Mode string

const (
	// ModeBase fires on every swingline reversal.
	ModeBase Mode = "base"
	// ModeValidated additionally requires the market-structure rules over
	// the last two pivot highs and lows plus an ATR tolerance.
	ModeValidated Mode = "validated"
	// ModeDoubles requires a double top or double bottom over the last
	// three pivot highs and lows.
	ModeDoubles Mode = "doubles"
)

// ErrAmbiguousPattern reports that the double-top and double-bottom
// conditions held simultaneously. The signal is forced to NONE; picking one
// arbitrarily would hide a modeling contradiction.
var ErrAmbiguousPattern = errors.New("double top and double bottom detected simultaneously")

// Event is an edge-triggered signal: non-NONE only at the bar where the
// swingline reverses between defined states.
type Event struct {
	Index     int
	Symbol    string
	Direction types.Direction
}

// Events returns the base reversal events for a whole series. The first
// defined state has no prior state to compare against and emits nothing.
func Events(symbol string, states []State) []Event {
	var events []Event
	for i := 1; i < len(states); i++ {
		if d := edge(states[i-1], states[i]); d != types.DirectionNone {
			events = append(events, Event{Index: i, Symbol: symbol, Direction: d})
		}
	}
	return events
}

func edge(prev, curr State) types.Direction {
	if prev == StateDown && curr == StateUp {
		return types.DirectionBuy
	}
	if prev == StateUp && curr == StateDown {
		return types.DirectionSell
	}
	return types.DirectionNone
}

// Generator evaluates the configured signal mode at the most recent bar.
type Generator struct {
	mode Mode
	atr  *indicators.ATR
}

// NewGenerator creates a signal generator. The ATR period feeds the
// validated and double-pattern tolerance rules.
func NewGenerator(mode Mode, atrPeriod int) *Generator {
	if mode == "" {
		mode = ModeBase
	}
	return &Generator{mode: mode, atr: indicators.NewATR(atrPeriod)}
}

// At returns the signal direction at the last bar of data. A reversal that
// fails validation degrades to NONE rather than an error; only an ambiguous
// double pattern is surfaced as ErrAmbiguousPattern.
func (g *Generator) At(data []types.Candle, states []State) (types.Direction, error) {
	n := len(states)
	if n < 2 {
		return types.DirectionNone, nil
	}
	base := edge(states[n-2], states[n-1])
	if base == types.DirectionNone {
		return types.DirectionNone, nil
	}

	switch g.mode {
	case ModeValidated:
		return g.validated(base, data, states)
	case ModeDoubles:
		return g.doubles(data, states)
	default:
		return base, nil
	}
}

func (g *Generator) validated(base types.Direction, data []types.Candle, states []State) (types.Direction, error) {
	set := CollectPivots(data, states)
	highs, lows := set.Highs(), set.Lows()
	if len(highs) < 2 || len(lows) < 2 {
		return types.DirectionNone, nil
	}

	atr, err := g.atr.Calculate(data)
	if err != nil {
		return types.DirectionNone, err
	}

	// Most-recent pivot last: index 1 is the newer one.
	h0, h1 := highs[len(highs)-2].Price, highs[len(highs)-1].Price
	l0, l1 := lows[len(lows)-2].Price, lows[len(lows)-1].Price

	switch base {
	case types.DirectionBuy:
		if h1 < h0 && (l1 > l0 || atr >= math.Abs(l1-l0)) {
			return types.DirectionBuy, nil
		}
	case types.DirectionSell:
		if l1 > l0 && (h1 < h0 || atr >= math.Abs(h1-h0)) {
			return types.DirectionSell, nil
		}
	}
	return types.DirectionNone, nil
}

func (g *Generator) doubles(data []types.Candle, states []State) (types.Direction, error) {
	set := CollectPivots(data, states)
	return DetectDouble(set)
}

// DetectDouble checks the last three pivot highs and lows for a double
// bottom (BUY) or double top (SELL). It requires strict time interleaving
// low/high/low/high/low/high. The inequalities mirror the strategy as
// originally tuned; property tests pin them so a future correction is a
// deliberate behavior change.
func DetectDouble(set *PivotSet) (types.Direction, error) {
	highs, lows := set.Highs(), set.Lows()
	if len(highs) < pivotKeep || len(lows) < pivotKeep {
		return types.DirectionNone, nil
	}

	ordered := lows[0].Index < highs[0].Index &&
		highs[0].Index < lows[1].Index &&
		lows[1].Index < highs[1].Index &&
		highs[1].Index < lows[2].Index &&
		lows[2].Index < highs[2].Index
	if !ordered {
		return types.DirectionNone, nil
	}

	h0, h1, h2 := highs[0].Price, highs[1].Price, highs[2].Price
	l0, l1, l2 := lows[0].Price, lows[1].Price, lows[2].Price

	doubleBottom := h0 > l1 &&
		h0 > h1 && h1 > l2 && l2 > l1 &&
		h1 > h2 && h2 > l2

	doubleTop := l0 < h1 &&
		l0 < l1 && l1 < h1 &&
		h1 > h2 && h2 > l1 &&
		h2 > l2 && l2 > l1

	switch {
	case doubleBottom && doubleTop:
		return types.DirectionNone, ErrAmbiguousPattern
	case doubleBottom:
		return types.DirectionBuy, nil
	case doubleTop:
		return types.DirectionSell, nil
	default:
		return types.DirectionNone, nil
	}
}
