package swing

import (
	"testing"

	"github.com/haruquant/swingrisk/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvents_EdgeTriggered(t *testing.T) {
	states := []State{
		StateUndefined, StateUndefined,
		StateUp, StateUp,
		StateDown, StateDown, StateDown,
		StateUp,
	}

	events := Events("EURUSD", states)
	require.Len(t, events, 2)

	assert.Equal(t, Event{Index: 4, Symbol: "EURUSD", Direction: types.DirectionSell}, events[0])
	assert.Equal(t, Event{Index: 7, Symbol: "EURUSD", Direction: types.DirectionBuy}, events[1])
}

func TestEvents_FirstDefinedStateEmitsNothing(t *testing.T) {
	states := []State{StateUndefined, StateUp, StateUp}
	assert.Empty(t, Events("EURUSD", states))
}

func TestEvents_CountMatchesRunTransitions(t *testing.T) {
	states := []State{
		StateUndefined,
		StateDown, StateDown,
		StateUp,
		StateDown, StateDown,
		StateUp, StateUp, StateUp,
		StateDown,
	}

	transitions := 0
	for i := 1; i < len(states); i++ {
		if states[i] != states[i-1] && states[i-1] != StateUndefined {
			transitions++
		}
	}

	events := Events("GBPUSD", states)
	assert.Len(t, events, transitions)
	for _, ev := range events {
		assert.NotEqual(t, states[ev.Index], states[ev.Index-1])
	}
}

// validatedFixture ends on a DOWN->UP reversal with pivot highs [10, 9]
// (most recent last) and pivot lows [5, 6].
func validatedFixture() ([]types.Candle, []State) {
	data := []types.Candle{
		bar(0, 6, 5.5, 5.7),
		bar(1, 6, 5, 5.2), // pivot low 5
		bar(2, 6, 5.5, 5.8),
		bar(3, 8, 5.8, 7),
		bar(4, 10, 7, 9.5), // pivot high 10
		bar(5, 9, 8, 8.5),
		bar(6, 8.5, 7, 7.5),
		bar(7, 8, 6, 6.5), // pivot low 6
		bar(8, 7.5, 6.5, 7),
		bar(9, 9, 7, 8.8), // reversal bar, pivot high 9
	}
	states := []State{
		StateDown, StateDown, StateDown,
		StateUp, StateUp, StateUp,
		StateDown, StateDown, StateDown,
		StateUp,
	}
	return data, states
}

func TestGenerator_ValidatedBuy(t *testing.T) {
	data, states := validatedFixture()

	g := NewGenerator(ModeValidated, 12)
	dir, err := g.At(data, states)
	require.NoError(t, err)

	// H1=9 < H0=10 and L1=6 > L0=5.
	assert.Equal(t, types.DirectionBuy, dir)
}

func TestGenerator_ValidatedNeedsTwoPivotsOfEachKind(t *testing.T) {
	data := []types.Candle{
		bar(0, 6, 5, 5.5),
		bar(1, 6, 5, 5.5),
		bar(2, 7, 6, 6.5),
	}
	states := []State{StateDown, StateDown, StateUp}

	g := NewGenerator(ModeValidated, 12)
	dir, err := g.At(data, states)
	require.NoError(t, err)
	assert.Equal(t, types.DirectionNone, dir)
}

func TestGenerator_BaseModeNoReversalIsNone(t *testing.T) {
	data, states := validatedFixture()
	states[len(states)-1] = StateDown // remove the edge

	g := NewGenerator(ModeBase, 12)
	dir, err := g.At(data, states)
	require.NoError(t, err)
	assert.Equal(t, types.DirectionNone, dir)
}

func pivotSet(highs, lows []Pivot) *PivotSet {
	set := &PivotSet{}
	for i := range highs {
		set.Push(highs[i])
		set.Push(lows[i])
	}
	return set
}

func TestDetectDouble_Bottom(t *testing.T) {
	set := pivotSet(
		[]Pivot{{Index: 2, Price: 10, State: StateUp}, {Index: 6, Price: 9, State: StateUp}, {Index: 10, Price: 8, State: StateUp}},
		[]Pivot{{Index: 0, Price: 5, State: StateDown}, {Index: 4, Price: 4, State: StateDown}, {Index: 8, Price: 4.5, State: StateDown}},
	)

	dir, err := DetectDouble(set)
	require.NoError(t, err)
	assert.Equal(t, types.DirectionBuy, dir)
}

func TestDetectDouble_Top(t *testing.T) {
	set := pivotSet(
		[]Pivot{{Index: 2, Price: 9, State: StateUp}, {Index: 6, Price: 10, State: StateUp}, {Index: 10, Price: 8, State: StateUp}},
		[]Pivot{{Index: 0, Price: 5, State: StateDown}, {Index: 4, Price: 6, State: StateDown}, {Index: 8, Price: 7, State: StateDown}},
	)

	dir, err := DetectDouble(set)
	require.NoError(t, err)
	assert.Equal(t, types.DirectionSell, dir)
}

func TestDetectDouble_AmbiguousSurfaced(t *testing.T) {
	// Both inequality sets hold at once; the contradiction must surface
	// instead of silently picking a side.
	set := pivotSet(
		[]Pivot{{Index: 2, Price: 10, State: StateUp}, {Index: 6, Price: 9, State: StateUp}, {Index: 10, Price: 8, State: StateUp}},
		[]Pivot{{Index: 0, Price: 1, State: StateDown}, {Index: 4, Price: 2, State: StateDown}, {Index: 8, Price: 3, State: StateDown}},
	)

	dir, err := DetectDouble(set)
	require.ErrorIs(t, err, ErrAmbiguousPattern)
	assert.Equal(t, types.DirectionNone, dir)
}

func TestDetectDouble_RequiresInterleaving(t *testing.T) {
	// Two consecutive lows without a high between them.
	set := pivotSet(
		[]Pivot{{Index: 1, Price: 10, State: StateUp}, {Index: 6, Price: 9, State: StateUp}, {Index: 10, Price: 8, State: StateUp}},
		[]Pivot{{Index: 0, Price: 1, State: StateDown}, {Index: 2, Price: 2, State: StateDown}, {Index: 3, Price: 3, State: StateDown}},
	)

	dir, err := DetectDouble(set)
	require.NoError(t, err)
	assert.Equal(t, types.DirectionNone, dir)
}

func TestDetectDouble_FewerThanThreePivots(t *testing.T) {
	set := pivotSet(
		[]Pivot{{Index: 2, Price: 10, State: StateUp}},
		[]Pivot{{Index: 0, Price: 5, State: StateDown}},
	)

	dir, err := DetectDouble(set)
	require.NoError(t, err)
	assert.Equal(t, types.DirectionNone, dir)
}
