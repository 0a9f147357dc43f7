package swing

import (
	"testing"

	"github.com/haruquant/swingrisk/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPivots_OnePerRun(t *testing.T) {
	data := []types.Candle{
		bar(0, 10, 9, 9.5),   // undefined
		bar(1, 11, 9.5, 10),  // up run: bars 1-3
		bar(2, 12, 10, 11),   // max high 12
		bar(3, 11.5, 10, 11),
		bar(4, 11, 8, 9),     // down run: bars 4-6
		bar(5, 10, 7, 8),     // min low 7
		bar(6, 9, 7.5, 8),
		bar(7, 10, 8, 9.5),   // up run: bars 7-8 (ongoing)
		bar(8, 10.5, 9, 10),  // max high 10.5
	}
	states := []State{
		StateUndefined,
		StateUp, StateUp, StateUp,
		StateDown, StateDown, StateDown,
		StateUp, StateUp,
	}

	pivots := ExtractPivots(data, states)
	require.Len(t, pivots, 3)

	assert.Equal(t, Pivot{Index: 2, Price: 12, State: StateUp}, pivots[0])
	assert.Equal(t, Pivot{Index: 5, Price: 7, State: StateDown}, pivots[1])
	assert.Equal(t, Pivot{Index: 8, Price: 10.5, State: StateUp}, pivots[2])
}

func TestExtractPivots_UndefinedRunsEmitNothing(t *testing.T) {
	data := []types.Candle{bar(0, 10, 9, 9.5), bar(1, 11, 9, 10)}
	states := []State{StateUndefined, StateUndefined}

	assert.Empty(t, ExtractPivots(data, states))
}

func TestExtractPivots_PriceEqualsRunExtreme(t *testing.T) {
	data := []types.Candle{
		bar(0, 10, 9, 9.5),
		bar(1, 14, 9.5, 12),
		bar(2, 13, 10, 11),
	}
	states := []State{StateUp, StateUp, StateUp}

	pivots := ExtractPivots(data, states)
	require.Len(t, pivots, 1)

	maxHigh := data[0].High
	for _, c := range data {
		if c.High > maxHigh {
			maxHigh = c.High
		}
	}
	assert.Equal(t, maxHigh, pivots[0].Price)
}

func TestPivotSet_KeepsLastThreeChronological(t *testing.T) {
	set := &PivotSet{}
	for i := 0; i < 5; i++ {
		set.Push(Pivot{Index: i * 2, Price: float64(10 + i), State: StateUp})
		set.Push(Pivot{Index: i*2 + 1, Price: float64(5 - i), State: StateDown})
	}

	highs := set.Highs()
	lows := set.Lows()
	require.Len(t, highs, 3)
	require.Len(t, lows, 3)

	assert.Equal(t, []int{4, 6, 8}, []int{highs[0].Index, highs[1].Index, highs[2].Index})
	assert.Equal(t, []float64{12, 13, 14}, []float64{highs[0].Price, highs[1].Price, highs[2].Price})
	assert.Equal(t, []float64{3, 2, 1}, []float64{lows[0].Price, lows[1].Price, lows[2].Price})
}
