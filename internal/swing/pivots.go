package swing

import "github.com/haruquant/swingrisk/pkg/types"

// Pivot is the single price extreme of one directional run: the maximum high
// of an UP run or the minimum low of a DOWN run.
type Pivot struct {
	Index int
	Price float64
	State State
}

// No signal rule looks further back than the last three pivots of each kind.
const pivotKeep = 3

// pivotRing is a fixed-size chronological buffer of the most recent pivots.
type pivotRing struct {
	buf [pivotKeep]Pivot
	n   int
}

func (r *pivotRing) push(p Pivot) {
	if r.n < pivotKeep {
		r.buf[r.n] = p
		r.n++
		return
	}
	copy(r.buf[:], r.buf[1:])
	r.buf[pivotKeep-1] = p
}

func (r *pivotRing) items() []Pivot {
	out := make([]Pivot, r.n)
	copy(out, r.buf[:r.n])
	return out
}

// PivotSet holds the bounded recent-pivot history the signal rules read.
type PivotSet struct {
	highs pivotRing
	lows  pivotRing
}

// Push records a pivot in the matching ring.
func (ps *PivotSet) Push(p Pivot) {
	if p.State == StateUp {
		ps.highs.push(p)
	} else if p.State == StateDown {
		ps.lows.push(p)
	}
}

// Highs returns up to the last three pivot highs, oldest first.
func (ps *PivotSet) Highs() []Pivot { return ps.highs.items() }

// Lows returns up to the last three pivot lows, oldest first.
func (ps *PivotSet) Lows() []Pivot { return ps.lows.items() }

// ExtractPivots groups consecutive bars sharing a swingline value into runs
// and emits one pivot per defined run, in chronological order. The ongoing
// final run emits its extreme so far; undefined runs emit nothing.
func ExtractPivots(data []types.Candle, states []State) []Pivot {
	var pivots []Pivot

	runStart := 0
	for i := 1; i <= len(states); i++ {
		if i < len(states) && states[i] == states[runStart] {
			continue
		}
		if p, ok := runPivot(data, states[runStart], runStart, i); ok {
			pivots = append(pivots, p)
		}
		runStart = i
	}
	return pivots
}

// CollectPivots extracts all pivots and keeps the bounded recent sets.
func CollectPivots(data []types.Candle, states []State) *PivotSet {
	set := &PivotSet{}
	for _, p := range ExtractPivots(data, states) {
		set.Push(p)
	}
	return set
}

func runPivot(data []types.Candle, state State, start, end int) (Pivot, bool) {
	switch state {
	case StateUp:
		best := start
		for i := start + 1; i < end; i++ {
			if data[i].High > data[best].High {
				best = i
			}
		}
		return Pivot{Index: best, Price: data[best].High, State: StateUp}, true
	case StateDown:
		best := start
		for i := start + 1; i < end; i++ {
			if data[i].Low < data[best].Low {
				best = i
			}
		}
		return Pivot{Index: best, Price: data[best].Low, State: StateDown}, true
	default:
		return Pivot{}, false
	}
}
