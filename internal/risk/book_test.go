package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBook_AddAccumulates(t *testing.T) {
	b := NewBook()
	b.Add("EURUSD", 0.5)
	b.Add("EURUSD", 0.3)

	assert.InDelta(t, 0.8, b.Lots("EURUSD"), 1e-12)
	assert.Equal(t, 1, b.Len())
}

func TestBook_NettedToZeroIsRemoved(t *testing.T) {
	b := NewBook()
	b.Add("EURUSD", 0.5)
	b.Add("EURUSD", -0.5)

	assert.Zero(t, b.Len())
	assert.Zero(t, b.Lots("EURUSD"))
}

func TestBook_SymbolsSorted(t *testing.T) {
	b := NewBook()
	b.Add("USDJPY", 1)
	b.Add("EURUSD", 1)
	b.Add("GBPUSD", 1)

	assert.Equal(t, []string{"EURUSD", "GBPUSD", "USDJPY"}, b.Symbols())
}

func TestBook_CloneIsIndependent(t *testing.T) {
	b := NewBook()
	b.Add("EURUSD", 1)

	c := b.Clone()
	c.Add("EURUSD", 1)
	c.Add("GBPUSD", 2)

	assert.InDelta(t, 1.0, b.Lots("EURUSD"), 1e-12)
	assert.Zero(t, b.Lots("GBPUSD"))
	assert.InDelta(t, 2.0, c.Lots("EURUSD"), 1e-12)
}
