package risk

import (
	"sort"

	"github.com/haruquant/swingrisk/pkg/types"
)

// Book is the position book: signed lot sizes keyed by symbol. It is
// single-writer; the decision loop mutates it and clones it for what-if
// evaluations.
type Book struct {
	positions map[string]float64
}

// NewBook creates an empty position book.
func NewBook() *Book {
	return &Book{positions: make(map[string]float64)}
}

// Add accumulates lots onto a symbol. A position netted to zero is removed.
func (b *Book) Add(symbol string, lots float64) {
	b.positions[symbol] += lots
	if b.positions[symbol] == 0 {
		delete(b.positions, symbol)
	}
}

// Remove drops a symbol from the book.
func (b *Book) Remove(symbol string) {
	delete(b.positions, symbol)
}

// Lots returns the signed lot size for a symbol, zero if absent.
func (b *Book) Lots(symbol string) float64 {
	return b.positions[symbol]
}

// Len returns the number of open positions.
func (b *Book) Len() int {
	return len(b.positions)
}

// Symbols returns the booked symbols in sorted order, so that every risk
// computation walks the book deterministically.
func (b *Book) Symbols() []string {
	out := make([]string, 0, len(b.positions))
	for s := range b.positions {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Positions returns the book as a sorted slice.
func (b *Book) Positions() []types.Position {
	out := make([]types.Position, 0, len(b.positions))
	for _, s := range b.Symbols() {
		out = append(out, types.Position{Symbol: s, Lots: b.positions[s]})
	}
	return out
}

// Clone returns an independent copy of the book.
func (b *Book) Clone() *Book {
	c := NewBook()
	for s, lots := range b.positions {
		c.positions[s] = lots
	}
	return c
}
