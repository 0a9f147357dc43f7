// Package recorder persists engine output for later analysis. Decisions and
// end-of-cycle risk snapshots go to SQLite when a database path is
// configured, or to a no-op sink otherwise.
package recorder

import (
	"time"

	"github.com/haruquant/swingrisk/pkg/types"
)

// CycleRecord holds the end-of-cycle portfolio figures.
type CycleRecord struct {
	Timestamp    time.Time
	Positions    int
	NominalValue float64
	StdDev       float64
	VaR          float64
	Skipped      int
	Elapsed      time.Duration
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordDecision(d types.Decision) error
	RecordCycle(c *CycleRecord) error
	Close() error
}
