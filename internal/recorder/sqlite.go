package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	"github.com/haruquant/swingrisk/pkg/types"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists decisions and cycle snapshots to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while the engine writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS decisions (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			symbol        TEXT NOT NULL,
			direction     TEXT,
			lots          REAL,
			stop_pips     REAL,
			adr           REAL,
			range_pct     REAL,
			current_var   REAL,
			proposed_var  REAL,
			delta_var_pct REAL,
			accepted      INTEGER,
			reason        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_ts ON decisions(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_symbol ON decisions(symbol)`,

		`CREATE TABLE IF NOT EXISTS cycles (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			positions     INTEGER,
			nominal_value REAL,
			std_dev       REAL,
			var           REAL,
			skipped       INTEGER,
			elapsed_ms    INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_ts ON cycles(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordDecision(d types.Decision) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	accepted := 0
	if d.Accepted {
		accepted = 1
	}
	_, err := r.db.Exec(`INSERT INTO decisions
		(timestamp, symbol, direction, lots, stop_pips, adr, range_pct,
		 current_var, proposed_var, delta_var_pct, accepted, reason)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		d.Timestamp.Unix(), d.Symbol, d.Direction.String(), d.Lots, d.StopPips,
		d.ADR, d.RangePct, d.CurrentVaR, d.ProposedVaR, d.DeltaVaRPct,
		accepted, string(d.Reason),
	)
	return err
}

func (r *SQLiteRecorder) RecordCycle(c *CycleRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO cycles
		(timestamp, positions, nominal_value, std_dev, var, skipped, elapsed_ms)
		VALUES (?,?,?,?,?,?,?)`,
		c.Timestamp.Unix(), c.Positions, c.NominalValue, c.StdDev, c.VaR,
		c.Skipped, c.Elapsed.Milliseconds(),
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
