package store

import (
	"database/sql"
	"fmt"

	"github.com/banshee-data/rigidify/internal/rigidify"
	"github.com/banshee-data/rigidify/internal/timeutil"
)

// Ledger is a rigidify.Ledger backed by the rigidified_sources table.
type Ledger struct {
	db    *sql.DB
	clock timeutil.Clock
}

var _ rigidify.Ledger = (*Ledger)(nil)

// NewLedger creates a Ledger over a migrated database.
func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{db: db, clock: timeutil.RealClock{}}
}

func (l *Ledger) Rigidified(sourceID string) (bool, error) {
	var one int
	err := l.db.QueryRow(`SELECT 1 FROM rigidified_sources WHERE source_id = ?`, sourceID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query rigidified source: %w", err)
	}
	return true, nil
}

func (l *Ledger) MarkRigidified(sourceID string) error {
	return markRigidified(l.db, sourceID, l.clock.Now().UnixNano())
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func markRigidified(ex execer, sourceID string, at int64) error {
	res, err := ex.Exec(
		`INSERT OR IGNORE INTO rigidified_sources (source_id, rigidified_at) VALUES (?, ?)`,
		sourceID, at,
	)
	if err != nil {
		return fmt.Errorf("mark rigidified source: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark rigidified source: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", rigidify.ErrAlreadyRigidified, sourceID)
	}
	return nil
}
