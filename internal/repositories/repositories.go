package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/vidstyle/internal/shared"
)

// sequenced lists the tables that own a <table>_sequence counter.
var sequenced = map[string]bool{
	"transforms": true,
}

// NextSequence atomically increments and returns the next sequence number for the given table.
//
// Sequence numbers provide human-readable ordering (e.g., transform #42) and are shown by the history command.
func NextSequence(db *sql.DB, table string) (int, error) {
	if !sequenced[table] {
		return 0, fmt.Errorf("%w: no sequence for table %q", shared.ErrInvalidArgument, table)
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var sequence int
	err = tx.QueryRow(fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table)).Scan(&sequence)
	if err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sequence transaction: %w", err)
	}

	return sequence, nil
}
