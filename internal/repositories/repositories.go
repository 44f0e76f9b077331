// package repositories provides persistence for download history and read access to the beets library.
package repositories

import (
	"database/sql"
	"fmt"
	"slices"
)

// sequenced lists the tables that own a <table>_sequence counter.
var sequenced = []string{"downloads"}

// NextSequence atomically increments and returns the next sequence number for the given table.
//
// Sequence numbers are NOT exposed as identifiers; they order history listings.
func NextSequence(db *sql.DB, table string) (int, error) {
	if !slices.Contains(sequenced, table) {
		return 0, fmt.Errorf("table %q has no sequence", table)
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var sequence int
	row := tx.QueryRow(fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table))
	if err := row.Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sequence transaction: %w", err)
	}

	return sequence, nil
}
