package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gestion/internal/core"
)

// nextNumber allocates the next sequential document number inside tx. The
// counter row carries the year it was last used in: a new fiscal year resets
// the sequence to 1, same year increments it. The single upsert makes the
// read-modify-write atomic, so two concurrent allocations for the same type
// can never observe the same pre-increment value.
func nextNumber(ctx context.Context, tx *sql.Tx, docType core.DocType, now time.Time) (string, error) {
	year := now.Year()

	var seq int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO counters (doc_type, year, seq) VALUES (?, ?, 1)
		ON CONFLICT(doc_type) DO UPDATE SET
			seq  = CASE WHEN counters.year = excluded.year THEN counters.seq + 1 ELSE 1 END,
			year = excluded.year
		RETURNING seq
	`, string(docType), year).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("allocate %s number: %w", docType, err)
	}

	return core.FormatNumber(docType, year, seq), nil
}

// NextNumber allocates and persists a document number on its own. Document
// creation paths allocate inside their insert transaction instead, so a
// failed insert never leaves a document without a number.
func (r *SQLiteRepository) NextNumber(ctx context.Context, docType core.DocType) (string, error) {
	var number string
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		n, err := nextNumber(ctx, tx, docType, r.now())
		if err != nil {
			return err
		}
		number = n
		return nil
	})
	if err != nil {
		return "", err
	}
	return number, nil
}
