package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/almoxops/replen/internal/domain"
)

type ledgerRepository struct {
	db *DB
}

func NewLedgerRepository(db *DB) *ledgerRepository {
	return &ledgerRepository{db: db}
}

// Movements returns the full ledger. Rows whose source timestamp could
// not be parsed are stored with a NULL moved_at and come back with a
// nil timestamp.
func (r *ledgerRepository) Movements(ctx context.Context) ([]domain.MovementRecord, error) {
	query := `
		SELECT item_id, moved_at, quantity
		FROM movements
		ORDER BY moved_at NULLS LAST, item_id
	`

	var movements []domain.MovementRecord
	if err := sqlx.SelectContext(ctx, r.db, &movements, query); err != nil {
		return nil, fmt.Errorf("failed to load movements: %w", err)
	}

	return movements, nil
}

// ReplaceMovements swaps in a freshly ingested ledger atomically.
func (r *ledgerRepository) ReplaceMovements(ctx context.Context, movements []domain.MovementRecord) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `TRUNCATE movements`); err != nil {
			return fmt.Errorf("failed to truncate movements: %w", err)
		}

		query := `
			INSERT INTO movements (item_id, moved_at, quantity, ingested_at)
			VALUES ($1, $2, $3, $4)
		`
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare movement insert: %w", err)
		}
		defer stmt.Close()

		now := time.Now()
		for _, m := range movements {
			if _, err := stmt.ExecContext(ctx, m.ItemID, m.Timestamp, m.Quantity, now); err != nil {
				return fmt.Errorf("failed to insert movement for %s: %w", m.ItemID, err)
			}
		}

		return nil
	})
}

// MovementSummaries rolls the ledger up per item for the history view.
func (r *ledgerRepository) MovementSummaries(ctx context.Context) ([]domain.MovementSummary, error) {
	query := `
		SELECT
			m.item_id,
			COALESCE(i.name, '') AS name,
			COUNT(*) AS movement_count,
			COALESCE(SUM(m.quantity) FILTER (WHERE m.quantity > 0), 0) AS receipt_total,
			COALESCE(ABS(SUM(m.quantity) FILTER (WHERE m.quantity < 0)), 0) AS issue_total
		FROM movements m
		LEFT JOIN items i ON i.item_id = m.item_id
		GROUP BY m.item_id, i.name
		ORDER BY issue_total DESC
	`

	var summaries []domain.MovementSummary
	if err := sqlx.SelectContext(ctx, r.db, &summaries, query); err != nil {
		return nil, fmt.Errorf("failed to summarize movements: %w", err)
	}

	return summaries, nil
}
