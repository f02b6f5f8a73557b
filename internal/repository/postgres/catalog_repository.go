package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/almoxops/replen/internal/domain"
)

type catalogRepository struct {
	db *DB
}

func NewCatalogRepository(db *DB) *catalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) Items(ctx context.Context) ([]domain.Item, error) {
	query := `
		SELECT item_id, name, description, COALESCE(image_ref, '') AS image_ref
		FROM items
		ORDER BY item_id
	`

	var items []domain.Item
	if err := sqlx.SelectContext(ctx, r.db, &items, query); err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	return items, nil
}

// UpsertItems refreshes catalog rows in place, keyed by item ID.
func (r *catalogRepository) UpsertItems(ctx context.Context, items []domain.Item) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO items (item_id, name, description, image_ref, created_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (item_id)
			DO UPDATE SET
				name = EXCLUDED.name,
				description = EXCLUDED.description,
				image_ref = EXCLUDED.image_ref,
				updated_at = NOW()
		`
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare item upsert: %w", err)
		}
		defer stmt.Close()

		now := time.Now()
		for _, it := range items {
			if _, err := stmt.ExecContext(ctx, it.ItemID, it.Name, it.Description, it.ImageRef, now); err != nil {
				return fmt.Errorf("failed to upsert item %s: %w", it.ItemID, err)
			}
		}

		return nil
	})
}
