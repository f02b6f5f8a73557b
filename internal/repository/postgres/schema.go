package postgres

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS items (
	item_id     TEXT PRIMARY KEY,
	name        TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	image_ref   TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS movements (
	id          BIGSERIAL PRIMARY KEY,
	item_id     TEXT NOT NULL,
	moved_at    TIMESTAMPTZ,
	quantity    DOUBLE PRECISION NOT NULL,
	ingested_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_movements_item_id ON movements (item_id);
CREATE INDEX IF NOT EXISTS idx_movements_moved_at ON movements (moved_at);
`

// Migrate creates the ledger and catalog tables when missing. moved_at
// is nullable on purpose: rows with unparseable source timestamps keep
// their quantity without a date.
func Migrate(ctx context.Context, db *DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
