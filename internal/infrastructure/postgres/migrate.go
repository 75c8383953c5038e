package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// migration paso de esquema versionado. Se aplica una sola vez, dentro de su propia transacción.
type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "catalog",
		sql: `
		CREATE TABLE IF NOT EXISTS products (
			id          UUID PRIMARY KEY,
			sku         VARCHAR(50) NOT NULL UNIQUE,
			name        VARCHAR(200) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category    VARCHAR(2) NOT NULL DEFAULT 'HO'
				CHECK (category IN ('EL', 'FA', 'HO', 'TO', 'SP')),
			price       NUMERIC(12, 2) NOT NULL CHECK (price >= 0),
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_products_category ON products (category);
		CREATE INDEX IF NOT EXISTS idx_products_name ON products (name);

		CREATE TABLE IF NOT EXISTS locations (
			id         UUID PRIMARY KEY,
			name       VARCHAR(100) NOT NULL,
			address    TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
	},
	{
		version: 2,
		name:    "ledger",
		sql: `
		CREATE TABLE IF NOT EXISTS ledger_entries (
			product_id    UUID NOT NULL REFERENCES products (id) ON DELETE RESTRICT,
			location_id   UUID NOT NULL REFERENCES locations (id) ON DELETE RESTRICT,
			quantity      BIGINT NOT NULL DEFAULT 0 CHECK (quantity >= 0),
			min_threshold BIGINT NOT NULL DEFAULT 5 CHECK (min_threshold >= 0),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (product_id, location_id)
		);
		CREATE INDEX IF NOT EXISTS idx_ledger_location ON ledger_entries (location_id);
		CREATE INDEX IF NOT EXISTS idx_ledger_below_threshold
			ON ledger_entries (location_id) WHERE quantity < min_threshold;`,
	},
	{
		version: 3,
		name:    "movements",
		sql: `
		CREATE TABLE IF NOT EXISTS movements (
			id                      UUID PRIMARY KEY,
			transfer_id             UUID NOT NULL UNIQUE,
			product_id              UUID NOT NULL REFERENCES products (id) ON DELETE RESTRICT,
			source_location_id      UUID NOT NULL REFERENCES locations (id) ON DELETE RESTRICT,
			destination_location_id UUID NOT NULL REFERENCES locations (id) ON DELETE RESTRICT,
			quantity                BIGINT NOT NULL CHECK (quantity > 0),
			kind                    VARCHAR(20) NOT NULL DEFAULT 'TRANSFER',
			created_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
			CHECK (source_location_id <> destination_location_id)
		);
		CREATE INDEX IF NOT EXISTS idx_movements_product_created ON movements (product_id, created_at);
		CREATE INDEX IF NOT EXISTS idx_movements_source ON movements (source_location_id);
		CREATE INDEX IF NOT EXISTS idx_movements_destination ON movements (destination_location_id);`,
	},
}

// Migrate aplica las migraciones pendientes en orden y devuelve cuántas aplicó.
func Migrate(ctx context.Context, db DB) (int, error) {
	if _, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INT PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", classify(err))
	}

	applied := 0
	for _, m := range migrations {
		done, err := applyMigration(ctx, db, m)
		if err != nil {
			return applied, err
		}
		if done {
			applied++
		}
	}
	return applied, nil
}

// applyMigration aplica m si todavía no está registrada. El INSERT en schema_migrations compite por la clave
// primaria: dos procesos migrando a la vez no aplican el mismo paso dos veces.
func applyMigration(ctx context.Context, db DB, m migration) (bool, error) {
	tx, err := db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, fmt.Errorf("begin migration %d: %w", m.version, unavailable(err))
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	cmd, err := tx.Exec(ctx,
		`INSERT INTO schema_migrations (version, name) VALUES ($1, $2) ON CONFLICT (version) DO NOTHING`,
		m.version, m.name)
	if err != nil {
		return false, fmt.Errorf("register migration %d: %w", m.version, classify(err))
	}
	if cmd.RowsAffected() == 0 {
		return false, nil
	}
	if _, err := tx.Exec(ctx, m.sql); err != nil {
		return false, fmt.Errorf("apply migration %d (%s): %w", m.version, m.name, classify(err))
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit migration %d: %w", m.version, classify(err))
	}
	return true, nil
}
