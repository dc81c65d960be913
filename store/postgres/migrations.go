package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Pulse store.
// It can be registered with the grove extension for orchestrated migration
// management (locking, version tracking, rollback support).
var Migrations = migrate.NewGroup("pulse")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_pulse_pref_entries",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS pulse_pref_entries (
    id         TEXT PRIMARY KEY,
    namespace  TEXT NOT NULL DEFAULT '',
    key        TEXT NOT NULL DEFAULT '',
    value      JSONB,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_pulse_pref_entries_ns_key ON pulse_pref_entries (namespace, key);
CREATE INDEX IF NOT EXISTS idx_pulse_pref_entries_ns ON pulse_pref_entries (namespace);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS pulse_pref_entries`)
				return err
			},
		},
	)
}
