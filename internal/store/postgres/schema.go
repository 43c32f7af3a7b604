package postgres

import (
	"context"
	"database/sql"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS user_quotas (
        wallet_address TEXT PRIMARY KEY,
        remaining_credits INTEGER NOT NULL DEFAULT 5 CHECK (remaining_credits >= 0),
        created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE TABLE IF NOT EXISTS premium_users (
        wallet_address TEXT PRIMARY KEY,
        is_premium BOOLEAN NOT NULL DEFAULT false,
        premium_expiry TIMESTAMPTZ,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE TABLE IF NOT EXISTS usage_logs (
        id TEXT PRIMARY KEY,
        wallet_address TEXT NOT NULL,
        topic TEXT NOT NULL,
        selected_hook TEXT NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE INDEX IF NOT EXISTS usage_logs_wallet_created_idx ON usage_logs (wallet_address, created_at DESC)`,
}

// EnsureSchema creates the hooklab tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
