package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		id UUID PRIMARY KEY,
		external_id TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS mixcloud_oauth_tokens (
		id BIGSERIAL PRIMARY KEY,
		user_id UUID NOT NULL UNIQUE REFERENCES profiles(id) ON DELETE CASCADE,
		access_token TEXT NOT NULL,
		refresh_token TEXT NULL,
		token_type TEXT NOT NULL DEFAULT 'Bearer',
		expires_at TIMESTAMPTZ NULL,
		scope TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS shows (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		slug TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		mixcloud_url TEXT NOT NULL,
		mixcloud_embed TEXT NOT NULL DEFAULT '',
		published_date TIMESTAMPTZ NOT NULL,
		storyblok_id BIGINT NULL,
		status TEXT NOT NULL DEFAULT 'draft',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_shows_slug ON shows (slug)`,
	`CREATE TABLE IF NOT EXISTS mixcloud_tracks (
		id BIGSERIAL PRIMARY KEY,
		show_id BIGINT NOT NULL REFERENCES shows(id) ON DELETE CASCADE,
		position INT NOT NULL,
		hour INT NULL,
		artist TEXT NOT NULL,
		track TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (show_id, position)
	)`,
}

// Columns added after the first release of a table.
var columnChecks = []struct {
	table  string
	column string
	ddl    string
}{
	{"mixcloud_oauth_tokens", "mixcloud_username", "ALTER TABLE mixcloud_oauth_tokens ADD COLUMN mixcloud_username TEXT NOT NULL DEFAULT ''"},
}

// EnsureSchema creates the tables this service owns and adds missing columns.
// Safe to call at startup.
func EnsureSchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema failed: %w", err)
		}
	}

	for _, c := range columnChecks {
		exists, err := columnExists(ctx, db, c.table, c.column)
		if err != nil {
			return err
		}
		if !exists {
			if _, err := db.ExecContext(ctx, c.ddl); err != nil {
				return fmt.Errorf("adding column %s.%s failed: %w", c.table, c.column, err)
			}
		}
	}
	return nil
}

func columnExists(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	row := db.QueryRowContext(ctx, `SELECT 1 FROM information_schema.columns WHERE table_name=$1 AND column_name=$2`, table, column)
	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
