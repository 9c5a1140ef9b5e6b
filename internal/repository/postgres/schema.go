package postgres

import (
	"context"
	"fmt"
)

// schemaStatements bootstrap the database idempotently. The CHECK on
// tickets_count is a last line of defense; the reservation path relies on
// the conditional UPDATE in ShowRepo.DecrementTickets, never on the CHECK.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username VARCHAR(150) NOT NULL,
		email VARCHAR(254) NOT NULL,
		password_hash TEXT NOT NULL,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_username_lower_idx ON users (lower(username))`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_idx ON users (lower(email))`,
	`CREATE TABLE IF NOT EXISTS shows (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		date TIMESTAMPTZ NOT NULL,
		place VARCHAR(100) NOT NULL DEFAULT 'Divadlo Kámen',
		image_url TEXT,
		tickets_count BIGINT NOT NULL DEFAULT 100 CHECK (tickets_count >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id UUID PRIMARY KEY,
		show_id BIGINT NOT NULL REFERENCES shows(id) ON DELETE CASCADE,
		user_id BIGINT REFERENCES users(id),
		buyer_name VARCHAR(100) NOT NULL,
		buyer_email VARCHAR(254) NOT NULL,
		buyer_phone VARCHAR(15) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS tickets_show_id_idx ON tickets (show_id)`,
	`CREATE INDEX IF NOT EXISTS tickets_user_id_idx ON tickets (user_id)`,
	`CREATE TABLE IF NOT EXISTS gallery_images (
		id BIGSERIAL PRIMARY KEY,
		image_url TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS slider_images (
		id BIGSERIAL PRIMARY KEY,
		image_url TEXT NOT NULL
	)`,
}

func (s *Store) InitSchema(ctx context.Context) error {
	const op = "postgres.Store.InitSchema"

	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}
	}

	return nil
}
