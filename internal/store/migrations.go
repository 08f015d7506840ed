package store

import (
	"context"

	"github.com/pkg/errors"
)

// runMigrations executes all database migrations.
func (s *Store) runMigrations(ctx context.Context) error {
	migrations := []string{
		// Cards with their Leitner bucket
		`CREATE TABLE IF NOT EXISTS cards (
			id TEXT PRIMARY KEY,
			front TEXT NOT NULL,
			back TEXT NOT NULL,
			tags TEXT NOT NULL DEFAULT '[]',
			bucket INTEGER NOT NULL DEFAULT 0 CHECK(bucket >= 0),
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// One row per submitted rating
		`CREATE TABLE IF NOT EXISTS history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			card_id TEXT NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
			rating TEXT NOT NULL CHECK(rating IN ('EASY', 'HARD', 'WRONG')),
			day INTEGER NOT NULL,
			from_bucket INTEGER NOT NULL,
			to_bucket INTEGER NOT NULL,
			source TEXT NOT NULL CHECK(source IN ('button', 'gesture')),
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Averaged poses recorded by the user for a symbol
		`CREATE TABLE IF NOT EXISTS calibration_templates (
			id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL,
			tolerance REAL NOT NULL,
			samples INTEGER NOT NULL DEFAULT 0,
			landmarks TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Key-value state such as the current day
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_cards_bucket ON cards(bucket)`,
		`CREATE INDEX IF NOT EXISTS idx_history_card_id ON history(card_id)`,
		`CREATE INDEX IF NOT EXISTS idx_history_day ON history(day)`,
	}

	for i, migration := range migrations {
		if _, err := s.db.ExecContext(ctx, migration); err != nil {
			return errors.Wrapf(err, "migration %d", i)
		}
	}

	return nil
}
