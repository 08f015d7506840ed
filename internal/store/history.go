package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

// Review sources.
const (
	SourceButton  = "button"
	SourceGesture = "gesture"
)

// HistoryEntry is one submitted rating.
type HistoryEntry struct {
	ID         int64
	CardID     string
	Rating     string
	Day        int
	FromBucket int
	ToBucket   int
	Source     string
	CreatedAt  time.Time
}

// HistoryRepository reads and writes review history.
type HistoryRepository struct {
	db *sql.DB
}

// History returns the history repository for this store.
func (s *Store) History() *HistoryRepository {
	return &HistoryRepository{db: s.db}
}

// Record moves the card to e.ToBucket and appends e, in one transaction.
func (r *HistoryRepository) Record(ctx context.Context, e *HistoryEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin review")
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `UPDATE cards SET bucket = ? WHERE id = ?`, e.ToBucket, e.CardID)
	if err != nil {
		return errors.Wrap(err, "move card")
	}
	if err := affected(result); err != nil {
		return err
	}

	result, err = tx.ExecContext(ctx,
		`INSERT INTO history (card_id, rating, day, from_bucket, to_bucket, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.CardID, e.Rating, e.Day, e.FromBucket, e.ToBucket, e.Source, e.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "insert history")
	}
	if e.ID, err = result.LastInsertId(); err != nil {
		return errors.Wrap(err, "history id")
	}

	return errors.Wrap(tx.Commit(), "commit review")
}

// List returns all entries, oldest first.
func (r *HistoryRepository) List(ctx context.Context) ([]HistoryEntry, error) {
	return r.query(ctx, `SELECT id, card_id, rating, day, from_bucket, to_bucket, source, created_at
		FROM history ORDER BY id`)
}

// ListByCard returns the entries for one card, oldest first.
func (r *HistoryRepository) ListByCard(ctx context.Context, cardID string) ([]HistoryEntry, error) {
	return r.query(ctx, `SELECT id, card_id, rating, day, from_bucket, to_bucket, source, created_at
		FROM history WHERE card_id = ? ORDER BY id`, cardID)
}

func (r *HistoryRepository) query(ctx context.Context, query string, args ...any) ([]HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list history")
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.CardID, &e.Rating, &e.Day, &e.FromBucket, &e.ToBucket, &e.Source, &e.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan history")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list history")
	}
	return entries, nil
}
