package store

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Card is a flashcard row.
type Card struct {
	ID        string
	Front     string
	Back      string
	Tags      []string
	Bucket    int
	CreatedAt time.Time
}

// CardRepository provides CRUD operations for cards.
type CardRepository struct {
	db *sql.DB
}

// Cards returns the card repository for this store.
func (s *Store) Cards() *CardRepository {
	return &CardRepository{db: s.db}
}

const cardColumns = `id, front, back, tags, bucket, created_at`

// Create inserts a card. An empty ID is filled with a new UUID.
func (r *CardRepository) Create(ctx context.Context, c *Card) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	tags, err := encodeTags(c.Tags)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO cards (id, front, back, tags, bucket, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Front, c.Back, tags, c.Bucket, c.CreatedAt,
	)
	return errors.Wrap(err, "insert card")
}

// Get retrieves a card by its ID.
func (r *CardRepository) Get(ctx context.Context, id string) (*Card, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	c, err := scanCard(row)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "get card")
	}
	return c, nil
}

// List returns every card in creation order.
func (r *CardRepository) List(ctx context.Context) ([]*Card, error) {
	return r.query(ctx, `SELECT `+cardColumns+` FROM cards ORDER BY created_at, rowid`)
}

// ListByBuckets returns the cards in any of the given buckets, ordered by bucket then creation.
func (r *CardRepository) ListByBuckets(ctx context.Context, buckets []int) ([]*Card, error) {
	if len(buckets) == 0 {
		return nil, nil
	}
	query := `SELECT ` + cardColumns + ` FROM cards WHERE bucket IN (?` + strings.Repeat(",?", len(buckets)-1) + `) ORDER BY bucket, created_at, rowid`
	args := make([]any, len(buckets))
	for i, b := range buckets {
		args[i] = b
	}
	return r.query(ctx, query, args...)
}

// SetBucket moves a card.
func (r *CardRepository) SetBucket(ctx context.Context, id string, bucket int) error {
	result, err := r.db.ExecContext(ctx, `UPDATE cards SET bucket = ? WHERE id = ?`, bucket, id)
	if err != nil {
		return errors.Wrap(err, "update bucket")
	}
	return affected(result)
}

// Delete removes a card and its history.
func (r *CardRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete card")
	}
	return affected(result)
}

// BucketCounts returns the number of cards per bucket.
func (r *CardRepository) BucketCounts(ctx context.Context) (map[int]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT bucket, COUNT(*) FROM cards GROUP BY bucket`)
	if err != nil {
		return nil, errors.Wrap(err, "count buckets")
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var bucket, n int
		if err := rows.Scan(&bucket, &n); err != nil {
			return nil, errors.Wrap(err, "scan bucket count")
		}
		counts[bucket] = n
	}
	return counts, errors.Wrap(rows.Err(), "count buckets")
}

func (r *CardRepository) query(ctx context.Context, query string, args ...any) ([]*Card, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list cards")
	}
	defer rows.Close()

	var cards []*Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan card")
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list cards")
	}
	return cards, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCard(s scanner) (*Card, error) {
	c := &Card{}
	var tags string
	if err := s.Scan(&c.ID, &c.Front, &c.Back, &tags, &c.Bucket, &c.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &c.Tags); err != nil {
		return nil, errors.Wrapf(err, "decode tags of card %s", c.ID)
	}
	return c, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", errors.Wrap(err, "encode tags")
	}
	return string(b), nil
}
