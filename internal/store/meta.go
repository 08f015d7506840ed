package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strconv"

	"github.com/pkg/errors"
)

// MetaRepository stores small key-value state.
type MetaRepository struct {
	db *sql.DB
}

// Meta returns the key-value repository for this store.
func (s *Store) Meta() *MetaRepository {
	return &MetaRepository{db: s.db}
}

// Get returns the value for key, or ErrNotFound.
func (r *MetaRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", errors.Wrapf(err, "get %s", key)
	}
	return value, nil
}

// Set stores value under key.
func (r *MetaRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return errors.Wrapf(err, "set %s", key)
}

// Int returns the integer stored under key, or def if it is unset.
func (r *MetaRepository) Int(ctx context.Context, key string, def int) (int, error) {
	v, err := r.Get(ctx, key)
	if stderrors.Is(err, ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "parse %s", key)
	}
	return n, nil
}

// SetInt stores an integer under key.
func (r *MetaRepository) SetInt(ctx context.Context, key string, n int) error {
	return r.Set(ctx, key, strconv.Itoa(n))
}
