// Package store keeps cards, review history and calibration templates in SQLite.
package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// MemoryDSN keeps everything in process memory for the lifetime of the Store.
const MemoryDSN = ":memory:"

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = stderrors.New("not found")

// Store represents a SQLite database connection for cards and calibration data.
type Store struct {
	db  *sql.DB
	dsn string
}

// New opens the database at dsn, enables foreign keys and runs migrations.
// An empty dsn means MemoryDSN.
func New(dsn string) (*Store, error) {
	return Open(context.Background(), dsn)
}

// Open is New with a context for the initial statements.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = MemoryDSN
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	// One connection: an in-memory database lives and dies with its connection, and
	// SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "enable foreign keys")
	}

	s := &Store{
		db:  db,
		dsn: dsn,
	}

	if err := s.runMigrations(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "run migrations")
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// DSN returns the data source the store was opened with.
func (s *Store) DSN() string {
	return s.dsn
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func affected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
