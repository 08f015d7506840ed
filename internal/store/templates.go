package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Template is a stored calibration pose. Landmarks hold the normalized points as JSON.
type Template struct {
	ID        string
	Symbol    string
	Tolerance float64
	Samples   int
	Landmarks json.RawMessage
	CreatedAt time.Time
}

// TemplateRepository provides CRUD operations for calibration templates.
type TemplateRepository struct {
	db *sql.DB
}

// Templates returns the calibration template repository for this store.
func (s *Store) Templates() *TemplateRepository {
	return &TemplateRepository{db: s.db}
}

// Create inserts a template. An empty ID is filled with a new UUID.
func (r *TemplateRepository) Create(ctx context.Context, t *Template) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO calibration_templates (id, symbol, tolerance, samples, landmarks, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Symbol, t.Tolerance, t.Samples, string(t.Landmarks), t.CreatedAt,
	)
	return errors.Wrap(err, "insert template")
}

// List returns all templates in creation order.
func (r *TemplateRepository) List(ctx context.Context) ([]*Template, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, symbol, tolerance, samples, landmarks, created_at
		 FROM calibration_templates ORDER BY created_at, rowid`,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list templates")
	}
	defer rows.Close()

	var templates []*Template
	for rows.Next() {
		t := &Template{}
		var landmarks string
		if err := rows.Scan(&t.ID, &t.Symbol, &t.Tolerance, &t.Samples, &landmarks, &t.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan template")
		}
		t.Landmarks = json.RawMessage(landmarks)
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list templates")
	}
	return templates, nil
}

// Delete removes a template by its ID.
func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM calibration_templates WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete template")
	}
	return affected(result)
}
