package app

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/ayusman/flashgesture/internal/detector"
	"github.com/ayusman/flashgesture/internal/gesture"
	"github.com/ayusman/flashgesture/internal/store"
)

// ErrNoStore is returned by template operations when the App has no store.
var ErrNoStore = errors.New("no store configured")

// LoadTemplates replaces the matcher's templates with those in the store.
// Rows that fail to decode are skipped.
func (a *App) LoadTemplates(ctx context.Context) error {
	if a.config.Store == nil {
		return nil
	}

	rows, err := a.config.Store.Templates().List(ctx)
	if err != nil {
		return err
	}

	templates := make([]*gesture.Template, 0, len(rows))
	for _, row := range rows {
		t, err := fromRow(row)
		if err != nil {
			a.log.Warn().Err(err).Str("template", row.ID).Msg("skip template")
			continue
		}
		templates = append(templates, t)
	}
	a.templates.SetTemplates(templates)

	a.log.Info().Int("count", a.templates.Len()).Msg("calibration templates loaded")
	return nil
}

// SaveTemplate stores t and starts matching against it. An empty ID is assigned by the store.
func (a *App) SaveTemplate(ctx context.Context, t *gesture.Template) error {
	if a.config.Store == nil {
		return ErrNoStore
	}

	landmarks, err := json.Marshal(t.Landmarks)
	if err != nil {
		return errors.Wrap(err, "encode landmarks")
	}

	row := &store.Template{
		ID:        t.ID,
		Symbol:    string(t.Symbol),
		Tolerance: t.Tolerance,
		Samples:   t.Samples,
		Landmarks: landmarks,
	}
	if err := a.config.Store.Templates().Create(ctx, row); err != nil {
		return err
	}

	t.ID = row.ID
	a.templates.AddTemplate(t)
	return nil
}

// DeleteTemplate removes a template from the store and the matcher.
func (a *App) DeleteTemplate(ctx context.Context, id string) error {
	if a.config.Store == nil {
		return ErrNoStore
	}
	if err := a.config.Store.Templates().Delete(ctx, id); err != nil {
		return err
	}
	a.templates.RemoveTemplate(id)
	return nil
}

func fromRow(row *store.Template) (*gesture.Template, error) {
	symbol := gesture.Symbol(row.Symbol)
	if !symbol.Valid() {
		return nil, errors.Errorf("unknown symbol %q", row.Symbol)
	}

	var points []detector.Point3D
	if err := json.Unmarshal(row.Landmarks, &points); err != nil {
		return nil, errors.Wrap(err, "decode landmarks")
	}
	if len(points) != detector.NumLandmarks {
		return nil, errors.Errorf("template has %d landmarks", len(points))
	}

	return &gesture.Template{
		ID:        row.ID,
		Symbol:    symbol,
		Landmarks: points,
		Tolerance: row.Tolerance,
		Samples:   row.Samples,
	}, nil
}
