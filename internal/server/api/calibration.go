package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/flashgesture/internal/detector"
	"github.com/ayusman/flashgesture/internal/gesture"
	"github.com/ayusman/flashgesture/internal/logger"
	"github.com/ayusman/flashgesture/internal/store"
)

// Calibrator persists calibration templates and keeps the live matcher in sync.
type Calibrator interface {
	SaveTemplate(ctx context.Context, t *gesture.Template) error
	DeleteTemplate(ctx context.Context, id string) error
	Templates() *gesture.TemplateMatcher
}

// CalibrationHandler records user-specific poses for each symbol.
type CalibrationHandler struct {
	cal     Calibrator
	trainer *gesture.Trainer
	log     *logger.Logger
}

// NewCalibrationHandler creates a CalibrationHandler.
func NewCalibrationHandler(cal Calibrator) *CalibrationHandler {
	return &CalibrationHandler{
		cal:     cal,
		trainer: gesture.NewTrainer(),
		log:     logger.Named("api"),
	}
}

// Routes mounts the handler on r.
func (h *CalibrationHandler) Routes(r chi.Router) {
	r.Get("/calibration", h.list)
	r.Post("/calibration", h.create)
	r.Delete("/calibration/{id}", h.delete)
}

type calibrateRequest struct {
	Symbol    string                   `json:"symbol" validate:"required,oneof=THUMBS_UP THUMBS_DOWN THUMBS_SIDEWAYS OTHER"`
	Tolerance float64                  `json:"tolerance" validate:"gt=0"`
	Samples   []detector.HandLandmarks `json:"samples" validate:"min=1,max=100"`
}

type templateResponse struct {
	ID        string         `json:"id"`
	Symbol    gesture.Symbol `json:"symbol"`
	Tolerance float64        `json:"tolerance"`
	Samples   int            `json:"samples"`
}

type listTemplatesResponse struct {
	Templates []templateResponse `json:"templates"`
}

func toTemplateResponse(t *gesture.Template) templateResponse {
	return templateResponse{
		ID:        t.ID,
		Symbol:    t.Symbol,
		Tolerance: t.Tolerance,
		Samples:   t.Samples,
	}
}

func (h *CalibrationHandler) list(w http.ResponseWriter, r *http.Request) {
	templates := h.cal.Templates().List()
	resp := listTemplatesResponse{Templates: make([]templateResponse, 0, len(templates))}
	for _, t := range templates {
		resp.Templates = append(resp.Templates, toTemplateResponse(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CalibrationHandler) create(w http.ResponseWriter, r *http.Request) {
	req, err := decode[calibrateRequest](r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	t, err := h.trainer.Train("", gesture.Symbol(req.Symbol), req.Tolerance, req.Samples)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.cal.SaveTemplate(r.Context(), t); err != nil {
		h.log.Error().Err(err).Msg("save template")
		writeError(w, http.StatusInternalServerError, "failed to save template")
		return
	}

	h.log.Info().
		Str("template", t.ID).
		Str("symbol", string(t.Symbol)).
		Int("samples", t.Samples).
		Dur("took", time.Since(start)).
		Msg("template calibrated")
	writeJSON(w, http.StatusCreated, toTemplateResponse(t))
}

func (h *CalibrationHandler) delete(w http.ResponseWriter, r *http.Request) {
	err := h.cal.DeleteTemplate(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "template not found")
	case err != nil:
		h.log.Error().Err(err).Msg("delete template")
		writeError(w, http.StatusInternalServerError, "failed to delete template")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
