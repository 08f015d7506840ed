package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/flashgesture/internal/flashcard"
	"github.com/ayusman/flashgesture/internal/gesture"
	"github.com/ayusman/flashgesture/internal/logger"
)

// CardHandler serves the flashcard endpoints.
type CardHandler struct {
	svc *flashcard.Service
	log *logger.Logger
}

// NewCardHandler creates a CardHandler on svc.
func NewCardHandler(svc *flashcard.Service) *CardHandler {
	return &CardHandler{svc: svc, log: logger.Named("api")}
}

// Routes mounts the handler on r.
func (h *CardHandler) Routes(r chi.Router) {
	r.Get("/cards", h.list)
	r.Post("/cards", h.create)
	r.Delete("/cards/{id}", h.delete)
	r.Get("/practice", h.practice)
	r.Post("/update", h.update)
	r.Get("/hint", h.hint)
	r.Get("/progress", h.progress)
	r.Get("/day", h.day)
	r.Post("/day/next", h.nextDay)
}

type createCardRequest struct {
	Front string   `json:"front" validate:"required,max=1000"`
	Back  string   `json:"back" validate:"required,max=1000"`
	Tags  []string `json:"tags" validate:"max=20,dive,max=50"`
}

type updateRequest struct {
	CardID string `json:"cardId" validate:"required"`
	Rating string `json:"rating" validate:"required"`
}

type listCardsResponse struct {
	Cards []*flashcard.Card `json:"cards"`
}

type practiceResponse struct {
	Day   int               `json:"day"`
	Cards []*flashcard.Card `json:"cards"`
}

type hintResponse struct {
	CardID string `json:"cardId"`
	Hint   string `json:"hint"`
}

type dayResponse struct {
	Day int `json:"day"`
}

func (h *CardHandler) list(w http.ResponseWriter, r *http.Request) {
	cards, err := h.svc.Cards(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listCardsResponse{Cards: cards})
}

func (h *CardHandler) create(w http.ResponseWriter, r *http.Request) {
	req, err := decode[createCardRequest](r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	card, err := h.svc.AddCard(r.Context(), req.Front, req.Back, req.Tags)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

func (h *CardHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCard(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CardHandler) practice(w http.ResponseWriter, r *http.Request) {
	day, err := h.svc.Day(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	cards, err := h.svc.PracticeOn(r.Context(), day)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, practiceResponse{Day: day, Cards: cards})
}

// update records a rating given with the buttons.
func (h *CardHandler) update(w http.ResponseWriter, r *http.Request) {
	req, err := decode[updateRequest](r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	review, err := h.svc.Rate(r.Context(), req.CardID, gesture.ParseRating(req.Rating), flashcard.SourceButton)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (h *CardHandler) hint(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("cardId")
	if id == "" {
		writeError(w, http.StatusBadRequest, "cardId is required")
		return
	}

	hint, err := h.svc.Hint(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hintResponse{CardID: id, Hint: hint})
}

func (h *CardHandler) progress(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Progress(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CardHandler) day(w http.ResponseWriter, r *http.Request) {
	day, err := h.svc.Day(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dayResponse{Day: day})
}

func (h *CardHandler) nextDay(w http.ResponseWriter, r *http.Request) {
	day, err := h.svc.AdvanceDay(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dayResponse{Day: day})
}

// fail maps service errors to a status. Unknown errors are logged and reported as 500.
func (h *CardHandler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, flashcard.ErrCardNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, flashcard.ErrInvalidRating), errors.Is(err, flashcard.ErrInvalidCard):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error().Err(err).Msg("card request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
