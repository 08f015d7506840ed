package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/flashgesture/internal/flashcard"
	"github.com/ayusman/flashgesture/internal/gesture"
	"github.com/ayusman/flashgesture/internal/store"
)

func newCardRouter(t *testing.T) (http.Handler, *flashcard.Service) {
	t.Helper()
	s, err := store.New(store.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	svc := flashcard.NewService(s)
	r := chi.NewRouter()
	NewCardHandler(svc).Routes(r)
	return r, svc
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestCardHandler_Create(t *testing.T) {
	h, _ := newCardRouter(t)

	rec := do(t, h, http.MethodPost, "/cards", `{"front":"hola","back":"hello","tags":["es"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	card := decodeBody[flashcard.Card](t, rec)
	assert.NotEmpty(t, card.ID)
	assert.Equal(t, "hola", card.Front)
	assert.Equal(t, 0, card.Bucket)

	rec = do(t, h, http.MethodGet, "/cards", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[listCardsResponse](t, rec)
	require.Len(t, list.Cards, 1)
	assert.Equal(t, card.ID, list.Cards[0].ID)
}

func TestCardHandler_CreateValidation(t *testing.T) {
	h, _ := newCardRouter(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "missing front", body: `{"back":"hello"}`, want: "front is required"},
		{name: "missing back", body: `{"front":"hola"}`, want: "back is required"},
		{name: "empty body", body: "", want: "request body is empty"},
		{name: "bad json", body: `{"front":`, want: "invalid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/cards", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeBody[errorResponse](t, rec)
			assert.Contains(t, resp.Error, tt.want)
		})
	}

	rec := do(t, h, http.MethodPost, "/cards", `{"front":"   ","back":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "blank after trimming")
}

func TestCardHandler_PracticeUpdateFlow(t *testing.T) {
	h, svc := newCardRouter(t)
	ctx := context.Background()

	card, err := svc.AddCard(ctx, "der Hund", "the dog", nil)
	require.NoError(t, err)

	rec := do(t, h, http.MethodGet, "/practice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	practice := decodeBody[practiceResponse](t, rec)
	assert.Equal(t, 0, practice.Day)
	require.Len(t, practice.Cards, 1)

	rec = do(t, h, http.MethodPost, "/update", `{"cardId":"`+card.ID+`","rating":"easy"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	review := decodeBody[flashcard.Review](t, rec)
	assert.Equal(t, gesture.RatingEasy, review.Rating)
	assert.Equal(t, 1, review.ToBucket)
	assert.Equal(t, flashcard.SourceButton, review.Source)

	rec = do(t, h, http.MethodPost, "/day/next", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeBody[dayResponse](t, rec).Day)

	rec = do(t, h, http.MethodGet, "/practice", "")
	practice = decodeBody[practiceResponse](t, rec)
	assert.Equal(t, 1, practice.Day)
	assert.Empty(t, practice.Cards, "bucket 1 is not due on day 1")

	rec = do(t, h, http.MethodGet, "/day", "")
	assert.Equal(t, 1, decodeBody[dayResponse](t, rec).Day)

	rec = do(t, h, http.MethodGet, "/progress", "")
	require.Equal(t, http.StatusOK, rec.Code)
	progress := decodeBody[flashcard.Progress](t, rec)
	assert.Equal(t, 1, progress.TotalCards)
	assert.InDelta(t, 1.0, progress.Accuracy, 1e-9)
}

func TestCardHandler_UpdateErrors(t *testing.T) {
	h, svc := newCardRouter(t)
	card, err := svc.AddCard(context.Background(), "a", "b", nil)
	require.NoError(t, err)

	rec := do(t, h, http.MethodPost, "/update", `{"cardId":"`+card.ID+`","rating":"NONE"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/update", `{"cardId":"missing","rating":"EASY"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/update", `{"rating":"EASY"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCardHandler_Hint(t *testing.T) {
	h, svc := newCardRouter(t)
	card, err := svc.AddCard(context.Background(), "el gato", "the cat", nil)
	require.NoError(t, err)

	rec := do(t, h, http.MethodGet, "/hint?cardId="+card.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[hintResponse](t, rec)
	assert.Equal(t, card.ID, resp.CardID)
	assert.Equal(t, flashcard.Hint("the cat"), resp.Hint)

	rec = do(t, h, http.MethodGet, "/hint", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/hint?cardId=nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCardHandler_Delete(t *testing.T) {
	h, svc := newCardRouter(t)
	card, err := svc.AddCard(context.Background(), "a", "b", nil)
	require.NoError(t, err)

	rec := do(t, h, http.MethodDelete, "/cards/"+card.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodDelete, "/cards/"+card.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCardHandler_MethodNotAllowed(t *testing.T) {
	h, _ := newCardRouter(t)
	rec := do(t, h, http.MethodPut, "/cards", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
