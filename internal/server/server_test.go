package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/flashgesture/internal/app"
	"github.com/ayusman/flashgesture/internal/gesture"
)

func serve(s http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	s := New(Config{})

	t.Run("returns 200 with JSON response", func(t *testing.T) {
		rec := serve(s, http.MethodGet, "/api/health", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var resp healthResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "ok", resp.Status)
		assert.NotEmpty(t, resp.Uptime)
		assert.False(t, resp.GestureInput)
	})

	t.Run("only allows GET method", func(t *testing.T) {
		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch} {
			rec := serve(s, method, "/api/health", nil)
			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		}
	})
}

func TestServer_NotFound(t *testing.T) {
	s := New(Config{})

	assert.Equal(t, http.StatusNotFound, serve(s, http.MethodGet, "/api/nonexistent", nil).Code)
	assert.Equal(t, http.StatusNotFound, serve(s, http.MethodGet, "/api/cards", nil).Code, "cards need a service")
	assert.Equal(t, http.StatusNotFound, serve(s, http.MethodGet, "/api/calibration", nil).Code, "calibration needs an app")
	assert.Equal(t, http.StatusNotFound, serve(s, http.MethodGet, "/", nil).Code, "no static dir")
}

func TestServer_StaticFiles(t *testing.T) {
	dir := t.TempDir()
	index := "<html><body>cards</body></html>"
	css := "body { color: red; }"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(index), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "style.css"), []byte(css), 0o644))

	s := New(Config{StaticDir: dir})

	rec := serve(s, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, index, rec.Body.String())

	rec = serve(s, http.MethodGet, "/style.css", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, css, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, serve(s, http.MethodGet, "/missing.html", nil).Code)
}

func TestServer_CORS(t *testing.T) {
	s := New(Config{CORSOrigins: []string{"chrome-extension://abc"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/health", nil)
	req.Header.Set("Origin", "chrome-extension://abc")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, "chrome-extension://abc", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_GestureInput(t *testing.T) {
	a := app.New(app.Config{Classifier: gesture.DefaultClassifierConfig()})
	s := New(Config{App: a})

	rec := serve(s, http.MethodGet, "/api/gesture/input", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"enabled":false}`, rec.Body.String())

	rec = serve(s, http.MethodPost, "/api/gesture/input", []byte(`{"enabled":true}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"enabled":true}`, rec.Body.String())
	assert.True(t, a.IsEnabled())

	rec = serve(s, http.MethodPost, "/api/gesture/input", []byte(`nope`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(s, http.MethodGet, "/api/calibration", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"templates":[]}`, rec.Body.String())

	var health healthResponse
	require.NoError(t, json.NewDecoder(serve(s, http.MethodGet, "/api/health", nil).Body).Decode(&health))
	assert.True(t, health.GestureInput)
}

func TestNew(t *testing.T) {
	cfg := Config{StaticDir: "/some/path"}
	s := New(cfg)
	require.NotNil(t, s)
	assert.Equal(t, cfg.StaticDir, s.config.StaticDir)
	assert.NotNil(t, s.classifier)

	var _ http.Handler = s
}
