// Package server provides the HTTP and WebSocket front end used by the flashcard UI.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ayusman/flashgesture/internal/app"
	"github.com/ayusman/flashgesture/internal/clock"
	"github.com/ayusman/flashgesture/internal/confirm"
	"github.com/ayusman/flashgesture/internal/flashcard"
	"github.com/ayusman/flashgesture/internal/gesture"
	"github.com/ayusman/flashgesture/internal/logger"
	"github.com/ayusman/flashgesture/internal/server/api"
)

// Config holds the server configuration.
type Config struct {
	StaticDir   string
	CORSOrigins []string

	// Cards enables the flashcard endpoints and gesture rating submission.
	Cards *flashcard.Service

	// App enables calibration, the gesture input toggle and live camera observations.
	App *app.App

	// Stream serves the App camera as MJPEG on /api/stream.
	Stream bool

	Engine     confirm.Config
	Classifier gesture.ClassifierConfig
	Clock      clock.Clock

	// OnRating is called after every gesture confirmation.
	OnRating func(gesture.Rating)
}

// Server represents the HTTP server for the flashcard application.
type Server struct {
	config     Config
	router     *chi.Mux
	classifier gesture.PoseClassifier
	log        *logger.Logger
	start      time.Time
	srv        *http.Server
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.Clock == nil {
		config.Clock = clock.System
	}

	s := &Server{
		config: config,
		router: chi.NewRouter(),
		log:    logger.Named("http"),
		start:  config.Clock.Now(),
	}
	if config.App != nil {
		s.classifier = config.App.Classifier()
	} else {
		s.classifier = gesture.NewClassifier(config.Classifier)
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	origins := s.config.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/gesture", s.handleGesture)

		if s.config.Cards != nil {
			api.NewCardHandler(s.config.Cards).Routes(r)
		}

		if s.config.App != nil {
			api.NewCalibrationHandler(s.config.App).Routes(r)
			r.Get("/gesture/input", s.handleInput)
			r.Post("/gesture/input", s.handleSetInput)
		}

		if s.config.Stream && s.config.App != nil {
			a := s.config.App
			r.Handle("/stream", NewStreamHandler(a.Camera(), func() string {
				return string(a.Last().Symbol)
			}))
		}
	})

	if s.config.StaticDir != "" {
		s.router.Handle("/*", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("http listening")
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}

type healthResponse struct {
	Status       string `json:"status"`
	Uptime       string `json:"uptime"`
	GestureInput bool   `json:"gestureInput"`
	Templates    int    `json:"templates"`
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status: "ok",
		Uptime: s.config.Clock.Since(s.start).String(),
	}
	if s.config.App != nil {
		resp.GestureInput = s.config.App.IsEnabled()
		resp.Templates = s.config.App.Templates().Len()
	}
	writeJSON(w, http.StatusOK, resp)
}

type inputRequest struct {
	Enabled bool `json:"enabled"`
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, inputRequest{Enabled: s.config.App.IsEnabled()})
}

// handleSetInput turns camera gesture input on or off, the same switch as the tray.
func (s *Server) handleSetInput(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	s.config.App.SetEnabled(req.Enabled)
	writeJSON(w, http.StatusOK, inputRequest{Enabled: s.config.App.IsEnabled()})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
