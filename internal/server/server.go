// Package server exposes the simulation over HTTP: a JSON API, an MJPEG
// camera preview and a websocket stream of point-cloud frames.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/morph"
	"github.com/ayusman/mudra/internal/server/api"
)

// shutdownTimeout bounds how long Serve waits for open requests on exit.
const shutdownTimeout = 5 * time.Second

// Controller is everything the server needs from the application.
type Controller interface {
	api.Controller
	Preview() []byte
	Subscribe() (<-chan morph.Frame, func())
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	App       Controller
	Logger    zerolog.Logger
}

// Server is the HTTP front of the application.
type Server struct {
	config Config
	logger zerolog.Logger
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		logger: config.Logger.With().Str("component", "server").Logger(),
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.Handle("/api/shapes", api.ShapesHandler{})

	if ctl := s.config.App; ctl != nil {
		s.mux.Handle("/api/state", api.NewStateHandler(ctl))
		s.mux.Handle("/api/selection", api.NewSelectionHandler(ctl))
		s.mux.Handle("/api/signal", api.NewSignalHandler(ctl))
		s.mux.Handle("/api/tracking/", api.NewTrackingHandler(ctl))

		events := api.NewEventsHandler(ctl)
		s.mux.Handle("/api/events", events)
		s.mux.Handle("/api/events/", events)
		s.mux.Handle("/api/hooks", api.NewHooksHandler(ctl))

		s.mux.Handle("/api/stream", NewStreamHandler(ctl))
		s.mux.Handle("/api/frames", NewFramesHandler(ctl, ctl, s.logger))
	}

	if s.config.StaticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.App != nil {
		response["tracking"] = s.config.App.Tracking()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// Serve listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

var _ Controller = (*app.App)(nil)
