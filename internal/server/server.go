// Package server provides the HTTP surface of the distortion pipeline:
// health, field stats, live hand state over WebSocket, an MJPEG stream of
// the rendered output, and the preset and snapshot APIs.
package server

import (
	"encoding/json"
	"image"
	"net/http"
	"time"

	"github.com/felice68russo-ops/Suspended-Reality/internal/config"
	"github.com/felice68russo-ops/Suspended-Reality/internal/field"
	"github.com/felice68russo-ops/Suspended-Reality/internal/gesture"
	"github.com/felice68russo-ops/Suspended-Reality/internal/server/api"
	"github.com/felice68russo-ops/Suspended-Reality/internal/store"
)

// Pipeline is the engine surface the server reads from and tunes.
type Pipeline interface {
	// LatestFrame returns the most recently rendered frame, or nil before
	// the first tick. The image must not be mutated.
	LatestFrame() *image.RGBA
	// LatestHands returns the engine time and per-slot hand state of the
	// most recent tick.
	LatestHands() (float64, [gesture.NumSlots]gesture.HandPoint)
	// FieldStats summarizes the accumulation field.
	FieldStats() field.Stats
	// CurrentParams returns the active tuning knobs.
	CurrentParams() config.Config
	// ApplyParams replaces the active tuning knobs at the next tick.
	ApplyParams(config.Config)
}

// Config holds the server configuration.
type Config struct {
	StaticDir   string
	SnapshotDir string
	Store       *store.Store
	Pipeline    Pipeline
}

// Server represents the HTTP server.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Pipeline != nil {
		s.mux.HandleFunc("/api/field", s.handleField)
		s.mux.Handle("/api/config", api.NewConfigHandler(s.config.Pipeline))
		s.mux.Handle("/api/hands", NewHandsHandler(s.config.Pipeline))
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Pipeline))
	}

	if s.config.Store != nil {
		presetHandler := api.NewPresetHandler(s.config.Store, s.config.Pipeline)
		s.mux.Handle("/api/presets", presetHandler)
		s.mux.Handle("/api/presets/", presetHandler)

		if s.config.Pipeline != nil {
			snapshotHandler := api.NewSnapshotHandler(s.config.Store, s.config.Pipeline, s.config.SnapshotDir)
			s.mux.Handle("/api/snapshots", snapshotHandler)
			s.mux.Handle("/api/snapshots/", snapshotHandler)
		}
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// handleField handles GET requests to /api/field.
func (s *Server) handleField(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats := s.config.Pipeline.FieldStats()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"width":          stats.Width,
		"height":         stats.Height,
		"mean_intensity": stats.MeanIntensity,
		"max_intensity":  stats.MaxIntensity,
		"active_cells":   stats.ActiveCells,
	}); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
