// Package server provides the HTTP server for the Odissi choreography system.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/odissi/internal/capture"
	"github.com/ayusman/odissi/internal/photo"
	"github.com/ayusman/odissi/internal/server/api"
	"github.com/ayusman/odissi/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	PhotoDir  string
	Library   *photo.Library
	Photos    *store.PhotoRepository
	Camera    capture.Camera
	Hub       *FrameHub

	// OnPhotoAdded is invoked after an upload lands in the library, letting
	// the engine grow the photo particle field.
	OnPhotoAdded func(photo.Photo)
}

// Server represents the HTTP server for the Odissi application.
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

	// Register the photo API if a library is configured
	if s.config.Library != nil {
		photoHandler := api.NewPhotoHandler(s.config.Library, s.config.Photos, s.config.PhotoDir, s.config.OnPhotoAdded)
		s.mux.Handle("/api/photos", photoHandler)
		s.mux.Handle("/api/photos/", photoHandler)
	}

	// Serve the uploaded photo assets themselves
	if s.config.PhotoDir != "" {
		fs := http.FileServer(http.Dir(s.config.PhotoDir))
		s.mux.Handle("/photos/", http.StripPrefix("/photos/", fs))
	}

	// Register camera preview endpoint if a camera is configured
	if s.config.Camera != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Camera))
	}

	// Register the frame feed WebSocket endpoint
	if s.config.Hub != nil {
		s.mux.Handle("/api/frames", s.config.Hub)
	}

	// Serve static files if StaticDir is configured
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

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
