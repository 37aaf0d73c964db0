// Package api provides HTTP API handlers for the Odissi choreography system.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ayusman/odissi/internal/photo"
	"github.com/ayusman/odissi/internal/store"
)

// maxUploadBytes caps a single photo upload at 16 MB.
const maxUploadBytes = 16 << 20

// PhotoHandler handles HTTP requests for the photo library.
type PhotoHandler struct {
	library  *photo.Library
	repo     *store.PhotoRepository
	photoDir string
	onAdded  func(photo.Photo)
}

// NewPhotoHandler creates a new PhotoHandler. repo backs single-photo
// lookups and may be nil for an in-memory library; onAdded may be nil.
func NewPhotoHandler(library *photo.Library, repo *store.PhotoRepository, photoDir string, onAdded func(photo.Photo)) *PhotoHandler {
	return &PhotoHandler{
		library:  library,
		repo:     repo,
		photoDir: photoDir,
		onAdded:  onAdded,
	}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *PhotoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/photos")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		// Collection endpoint: /api/photos
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.upload(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	// Item endpoint: /api/photos/{id}
	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type photoResponse struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Position  int    `json:"position"`
	CreatedAt string `json:"created_at,omitempty"`
}

type listPhotosResponse struct {
	Photos []photoResponse `json:"photos"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toResponse converts a photo.Photo to a photoResponse. The URL points at the
// photo asset route, not the filesystem path.
func toResponse(p photo.Photo) photoResponse {
	return photoResponse{
		ID:       p.ID,
		URL:      "/photos/" + filepath.Base(p.Path),
		Position: p.Position,
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/photos and returns the library in position order.
func (h *PhotoHandler) list(w http.ResponseWriter, r *http.Request) {
	photos := h.library.Photos()

	response := listPhotosResponse{
		Photos: make([]photoResponse, 0, len(photos)),
	}
	for _, p := range photos {
		response.Photos = append(response.Photos, toResponse(p))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/photos/{id} and returns a single photo with its
// stored metadata.
func (h *PhotoHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	if h.repo == nil {
		writeError(w, http.StatusNotFound, "Photo not found")
		return
	}

	p, err := h.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Photo not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get photo")
		return
	}

	writeJSON(w, http.StatusOK, photoResponse{
		ID:        p.ID,
		URL:       "/photos/" + filepath.Base(p.Path),
		Position:  p.Position,
		CreatedAt: p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// upload handles POST /api/photos: a multipart upload with a "file" part.
// The file is saved under the photo directory and appended to the library.
func (h *PhotoHandler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file upload")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		writeError(w, http.StatusBadRequest, "Unsupported image type")
		return
	}

	if err := os.MkdirAll(h.photoDir, 0755); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to prepare photo directory")
		return
	}

	destPath := filepath.Join(h.photoDir, uuid.New().String()+ext)
	dest, err := os.Create(destPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save photo")
		return
	}

	if _, err := io.Copy(dest, file); err != nil {
		dest.Close()
		os.Remove(destPath)
		writeError(w, http.StatusInternalServerError, "Failed to save photo")
		return
	}
	dest.Close()

	p, err := h.library.Add(destPath)
	if err != nil {
		os.Remove(destPath)
		writeError(w, http.StatusInternalServerError, "Failed to add photo to library")
		return
	}

	if h.onAdded != nil {
		h.onAdded(p)
	}

	writeJSON(w, http.StatusCreated, toResponse(p))
}
