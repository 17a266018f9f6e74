// Package api provides the HTTP server and handlers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/studyshelf/studyshelf/internal/drive"
	"github.com/studyshelf/studyshelf/internal/drivecache"
	"github.com/studyshelf/studyshelf/internal/food"
	"github.com/studyshelf/studyshelf/internal/logging"
	"github.com/studyshelf/studyshelf/internal/metrics"
	"github.com/studyshelf/studyshelf/internal/topics"
)

// Server is the HTTP server.
type Server struct {
	cache  *drivecache.Cache
	topics *topics.Service
	foods  *food.Store
}

// NewServer creates a new server.
func NewServer(cache *drivecache.Cache, topicService *topics.Service, foods *food.Store) *Server {
	return &Server{
		cache:  cache,
		topics: topicService,
		foods:  foods,
	}
}

// Handler returns the HTTP handler with logging and metrics middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	// Drive endpoints
	mux.HandleFunc("GET /api/drive/structure", s.handleStructure)
	mux.HandleFunc("GET /api/drive/folder/{folderId}", s.handleFolderContents)
	mux.HandleFunc("GET /api/drive/file/html/{fileId}", s.handleFileHTML)
	mux.HandleFunc("POST /api/drive/invalidate-cache", s.handleInvalidateCache)
	mux.HandleFunc("POST /api/drive/refresh-cache", s.handleRefreshCache)
	mux.HandleFunc("GET /api/drive/search", s.handleSearch)

	// Food endpoints
	mux.HandleFunc("GET /api/foods", s.handleAllFoods)
	mux.HandleFunc("GET /api/foods/search", s.handleSearchFoods)
	mux.HandleFunc("DELETE /api/foods/{id}", s.handleDeleteFood)
	mux.HandleFunc("POST /api/foods/{foodId}/nutrients", s.handleFoodNutrients)

	return metrics.Middleware(logging.Middleware(mux))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": "1.0"})
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error body.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// driveStatus maps drive/cache errors to HTTP status codes.
func driveStatus(err error) int {
	switch {
	case errors.Is(err, drivecache.ErrCacheUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, drive.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, drive.ErrNotDocument):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
