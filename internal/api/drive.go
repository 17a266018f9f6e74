package api

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/studyshelf/studyshelf/internal/logging"
)

// handleStructure serves the topic/subtopic/post view of the drive tree.
func (s *Server) handleStructure(w http.ResponseWriter, r *http.Request) {
	topicList, err := s.topics.List(r.Context())
	if err != nil {
		logging.Error("failed to fetch drive structure", zap.Error(err))
		writeError(w, driveStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, topicList)
}

// handleFolderContents serves one level of a folder's children.
func (s *Server) handleFolderContents(w http.ResponseWriter, r *http.Request) {
	folderID := r.PathValue("folderId")
	if folderID == "" {
		writeError(w, http.StatusBadRequest, "Folder ID is required.")
		return
	}

	contents, err := s.cache.FolderContents(r.Context(), folderID)
	if err != nil {
		logging.Error("failed to fetch folder contents",
			zap.String("folder_id", folderID), zap.Error(err))
		writeError(w, driveStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, contents)
}

// handleFileHTML serves a Google Doc exported as HTML.
func (s *Server) handleFileHTML(w http.ResponseWriter, r *http.Request) {
	fileID := r.PathValue("fileId")
	if fileID == "" {
		writeError(w, http.StatusBadRequest, "File ID is required.")
		return
	}

	content, err := s.cache.DocumentHTML(r.Context(), fileID)
	if err != nil {
		logging.Error("failed to export document",
			zap.String("file_id", fileID), zap.Error(err))
		writeError(w, driveStatus(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(content))
}

// handleInvalidateCache clears the structure cache.
func (s *Server) handleInvalidateCache(w http.ResponseWriter, r *http.Request) {
	s.cache.Invalidate()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Cache invalidated successfully."})
}

// handleRefreshCache rebuilds the full tree and clears the content cache.
func (s *Server) handleRefreshCache(w http.ResponseWriter, r *http.Request) {
	if err := s.cache.Refresh(r.Context()); err != nil {
		logging.Error("cache refresh failed", zap.Error(err))
		writeError(w, driveStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Cache refreshed successfully."})
}

// handleSearch searches file names in the cached tree. The cache is
// never populated on this path: an absent tree is a 503, distinct from a
// populated tree with no matches.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "Query parameter is required.")
		return
	}

	results, err := s.cache.Search(query)
	if err != nil {
		writeError(w, driveStatus(err), "Drive structure not available. Please try again later.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}
