package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/studyshelf/studyshelf/internal/food"
	"github.com/studyshelf/studyshelf/internal/logging"
)

// parseFields splits the comma-separated fields query parameter.
func parseFields(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			fields = append(fields, trimmed)
		}
	}
	return fields
}

// parsePagination reads limit and offset with sane bounds.
func parsePagination(r *http.Request, defaultLimit int) (limit, offset int) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err = strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// handleAllFoods lists food items with field selection and pagination.
func (s *Server) handleAllFoods(w http.ResponseWriter, r *http.Request) {
	fields := parseFields(r.URL.Query().Get("fields"))
	limit, offset := parsePagination(r, 100)

	items, err := s.foods.All(r.Context(), fields, limit, offset)
	if err != nil {
		logging.Error("failed to fetch food items", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch food items.")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// handleSearchFoods searches food items by name.
func (s *Server) handleSearchFoods(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "Query parameter is required.")
		return
	}
	fields := parseFields(r.URL.Query().Get("fields"))
	limit, offset := parsePagination(r, 10)

	items, err := s.foods.Search(r.Context(), query, fields, limit, offset)
	if err != nil {
		logging.Error("food search failed", zap.String("query", query), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to search food items.")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// handleDeleteFood deletes a food item by id.
func (s *Server) handleDeleteFood(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid food item ID.")
		return
	}

	deleted, err := s.foods.Delete(r.Context(), id)
	if err != nil {
		logging.Error("failed to delete food item", zap.Int("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to delete food item.")
		return
	}
	if deleted == nil {
		writeError(w, http.StatusNotFound, "Food item not found.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Food item deleted successfully.",
		"deleted": deleted,
	})
}

// nutrientsRequest is the body of POST /api/foods/{foodId}/nutrients.
type nutrientsRequest struct {
	Nutrients []string `json:"nutrients"`
}

// handleFoodNutrients returns selected nutrient values for one item.
func (s *Server) handleFoodNutrients(w http.ResponseWriter, r *http.Request) {
	foodID, err := strconv.Atoi(r.PathValue("foodId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid food item ID.")
		return
	}

	var req nutrientsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	data, err := s.foods.Nutrients(r.Context(), foodID, req.Nutrients)
	if err != nil {
		if errors.Is(err, food.ErrNoValidNutrients) {
			writeError(w, http.StatusBadRequest, "No valid nutrients provided.")
			return
		}
		logging.Error("failed to fetch nutrients", zap.Int("food_id", foodID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch nutrient data.")
		return
	}
	if data == nil {
		writeError(w, http.StatusNotFound, "Food item not found.")
		return
	}
	writeJSON(w, http.StatusOK, data)
}
