package handlers

import (
	"how-far-is-it/internal/api/dto"
	"net/http"
	"strings"
)

type LandmarkHandler struct {
	Engine Engine
}

// Rename changes a landmark's label. Routes are left as they are.
func (h *LandmarkHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req dto.RenameLandmarkRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.Engine.RenameLandmark(r.Context(), id, strings.TrimSpace(req.Name)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toViewResponse(h.Engine.View()))
}

// RemoveByName removes every landmark carrying the name query parameter.
func (h *LandmarkHandler) RemoveByName(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("name") {
		writeError(w, r, http.StatusBadRequest, "name query parameter is required")
		return
	}

	n := h.Engine.RemoveLandmark(r.Context(), q.Get("name"))
	writeJSON(w, r, http.StatusOK, dto.RemoveLandmarksResponse{Removed: n})
}

func (h *LandmarkHandler) RemoveByID(w http.ResponseWriter, r *http.Request) {
	if err := h.Engine.RemoveLandmarkByID(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.RemoveLandmarksResponse{Removed: 1})
}
