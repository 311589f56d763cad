package api

import (
	"how-far-is-it/internal/api/handlers"
	"how-far-is-it/internal/platform/metrics"
	"log/slog"
	"net/http"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(engine handlers.Engine, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	viewHandler := &handlers.ViewHandler{Engine: engine}
	landmarkHandler := &handlers.LandmarkHandler{Engine: engine}
	healthHandler := &handlers.HealthHandler{Engine: engine}

	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.Handle("GET /metrics", m.Handler())

	mux.HandleFunc("GET /view", viewHandler.View)
	mux.HandleFunc("POST /selection", viewHandler.Select)
	mux.HandleFunc("POST /homes/commit", viewHandler.CommitHome)
	mux.HandleFunc("POST /landmarks/commit", viewHandler.CommitLandmark)
	mux.HandleFunc("PUT /active-home", viewHandler.SetActiveHome)
	mux.HandleFunc("POST /refresh", viewHandler.Refresh)

	mux.HandleFunc("PATCH /landmarks/{id}", landmarkHandler.Rename)
	mux.HandleFunc("DELETE /landmarks", landmarkHandler.RemoveByName)
	mux.HandleFunc("DELETE /landmarks/{id}", landmarkHandler.RemoveByID)

	return loggingMiddleware(logger, m, mux)
}
