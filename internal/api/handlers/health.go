package handlers

import (
	"net/http"
)

type HealthHandler struct {
	Engine Engine
}

type healthResponse struct {
	Status        string `json:"status"`
	BatchInFlight bool   `json:"batch_in_flight"`
	Homes         int    `json:"homes"`
	Landmarks     int    `json:"landmarks"`
}

// Health is a liveness check that also reports whether routes are being
// recomputed.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	v := h.Engine.View()
	writeJSON(w, r, http.StatusOK, healthResponse{
		Status:        "ok",
		BatchInFlight: v.HomesDisabled,
		Homes:         len(v.Homes),
		Landmarks:     len(v.Landmarks),
	})
}
