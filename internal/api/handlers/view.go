package handlers

import (
	"how-far-is-it/internal/api/dto"
	"how-far-is-it/internal/domain"
	"how-far-is-it/internal/services"
	"net/http"
	"strings"
)

type ViewHandler struct {
	Engine Engine
}

func toViewResponse(v services.View) dto.ViewResponse {
	res := dto.ViewResponse{
		Homes:         make([]dto.HomeResponse, 0, len(v.Homes)),
		ActiveHome:    v.ActiveHome,
		Landmarks:     make([]dto.LandmarkResponse, 0, len(v.Landmarks)),
		HomesDisabled: v.HomesDisabled,
		CanCommit:     v.CanCommit,
		ClearInput:    v.ClearInput,
		LastError:     v.LastError,
	}

	for _, h := range v.Homes {
		res.Homes = append(res.Homes, dto.HomeResponse{
			Address: h.Address,
			Lat:     h.Point.Lat,
			Lng:     h.Point.Lng,
		})
	}

	for _, l := range v.Landmarks {
		lr := dto.LandmarkResponse{
			ID:   l.ID,
			Name: l.Name,
			Lat:  l.Point.Lat,
			Lng:  l.Point.Lng,
		}
		if l.Route != nil {
			lr.DurationText = l.Route.DurationText
			lr.DistanceText = l.Route.DistanceText
			lr.HasRoute = true
		}
		res.Landmarks = append(res.Landmarks, lr)
	}

	if v.Pending != nil {
		res.Pending = &dto.PendingResponse{
			Address: v.Pending.Address,
			Lat:     v.Pending.Point.Lat,
			Lng:     v.Pending.Point.Lng,
		}
	}

	return res
}

// View returns the current view model.
func (h *ViewHandler) View(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, toViewResponse(h.Engine.View()))
}

// Select records a place-selection event as the pending selection.
func (h *ViewHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req dto.SelectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sel := domain.PlaceSelection{
		FormattedAddress: strings.TrimSpace(req.FormattedAddress),
		Point:            domain.GeoPoint{Lat: req.Lat, Lng: req.Lng},
	}
	if err := h.Engine.SelectPlace(r.Context(), sel); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, r, http.StatusOK, toViewResponse(h.Engine.View()))
}

// CommitHome and CommitLandmark are only enabled while a selection is
// pending; the check here keeps a stray request from reaching the engine.
func (h *ViewHandler) CommitHome(w http.ResponseWriter, r *http.Request) {
	if !h.Engine.CanCommit() {
		writeError(w, r, http.StatusConflict, services.ErrNoPendingSelection.Error())
		return
	}
	if _, err := h.Engine.CommitHome(r.Context()); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toViewResponse(h.Engine.View()))
}

func (h *ViewHandler) CommitLandmark(w http.ResponseWriter, r *http.Request) {
	if !h.Engine.CanCommit() {
		writeError(w, r, http.StatusConflict, services.ErrNoPendingSelection.Error())
		return
	}
	if _, err := h.Engine.CommitLandmark(r.Context()); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toViewResponse(h.Engine.View()))
}

func (h *ViewHandler) SetActiveHome(w http.ResponseWriter, r *http.Request) {
	var req dto.ActiveHomeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	address := strings.TrimSpace(req.Address)
	if address == "" {
		writeError(w, r, http.StatusBadRequest, "address is required")
		return
	}

	if err := h.Engine.SetActiveHome(r.Context(), address); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toViewResponse(h.Engine.View()))
}

// Refresh recomputes routes for the active home, superseding any batch
// in flight.
func (h *ViewHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.Engine.Refresh(r.Context()); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusAccepted, toViewResponse(h.Engine.View()))
}
