package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fabriclens/fabriclens/internal/apperr"
	"github.com/fabriclens/fabriclens/internal/session"
)

// Handler holds API route handlers over the exploration session.
type Handler struct {
	svc *session.Session
}

// NewHandler creates a new Handler.
func NewHandler(svc *session.Session) *Handler {
	return &Handler{svc: svc}
}

// Graph handles GET /api/graph: the current visible scene (filtered nodes
// and links with assigned coordinates, transform, minimap, particles).
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.LoadError(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("graph load failed, retry with POST /api/refresh"))
		return
	}
	if !h.svc.Loaded() {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("graph not loaded yet"))
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Frame())
}

// Stats handles GET /api/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats()
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("graph not loaded yet"))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Workspaces handles GET /api/workspaces.
func (h *Handler) Workspaces(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Workspaces()
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("graph not loaded yet"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"workspaces": list})
}

// Refresh handles POST /api/refresh: trigger a provider-side rebuild and
// reload on success. A failed refresh leaves the displayed graph untouched.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Refresh(r.Context()); err != nil {
		slog.Error("refresh failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("refresh failed"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

// SetLayout handles PUT /api/layout.
func (h *Handler) SetLayout(w http.ResponseWriter, r *http.Request) {
	var req LayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.svc.SetLayout(req.Mode); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"mode": req.Mode})
}

// SetSearch handles PUT /api/filters/search.
func (h *Handler) SetSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchFilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	h.svc.SetSearch(req.Text)
	w.WriteHeader(http.StatusNoContent)
}

// SetDimension handles PUT /api/filters/{dimension}.
func (h *Handler) SetDimension(w http.ResponseWriter, r *http.Request) {
	dimension := chi.URLParam(r, "dimension")
	var req DimensionFilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Key == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("key is required"))
		return
	}
	h.svc.SetFilterDimension(dimension, req.Key, req.Included)
	w.WriteHeader(http.StatusNoContent)
}

// ResetFilters handles POST /api/filters/reset.
func (h *Handler) ResetFilters(w http.ResponseWriter, r *http.Request) {
	h.svc.ResetFilters()
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	results := h.svc.Search(q)
	if results == nil {
		results = []session.Match{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// Connections handles GET /api/nodes/{id}/connections.
func (h *Handler) Connections(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	conns, err := h.svc.Connections(id)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrNoGraph):
			writeJSON(w, http.StatusServiceUnavailable, errorBody("graph not loaded yet"))
		default:
			slog.Error("connections failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, conns)
}

// Focus handles POST /api/nodes/{id}/focus: the single "focus node by id"
// entry point callable from the surrounding shell.
func (h *Handler) Focus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.FocusNode(id); err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Select handles POST /api/nodes/{id}/select.
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Select(id); err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearSelection handles POST /api/selection/clear (click on empty canvas).
func (h *Handler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	h.svc.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}

// Hover handles POST /api/nodes/{id}/hover and POST /api/hover/clear.
func (h *Handler) Hover(w http.ResponseWriter, r *http.Request) {
	h.svc.Hover(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// ClearHover handles POST /api/hover/clear.
func (h *Handler) ClearHover(w http.ResponseWriter, r *http.Request) {
	h.svc.Hover("")
	w.WriteHeader(http.StatusNoContent)
}

// Drag handles POST /api/nodes/{id}/drag.
func (h *Handler) Drag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req DragRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	var err error
	switch req.Phase {
	case "start":
		err = h.svc.DragStart(id)
	case "move":
		err = h.svc.DragMove(id, req.X, req.Y)
	case "end":
		err = h.svc.DragEnd(id)
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("phase must be start, move or end"))
		return
	}
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Fit handles POST /api/view/fit.
func (h *Handler) Fit(w http.ResponseWriter, r *http.Request) {
	h.svc.FitToView()
	w.WriteHeader(http.StatusNoContent)
}

// Resize handles POST /api/view/resize.
func (h *Handler) Resize(w http.ResponseWriter, r *http.Request) {
	var req ResizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Width <= 0 || req.Height <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("width and height must be positive"))
		return
	}
	h.svc.Resize(req.Width, req.Height)
	w.WriteHeader(http.StatusNoContent)
}

// Zoom handles POST /api/view/zoom.
func (h *Handler) Zoom(w http.ResponseWriter, r *http.Request) {
	var req ZoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	h.svc.StepZoom(req.Dir)
	w.WriteHeader(http.StatusNoContent)
}

// ToggleParticles handles POST /api/particles/toggle.
func (h *Handler) ToggleParticles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ToggleResponse{Enabled: h.svc.ToggleParticles()})
}

// ToggleLabels handles POST /api/labels/toggle.
func (h *Handler) ToggleLabels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ToggleResponse{Enabled: h.svc.ToggleLabels()})
}
