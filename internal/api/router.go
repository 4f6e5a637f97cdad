// Package api implements the exploration REST API using chi.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fabriclens/fabriclens/internal/session"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events for frame streaming.
func NewRouter(svc *session.Session, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	// Graph data.
	r.Get("/graph", h.Graph)
	r.Get("/stats", h.Stats)
	r.Get("/workspaces", h.Workspaces)
	r.Post("/refresh", h.Refresh)

	// Layout.
	r.Put("/layout", h.SetLayout)

	// Filters.
	r.Put("/filters/search", h.SetSearch)
	r.Post("/filters/reset", h.ResetFilters)
	r.Put("/filters/{dimension}", h.SetDimension)

	// Search and node details.
	r.Get("/search", h.Search)
	r.Get("/nodes/{id}/connections", h.Connections)

	// Interaction.
	r.Post("/nodes/{id}/focus", h.Focus)
	r.Post("/nodes/{id}/select", h.Select)
	r.Post("/nodes/{id}/hover", h.Hover)
	r.Post("/nodes/{id}/drag", h.Drag)
	r.Post("/selection/clear", h.ClearSelection)
	r.Post("/hover/clear", h.ClearHover)

	// Viewport.
	r.Post("/view/fit", h.Fit)
	r.Post("/view/resize", h.Resize)
	r.Post("/view/zoom", h.Zoom)

	// Feature toggles.
	r.Post("/particles/toggle", h.ToggleParticles)
	r.Post("/labels/toggle", h.ToggleLabels)

	// SSE frame stream.
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
