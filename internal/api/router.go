package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/clawmarks/internal/markservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *markservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Trails.
	r.Get("/trails", h.ListTrails)
	r.Post("/trails", h.CreateTrail)
	r.Get("/trails/{id}", h.GetTrail)
	r.Post("/trails/{id}/archive", h.ArchiveTrail)
	r.Delete("/trails/{id}", h.DeleteTrail)

	// Marks.
	r.Get("/marks", h.ListMarks)
	r.Post("/marks", h.AddMark)
	r.Get("/marks/{id}", h.GetMark)
	r.Patch("/marks/{id}", h.UpdateMark)
	r.Delete("/marks/{id}", h.DeleteMark)

	// Graph edges.
	r.Post("/marks/{id}/links", h.LinkMarks)
	r.Delete("/marks/{id}/links/{target}", h.UnlinkMarks)
	r.Get("/marks/{id}/references", h.GetReferences)

	// Tags.
	r.Post("/marks/{id}/tags", h.AddTag)
	r.Delete("/marks/{id}/tags/{tag}", h.RemoveTag)
	r.Get("/tags", h.ListTags)

	// Search.
	r.Get("/search", h.Search)

	// Diagnostics.
	r.Get("/status", h.Status)
	r.Post("/reload", h.Reload)

	// SSE endpoint (protected by the same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
