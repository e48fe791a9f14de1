package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pattarin/treebank/internal/treeservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *treeservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Analysis pipeline.
	r.Post("/analyze", h.AnalyzeTree)

	// Portfolio.
	r.Get("/trees", h.ListTrees)
	r.Post("/trees", h.CreateTree)
	r.Get("/trees/{id}", h.GetTree)
	r.Post("/trees/{id}/care-logs", h.AddCareLog)
	r.Get("/statistics", h.Statistics)
	r.Get("/export", h.Export)

	// Species knowledge base.
	r.Get("/species", h.ListSpecies)
	r.Post("/species", h.CreateSpecies)
	r.Get("/species/native", h.NativeSpecies)
	r.Get("/species/resolve", h.ResolveSpecies)

	// Care chat.
	r.Post("/chat", h.Chat)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
