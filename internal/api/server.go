// internal/api/server.go
//
// HTTP surface.
//
// Context
// -------
// One Server owns the stores and the read cache and mounts every route.
// The /api/preorder/{identifier} path is shared: GET reads settings for
// a shop domain (public, storefront-facing), DELETE removes a record by
// its id (admin, session-gated).

package api

import (
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanizio/preorder/internal/config"
	"github.com/yanizio/preorder/internal/middleware"
	"github.com/yanizio/preorder/internal/preorder"
	"github.com/yanizio/preorder/internal/requestinfo"
	"github.com/yanizio/preorder/internal/shop"
)

// shopDomainPattern accepts myshopify-style hostnames and rejects
// anything that could not be a shop (record ids are uuids, which fail
// this pattern because of their role reversal on the shared route).
var shopDomainPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]*\.[a-z]{2,}$`)

// Server bundles the dependencies the handlers need.
type Server struct {
	cfg      *config.Config
	settings *preorder.Store
	cache    *preorder.Cache
	shops    *shop.Store
}

// NewServer wires stores into a Server.  The cache fronts public reads
// only; admin reads always hit the database.
func NewServer(cfg *config.Config, settings *preorder.Store, cache *preorder.Cache, shops *shop.Store) *Server {
	return &Server{cfg: cfg, settings: settings, cache: cache, shops: shops}
}

// Router assembles the chi router with the full middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(requestinfo.Enrich)
	r.Use(middleware.Security)

	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/storefront-script.js", s.handleStorefrontScript)

	r.Get("/auth", s.handleAuthBegin)
	r.Get("/auth/callback", s.handleAuthCallback)

	r.Route("/api", func(r chi.Router) {
		r.Route("/preorder", func(r chi.Router) {
			r.Get("/{identifier}", s.handlePublicRead)
			r.With(s.RequireSession).Delete("/{identifier}", s.handleDelete)
			r.With(s.RequireSession).Post("/save", s.handleSave)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.RequireSession)
			r.Get("/preferences", s.handleGetPreferences)
			r.Put("/preferences", s.handlePutPreferences)
			r.Get("/dashboard", s.handleDashboard)
		})

		r.Post("/webhooks", s.handleWebhook)
		r.Get("/webhooks", func(w http.ResponseWriter, _ *http.Request) {
			// Shopify probes webhook endpoints with GET during setup.
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/cart/validate", s.handleCartValidate)
	})

	return r
}
