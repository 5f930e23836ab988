// Package http exposes the bootstrap catalog over a read-only HTTP API.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/artpar/docbase/adapters/metrics"
	"github.com/artpar/docbase/core/catalog"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// CollectionSummary is one entry of the collection listing.
type CollectionSummary struct {
	ID                  string          `json:"_id"`
	Storage             catalog.Storage `json:"storage"`
	DocumentsHaveOwners bool            `json:"documentsHaveOwners"`
}

// ErrorBody is the JSON body of an error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// CatalogHandler serves the catalog and the required permissions.
type CatalogHandler struct {
	catalog     catalog.Catalog
	permissions []string
	logger      zerolog.Logger
	metrics     *metrics.Collector
}

// HandlerOption configures a CatalogHandler.
type HandlerOption func(*CatalogHandler)

// WithMetrics records request metrics in c and serves them on /metrics.
func WithMetrics(c *metrics.Collector) HandlerOption {
	return func(h *CatalogHandler) {
		h.metrics = c
	}
}

// NewCatalogHandler creates a handler over a built catalog.
func NewCatalogHandler(cat catalog.Catalog, permissions []string, logger zerolog.Logger, opts ...HandlerOption) *CatalogHandler {
	h := &CatalogHandler{
		catalog:     cat,
		permissions: permissions,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns a router with all catalog routes.
func (h *CatalogHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Get("/collections", h.listCollections)
	r.Get("/collections/{id}", h.getCollection)
	r.Get("/permissions", h.listPermissions)
	if h.metrics != nil {
		r.Handle("/metrics", h.metrics.Handler())
	}
	return r
}

// listCollections handles GET /collections
func (h *CatalogHandler) listCollections(w http.ResponseWriter, r *http.Request) {
	summaries := make([]CollectionSummary, 0, len(h.catalog))
	for _, col := range h.catalog {
		summaries = append(summaries, CollectionSummary{
			ID:                  col.ID,
			Storage:             col.Storage,
			DocumentsHaveOwners: col.DocumentsHaveOwners,
		})
	}
	h.writeJSON(w, http.StatusOK, summaries)
}

// getCollection handles GET /collections/{id}
func (h *CatalogHandler) getCollection(w http.ResponseWriter, r *http.Request) {
	col, err := h.catalog.Get(chi.URLParam(r, "id"))
	if errors.Is(err, catalog.ErrUnknownCollection) {
		h.writeJSON(w, http.StatusNotFound, ErrorBody{Error: err.Error()})
		return
	}
	h.writeJSON(w, http.StatusOK, col)
}

// listPermissions handles GET /permissions
func (h *CatalogHandler) listPermissions(w http.ResponseWriter, r *http.Request) {
	perms := h.permissions
	if perms == nil {
		perms = []string{}
	}
	h.writeJSON(w, http.StatusOK, perms)
}

func (h *CatalogHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error().Err(err).Msg("write response")
	}
}

func (h *CatalogHandler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.metrics != nil {
			h.metrics.RequestsInFlight.Inc()
			defer h.metrics.RequestsInFlight.Dec()
		}

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start)

		if h.metrics != nil {
			h.metrics.Observe(r.Method, routePattern(r), ww.Status(), elapsed)
		}
		h.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", elapsed).
			Msg("request")
	})
}

// routePattern returns the matched chi route, or "unmatched" for requests
// no route served.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
