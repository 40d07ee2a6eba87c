// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the BadgePress API.
// Handlers are grouped by concern (templates, assets, designer, badges,
// events) and receive their dependencies through the handler struct.
// Everything speaks JSON except the preview and batch endpoints, which
// return image and document bytes directly.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"badgepress/internal/batch"
	"badgepress/internal/cache"
	"badgepress/internal/designer"
	"badgepress/internal/metrics"
	"badgepress/internal/render"
	"badgepress/internal/storage"
	"badgepress/internal/store"
)

// maxJSONBody caps JSON request bodies. A badge document with a few
// hundred elements stays well under a megabyte.
const maxJSONBody = 1 << 20

// API groups all BadgePress HTTP handlers and their dependencies.
type API struct {
	templates   *store.TemplateStore
	events      *store.EventStore
	registrants *store.RegistrantStore
	assets      *store.AssetStore
	printLogs   *store.PrintLogStore
	sessions    *designer.Manager
	generator   *batch.Generator
	storage     *storage.Client
	renderCache *cache.RenderCache
	assetImages render.AssetSource
	metrics     *metrics.Metrics
}

// NewAPI creates the handler group. storageClient, renderCache,
// assetImages and m may be nil: uploads then answer 503, previews render
// uncached, and image elements paint as placeholders.
func NewAPI(templates *store.TemplateStore, events *store.EventStore, registrants *store.RegistrantStore, assets *store.AssetStore, printLogs *store.PrintLogStore, sessions *designer.Manager, generator *batch.Generator, storageClient *storage.Client, renderCache *cache.RenderCache, assetImages render.AssetSource, m *metrics.Metrics) *API {
	return &API{
		templates:   templates,
		events:      events,
		registrants: registrants,
		assets:      assets,
		printLogs:   printLogs,
		sessions:    sessions,
		generator:   generator,
		storage:     storageClient,
		renderCache: renderCache,
		assetImages: assetImages,
		metrics:     m,
	}
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads a JSON request body into dst, capped at maxJSONBody.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	return json.NewDecoder(r.Body).Decode(dst)
}

// uuidParam parses the named URL parameter as a UUID, writing the 400
// itself. The second return reports success.
func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ID.")
		return uuid.Nil, false
	}
	return id, true
}
