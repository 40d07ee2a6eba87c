// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"badgepress/internal/batch"
	"badgepress/internal/cache"
	"badgepress/internal/render"
)

// generateRequest is the JSON body for a batch run. Zero per_page and
// empty format take the generator defaults (4 per sheet, PDF); empty
// registrant_ids means every registrant of the event.
type generateRequest struct {
	TemplateID    uuid.UUID   `json:"template_id"`
	EventID       uuid.UUID   `json:"event_id"`
	RegistrantIDs []uuid.UUID `json:"registrant_ids"`
	PerPage       int         `json:"per_page"`
	Format        string      `json:"format"`
	RequestedBy   string      `json:"requested_by"`
}

// BadgesGenerate runs batch generation and streams the artifact back
// with a download disposition.
func (a *API) BadgesGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.TemplateID == uuid.Nil {
		writeError(w, http.StatusUnprocessableEntity, "template_id is required.")
		return
	}
	if req.EventID == uuid.Nil {
		writeError(w, http.StatusUnprocessableEntity, "event_id is required.")
		return
	}
	if req.Format != "" && req.Format != string(batch.FormatPDF) && req.Format != string(batch.FormatPNGZip) {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Unknown output format %q.", req.Format))
		return
	}
	if req.PerPage != 0 && !batch.PerPageValid(req.PerPage) {
		writeError(w, http.StatusUnprocessableEntity, "Badges per page must be 1, 2, 4, 6 or 8.")
		return
	}

	res, err := a.generator.Generate(r.Context(), batch.Request{
		TemplateID:    req.TemplateID,
		EventID:       req.EventID,
		RegistrantIDs: req.RegistrantIDs,
		PerPage:       req.PerPage,
		Format:        batch.Format(req.Format),
		RequestedBy:   req.RequestedBy,
	})
	switch {
	case errors.Is(err, batch.ErrTemplateNotFound), errors.Is(err, batch.ErrEventNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, batch.ErrNoEligibleRegistrants):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		slog.Error("batch generation failed", "error", err,
			"template_id", req.TemplateID, "event_id", req.EventID)
		writeError(w, http.StatusInternalServerError, "Failed to generate badges.")
		return
	}

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	w.Header().Set("X-Badge-Count", strconv.Itoa(res.BadgeCount))
	if res.Pages > 0 {
		w.Header().Set("X-Page-Count", strconv.Itoa(res.Pages))
	}
	if res.FromCache {
		w.Header().Set("X-Cache", "hit")
	}
	w.Write(res.Data)
}

// BadgePreview renders a stored template as PNG without a session; the
// gallery and print dialog thumbnails go through here. Only the
// registrant-free sample preview is cached: its key carries the
// template's update time, so edits miss naturally, and a key per
// registrant would multiply entries for little reuse.
func (a *API) BadgePreview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tplID, err := uuid.Parse(q.Get("template_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid template_id.")
		return
	}
	scale, err := parseScale(q.Get("scale"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	tpl, err := a.templates.FindByID(ctx, tplID)
	if err != nil {
		slog.Error("template lookup failed", "error", err, "id", tplID)
		writeError(w, http.StatusInternalServerError, "Failed to load template.")
		return
	}
	if tpl == nil {
		writeError(w, http.StatusNotFound, "Template not found.")
		return
	}

	data, ok := a.previewData(w, r)
	if !ok {
		return
	}

	var key string
	if data.Registrant == nil && a.renderCache != nil {
		key = cache.PreviewKey(tpl.ID.String(), tpl.UpdatedAt, scale)
		if out, ok := a.renderCache.Get(ctx, key); ok {
			a.metrics.CacheEvent("hit")
			w.Header().Set("Content-Type", "image/png")
			w.Write(out)
			return
		}
		a.metrics.CacheEvent("miss")
	}

	start := time.Now()
	out, err := render.PNG(ctx, tpl, render.Options{
		Scale:  scale,
		Data:   data,
		Assets: a.assetImages,
	})
	if err != nil {
		slog.Error("preview render failed", "error", err, "template_id", tplID)
		writeError(w, http.StatusInternalServerError, "Failed to render preview.")
		return
	}
	a.metrics.ObserveRender("preview", time.Since(start))

	if key != "" {
		a.renderCache.Set(ctx, key, out)
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(out)
}
