// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"badgepress/internal/models"
)

// templateRequest is the JSON body for template create and update.
// Elements decode through the kind-discriminated codec, so a request
// carrying an unknown element kind fails before anything touches the
// store.
type templateRequest struct {
	Name              string           `json:"name"`
	Size              models.SizeClass `json:"size"`
	Background        string           `json:"background"`
	BackgroundAssetID string           `json:"background_asset_id"`
	Elements          models.Elements  `json:"elements"`
	TicketTypeIDs     []uuid.UUID      `json:"ticket_type_ids"`
}

// templateResponse wraps a stored template with read-time flags.
// NeedsRepair marks a document saved with zero elements; the designer
// offers to reseed the starter layout instead of opening a dead canvas.
type templateResponse struct {
	*models.Template
	NeedsRepair bool `json:"needs_repair,omitempty"`
}

// assignElementIDs fills in ids the client left empty. The designer
// always sends ids; API clients posting raw documents may not.
func assignElementIDs(els models.Elements) {
	for _, el := range els {
		if el.Common().ID == "" {
			el.Common().ID = uuid.NewString()
		}
	}
}

// TemplatesList returns all templates, most recently updated first.
func (a *API) TemplatesList(w http.ResponseWriter, r *http.Request) {
	templates, err := a.templates.List(r.Context())
	if err != nil {
		slog.Error("list templates failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list templates.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": templates})
}

// TemplateCreate creates a template. A request without elements is
// seeded with the starter layout for its size class.
func (a *API) TemplateCreate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if !req.Size.Valid() {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Unknown size class %q.", req.Size))
		return
	}

	t := models.NewTemplate(req.Name, req.Size)
	if req.Background != "" {
		t.Background = req.Background
	}
	t.BackgroundAssetID = req.BackgroundAssetID
	t.TicketTypeIDs = req.TicketTypeIDs
	if len(req.Elements) > 0 {
		t.Elements = req.Elements
	} else {
		t.Elements = models.StarterElements(req.Size)
	}
	assignElementIDs(t.Elements)
	t.Normalize()
	if err := t.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	created, err := a.templates.Create(r.Context(), t)
	if err != nil {
		slog.Error("create template failed", "error", err, "name", req.Name)
		writeError(w, http.StatusInternalServerError, "Failed to create template.")
		return
	}
	slog.Info("template created", "id", created.ID, "name", created.Name, "size", created.Size)
	writeJSON(w, http.StatusCreated, created)
}

// TemplateGet returns one template by id.
func (a *API) TemplateGet(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	t, err := a.templates.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("template lookup failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "Failed to load template.")
		return
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "Template not found.")
		return
	}
	writeJSON(w, http.StatusOK, &templateResponse{Template: t, NeedsRepair: len(t.Elements) == 0})
}

// TemplateUpdate replaces a template's document. The size class is
// fixed at creation; a request naming a different one is rejected.
func (a *API) TemplateUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	ctx := r.Context()
	t, err := a.templates.FindByID(ctx, id)
	if err != nil {
		slog.Error("template lookup failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "Failed to load template.")
		return
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "Template not found.")
		return
	}

	var req templateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Size != "" && req.Size != t.Size {
		writeError(w, http.StatusUnprocessableEntity, "The size class is fixed at creation.")
		return
	}

	t.Name = req.Name
	if req.Background != "" {
		t.Background = req.Background
	}
	t.BackgroundAssetID = req.BackgroundAssetID
	t.Elements = req.Elements
	t.TicketTypeIDs = req.TicketTypeIDs
	assignElementIDs(t.Elements)
	t.Normalize()
	if err := t.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := a.templates.Update(ctx, t); err != nil {
		slog.Error("update template failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "Failed to update template.")
		return
	}
	if a.renderCache != nil {
		a.renderCache.InvalidateTemplate(ctx, id.String())
	}

	updated, err := a.templates.FindByID(ctx, id)
	if err != nil || updated == nil {
		writeJSON(w, http.StatusOK, t)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// TemplateDelete removes a template. Deleting an id that no longer
// exists is a no-op, so the operation stays idempotent.
func (a *API) TemplateDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := a.templates.Delete(r.Context(), id); err != nil {
		slog.Error("delete template failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "Failed to delete template.")
		return
	}
	if a.renderCache != nil {
		a.renderCache.InvalidateTemplate(r.Context(), id.String())
	}
	w.WriteHeader(http.StatusNoContent)
}
