// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"badgepress/internal/designer"
	"badgepress/internal/models"
	"badgepress/internal/render"
	"badgepress/internal/tokens"
)

// sessionCreateRequest opens a designer session: template_id resumes an
// existing template, size_class starts a fresh one seeded with the
// starter layout. template_id wins when both are present.
type sessionCreateRequest struct {
	TemplateID string           `json:"template_id"`
	SizeClass  models.SizeClass `json:"size_class"`
	Name       string           `json:"name"`
}

// SessionCreate opens a designer session and returns its full state.
func (a *API) SessionCreate(w http.ResponseWriter, r *http.Request) {
	var req sessionCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	var sess *designer.Session
	switch {
	case req.TemplateID != "":
		id, err := uuid.Parse(req.TemplateID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid template_id.")
			return
		}
		tpl, err := a.templates.FindByID(r.Context(), id)
		if err != nil {
			slog.Error("template lookup failed", "error", err, "id", id)
			writeError(w, http.StatusInternalServerError, "Failed to load template.")
			return
		}
		if tpl == nil {
			writeError(w, http.StatusNotFound, "Template not found.")
			return
		}
		sess = a.sessions.Open(tpl, true)

	case req.SizeClass != "":
		if !req.SizeClass.Valid() {
			writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Unknown size class %q.", req.SizeClass))
			return
		}
		name := req.Name
		if name == "" {
			name = "Untitled Badge"
		}
		tpl := models.NewTemplate(name, req.SizeClass)
		tpl.Elements = models.StarterElements(req.SizeClass)
		sess = a.sessions.Open(tpl, false)

	default:
		writeError(w, http.StatusBadRequest, "Either template_id or size_class is required.")
		return
	}

	a.metrics.SetSessionsActive(a.sessions.Count())
	slog.Info("designer session opened", "session_id", sess.ID)
	writeJSON(w, http.StatusCreated, sess.State())
}

// session resolves the {id} URL parameter to an open session, writing
// the 404 itself.
func (a *API) session(w http.ResponseWriter, r *http.Request) *designer.Session {
	s := a.sessions.Get(chi.URLParam(r, "id"))
	if s == nil {
		writeError(w, http.StatusNotFound, "Session not found or expired.")
	}
	return s
}

// SessionState returns the current session state.
func (a *API) SessionState(w http.ResponseWriter, r *http.Request) {
	s := a.session(w, r)
	if s == nil {
		return
	}
	writeJSON(w, http.StatusOK, s.State())
}

// SessionOps applies one editor op and returns the updated state,
// including any snap guides the op activated.
func (a *API) SessionOps(w http.ResponseWriter, r *http.Request) {
	s := a.session(w, r)
	if s == nil {
		return
	}
	var op designer.Op
	if err := decodeJSON(w, r, &op); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid op: "+err.Error())
		return
	}
	state, err := s.Apply(op)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// SessionPreview renders the working document as PNG. registrant_id
// binds real data; without it the preview shows illustrative fallbacks.
// Session previews are never cached: the working document changes with
// every op.
func (a *API) SessionPreview(w http.ResponseWriter, r *http.Request) {
	s := a.session(w, r)
	if s == nil {
		return
	}
	scale, err := parseScale(r.URL.Query().Get("scale"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	data, ok := a.previewData(w, r)
	if !ok {
		return
	}

	start := time.Now()
	out, err := render.PNG(r.Context(), s.Document(), render.Options{
		Scale:  scale,
		Data:   data,
		Assets: a.assetImages,
	})
	if err != nil {
		slog.Error("session preview render failed", "error", err, "session_id", s.ID)
		writeError(w, http.StatusInternalServerError, "Failed to render preview.")
		return
	}
	a.metrics.ObserveRender("preview", time.Since(start))

	w.Header().Set("Content-Type", "image/png")
	w.Write(out)
}

// previewData resolves the optional registrant_id query parameter into
// a substitution context, writing the error response itself.
func (a *API) previewData(w http.ResponseWriter, r *http.Request) (tokens.Context, bool) {
	raw := r.URL.Query().Get("registrant_id")
	if raw == "" {
		return tokens.Context{}, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid registrant_id.")
		return tokens.Context{}, false
	}
	reg, err := a.registrants.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("registrant lookup failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "Failed to load registrant.")
		return tokens.Context{}, false
	}
	if reg == nil {
		writeError(w, http.StatusNotFound, "Registrant not found.")
		return tokens.Context{}, false
	}
	data, err := a.tokenContext(r.Context(), reg)
	if err != nil {
		slog.Error("substitution context failed", "error", err, "registrant_id", id)
		writeError(w, http.StatusInternalServerError, "Failed to load registrant data.")
		return tokens.Context{}, false
	}
	return data, true
}

// tokenContext assembles the substitution data for one registrant: the
// registrant, its event, and the resolved ticket type name.
func (a *API) tokenContext(ctx context.Context, reg *models.Registrant) (tokens.Context, error) {
	data := tokens.Context{Registrant: reg}
	event, err := a.events.FindByID(ctx, reg.EventID)
	if err != nil {
		return data, err
	}
	data.Event = event
	if reg.TicketTypeID == uuid.Nil {
		return data, nil
	}
	types, err := a.events.TicketTypesByEvent(ctx, reg.EventID)
	if err != nil {
		return data, err
	}
	for _, tt := range types {
		if tt.ID == reg.TicketTypeID {
			data.TicketType = tt.Name
			break
		}
	}
	return data, nil
}

// SessionSave persists the working document through the template store.
// The write is all-or-nothing on a snapshot; a failure leaves both the
// stored template and the session untouched.
func (a *API) SessionSave(w http.ResponseWriter, r *http.Request) {
	s := a.session(w, r)
	if s == nil {
		return
	}
	doc := s.Document()
	if err := doc.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ctx := r.Context()
	persisted := s.State().Persisted
	if persisted {
		existing, err := a.templates.FindByID(ctx, doc.ID)
		if err != nil {
			slog.Error("template lookup failed", "error", err, "id", doc.ID)
			writeError(w, http.StatusInternalServerError, "Failed to save template.")
			return
		}
		// Deleted while the session was open: recreate rather than
		// update a row that no longer exists.
		persisted = existing != nil
	}

	var saveErr error
	if persisted {
		saveErr = a.templates.Update(ctx, doc)
	} else {
		_, saveErr = a.templates.Create(ctx, doc)
	}
	if saveErr != nil {
		slog.Error("save template failed", "error", saveErr, "id", doc.ID)
		writeError(w, http.StatusInternalServerError, "Failed to save template.")
		return
	}

	s.MarkSaved()
	if a.renderCache != nil {
		a.renderCache.InvalidateTemplate(ctx, doc.ID.String())
	}
	slog.Info("template saved", "id", doc.ID, "name", doc.Name, "elements", len(doc.Elements))
	writeJSON(w, http.StatusOK, s.State())
}

// SessionDelete closes a session, abandoning unsaved changes.
func (a *API) SessionDelete(w http.ResponseWriter, r *http.Request) {
	a.sessions.Close(chi.URLParam(r, "id"))
	a.metrics.SetSessionsActive(a.sessions.Count())
	w.WriteHeader(http.StatusNoContent)
}
