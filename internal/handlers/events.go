package handlers

import (
	"log/slog"
	"net/http"

	"badgepress/internal/models"
)

// EventsList returns all events, soonest first.
func (a *API) EventsList(w http.ResponseWriter, r *http.Request) {
	events, err := a.events.List(r.Context())
	if err != nil {
		slog.Error("list events failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list events.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

// eventByParam loads the {id} event, writing the error response itself.
func (a *API) eventByParam(w http.ResponseWriter, r *http.Request) *models.Event {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return nil
	}
	event, err := a.events.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("event lookup failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "Failed to load event.")
		return nil
	}
	if event == nil {
		writeError(w, http.StatusNotFound, "Event not found.")
		return nil
	}
	return event
}

// EventGet returns one event.
func (a *API) EventGet(w http.ResponseWriter, r *http.Request) {
	event := a.eventByParam(w, r)
	if event == nil {
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// EventTicketTypes returns the event's admission tiers.
func (a *API) EventTicketTypes(w http.ResponseWriter, r *http.Request) {
	event := a.eventByParam(w, r)
	if event == nil {
		return
	}
	types, err := a.events.TicketTypesByEvent(r.Context(), event.ID)
	if err != nil {
		slog.Error("list ticket types failed", "error", err, "event_id", event.ID)
		writeError(w, http.StatusInternalServerError, "Failed to list ticket types.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ticket_types": types})
}

// EventRegistrants returns the event's registrants, ordered by
// registration number, for selection in the print dialog.
func (a *API) EventRegistrants(w http.ResponseWriter, r *http.Request) {
	event := a.eventByParam(w, r)
	if event == nil {
		return
	}
	regs, err := a.registrants.ListByEvent(r.Context(), event.ID, nil)
	if err != nil {
		slog.Error("list registrants failed", "error", err, "event_id", event.ID)
		writeError(w, http.StatusInternalServerError, "Failed to list registrants.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"registrants": regs, "count": len(regs)})
}

// EventPrintLogs returns the event's batch audit trail, newest first.
func (a *API) EventPrintLogs(w http.ResponseWriter, r *http.Request) {
	event := a.eventByParam(w, r)
	if event == nil {
		return
	}
	limit := parseLimit(r.URL.Query().Get("limit"))
	logs, err := a.printLogs.ListByEvent(r.Context(), event.ID, limit)
	if err != nil {
		slog.Error("list print logs failed", "error", err, "event_id", event.ID)
		writeError(w, http.StatusInternalServerError, "Failed to list print logs.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"print_logs": logs})
}
