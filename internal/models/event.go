// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is the conference or gathering badges are printed for.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Venue     string    `json:"venue,omitempty"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DateRange formats the event dates for badge substitution. A single-day
// event prints one date, a multi-day event prints "start - end". Both
// bounds are required; a half-set range yields "" so substitution can
// fall back instead of printing a partial date.
func (e *Event) DateRange() string {
	const layout = "2 Jan 2006"
	if e.StartsAt.IsZero() || e.EndsAt.IsZero() {
		return ""
	}
	if sameDay(e.StartsAt, e.EndsAt) {
		return e.StartsAt.Format(layout)
	}
	return e.StartsAt.Format(layout) + " - " + e.EndsAt.Format(layout)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// TicketType is one admission tier of an event. Templates opt in to the
// ticket types they apply to; batch generation filters registrants by
// that assignment.
type TicketType struct {
	ID        uuid.UUID `json:"id"`
	EventID   uuid.UUID `json:"event_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
