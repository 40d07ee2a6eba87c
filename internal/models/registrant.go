// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Registrant is one attendee record of an event. Badge rendering reads
// it only through TokenValues, so the renderer stays ignorant of how the
// registration data is shaped.
type Registrant struct {
	ID                 uuid.UUID  `json:"id"`
	EventID            uuid.UUID  `json:"event_id"`
	TicketTypeID       uuid.UUID  `json:"ticket_type_id"`
	RegistrationNumber string     `json:"registration_number"`
	Name               string     `json:"name"`
	Email              string     `json:"email,omitempty"`
	Phone              string     `json:"phone,omitempty"`
	Institution        string     `json:"institution,omitempty"`
	Designation        string     `json:"designation,omitempty"`
	Addons             []string   `json:"addons,omitempty"`
	PhotoAssetID       *uuid.UUID `json:"photo_asset_id,omitempty"`
	CheckedIn          bool       `json:"checked_in"`
	CreatedAt          time.Time  `json:"created_at"`
}

// TokenValues maps substitution token names to this registrant's data.
// Values may be empty; the substitution engine supplies fallbacks, so
// this stays a plain projection. Event tokens resolve separately: they
// are meaningful even without a registrant.
func (r *Registrant) TokenValues(ticketType string) map[string]string {
	return map[string]string{
		"name":                r.Name,
		"registration_number": r.RegistrationNumber,
		"ticket_type":         ticketType,
		"email":               r.Email,
		"phone":               r.Phone,
		"institution":         r.Institution,
		"designation":         r.Designation,
		"addons":              strings.Join(r.Addons, ", "),
	}
}
