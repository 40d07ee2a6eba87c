// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PrintLog records one batch generation run for the audit trail. Rows
// are append-only.
type PrintLog struct {
	ID              uuid.UUID     `json:"id"`
	TemplateID      uuid.UUID     `json:"template_id"`
	EventID         uuid.UUID     `json:"event_id"`
	RequestedBy     string        `json:"requested_by,omitempty"`
	RegistrantCount int           `json:"registrant_count"`
	Pages           int           `json:"pages"`
	Format          string        `json:"format"`
	Duration        time.Duration `json:"duration"`
	CreatedAt       time.Time     `json:"created_at"`
}
