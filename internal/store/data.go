// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"badgepress/internal/models"
)

// Data bundles the stores behind the read surface batch generation
// needs: template, event, ticket types, registrants. Handlers keep using
// the individual stores; the bundle only exists so the generator depends
// on one narrow interface.
type Data struct {
	Templates   *TemplateStore
	Events      *EventStore
	Registrants *RegistrantStore
}

// NewData wires the three read stores over one connection pool.
func NewData(db *sql.DB) *Data {
	return &Data{
		Templates:   NewTemplateStore(db),
		Events:      NewEventStore(db),
		Registrants: NewRegistrantStore(db),
	}
}

func (d *Data) TemplateByID(ctx context.Context, id uuid.UUID) (*models.Template, error) {
	return d.Templates.FindByID(ctx, id)
}

func (d *Data) EventByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return d.Events.FindByID(ctx, id)
}

func (d *Data) TicketTypesByEvent(ctx context.Context, eventID uuid.UUID) ([]models.TicketType, error) {
	return d.Events.TicketTypesByEvent(ctx, eventID)
}

func (d *Data) RegistrantsByEvent(ctx context.Context, eventID uuid.UUID, ids []uuid.UUID) ([]models.Registrant, error) {
	return d.Registrants.ListByEvent(ctx, eventID, ids)
}
