// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"badgepress/internal/models"
)

const eventColumns = `id, name, slug, venue, starts_at, ends_at, created_at, updated_at`

// EventStore handles events and their ticket types. Events are owned by
// the registration system upstream; here they are mostly read, with
// create support for imports and tests.
type EventStore struct {
	db *sql.DB
}

// NewEventStore creates a new EventStore with the given database connection.
func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

// List returns all events, soonest start date first, undated last.
func (s *EventStore) List(ctx context.Context) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM events
		ORDER BY starts_at ASC NULLS LAST, name
	`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *ev)
	}
	return events, rows.Err()
}

// FindByID retrieves an event by its UUID. Returns nil if not found.
func (s *EventStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+eventColumns+`
		FROM events WHERE id = $1
	`, id)
	ev, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find event by id: %w", err)
	}
	return ev, nil
}

// FindBySlug retrieves an event by its slug. Returns nil if not found.
func (s *EventStore) FindBySlug(ctx context.Context, slug string) (*models.Event, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+eventColumns+`
		FROM events WHERE slug = $1
	`, slug)
	ev, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find event by slug: %w", err)
	}
	return ev, nil
}

// Create inserts a new event and returns the stored row.
func (s *EventStore) Create(ctx context.Context, e *models.Event) (*models.Event, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO events (id, name, slug, venue, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+eventColumns+`
	`, e.ID, e.Name, e.Slug, e.Venue, nullTime(e.StartsAt), nullTime(e.EndsAt))

	created, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return created, nil
}

// TicketTypesByEvent returns the event's ticket types in name order.
func (s *EventStore) TicketTypesByEvent(ctx context.Context, eventID uuid.UUID) ([]models.TicketType, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_id, name, created_at
		FROM ticket_types
		WHERE event_id = $1
		ORDER BY name
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list ticket types: %w", err)
	}
	defer rows.Close()

	var types []models.TicketType
	for rows.Next() {
		var tt models.TicketType
		if err := rows.Scan(&tt.ID, &tt.EventID, &tt.Name, &tt.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ticket type: %w", err)
		}
		types = append(types, tt)
	}
	return types, rows.Err()
}

// CreateTicketType inserts a ticket type for an event.
func (s *EventStore) CreateTicketType(ctx context.Context, tt *models.TicketType) (*models.TicketType, error) {
	if tt.ID == uuid.Nil {
		tt.ID = uuid.New()
	}
	result := &models.TicketType{}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO ticket_types (id, event_id, name)
		VALUES ($1, $2, $3)
		RETURNING id, event_id, name, created_at
	`, tt.ID, tt.EventID, tt.Name).Scan(
		&result.ID, &result.EventID, &result.Name, &result.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create ticket type: %w", err)
	}
	return result, nil
}

// scanEvent maps nullable date bounds onto the model's zero-time
// convention.
func scanEvent(row rowScanner) (*models.Event, error) {
	e := &models.Event{}
	var starts, ends sql.NullTime
	if err := row.Scan(
		&e.ID, &e.Name, &e.Slug, &e.Venue, &starts, &ends, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if starts.Valid {
		e.StartsAt = starts.Time
	}
	if ends.Valid {
		e.EndsAt = ends.Time
	}
	return e, nil
}

// nullTime writes a zero time as SQL NULL.
func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
