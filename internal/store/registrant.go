// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"badgepress/internal/models"
)

const registrantColumns = `id, event_id, ticket_type_id, registration_number, name, email, phone, institution, designation, addons, photo_asset_id, checked_in, created_at`

// RegistrantStore handles registrant database operations. A registrant's
// ticket type is nullable in the schema and surfaces as uuid.Nil on the
// model.
type RegistrantStore struct {
	db *sql.DB
}

// NewRegistrantStore creates a new RegistrantStore with the given database connection.
func NewRegistrantStore(db *sql.DB) *RegistrantStore {
	return &RegistrantStore{db: db}
}

// ListByEvent returns the event's registrants in registration number
// order, narrowed to the given ids when non-empty.
func (s *RegistrantStore) ListByEvent(ctx context.Context, eventID uuid.UUID, ids []uuid.UUID) ([]models.Registrant, error) {
	query := `
		SELECT ` + registrantColumns + `
		FROM registrants
		WHERE event_id = $1`
	args := []any{eventID}
	if len(ids) > 0 {
		placeholders := make([]string, len(ids))
		for i, id := range ids {
			args = append(args, id)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		query += " AND id IN (" + strings.Join(placeholders, ", ") + ")"
	}
	query += " ORDER BY registration_number"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list registrants: %w", err)
	}
	defer rows.Close()

	var regs []models.Registrant
	for rows.Next() {
		r, err := scanRegistrant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registrant: %w", err)
		}
		regs = append(regs, *r)
	}
	return regs, rows.Err()
}

// FindByID retrieves a registrant by its UUID. Returns nil if not found.
func (s *RegistrantStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Registrant, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+registrantColumns+`
		FROM registrants WHERE id = $1
	`, id)
	r, err := scanRegistrant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find registrant by id: %w", err)
	}
	return r, nil
}

// Create inserts a new registrant and returns the stored row.
func (s *RegistrantStore) Create(ctx context.Context, r *models.Registrant) (*models.Registrant, error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	addons := []byte("[]")
	if len(r.Addons) > 0 {
		var err error
		addons, err = json.Marshal(r.Addons)
		if err != nil {
			return nil, fmt.Errorf("encode addons: %w", err)
		}
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO registrants (id, event_id, ticket_type_id, registration_number, name, email, phone, institution, designation, addons, photo_asset_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+registrantColumns+`
	`, r.ID, r.EventID, nullUUID(r.TicketTypeID), r.RegistrationNumber, r.Name,
		r.Email, r.Phone, r.Institution, r.Designation, addons, r.PhotoAssetID)

	created, err := scanRegistrant(row)
	if err != nil {
		return nil, fmt.Errorf("create registrant: %w", err)
	}
	return created, nil
}

// CountByEvent returns the number of registrants for an event.
func (s *RegistrantStore) CountByEvent(ctx context.Context, eventID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrants WHERE event_id = $1`, eventID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count registrants: %w", err)
	}
	return count, nil
}

func scanRegistrant(row rowScanner) (*models.Registrant, error) {
	r := &models.Registrant{}
	var ticketType uuid.NullUUID
	var addons []byte
	if err := row.Scan(
		&r.ID, &r.EventID, &ticketType, &r.RegistrationNumber, &r.Name,
		&r.Email, &r.Phone, &r.Institution, &r.Designation, &addons,
		&r.PhotoAssetID, &r.CheckedIn, &r.CreatedAt,
	); err != nil {
		return nil, err
	}
	if ticketType.Valid {
		r.TicketTypeID = ticketType.UUID
	}
	if len(addons) > 0 {
		if err := json.Unmarshal(addons, &r.Addons); err != nil {
			return nil, fmt.Errorf("decode addons: %w", err)
		}
	}
	return r, nil
}

// nullUUID writes uuid.Nil as SQL NULL so the ticket type FK stays clean.
func nullUUID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}
