// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"badgepress/internal/models"
)

// templateColumns is the select list every template query shares.
const templateColumns = `id, name, size, background, background_asset_id, elements, ticket_type_ids, created_at, updated_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// TemplateStore handles all badge template database operations. The
// element array and the ticket type assignment are stored as JSONB.
type TemplateStore struct {
	db *sql.DB
}

// NewTemplateStore creates a new TemplateStore with the given database connection.
func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

// List returns all templates, most recently updated first.
func (s *TemplateStore) List(ctx context.Context) ([]models.Template, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+templateColumns+`
		FROM badge_templates
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []models.Template
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *tpl)
	}
	return templates, rows.Err()
}

// FindByID retrieves a template by its UUID. Returns nil if not found.
func (s *TemplateStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Template, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+templateColumns+`
		FROM badge_templates WHERE id = $1
	`, id)
	tpl, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find template by id: %w", err)
	}
	return tpl, nil
}

// Create inserts a new template and returns the stored row. The caller's
// ID is kept when set so the designer can create and reference a document
// in one round trip.
func (s *TemplateStore) Create(ctx context.Context, t *models.Template) (*models.Template, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	elements, ticketTypes, err := marshalTemplateDoc(t)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO badge_templates (id, name, size, background, background_asset_id, elements, ticket_type_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+templateColumns+`
	`, t.ID, t.Name, t.Size, t.Background, t.BackgroundAssetID, elements, ticketTypes)

	created, err := scanTemplate(row)
	if err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return created, nil
}

// Update replaces the stored document with the given one. The size class
// is fixed at creation and never updated.
func (s *TemplateStore) Update(ctx context.Context, t *models.Template) error {
	elements, ticketTypes, err := marshalTemplateDoc(t)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE badge_templates SET
			name = $1, background = $2, background_asset_id = $3,
			elements = $4, ticket_type_ids = $5, updated_at = NOW()
		WHERE id = $6
	`, t.Name, t.Background, t.BackgroundAssetID, elements, ticketTypes, t.ID)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	return nil
}

// Delete removes a template by ID.
func (s *TemplateStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM badge_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}

// Count returns the total number of templates.
func (s *TemplateStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM badge_templates`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count templates: %w", err)
	}
	return count, nil
}

// scanTemplate reads one row and decodes the JSONB document columns.
// Stored documents may predate a tightening of element ranges, so every
// load re-normalizes.
func scanTemplate(row rowScanner) (*models.Template, error) {
	t := &models.Template{}
	var elements, ticketTypes []byte
	if err := row.Scan(
		&t.ID, &t.Name, &t.Size, &t.Background, &t.BackgroundAssetID,
		&elements, &ticketTypes, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(elements, &t.Elements); err != nil {
		return nil, fmt.Errorf("decode elements: %w", err)
	}
	if len(ticketTypes) > 0 {
		if err := json.Unmarshal(ticketTypes, &t.TicketTypeIDs); err != nil {
			return nil, fmt.Errorf("decode ticket type ids: %w", err)
		}
	}
	t.Normalize()
	return t, nil
}

// marshalTemplateDoc encodes the JSONB columns, writing [] rather than
// null for empty arrays so the column defaults stay meaningful.
func marshalTemplateDoc(t *models.Template) (elements, ticketTypes []byte, err error) {
	elements, err = json.Marshal(t.Elements)
	if err != nil {
		return nil, nil, fmt.Errorf("encode elements: %w", err)
	}
	if t.TicketTypeIDs == nil {
		return elements, []byte("[]"), nil
	}
	ticketTypes, err = json.Marshal(t.TicketTypeIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("encode ticket type ids: %w", err)
	}
	return elements, ticketTypes, nil
}
