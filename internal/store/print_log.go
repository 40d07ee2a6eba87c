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

// PrintLogStore appends and reads the batch generation audit trail.
// Durations are stored as integer milliseconds.
type PrintLogStore struct {
	db *sql.DB
}

// NewPrintLogStore creates a new PrintLogStore with the given database connection.
func NewPrintLogStore(db *sql.DB) *PrintLogStore {
	return &PrintLogStore{db: db}
}

// Record appends one audit row for a completed batch run.
func (s *PrintLogStore) Record(ctx context.Context, entry *models.PrintLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO print_logs (id, template_id, event_id, requested_by, registrant_count, pages, format, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, entry.ID, entry.TemplateID, entry.EventID, entry.RequestedBy,
		entry.RegistrantCount, entry.Pages, entry.Format, entry.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("record print log: %w", err)
	}
	return nil
}

// ListByEvent returns the newest audit rows for an event, capped at limit.
func (s *PrintLogStore) ListByEvent(ctx context.Context, eventID uuid.UUID, limit int) ([]models.PrintLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, template_id, event_id, requested_by, registrant_count, pages, format, duration_ms, created_at
		FROM print_logs
		WHERE event_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, eventID, limit)
	if err != nil {
		return nil, fmt.Errorf("list print logs: %w", err)
	}
	defer rows.Close()

	var logs []models.PrintLog
	for rows.Next() {
		var l models.PrintLog
		var ms int64
		if err := rows.Scan(
			&l.ID, &l.TemplateID, &l.EventID, &l.RequestedBy,
			&l.RegistrantCount, &l.Pages, &l.Format, &ms, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan print log: %w", err)
		}
		l.Duration = time.Duration(ms) * time.Millisecond
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
