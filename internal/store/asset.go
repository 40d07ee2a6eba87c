// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"badgepress/internal/models"
)

const assetColumns = `id, original_name, content_type, size_bytes, width, height, bucket, s3_key, created_at`

// AssetStore handles asset metadata. The bytes themselves live in object
// storage; these rows only describe and locate them.
type AssetStore struct {
	db *sql.DB
}

// NewAssetStore creates a new AssetStore with the given database connection.
func NewAssetStore(db *sql.DB) *AssetStore {
	return &AssetStore{db: db}
}

// List returns all assets, newest first.
func (s *AssetStore) List(ctx context.Context) ([]models.Asset, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+assetColumns+`
		FROM assets
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var assets []models.Asset
	for rows.Next() {
		var a models.Asset
		if err := rows.Scan(
			&a.ID, &a.OriginalName, &a.ContentType, &a.SizeBytes,
			&a.Width, &a.Height, &a.Bucket, &a.S3Key, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// FindByID retrieves an asset by its UUID. Returns nil if not found.
func (s *AssetStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	a := &models.Asset{}
	err := s.db.QueryRowContext(ctx, `
		SELECT `+assetColumns+`
		FROM assets WHERE id = $1
	`, id).Scan(
		&a.ID, &a.OriginalName, &a.ContentType, &a.SizeBytes,
		&a.Width, &a.Height, &a.Bucket, &a.S3Key, &a.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find asset by id: %w", err)
	}
	return a, nil
}

// Create inserts an asset row and returns it with the stored timestamps.
func (s *AssetStore) Create(ctx context.Context, a *models.Asset) (*models.Asset, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	result := &models.Asset{}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO assets (id, original_name, content_type, size_bytes, width, height, bucket, s3_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+assetColumns+`
	`, a.ID, a.OriginalName, a.ContentType, a.SizeBytes, a.Width, a.Height, a.Bucket, a.S3Key).Scan(
		&result.ID, &result.OriginalName, &result.ContentType, &result.SizeBytes,
		&result.Width, &result.Height, &result.Bucket, &result.S3Key, &result.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create asset: %w", err)
	}
	return result, nil
}

// Delete removes an asset row by ID. Object storage cleanup is the
// caller's responsibility; the row goes first so a failed cleanup leaves
// an orphaned object, never a dangling reference.
func (s *AssetStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	return nil
}
