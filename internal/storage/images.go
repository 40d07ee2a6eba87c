// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"badgepress/internal/models"

	_ "image/png"
)

// maxCachedImages bounds the decoded-image cache. A normalized asset
// tops out at 2048 px on the long edge, roughly 16 MB decoded, so the
// cap also bounds worst-case memory.
const maxCachedImages = 16

// AssetFinder resolves an asset id to its metadata row.
type AssetFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Asset, error)
}

// ImageSource resolves asset references for the render pipeline: look
// up the row, download the normalized object, decode it. Decoded images
// are cached in memory because a batch run paints the same background
// and logos onto every badge; singleflight collapses the concurrent
// fetches of the parallel renders.
type ImageSource struct {
	client *Client
	finder AssetFinder

	group singleflight.Group
	mu    sync.Mutex
	cache map[string]image.Image
}

// NewImageSource creates an image source over the given storage client
// and asset lookup.
func NewImageSource(client *Client, finder AssetFinder) *ImageSource {
	return &ImageSource{
		client: client,
		finder: finder,
		cache:  make(map[string]image.Image),
	}
}

// Image fetches and decodes the asset's normalized object.
func (s *ImageSource) Image(ctx context.Context, assetID string) (image.Image, error) {
	s.mu.Lock()
	if img, ok := s.cache[assetID]; ok {
		s.mu.Unlock()
		return img, nil
	}
	s.mu.Unlock()

	v, err, _ := s.group.Do(assetID, func() (any, error) {
		return s.fetch(ctx, assetID)
	})
	if err != nil {
		return nil, err
	}
	img := v.(image.Image)

	s.mu.Lock()
	if len(s.cache) >= maxCachedImages {
		s.cache = make(map[string]image.Image)
	}
	s.cache[assetID] = img
	s.mu.Unlock()

	return img, nil
}

// Forget drops an asset from the decoded cache. Asset deletion calls
// this so a re-uploaded id never serves stale pixels.
func (s *ImageSource) Forget(assetID string) {
	s.mu.Lock()
	delete(s.cache, assetID)
	s.mu.Unlock()
}

func (s *ImageSource) fetch(ctx context.Context, assetID string) (image.Image, error) {
	id, err := uuid.Parse(assetID)
	if err != nil {
		return nil, fmt.Errorf("invalid asset id %q", assetID)
	}
	asset, err := s.finder.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("look up asset %s: %w", assetID, err)
	}
	if asset == nil {
		return nil, fmt.Errorf("asset %s not found", assetID)
	}
	if s.client == nil {
		return nil, fmt.Errorf("object storage is not configured")
	}

	data, err := s.client.Download(ctx, asset.S3Key)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode asset %s: %w", assetID, err)
	}
	return img, nil
}
