// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// render.go provides a Valkey-backed cache for finished render artifacts.
// Batch PDFs, ZIP archives and template previews are expensive to produce,
// so the finished bytes are stored in Valkey keyed by a content fingerprint
// and served directly on repeat requests.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// renderKeyPrefix is the Valkey key prefix for cached render artifacts.
	renderKeyPrefix = "render:"

	// DefaultRenderTTL is how long a finished artifact stays cached.
	DefaultRenderTTL = 15 * time.Minute
)

// RenderCache stores finished render artifacts in Valkey.
type RenderCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRenderCache creates a render cache backed by the given Valkey client.
func NewRenderCache(client *redis.Client, ttl time.Duration) *RenderCache {
	if ttl == 0 {
		ttl = DefaultRenderTTL
	}
	return &RenderCache{client: client, ttl: ttl}
}

// Get retrieves a cached artifact. Returns (nil, false) on miss.
func (rc *RenderCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := rc.client.Get(ctx, renderKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("render cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("render cache hit", "key", key)
	return val, true
}

// Set stores a finished artifact with the configured TTL.
func (rc *RenderCache) Set(ctx context.Context, key string, data []byte) {
	if err := rc.client.Set(ctx, renderKeyPrefix+key, data, rc.ttl).Err(); err != nil {
		slog.Warn("render cache set error", "key", key, "error", err)
	}
}

// Invalidate removes a single artifact from the cache.
func (rc *RenderCache) Invalidate(ctx context.Context, key string) {
	if err := rc.client.Del(ctx, renderKeyPrefix+key).Err(); err != nil {
		slog.Warn("render cache invalidate error", "key", key, "error", err)
	}
	slog.Debug("render cache invalidated", "key", key)
}

// InvalidateTemplate removes cached previews for a template. Batch keys
// fingerprint the template content and simply miss after an edit, but
// preview keys are addressed by template ID and must be dropped on save.
func (rc *RenderCache) InvalidateTemplate(ctx context.Context, templateID string) {
	rc.deleteByPattern(ctx, renderKeyPrefix+"preview:"+templateID+"*")
}

// InvalidateAll removes all cached artifacts by scanning for the prefix.
// Used when an asset is replaced or deleted, since any artifact could
// embed its pixels.
func (rc *RenderCache) InvalidateAll(ctx context.Context) {
	rc.deleteByPattern(ctx, renderKeyPrefix+"*")
}

func (rc *RenderCache) deleteByPattern(ctx context.Context, pattern string) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := rc.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			slog.Warn("render cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := rc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("render cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("render cache cleared", "pattern", pattern, "deleted", deleted)
	}
}

// PreviewKey returns the cache key for a template preview image at a given
// pixel scale. The template's update time is part of the key, so a save
// naturally misses the stale entry.
func PreviewKey(templateID string, updatedAt time.Time, scale float64) string {
	return fmt.Sprintf("preview:%s:%d:%g", templateID, updatedAt.UnixNano(), scale)
}
