// Package core holds repository contracts and small orchestration helpers shared by services.
package core

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jerseyretro/storefront/internal/domain/model"
)

const categoriesCacheKey = "catalog:categories"

// CategoryCache caches the public category listing in front of the repository.
type CategoryCache struct {
	cache      CacheRepository
	categories CategoryRepository
	ttl        time.Duration
	logger     *slog.Logger
}

// CategoryCacheOptions bundles dependencies for NewCategoryCache.
type CategoryCacheOptions struct {
	Cache      CacheRepository
	Categories CategoryRepository
	TTL        time.Duration
	Logger     *slog.Logger
}

// DefaultCategoryCacheTTL is used when no TTL is configured.
const DefaultCategoryCacheTTL = 5 * time.Minute

// NewCategoryCache creates a CategoryCache. A nil Cache disables caching.
func NewCategoryCache(opts CategoryCacheOptions) *CategoryCache {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultCategoryCacheTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CategoryCache{
		cache:      opts.Cache,
		categories: opts.Categories,
		ttl:        ttl,
		logger:     logger.With("component", "category_cache"),
	}
}

// List returns categories ordered by name, serving from cache when possible.
// Cache failures fall through to the repository.
func (c *CategoryCache) List(ctx context.Context) ([]*model.Category, error) {
	if c.cache != nil {
		raw, err := c.cache.Get(ctx, categoriesCacheKey)
		switch {
		case err != nil:
			c.logger.WarnContext(ctx, "category cache read failed", "error", err)
		case len(raw) > 0:
			var out []*model.Category
			if jerr := json.Unmarshal(raw, &out); jerr == nil {
				return out, nil
			}
			c.logger.WarnContext(ctx, "discarding undecodable category cache entry")
		}
	}

	out, err := c.categories.List(ctx)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if raw, jerr := json.Marshal(out); jerr == nil {
			if serr := c.cache.Set(ctx, categoriesCacheKey, raw, c.ttl); serr != nil {
				c.logger.WarnContext(ctx, "category cache write failed", "error", serr)
			}
		}
	}
	return out, nil
}

// Invalidate drops the cached listing.
func (c *CategoryCache) Invalidate(ctx context.Context) {
	if c.cache == nil {
		return
	}
	if _, err := c.cache.Delete(ctx, categoriesCacheKey); err != nil {
		c.logger.WarnContext(ctx, "category cache invalidation failed", "error", err)
	}
}
