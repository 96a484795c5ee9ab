// Package cache implements the two-tier read-through cache for hot-ranked
// posts: a bounded in-process tier with single-flight loading, an optional
// shared tier, and the relational store as the ultimate fallback.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/forum-hub/forum-engagement/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config holds hot-list cache settings.
type Config struct {
	// MaxEntries bounds each in-process tier.
	MaxEntries int

	// TTL bounds how stale a cached entry may get. The cache is not
	// invalidated on writes; this window is the staleness contract.
	TTL time.Duration
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxEntries: 16,
		TTL:        3 * time.Minute,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// HOT LIST CACHE
// ══════════════════════════════════════════════════════════════════════════════

// Source is the upstream the cache loads from: the relational post store.
type Source interface {
	// Rows counts visible posts; scopeUserID 0 counts across all users.
	Rows(ctx context.Context, scopeUserID int64) (int64, error)

	// HotIDs returns one page of the global hot-ranked post ids.
	HotIDs(ctx context.Context, offset, limit int) ([]int64, error)
}

// HotListCache serves the global total-post-count and hot-ranked page
// queries through a bounded, TTL-expiring in-process tier.
//
// Only the global scope is cached: per-user counts and non-hot orderings
// always hit the source, because their cardinality is high and their
// freshness requirement ("my posts") is strict. Concurrent misses for the
// same key collapse into a single upstream load; blocked callers all receive
// the loaded value. Writes never invalidate entries - staleness is bounded
// by the TTL alone.
type HotListCache struct {
	src    Source
	rows   *expirable.LRU[string, int64]
	pages  *expirable.LRU[string, []int64]
	flight singleflight.Group
	shared *redis.Client // optional tier between process and source
	ttl    time.Duration
	logger *slog.Logger
}

// New creates a HotListCache over the source.
func New(src Source, cfg Config, logger *slog.Logger) *HotListCache {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultConfig().MaxEntries
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}

	return &HotListCache{
		src:    src,
		rows:   expirable.NewLRU[string, int64](cfg.MaxEntries, nil, cfg.TTL),
		pages:  expirable.NewLRU[string, []int64](cfg.MaxEntries, nil, cfg.TTL),
		ttl:    cfg.TTL,
		logger: logger,
	}
}

// WithSharedTier attaches an optional shared cache layer consulted between
// the in-process tier and the source.
func (c *HotListCache) WithSharedTier(client *redis.Client) *HotListCache {
	c.shared = client
	return c
}

// TotalPostCount returns the visible post count for the scope. Only the
// global scope (scopeUserID 0) is served from cache.
func (c *HotListCache) TotalPostCount(ctx context.Context, scopeUserID int64) (int64, error) {
	if scopeUserID < 0 {
		return 0, shared.NewDomainError("hotlist", "TotalPostCount", shared.ErrInvalidID, "scope user id cannot be negative")
	}
	if scopeUserID != 0 {
		return c.src.Rows(ctx, scopeUserID)
	}

	const key = "rows:0"
	if n, ok := c.rows.Get(key); ok {
		return n, nil
	}

	v, err, _ := c.flight.Do(key, func() (interface{}, error) {
		if n, ok := c.rows.Get(key); ok {
			return n, nil
		}
		n, err := c.loadRows(ctx, key)
		if err != nil {
			return int64(0), err
		}
		c.rows.Add(key, n)
		return n, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

// HotPostPage returns one page of the global hot-ranked post ids, served
// from cache.
func (c *HotListCache) HotPostPage(ctx context.Context, offset, limit int) ([]int64, error) {
	if offset < 0 || limit <= 0 {
		return nil, shared.NewDomainError("hotlist", "HotPostPage", shared.ErrInvalidArgument, "offset must be >= 0 and limit > 0")
	}

	key := fmt.Sprintf("page:%d:%d", offset, limit)
	if ids, ok := c.pages.Get(key); ok {
		return ids, nil
	}

	v, err, _ := c.flight.Do(key, func() (interface{}, error) {
		if ids, ok := c.pages.Get(key); ok {
			return ids, nil
		}
		ids, err := c.loadPage(ctx, key, offset, limit)
		if err != nil {
			return nil, err
		}
		c.pages.Add(key, ids)
		return ids, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]int64), nil
}

// loadRows fetches the global count, going through the shared tier if one is
// attached.
func (c *HotListCache) loadRows(ctx context.Context, key string) (int64, error) {
	if c.shared != nil {
		if n, err := c.shared.Get(ctx, sharedKey(key)).Int64(); err == nil {
			return n, nil
		} else if !errors.Is(err, redis.Nil) {
			c.logger.Warn("shared cache tier read failed", "key", key, "error", err)
		}
	}

	c.logger.Debug("loading post rows from store")
	n, err := c.src.Rows(ctx, 0)
	if err != nil {
		return 0, err
	}

	if c.shared != nil {
		if err := c.shared.Set(ctx, sharedKey(key), n, c.ttl).Err(); err != nil {
			c.logger.Warn("shared cache tier write failed", "key", key, "error", err)
		}
	}
	return n, nil
}

// loadPage fetches one hot page, going through the shared tier if one is
// attached.
func (c *HotListCache) loadPage(ctx context.Context, key string, offset, limit int) ([]int64, error) {
	if c.shared != nil {
		if raw, err := c.shared.Get(ctx, sharedKey(key)).Bytes(); err == nil {
			var ids []int64
			if err := json.Unmarshal(raw, &ids); err == nil {
				return ids, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			c.logger.Warn("shared cache tier read failed", "key", key, "error", err)
		}
	}

	c.logger.Debug("loading hot post page from store", "offset", offset, "limit", limit)
	ids, err := c.src.HotIDs(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	if c.shared != nil {
		if raw, err := json.Marshal(ids); err == nil {
			if err := c.shared.Set(ctx, sharedKey(key), raw, c.ttl).Err(); err != nil {
				c.logger.Warn("shared cache tier write failed", "key", key, "error", err)
			}
		}
	}
	return ids, nil
}

// sharedKey namespaces an in-process cache key for the shared tier.
func sharedKey(key string) string {
	return "hot:" + key
}
