package matches

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

// versionKey is the Redis counter bumped on every successful schedule
// mutation. The cache compares it against the version it last loaded at,
// so invalidation is an explicit protocol rather than emptied shared state.
const versionKey = "schedule:ver"

// windowReader is the slice of Repository the cache needs.
type windowReader interface {
	ListWindow(ctx context.Context, from, to Date) ([]Match, error)
}

// Cache holds the last-fetched rolling window of matches. Ensure fetches
// iff the desired window is not fully contained in the cached one or the
// version counter moved since the cached load. A failed fetch leaves the
// previous cache intact and serves it stale.
type Cache struct {
	reader windowReader
	rdb    *redis.Client

	mu      sync.Mutex
	window  *DateRange
	matches []Match
	version int64
}

// NewCache creates an empty schedule cache. The first Ensure always fetches.
func NewCache(reader windowReader, rdb *redis.Client) *Cache {
	return &Cache{reader: reader, rdb: rdb}
}

// Ensure returns matches covering the desired window, fetching only when
// the cache cannot serve it: on first use, when the desired window exceeds
// the cached bounds, or when a mutation bumped the version counter.
func (c *Cache) Ensure(ctx context.Context, desired DateRange) ([]Match, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ver := c.readVersion(ctx)
	if c.window != nil && c.window.Contains(desired) && ver == c.version {
		return c.matches, nil
	}

	matches, err := c.reader.ListWindow(ctx, desired.From, desired.To)
	if err != nil {
		if c.window != nil {
			// Stale-but-consistent: keep serving the previous window.
			slog.Warn("schedule window fetch failed, serving stale cache",
				slog.String("from", desired.From.String()),
				slog.String("to", desired.To.String()),
				slog.Any("error", err),
			)
			return c.matches, nil
		}
		return nil, fmt.Errorf("fetching schedule window: %w", err)
	}

	w := desired
	c.window = &w
	c.matches = matches
	c.version = ver
	return c.matches, nil
}

// Invalidate bumps the version counter after a successful mutation. If the
// counter cannot be bumped, the local window is dropped instead so the next
// Ensure on this instance still refetches.
func (c *Cache) Invalidate(ctx context.Context) {
	if err := c.rdb.Incr(ctx, versionKey).Err(); err != nil {
		slog.Warn("schedule version bump failed, dropping local cache",
			slog.Any("error", err),
		)
		c.mu.Lock()
		c.window = nil
		c.matches = nil
		c.mu.Unlock()
	}
}

// readVersion reads the shared version counter. A missing key is version 0.
// Redis being unreachable keeps the last-known version: the cache degrades
// to containment-only behavior rather than refusing reads.
func (c *Cache) readVersion(ctx context.Context) int64 {
	ver, err := c.rdb.Get(ctx, versionKey).Int64()
	if err == redis.Nil {
		return 0
	}
	if err != nil {
		slog.Warn("schedule version read failed", slog.Any("error", err))
		return c.version
	}
	return ver
}
