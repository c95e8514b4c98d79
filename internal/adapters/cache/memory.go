// Package cache provides an in-process implementation of ports.Cache.
// It backs the optional token cache in front of the record store.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jsamuelsen/quotes-service/internal/domain"
	"github.com/jsamuelsen/quotes-service/internal/ports"
)

const defaultMaxEntries = 10000

// Config configures a memory cache.
type Config struct {
	// MaxEntries bounds the cache; least recently used entries are evicted first.
	MaxEntries int

	// Logger is an optional logger. If nil, a default logger is used.
	Logger *slog.Logger

	// Now is the clock used for expiry. Defaults to time.Now.
	Now func() time.Time
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Memory is a bounded LRU cache with per-entry expiry.
// Expired entries are dropped lazily on Get and in bulk by Sweep.
type Memory struct {
	entries *lru.Cache[string, entry]
	logger  *slog.Logger
	now     func() time.Time
}

var _ ports.Cache = (*Memory)(nil)

// New creates a memory cache.
func New(cfg Config) (*Memory, error) {
	size := cfg.MaxEntries
	if size <= 0 {
		size = defaultMaxEntries
	}

	entries, err := lru.New[string, entry](size)
	if err != nil {
		return nil, fmt.Errorf("creating lru: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Memory{
		entries: entries,
		logger:  logger.With(slog.String("component", "cache.Memory")),
		now:     now,
	}, nil
}

// Get returns a copy of the value for key, or domain.ErrNotFound.
func (c *Memory) Get(_ context.Context, key string) ([]byte, error) {
	e, ok := c.entries.Get(key)
	if !ok {
		return nil, domain.ErrNotFound
	}

	if e.expired(c.now()) {
		c.entries.Remove(key)
		return nil, domain.ErrNotFound
	}

	return append([]byte(nil), e.value...), nil
}

// Set stores a copy of value. A non-positive TTL means no expiry.
func (c *Memory) Set(_ context.Context, key string, value []byte, ttlSeconds int) error {
	e := entry{value: append([]byte(nil), value...)}
	if ttlSeconds > 0 {
		e.expiresAt = c.now().Add(time.Duration(ttlSeconds) * time.Second)
	}

	c.entries.Add(key, e)

	return nil
}

// Delete removes key. Missing keys are not an error.
func (c *Memory) Delete(_ context.Context, key string) error {
	c.entries.Remove(key)
	return nil
}

// Len reports the number of entries, expired or not.
func (c *Memory) Len() int {
	return c.entries.Len()
}

// Sweep removes every expired entry and reports how many were removed.
func (c *Memory) Sweep() int {
	now := c.now()
	removed := 0

	for _, key := range c.entries.Keys() {
		e, ok := c.entries.Peek(key)
		if ok && e.expired(now) {
			c.entries.Remove(key)
			removed++
		}
	}

	return removed
}

// Run sweeps every interval until ctx is done.
func (c *Memory) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return errors.New("sweep interval must be positive")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := c.Sweep(); n > 0 {
				c.logger.DebugContext(ctx, "swept expired cache entries", slog.Int("count", n))
			}
		}
	}
}

// Name returns the cache name for health check identification.
func (c *Memory) Name() string {
	return "token-cache"
}

// Check always succeeds; the cache lives in process.
func (c *Memory) Check(context.Context) error {
	return nil
}
