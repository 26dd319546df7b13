// Package cache provides a time-expiring response cache over a pluggable
// byte store. Entries are stored as {"timestamp": unix-millis, "data": ...}
// and expire lazily on read.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// KeyPrefix namespaces every key written by the cache.
const KeyPrefix = "gemini-cache:"

// DefaultTTL is how long an entry stays valid.
const DefaultTTL = time.Hour

// ErrMiss is returned by a Store when the key is absent.
var ErrMiss = errors.New("cache miss")

// Store is the persistent backend the cache writes through to.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Lister is implemented by stores that can enumerate keys by prefix.
// It enables Sweep and Clear.
type Lister interface {
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Key builds a cache key from an operation name and its arguments.
// Arguments are trimmed and lower-cased so that trivially different
// spellings of the same request share an entry.
func Key(op string, args ...string) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = Normalize(a)
	}
	return ExactKey(op, parts...)
}

// ExactKey builds a cache key from parts used verbatim.
func ExactKey(op string, parts ...string) string {
	return KeyPrefix + op + ":" + strings.Join(parts, ":")
}

// Normalize trims and lower-cases a key argument.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

type entry struct {
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Stats reports cache activity since construction.
type Stats struct {
	Hits        int64
	Misses      int64
	Expired     int64
	WriteErrors int64
}

// Cache is safe for concurrent use. Last write wins on key collision.
type Cache struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
	log   *zap.Logger

	hits        atomic.Int64
	misses      atomic.Int64
	expired     atomic.Int64
	writeErrors atomic.Int64
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides DefaultTTL. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock sets the time source used for timestamps and expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithLogger sets the logger for swallowed failures.
func WithLogger(log *zap.Logger) Option {
	return func(c *Cache) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a Cache over the given store.
func New(store Store, opts ...Option) *Cache {
	c := &Cache{
		store: store,
		ttl:   DefaultTTL,
		now:   time.Now,
		log:   zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// TTL returns the configured entry lifetime.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get decodes the live entry for key into dst and reports whether it did.
// Missing, expired and unreadable entries are all reported as a miss;
// expired and corrupt entries are deleted.
func (c *Cache) Get(ctx context.Context, key string, dst any) bool {
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		c.misses.Add(1)
		return false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil || e.Data == nil {
		c.log.Warn("discarding corrupt cache entry", zap.String("key", key), zap.Error(err))
		c.delete(ctx, key)
		c.misses.Add(1)
		return false
	}

	if c.isExpired(e) {
		c.delete(ctx, key)
		c.expired.Add(1)
		c.misses.Add(1)
		return false
	}

	if err := json.Unmarshal(e.Data, dst); err != nil {
		c.log.Warn("cache entry does not match requested type", zap.String("key", key), zap.Error(err))
		c.delete(ctx, key)
		c.misses.Add(1)
		return false
	}

	c.hits.Add(1)
	return true
}

// Set stores data under key with the current timestamp. Failures are logged
// and swallowed; the cache never fails a caller.
func (c *Cache) Set(ctx context.Context, key string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		c.writeErrors.Add(1)
		c.log.Warn("cache value not serializable", zap.String("key", key), zap.Error(err))
		return
	}

	raw, err := json.Marshal(entry{Timestamp: c.now().UnixMilli(), Data: payload})
	if err != nil {
		c.writeErrors.Add(1)
		c.log.Warn("cache entry not serializable", zap.String("key", key), zap.Error(err))
		return
	}

	if err := c.store.Set(ctx, key, raw); err != nil {
		c.writeErrors.Add(1)
		c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Expired:     c.expired.Load(),
		WriteErrors: c.writeErrors.Load(),
	}
}

// Sweep deletes every expired or unreadable entry and returns how many were
// removed. The store must implement Lister.
func (c *Cache) Sweep(ctx context.Context) (int, error) {
	keys, err := c.keys(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, key := range keys {
		raw, err := c.store.Get(ctx, key)
		if errors.Is(err, ErrMiss) {
			continue
		}
		if err != nil {
			return removed, err
		}
		var e entry
		if err := json.Unmarshal(raw, &e); err == nil && e.Data != nil && !c.isExpired(e) {
			continue
		}
		if err := c.store.Delete(ctx, key); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// Clear deletes every cache entry and returns how many were removed.
// The store must implement Lister.
func (c *Cache) Clear(ctx context.Context) (int, error) {
	keys, err := c.keys(ctx)
	if err != nil {
		return 0, err
	}
	for i, key := range keys {
		if err := c.store.Delete(ctx, key); err != nil {
			return i, err
		}
	}
	return len(keys), nil
}

// Len returns the number of stored entries, live or not.
func (c *Cache) Len(ctx context.Context) (int, error) {
	keys, err := c.keys(ctx)
	return len(keys), err
}

func (c *Cache) keys(ctx context.Context) ([]string, error) {
	l, ok := c.store.(Lister)
	if !ok {
		return nil, errors.New("cache store cannot list keys")
	}
	return l.Keys(ctx, KeyPrefix)
}

func (c *Cache) isExpired(e entry) bool {
	age := c.now().Sub(time.UnixMilli(e.Timestamp))
	return age > c.ttl
}

func (c *Cache) delete(ctx context.Context, key string) {
	if err := c.store.Delete(ctx, key); err != nil {
		c.log.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
	}
}
