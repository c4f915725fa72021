// Package cache memoizes search, colleague and facet computations in an
// external key/value store. The cache is advisory: when the store misbehaves
// every call degrades to a miss or a no-op.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrMiss is returned by a Store when the key is absent or expired.
	ErrMiss = errors.New("cache miss")
	// ErrStoreUnavailable is returned by a Store that cannot serve requests.
	ErrStoreUnavailable = errors.New("cache store unavailable")
)

// Store is the key/value collaborator behind the cache.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) (int, error)
}

// TTLs holds the expiry per namespace.
type TTLs struct {
	Search     time.Duration
	Colleagues time.Duration
	Filters    time.Duration
	Candidate  time.Duration
}

func DefaultTTLs() TTLs {
	return TTLs{
		Search:     5 * time.Minute,
		Colleagues: 15 * time.Minute,
		Filters:    30 * time.Minute,
		Candidate:  10 * time.Minute,
	}
}

// ResultCache stores JSON-encoded results in a Store.
type ResultCache struct {
	store  Store
	ttls   TTLs
	logger *zap.Logger
}

type Option func(*ResultCache)

func WithTTLs(ttls TTLs) Option {
	return func(c *ResultCache) { c.ttls = ttls }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *ResultCache) {
		if logger != nil {
			c.logger = logger.Named("cache")
		}
	}
}

// New wraps store. A nil store yields a cache that never hits.
func New(store Store, opts ...Option) *ResultCache {
	c := &ResultCache{
		store:  store,
		ttls:   DefaultTTLs(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether a store is attached.
func (c *ResultCache) Enabled() bool {
	return c != nil && c.store != nil
}

// TTL returns the expiry configured for namespace.
func (c *ResultCache) TTL(namespace Namespace) time.Duration {
	switch namespace {
	case NamespaceSearch:
		return c.ttls.Search
	case NamespaceColleagues:
		return c.ttls.Colleagues
	case NamespaceFilters:
		return c.ttls.Filters
	case NamespaceCandidate:
		return c.ttls.Candidate
	default:
		return c.ttls.Search
	}
}

// Get decodes the value stored at key into dst. It reports false on a miss and
// on any store or decoding failure.
func (c *ResultCache) Get(ctx context.Context, key string, dst any) bool {
	if !c.Enabled() {
		return false
	}

	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.logger.Warn("cache get failed, continuing without cache", zap.String("key", key), zap.Error(err))
		}
		return false
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		c.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return false
	}

	c.logger.Debug("cache hit", zap.String("key", key))
	return true
}

// Set stores value at key for ttl. Failures are logged and otherwise ignored.
func (c *ResultCache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if !c.Enabled() {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache value not encodable", zap.String("key", key), zap.Error(err))
		return
	}

	if err := c.store.Set(ctx, key, raw, ttl); err != nil {
		c.logger.Warn("cache set failed, continuing without cache", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate removes every key starting with prefix and returns how many were removed.
func (c *ResultCache) Invalidate(ctx context.Context, prefix string) int {
	if !c.Enabled() {
		return 0
	}

	n, err := c.store.DeleteByPrefix(ctx, prefix)
	if err != nil {
		c.logger.Warn("cache invalidation failed", zap.String("prefix", prefix), zap.Error(err))
		return 0
	}
	return n
}

// InvalidateCandidate clears everything that may hold stale data after the
// candidate's resume or work history changed. Search results, colleague
// analyses and similarity lists can all mention any candidate, so those
// namespaces are cleared whole; facet aggregates are left to expire.
func (c *ResultCache) InvalidateCandidate(ctx context.Context, candidateID string) int {
	removed := 0
	for _, ns := range []Namespace{NamespaceSearch, NamespaceColleagues, NamespaceCandidate} {
		removed += c.Invalidate(ctx, ns.Prefix())
	}
	c.logger.Info("cache invalidated for candidate",
		zap.String("candidate_id", candidateID), zap.Int("removed", removed))
	return removed
}
