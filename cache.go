package cache

import (
	"sync"

	"github.com/jmgilman/go/errors"
	"github.com/rs/zerolog"

	"github.com/moeryomenko/weightedcache/internal/policies"
)

// Order is the token returned by Add. Tokens grow with every Add and touch,
// so a caller can compare a stored token to tell whether its value is still
// the current one. Tokens may be renumbered when the counter is packed.
type Order uint64

// Cache is a size-bounded cache that evicts the entry with the smallest
// (weight, order) pair.
type Cache[K comparable, V any] struct {
	index   *policies.WeightedCache[K, V]
	remover Remover[K, V]
	lock    sync.Locker
	logger  zerolog.Logger
}

// New returns cache holding at most capacity entries.
func New[K comparable, V any](capacity int, opts ...Option) (*Cache[K, V], error) {
	return NewWithRemover[K, V](capacity, nil, opts...)
}

// NewWithRemover returns cache that passes every entry it destroys to
// remover exactly once.
func NewWithRemover[K comparable, V any](capacity int, remover Remover[K, V], opts ...Option) (*Cache[K, V], error) {
	cfg := newConfig(opts...)

	if capacity <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfiguration, errors.CodeInvalidConfig,
			"capacity must be positive, got %d", capacity)
	}
	if remover == nil {
		remover = NopRemover[K, V]{}
	}

	c := &Cache[K, V]{
		remover: remover,
		lock:    cfg.locker,
		logger:  cfg.logger,
	}
	c.index = policies.NewWeightedCache[K, V](capacity, cfg.limits, c.logPack)

	return c, nil
}

// Add inserts value under key with weight 1.
func (c *Cache[K, V]) Add(key K, value V) (Order, error) {
	return c.AddWeighted(key, value, 1)
}

// AddWeighted inserts value under key. The entry starts at weight plus the
// smallest weight currently in the cache; a zero weight counts as 1. An
// existing entry for key is replaced and passed to the remover. On error the
// cache is left unchanged.
func (c *Cache[K, V]) AddWeighted(key K, value V, weight uint64) (Order, error) {
	c.lock.Lock()
	order, removed, err := c.index.Add(key, value, weight)
	c.lock.Unlock()

	c.release(removed)
	if err != nil {
		c.logger.Error().Err(err).Msg("cache add failed")
		return 0, err
	}

	return Order(order), nil
}

// Get returns the value stored under key and bumps its recency and weight.
func (c *Cache[K, V]) Get(key K) (V, bool, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	value, ok, err := c.index.Get(key, true)
	if err != nil {
		c.logger.Error().Err(err).Msg("cache touch failed")
	}

	return value, ok, err
}

// Peek returns the value stored under key without affecting eviction.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.index.Peek(key)
}

// Contains reports whether key is in the cache without affecting eviction.
func (c *Cache[K, V]) Contains(key K) bool {
	_, ok := c.Peek(key)
	return ok
}

// Remove deletes key and passes its value to the remover.
func (c *Cache[K, V]) Remove(key K) bool {
	c.lock.Lock()
	entry, ok := c.index.Remove(key)
	c.lock.Unlock()

	if ok {
		c.remover.Remove(entry.Key, entry.Value)
	}

	return ok
}

// Keys returns the keys in the order they would be evicted.
func (c *Cache[K, V]) Keys() []K {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.index.Keys()
}

// SetCapacity evicts entries until at most capacity remain and records
// capacity as the new bound.
func (c *Cache[K, V]) SetCapacity(capacity int) error {
	if capacity <= 0 {
		return errors.Wrapf(ErrInvalidConfiguration, errors.CodeInvalidConfig,
			"capacity must be positive, got %d", capacity)
	}

	c.lock.Lock()
	removed := c.index.SetCapacity(capacity)
	c.lock.Unlock()

	c.logger.Debug().Int("capacity", capacity).Int("evicted", len(removed)).Msg("cache capacity changed")
	c.release(removed)

	return nil
}

// Capacity returns the maximum number of entries.
func (c *Cache[K, V]) Capacity() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.index.Capacity()
}

// SetSize evicts entries until at most size remain. Capacity is unchanged;
// size 0 empties the cache.
func (c *Cache[K, V]) SetSize(size int) error {
	if size < 0 {
		return errors.Wrapf(ErrInvalidConfiguration, errors.CodeInvalidConfig,
			"size must not be negative, got %d", size)
	}

	c.lock.Lock()
	removed := c.index.Shrink(size)
	c.lock.Unlock()

	c.release(removed)

	return nil
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.index.Len()
}

// Close destroys every entry, passing each to the remover. The cache stays
// usable and is empty afterwards.
func (c *Cache[K, V]) Close() {
	c.lock.Lock()
	removed := c.index.Shrink(0)
	c.lock.Unlock()

	c.logger.Debug().Int("released", len(removed)).Msg("cache closed")
	c.release(removed)
}

// release runs the remover outside the lock so it may use the cache.
func (c *Cache[K, V]) release(entries []policies.Entry[K, V]) {
	for _, e := range entries {
		c.remover.Remove(e.Key, e.Value)
	}
}

func (c *Cache[K, V]) logPack(ev policies.PackEvent) {
	c.logger.Debug().
		Stringer("kind", ev.Kind).
		Uint64("offset", ev.Offset).
		Int("shifted", ev.Shifted).
		Int("live", ev.Live).
		Msg("cache counters packed")
}
