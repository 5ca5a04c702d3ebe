package cache

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/moeryomenko/weightedcache/internal/policies"
)

// Option is an option that can be applied to cache.
type Option func(*config)

// WithLocker sets the lock guarding every cache operation. A nil locker keeps
// the default; use WithoutLocking to disable locking.
func WithLocker(l sync.Locker) Option {
	return func(c *config) {
		if l != nil {
			c.locker = l
		}
	}
}

// WithMutex guards the cache with a fresh sync.Mutex, which is also the
// default.
func WithMutex() Option {
	return WithLocker(new(sync.Mutex))
}

// WithoutLocking disables locking. The cache must then be used from a single
// goroutine.
func WithoutLocking() Option {
	return WithLocker(noLock{})
}

// WithLogger sets logger for cache maintenance events.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// withLimits lowers counter bounds, used by tests to force packing.
func withLimits(maxOrder, maxWeight uint64) Option {
	return func(c *config) {
		c.limits = policies.Limits{MaxOrder: maxOrder, MaxWeight: maxWeight}
	}
}
