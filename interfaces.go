package cache

import "github.com/moeryomenko/weightedcache/internal/policies"

// replacementCacher is internal common interface of cache.
type replacementCacher[K comparable, V any] interface {
	// Add inserts the key-value pair with given weight and returns its order.
	Add(key K, value V, weight uint64) (uint64, []policies.Entry[K, V], error)
	// Get returns the value for specified key, optionally touching it.
	Get(key K, touch bool) (V, bool, error)
	// Remove removes item from cache by given key.
	Remove(key K) (policies.Entry[K, V], bool)
	// Evict evicts given numbers of key from cache by given policy.
	Evict(count int) []policies.Entry[K, V]
	// Len returns current size of cache.
	Len() int
}

var _ replacementCacher[int, any] = (*policies.WeightedCache[int, any])(nil)
