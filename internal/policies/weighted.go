package policies

import "github.com/jmgilman/go/errors"

// WeightedCache is a size-bounded cache evicting the element with the
// smallest (weight, order). It performs no locking; callers serialize access.
//
// Removed key-value pairs are handed back to the caller instead of being
// released here, so the caller decides when to run release callbacks.
type WeightedCache[K comparable, V any] struct {
	keys      *KeyIndex[K, V]
	evictions *EvictionIndex[K]
	capacity  int
	counter   uint64
	limits    Limits
	onPack    func(PackEvent)
}

func NewWeightedCache[K comparable, V any](capacity int, limits Limits, onPack func(PackEvent)) *WeightedCache[K, V] {
	return &WeightedCache[K, V]{
		keys:      NewKeyIndex[K, V](capacity),
		evictions: NewEvictionIndex[K](),
		capacity:  capacity,
		limits:    limits,
		onPack:    onPack,
	}
}

// Add inserts value under key with the requested weight and returns the
// order assigned to the new element. A zero weight is treated as 1.
//
// Eviction happens before an existing key is replaced, so a replace on a
// full cache still evicts the current minimum. A failed Add leaves the cache
// unchanged; a weight equal to MaxWeight is accepted only by an empty cache.
func (c *WeightedCache[K, V]) Add(key K, value V, weight uint64) (uint64, []Entry[K, V], error) {
	if weight == 0 {
		weight = 1
	}
	if err := c.checkWeight(weight); err != nil {
		return 0, nil, err
	}
	// Removing any live element frees an order value and lets packing bring
	// the baseline down to 1, so past this point only a weight at the limit
	// could still fail once entries are gone.
	if weight == c.limits.MaxWeight && c.keys.Len() > 0 {
		return 0, nil, errors.Wrapf(ErrWeightOverflow, errors.CodeInternal,
			"weight %d fits only an empty cache", weight)
	}

	var removed []Entry[K, V]
	for c.keys.Len() > 0 && c.keys.Len() >= c.capacity {
		removed = append(removed, c.evictMin())
	}
	if old, ok := c.remove(key); ok {
		removed = append(removed, old)
	}

	order, err := c.nextOrder()
	if err != nil {
		return 0, removed, err
	}
	baseline, err := c.reserveWeight(c.evictions.BaselineWeight(), weight)
	if err != nil {
		return 0, removed, err
	}

	elem := Element[K]{Key: key, Weight: baseline + weight, Order: order}
	c.evictions.Insert(elem)
	c.keys.Insert(key, elem, value)

	return order, removed, nil
}

// Get returns the value stored under key. With touch set the element gets a
// fresh order and its weight grows by one.
func (c *WeightedCache[K, V]) Get(key K, touch bool) (V, bool, error) {
	elem, value, ok := c.keys.Find(key)
	if !ok || !touch {
		return value, ok, nil
	}

	order, err := c.nextOrder()
	if err != nil {
		return value, true, err
	}
	if _, err := c.reserveWeight(elem.Weight, 1); err != nil {
		return value, true, err
	}

	// Packing may have renumbered the element.
	elem, _, _ = c.keys.Find(key)
	c.evictions.Remove(elem)
	elem.Order = order
	elem.Weight++
	c.evictions.Insert(elem)
	c.keys.Update(key, elem)

	return value, true, nil
}

// Peek returns the value stored under key without touching it.
func (c *WeightedCache[K, V]) Peek(key K) (V, bool) {
	_, value, ok := c.keys.Find(key)
	return value, ok
}

// Lookup returns the element recorded for key.
func (c *WeightedCache[K, V]) Lookup(key K) (Element[K], bool) {
	elem, _, ok := c.keys.Find(key)
	return elem, ok
}

// Remove deletes key from the cache.
func (c *WeightedCache[K, V]) Remove(key K) (Entry[K, V], bool) {
	return c.remove(key)
}

// Evict removes up to count elements with the smallest (weight, order).
func (c *WeightedCache[K, V]) Evict(count int) []Entry[K, V] {
	var removed []Entry[K, V]
	for i := 0; i < count && c.keys.Len() > 0; i++ {
		removed = append(removed, c.evictMin())
	}
	return removed
}

// Shrink evicts until at most size elements remain.
func (c *WeightedCache[K, V]) Shrink(size int) []Entry[K, V] {
	if size < 0 {
		size = 0
	}
	return c.Evict(c.keys.Len() - size)
}

// SetCapacity shrinks the cache to capacity and records the new bound.
func (c *WeightedCache[K, V]) SetCapacity(capacity int) []Entry[K, V] {
	removed := c.Shrink(capacity)
	c.capacity = capacity
	return removed
}

func (c *WeightedCache[K, V]) Capacity() int {
	return c.capacity
}

func (c *WeightedCache[K, V]) Len() int {
	return c.keys.Len()
}

// Keys returns the live keys in eviction order.
func (c *WeightedCache[K, V]) Keys() []K {
	keys := make([]K, 0, c.evictions.Len())
	c.evictions.Ascend(func(e Element[K]) bool {
		keys = append(keys, e.Key)
		return true
	})
	return keys
}

// Elements returns the live elements in eviction order.
func (c *WeightedCache[K, V]) Elements() []Element[K] {
	elems := make([]Element[K], 0, c.evictions.Len())
	c.evictions.Ascend(func(e Element[K]) bool {
		elems = append(elems, e)
		return true
	})
	return elems
}

func (c *WeightedCache[K, V]) evictMin() Entry[K, V] {
	elem, _ := c.evictions.PeekMin()
	entry, _ := c.remove(elem.Key)
	return entry
}

func (c *WeightedCache[K, V]) remove(key K) (Entry[K, V], bool) {
	elem, value, ok := c.keys.Remove(key)
	if !ok {
		return Entry[K, V]{}, false
	}
	c.evictions.Remove(elem)
	return Entry[K, V]{Key: key, Value: value}, true
}
