// Package cache offers a size-bounded cache that evicts by weight and recency.
//
// Every entry carries a weight and an order. The order is a counter stamped
// on the entry when it is added or touched; the weight starts at the weight
// requested by the caller plus the smallest weight currently in the cache and
// grows by one on every touch. When the cache is full the entry with the
// smallest (weight, order) pair is evicted, so heavier entries survive longer
// while unused entries still age out:
//
//	c, err := cache.New[string, []byte](1000)
//	if err != nil {
//		return err
//	}
//	// An expensive entry survives ten more touches of its neighbours.
//	_, err = c.AddWeighted("report", data, 10)
//
// # Removers
//
// A Remover receives every entry the cache destroys, whether evicted,
// replaced, removed, cleared by SetSize or released by Close. It runs once
// per entry after the cache lock is released, so it may use the cache:
//
//	c, err := cache.NewWithRemover[string, *os.File](16,
//		cache.RemoverFunc[string, *os.File](func(_ string, f *os.File) {
//			f.Close()
//		}))
//
// # Locking
//
// All operations are serialized by a single lock. The default is a
// sync.Mutex; WithoutLocking and WithLocker select another policy.
//
// # Counters
//
// Orders and weights are bounded integers. When one of them is about to
// overflow the cache renumbers the live entries in place without changing
// their relative order. ErrIndexOverflow and ErrWeightOverflow are returned
// only when no renumbering can make room.
package cache
