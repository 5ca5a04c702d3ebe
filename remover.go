package cache

// Remover releases resources held by an entry the cache destroyed. It is
// called exactly once per evicted, replaced, removed or cleared entry, after
// the cache lock has been released, so it may call back into the cache.
type Remover[K comparable, V any] interface {
	Remove(key K, value V)
}

// RemoverFunc adapts a function to Remover.
type RemoverFunc[K comparable, V any] func(key K, value V)

func (f RemoverFunc[K, V]) Remove(key K, value V) {
	f(key, value)
}

// NopRemover ignores destroyed entries.
type NopRemover[K comparable, V any] struct{}

func (NopRemover[K, V]) Remove(K, V) {}
