package policies

// Element is the unit tracked by both indices. It is a value: once an
// Element is stored in the EvictionIndex its fields never change, touch and
// renumbering replace it with a new Element instead.
type Element[K comparable] struct {
	Key    K
	Weight uint64
	// Order is unique among live elements, so (Weight, Order) is a total order.
	Order uint64
}

// Less reports whether e is evicted before other.
func (e Element[K]) Less(other Element[K]) bool {
	if e.Weight != other.Weight {
		return e.Weight < other.Weight
	}
	return e.Order < other.Order
}

// Entry is a key-value pair removed from the cache.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}
