package policies

type slot[K comparable, V any] struct {
	elem  Element[K]
	value V
}

// KeyIndex maps a key to its value and to a copy of the element currently
// stored in the EvictionIndex.
type KeyIndex[K comparable, V any] struct {
	items map[K]*slot[K, V]
}

func NewKeyIndex[K comparable, V any](capacity int) *KeyIndex[K, V] {
	return &KeyIndex[K, V]{
		items: make(map[K]*slot[K, V], capacity),
	}
}

func (idx *KeyIndex[K, V]) Find(key K) (Element[K], V, bool) {
	s, ok := idx.items[key]
	if !ok {
		var v V
		return Element[K]{}, v, false
	}
	return s.elem, s.value, true
}

func (idx *KeyIndex[K, V]) Insert(key K, elem Element[K], value V) {
	idx.items[key] = &slot[K, V]{elem: elem, value: value}
}

// Update replaces the element recorded for key, keeping its value.
func (idx *KeyIndex[K, V]) Update(key K, elem Element[K]) {
	if s, ok := idx.items[key]; ok {
		s.elem = elem
	}
}

func (idx *KeyIndex[K, V]) Remove(key K) (Element[K], V, bool) {
	s, ok := idx.items[key]
	if !ok {
		var v V
		return Element[K]{}, v, false
	}
	delete(idx.items, key)
	return s.elem, s.value, true
}

func (idx *KeyIndex[K, V]) Len() int {
	return len(idx.items)
}
