package policies

import "github.com/google/btree"

const btreeDegree = 32

// EvictionIndex keeps elements ordered by ascending (weight, order).
type EvictionIndex[K comparable] struct {
	tree *btree.BTreeG[Element[K]]
}

func NewEvictionIndex[K comparable]() *EvictionIndex[K] {
	return &EvictionIndex[K]{
		tree: btree.NewG[Element[K]](btreeDegree, Element[K].Less),
	}
}

func (idx *EvictionIndex[K]) Insert(e Element[K]) {
	idx.tree.ReplaceOrInsert(e)
}

func (idx *EvictionIndex[K]) Remove(e Element[K]) bool {
	_, ok := idx.tree.Delete(e)
	return ok
}

// PeekMin returns the next eviction victim.
func (idx *EvictionIndex[K]) PeekMin() (Element[K], bool) {
	return idx.tree.Min()
}

// BaselineWeight returns the smallest live weight, or 0 if the index is empty.
func (idx *EvictionIndex[K]) BaselineWeight() uint64 {
	e, ok := idx.tree.Min()
	if !ok {
		return 0
	}
	return e.Weight
}

func (idx *EvictionIndex[K]) Len() int {
	return idx.tree.Len()
}

// Ascend calls fn for every element in eviction order until fn returns false.
func (idx *EvictionIndex[K]) Ascend(fn func(e Element[K]) bool) {
	idx.tree.Ascend(fn)
}

func (idx *EvictionIndex[K]) Clear() {
	idx.tree.Clear(false)
}
