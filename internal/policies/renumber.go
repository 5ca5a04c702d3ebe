package policies

import (
	"cmp"
	"math"
	"slices"

	"github.com/jmgilman/go/errors"
)

// Limits bounds the order counter and the element weights. Lowering them
// emulates a narrow counter so packing can be exercised.
type Limits struct {
	MaxOrder  uint64
	MaxWeight uint64
}

// DefaultLimits uses the full uint64 range.
func DefaultLimits() Limits {
	return Limits{MaxOrder: math.MaxUint64, MaxWeight: math.MaxUint64}
}

type PackKind int

const (
	PackOrder PackKind = iota
	PackWeight
)

func (k PackKind) String() string {
	switch k {
	case PackOrder:
		return "order"
	case PackWeight:
		return "weight"
	default:
		return "unknown"
	}
}

// PackEvent describes a completed renumbering.
type PackEvent struct {
	Kind PackKind
	// Offset is the amount subtracted from every shifted value.
	Offset uint64
	// Shifted is the number of live elements that were renumbered.
	Shifted int
	Live    int
}

// nextOrder returns a fresh order value, packing the live orders first when
// the counter has reached its limit.
func (c *WeightedCache[K, V]) nextOrder() (uint64, error) {
	if c.counter >= c.limits.MaxOrder {
		if err := c.packOrders(); err != nil {
			return 0, err
		}
	}
	c.counter++
	return c.counter, nil
}

// packOrders closes the widest run of unused order values. The run may sit
// below the smallest live order, between two live orders, or between the
// largest live order and the counter. Every live order above the run and the
// counter itself move down by the run length, which keeps relative order.
func (c *WeightedCache[K, V]) packOrders() error {
	if c.keys.Len() == 0 {
		c.counter = 0
		c.notify(PackEvent{Kind: PackOrder, Live: 0})
		return nil
	}

	elems := make([]Element[K], 0, c.keys.Len())
	for _, s := range c.keys.items {
		elems = append(elems, s.elem)
	}
	slices.SortFunc(elems, func(a, b Element[K]) int {
		return cmp.Compare(a.Order, b.Order)
	})

	// Orders start at 1, so 0 acts as the floor.
	var (
		below uint64 // live orders <= below stay in place
		free  uint64
		prev  uint64
	)
	for _, e := range elems {
		if gap := e.Order - prev - 1; gap > free {
			below, free = prev, gap
		}
		prev = e.Order
	}
	if gap := c.counter - prev; gap > free {
		below, free = prev, gap
	}

	if free == 0 {
		return errors.Wrapf(ErrIndexOverflow, errors.CodeInternal,
			"all %d order values below %d are in use", len(elems), c.limits.MaxOrder)
	}

	shifted := elems[:0]
	for _, e := range elems {
		if e.Order > below {
			shifted = append(shifted, e)
		}
	}
	// Remove every shifted element before reinserting so that a new tuple
	// never collides with a stale one.
	for _, e := range shifted {
		c.evictions.Remove(e)
	}
	for _, e := range shifted {
		e.Order -= free
		c.evictions.Insert(e)
		c.keys.Update(e.Key, e)
	}
	c.counter -= free

	c.notify(PackEvent{Kind: PackOrder, Offset: free, Shifted: len(shifted), Live: c.keys.Len()})
	return nil
}

// reserveWeight makes sure base+delta fits in the weight limit, rebasing
// every live weight when it does not. It returns base adjusted by the
// rebase offset.
func (c *WeightedCache[K, V]) reserveWeight(base, delta uint64) (uint64, error) {
	if err := c.checkWeight(delta); err != nil {
		return 0, err
	}
	if base <= c.limits.MaxWeight-delta {
		return base, nil
	}

	offset, err := c.packWeights()
	if err != nil {
		return 0, err
	}
	base -= offset
	if base > c.limits.MaxWeight-delta {
		return 0, errors.Wrapf(ErrWeightOverflow, errors.CodeInternal,
			"weight %d+%d exceeds limit %d after rebase", base, delta, c.limits.MaxWeight)
	}
	return base, nil
}

func (c *WeightedCache[K, V]) checkWeight(weight uint64) error {
	if weight > c.limits.MaxWeight {
		return errors.Wrapf(ErrWeightOverflow, errors.CodeInternal,
			"weight %d exceeds limit %d", weight, c.limits.MaxWeight)
	}
	return nil
}

// packWeights subtracts (min weight - 1) from every live weight. The shift is
// uniform so the eviction order is unchanged.
func (c *WeightedCache[K, V]) packWeights() (uint64, error) {
	baseline := c.evictions.BaselineWeight()
	if baseline <= 1 {
		return 0, errors.Wrapf(ErrWeightOverflow, errors.CodeInternal,
			"weights span the whole range up to %d", c.limits.MaxWeight)
	}
	offset := baseline - 1

	elems := make([]Element[K], 0, c.evictions.Len())
	c.evictions.Ascend(func(e Element[K]) bool {
		elems = append(elems, e)
		return true
	})
	c.evictions.Clear()
	for _, e := range elems {
		e.Weight -= offset
		c.evictions.Insert(e)
		c.keys.Update(e.Key, e)
	}

	c.notify(PackEvent{Kind: PackWeight, Offset: offset, Shifted: len(elems), Live: len(elems)})
	return offset, nil
}

func (c *WeightedCache[K, V]) notify(ev PackEvent) {
	if c.onPack != nil {
		c.onPack(ev)
	}
}
