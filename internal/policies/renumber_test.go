package policies

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type packLog []PackEvent

func (l *packLog) record(ev PackEvent) {
	*l = append(*l, ev)
}

func (l packLog) count(kind PackKind) int {
	n := 0
	for _, ev := range l {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func touch(t *testing.T, c *WeightedCache[string, int], keys ...string) {
	t.Helper()

	for _, key := range keys {
		_, ok, err := c.Get(key, true)
		require.NoError(t, err)
		require.True(t, ok, "key %q not found", key)
	}
}

func add(t *testing.T, c *WeightedCache[string, int], keys ...string) {
	t.Helper()

	for _, key := range keys {
		_, _, err := c.Add(key, 0, 1)
		require.NoError(t, err)
	}
}

func TestPackOrders_FloorGap(t *testing.T) {
	var log packLog
	c := NewWeightedCache[string, int](3, Limits{MaxOrder: 6, MaxWeight: 100}, log.record)

	add(t, c, `a`, `b`, `c`)
	touch(t, c, `a`, `b`, `a`)
	require.Empty(t, log)

	// Live orders are c=3, b=5, a=6 and the counter is at the limit.
	touch(t, c, `c`)

	require.Equal(t, packLog{{Kind: PackOrder, Offset: 2, Shifted: 3, Live: 3}}, log)
	assert.Equal(t, []Element[string]{
		{Key: `b`, Weight: 3, Order: 3},
		{Key: `a`, Weight: 3, Order: 4},
		{Key: `c`, Weight: 3, Order: 5},
	}, c.Elements())
}

func TestPackOrders_InnerGap(t *testing.T) {
	var log packLog
	c := NewWeightedCache[string, int](3, Limits{MaxOrder: 10, MaxWeight: 100}, log.record)

	add(t, c, `a`, `b`, `c`)
	for i := 0; i < 7; i++ {
		touch(t, c, `c`)
	}
	require.Equal(t, uint64(10), lookup(t, c, `c`).Order)

	touch(t, c, `a`)

	require.Equal(t, packLog{{Kind: PackOrder, Offset: 7, Shifted: 1, Live: 3}}, log)
	assert.Equal(t, uint64(2), lookup(t, c, `b`).Order)
	assert.Equal(t, uint64(3), lookup(t, c, `c`).Order)
	assert.Equal(t, uint64(4), lookup(t, c, `a`).Order)
}

func TestPackOrders_CeilingGap(t *testing.T) {
	var log packLog
	c := NewWeightedCache[string, int](3, Limits{MaxOrder: 5, MaxWeight: 100}, log.record)

	add(t, c, `a`, `b`)
	touch(t, c, `a`, `a`, `a`)
	_, ok := c.Remove(`a`)
	require.True(t, ok)

	order, _, err := c.Add(`c`, 0, 1)
	require.NoError(t, err)

	require.Equal(t, packLog{{Kind: PackOrder, Offset: 3, Shifted: 0, Live: 1}}, log)
	assert.Equal(t, uint64(3), order)
	assert.Equal(t, uint64(2), lookup(t, c, `b`).Order)
}

func TestPackOrders_EmptyResetsCounter(t *testing.T) {
	var log packLog
	c := NewWeightedCache[string, int](1, Limits{MaxOrder: 2, MaxWeight: 100}, log.record)

	add(t, c, `a`, `b`)
	_, ok := c.Remove(`b`)
	require.True(t, ok)

	order, _, err := c.Add(`c`, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), order)
	assert.Equal(t, packLog{{Kind: PackOrder}}, log)
}

func TestPackOrders_Overflow(t *testing.T) {
	c := NewWeightedCache[string, int](4, Limits{MaxOrder: 4, MaxWeight: 100}, nil)

	add(t, c, `a`, `b`, `c`, `d`)
	before := c.Elements()

	value, ok, err := c.Get(`a`, true)
	assert.True(t, ok)
	assert.Zero(t, value)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIndexOverflow))
	assert.Equal(t, before, c.Elements())

	// Adding to a full cache evicts first, which frees an order.
	_, removed, err := c.Add(`e`, 0, 1)
	require.NoError(t, err)
	assert.Len(t, removed, 1)
}

func TestPackOrders_OverflowOnAdd(t *testing.T) {
	c := NewWeightedCache[string, int](5, Limits{MaxOrder: 4, MaxWeight: 100}, nil)

	add(t, c, `a`, `b`, `c`, `d`)
	before := c.Elements()

	// The cache has room, so nothing is evicted and no order is free.
	_, removed, err := c.Add(`e`, 0, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIndexOverflow))
	assert.Empty(t, removed)
	assert.Equal(t, before, c.Elements())
	_, ok := c.Peek(`e`)
	assert.False(t, ok)
}

func TestPackWeights(t *testing.T) {
	var log packLog
	c := NewWeightedCache[string, int](4, Limits{MaxOrder: 100, MaxWeight: 3}, log.record)

	_, _, err := c.Add(`a`, 0, 3)
	require.NoError(t, err)
	_, _, err = c.Add(`b`, 0, 1)
	require.NoError(t, err)

	require.Equal(t, packLog{{Kind: PackWeight, Offset: 2, Shifted: 1, Live: 1}}, log)
	assert.Equal(t, uint64(1), lookup(t, c, `a`).Weight)
	assert.Equal(t, uint64(2), lookup(t, c, `b`).Weight)

	touch(t, c, `b`, `a`)
	assert.Equal(t, Element[string]{Key: `b`, Weight: 3, Order: 3}, lookup(t, c, `b`))
	assert.Equal(t, Element[string]{Key: `a`, Weight: 2, Order: 4}, lookup(t, c, `a`))

	// b sits at the limit, a at 2 leaves one step of headroom.
	touch(t, c, `b`)
	assert.Equal(t, PackEvent{Kind: PackWeight, Offset: 1, Shifted: 2, Live: 2}, log[len(log)-1])
	assert.Equal(t, Element[string]{Key: `a`, Weight: 1, Order: 4}, lookup(t, c, `a`))
	assert.Equal(t, Element[string]{Key: `b`, Weight: 3, Order: 5}, lookup(t, c, `b`))

	// The spread now covers the whole range.
	before := c.Elements()
	_, ok, err := c.Get(`b`, true)
	assert.True(t, ok)
	assert.True(t, errors.Is(err, ErrWeightOverflow))
	assert.Equal(t, before, c.Elements())

	_, _, err = c.Add(`huge`, 0, 4)
	assert.True(t, errors.Is(err, ErrWeightOverflow))
	assert.Equal(t, 2, c.Len())
}

type stepResult struct {
	Value   int
	Found   bool
	Removed []Entry[string, int]
	Keys    []string
}

func step(c *WeightedCache[string, int], op, key string, value int, weight uint64) (stepResult, error) {
	var (
		res stepResult
		err error
	)
	switch op {
	case "add":
		_, res.Removed, err = c.Add(key, value, weight)
	case "get":
		res.Value, res.Found, err = c.Get(key, true)
	}
	res.Keys = c.Keys()
	return res, err
}

func TestPacking_MatchesUnboundedCounters(t *testing.T) {
	keys := []string{`a`, `b`, `c`, `d`, `e`, `f`, `g`, `h`, `i`, `j`, `k`, `l`}
	r := rand.New(rand.NewPCG(1, 2))

	var log packLog
	narrow := NewWeightedCache[string, int](5, Limits{MaxOrder: 12, MaxWeight: DefaultLimits().MaxWeight}, log.record)
	wide := NewWeightedCache[string, int](5, DefaultLimits(), nil)

	for i := 0; i < 2000; i++ {
		op := "get"
		if r.IntN(2) == 0 {
			op = "add"
		}
		key := keys[r.IntN(len(keys))]
		weight := r.Uint64N(4)

		want, err := step(wide, op, key, i, weight)
		require.NoError(t, err)
		got, err := step(narrow, op, key, i, weight)
		require.NoError(t, err)

		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("step %d %s(%s) diverged (-want +got):\n%s", i, op, key, diff)
		}
	}

	assert.GreaterOrEqual(t, log.count(PackOrder), 2)
}

func TestPacking_WeightsMatchUnboundedCounters(t *testing.T) {
	var log packLog
	narrow := NewWeightedCache[string, int](3, Limits{MaxOrder: 7, MaxWeight: 16}, log.record)
	wide := NewWeightedCache[string, int](3, DefaultLimits(), nil)

	keys := []string{`a`, `b`, `c`, `d`, `e`}
	for i := 0; i < 300; i++ {
		key := keys[i%len(keys)]

		want, err := step(wide, "add", key, i, 1)
		require.NoError(t, err)
		got, err := step(narrow, "add", key, i, 1)
		require.NoError(t, err)
		require.Empty(t, cmp.Diff(want, got), "add at step %d", i)

		// Touch every live key so weights climb without widening the spread.
		for _, live := range want.Keys {
			want, err := step(wide, "get", live, 0, 0)
			require.NoError(t, err)
			got, err := step(narrow, "get", live, 0, 0)
			require.NoError(t, err)
			require.Empty(t, cmp.Diff(want, got), "touch %s at step %d", live, i)
		}
	}

	assert.GreaterOrEqual(t, log.count(PackWeight), 2)
	assert.GreaterOrEqual(t, log.count(PackOrder), 2)
}

func TestPackWeights_FailedReplaceKeepsEntry(t *testing.T) {
	c := NewWeightedCache[string, int](4, Limits{MaxOrder: 100, MaxWeight: 3}, nil)

	_, _, err := c.Add(`x`, 1, 1)
	require.NoError(t, err)
	_, _, err = c.Add(`k`, 2, 1)
	require.NoError(t, err)
	before := c.Elements()

	_, removed, err := c.Add(`k`, 3, 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrWeightOverflow))
	assert.Empty(t, removed)
	assert.Equal(t, before, c.Elements())

	value, ok := c.Peek(`k`)
	require.True(t, ok)
	assert.Equal(t, 2, value)
}

func TestPackWeights_LimitWeightNeedsEmptyCache(t *testing.T) {
	c := NewWeightedCache[string, int](1, Limits{MaxOrder: 100, MaxWeight: 3}, nil)

	_, _, err := c.Add(`a`, 1, 3)
	require.NoError(t, err)

	// Replacing the only entry would empty the cache, but a failed Add must
	// not drop it, so the weight is refused up front.
	_, removed, err := c.Add(`a`, 2, 3)
	assert.True(t, errors.Is(err, ErrWeightOverflow))
	assert.Empty(t, removed)
	value, ok := c.Peek(`a`)
	require.True(t, ok)
	assert.Equal(t, 1, value)

	_, ok = c.Remove(`a`)
	require.True(t, ok)
	_, _, err = c.Add(`a`, 2, 3)
	require.NoError(t, err)
}
