package bins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertAll(t *testing.T, c *Collection[span], spans ...span) {
	t.Helper()
	for _, s := range spans {
		require.NoError(t, c.Insert(s))
	}
}

func queried(t *testing.T, c *Collection[span], start, stop int64) []span {
	t.Helper()
	out, err := c.Query(start, stop)
	require.NoError(t, err)
	return out
}

func TestInsertAssignsBins(t *testing.T) {
	c := newCollection(t)
	insertAll(t, c,
		span{0, 256, "a"},
		span{1, 257, "b"},
		span{256, 512, "c"},
		span{4194305, 5194305, "d"},
	)

	assert.Equal(t, []span{{0, 256, "a"}}, c.bins[4681])
	assert.Equal(t, []span{{1, 257, "b"}}, c.bins[585])
	assert.Equal(t, []span{{256, 512, "c"}}, c.bins[4682])
	assert.Equal(t, []span{{4194305, 5194305, "d"}}, c.bins[5])
	assert.Equal(t, 4, c.Len())
}

func TestInsertRejectsMalformedIntervals(t *testing.T) {
	c := newCollection(t)

	assert.ErrorIs(t, c.Insert(span{start: -1, end: 5}), ErrInvalidInterval)
	assert.ErrorIs(t, c.Insert(span{start: 10, end: 5}), ErrInvalidInterval)
	assert.Equal(t, 0, c.Len())

	// Zero-length intervals are fine.
	assert.NoError(t, c.Insert(span{start: 7, end: 7}))
	assert.Equal(t, 1, c.Len())
}

func TestInsertDynamicCap(t *testing.T) {
	c := newCollection(t)

	var re *RangeError
	err := c.Insert(span{start: 0, end: 1<<41 + 1})
	require.ErrorAs(t, err, &re)
	assert.Equal(t, int64(1<<41), re.Max)

	// Rejected before any resize: geometry untouched.
	assert.Equal(t, 23, c.maxBinPower)
	assert.Equal(t, 0, c.Len())

	// The cap itself is representable.
	assert.NoError(t, c.Insert(span{start: 0, end: 1 << 41}))
	assert.Equal(t, 41, c.maxBinPower)
}

func TestFixedModeConstruction(t *testing.T) {
	for _, tc := range []struct {
		length int64
		power  int
	}{
		{1, 23},
		{8388608, 23},
		{8388609, 26},
		{67108864, 26},
		{1 << 41, 41},
	} {
		c := newCollection(t, WithLength(tc.length))
		assert.Equal(t, tc.power, c.maxBinPower, "length %d", tc.length)
		assert.False(t, c.Dynamic())
	}

	_, err := New(spanBounds, WithLength(1<<41+1))
	var re *RangeError
	assert.ErrorAs(t, err, &re)

	_, err = New(spanBounds, WithLength(0))
	assert.Error(t, err)
}

func TestFixedModeRejectsOversizedInserts(t *testing.T) {
	c := newCollection(t, WithLength(67108864))
	insertAll(t, c,
		span{0, 2048, "a"},
		span{1, 2049, "b"},
		span{20000, 50000, "c"},
		span{67108861, 67108864, "d"},
		span{4194305, 5194305, "e"},
		span{0, 8388608, "f"},
		span{0, 67108864, "g"},
	)
	assert.Equal(t, []span{{0, 2048, "a"}}, c.bins[4681])
	assert.Equal(t, []span{{1, 2049, "b"}}, c.bins[585])

	// One coordinate past the locked maximum is rejected, never resized.
	var re *RangeError
	require.ErrorAs(t, c.Insert(span{0, 67108865, "x"}), &re)
	assert.Equal(t, int64(67108865), re.Coord)
	assert.Equal(t, int64(67108864), re.Max)
	require.ErrorAs(t, c.Insert(span{67108864, 67108865, "y"}), &re)

	assert.Equal(t, 26, c.maxBinPower)
	assert.Equal(t, 7, c.Len())
}

func TestQueryValidation(t *testing.T) {
	c := newCollection(t)
	insertAll(t, c, span{0, 2048, "a"})

	_, err := c.Query(55, 25)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = c.Query(-1, 5)
	assert.ErrorIs(t, err, ErrInvalidRange)

	var re *RangeError
	_, err = c.Query(0, 1<<27)
	assert.ErrorAs(t, err, &re, "stop beyond the current maximum")

	_, err = c.At(1 << 27)
	assert.ErrorAs(t, err, &re)
}

func TestQueryOverlapPredicates(t *testing.T) {
	c := newCollection(t)
	a := span{0, 2048, "a"}
	b := span{1, 2049, "b"}
	mid := span{20000, 50000, "mid"}
	wide := span{0, 8388608, "wide"}
	insertAll(t, c, a, b, mid, wide)

	atHits := func(pos int64) []span {
		out, err := c.At(pos)
		require.NoError(t, err)
		return out
	}

	check := func() {
		// Point queries respect the half-open bounds.
		assert.NotContains(t, atHits(2049), a)
		assert.NotContains(t, atHits(2048), a)
		assert.NotContains(t, atHits(0), b)
		assert.NotContains(t, atHits(50000), mid)
		assert.NotContains(t, atHits(19999), mid)
		assert.Contains(t, atHits(0), a)
		assert.Contains(t, atHits(2047), a)

		// Query range inside a record.
		assert.Contains(t, queried(t, c, 1000, 1500), wide)
		assert.Contains(t, queried(t, c, 1000, 1500), b)
		assert.NotContains(t, queried(t, c, 1000, 1500), mid)

		// Record overlapping the query's right edge.
		assert.Contains(t, queried(t, c, 19000, 21000), mid)
		assert.Contains(t, queried(t, c, 19000, 20001), mid)
		assert.NotContains(t, queried(t, c, 19000, 20000), mid)

		// Record overlapping the query's left edge.
		assert.Contains(t, queried(t, c, 29000, 55000), mid)
		assert.Contains(t, queried(t, c, 49999, 55000), mid)
		assert.NotContains(t, queried(t, c, 50000, 55000), mid)
	}

	check()

	// Everything above must still hold after a dynamic expansion.
	require.NoError(t, c.Insert(span{0, 67108864, "huge"}))
	require.Equal(t, 26, c.maxBinPower)
	check()
}

func TestQueryReturnsEachMatchOnce(t *testing.T) {
	c := newCollection(t)
	// Matches both "starts inside" and "ends inside" predicates.
	s := span{100, 200, "s"}
	insertAll(t, c, s)

	assert.Equal(t, []span{s}, queried(t, c, 50, 300))
}

func TestZeroLengthRecordRetrieval(t *testing.T) {
	c := newCollection(t)
	pt := span{8388605, 8388605, "pt"}
	require.NoError(t, c.Insert(pt))

	assert.Contains(t, queried(t, c, 8388604, 8388606), pt)
	assert.Contains(t, queried(t, c, 8388604, 8388605), pt)
	assert.Contains(t, queried(t, c, 8388605, 8388606), pt)
	assert.Empty(t, queried(t, c, 8388603, 8388604))
}

func TestZeroLengthAtGeometryEdge(t *testing.T) {
	c := newCollection(t, WithLength(8388608))

	// A point record at the locked maximum needs one coordinate of
	// localization room, which the geometry does not have.
	var re *RangeError
	require.ErrorAs(t, c.Insert(span{8388608, 8388608, "pt"}), &re)
	assert.Equal(t, 23, c.maxBinPower)
	assert.Equal(t, 0, c.Len())

	require.NoError(t, c.Insert(span{8388607, 8388607, "ok"}))

	// Same at the dynamic cap: rejected before any resize.
	d := newCollection(t)
	require.ErrorAs(t, d.Insert(span{1 << 41, 1 << 41, "pt"}), &re)
	assert.Equal(t, 23, d.maxBinPower)
}

func TestDynamicResizeScenario(t *testing.T) {
	c := newCollection(t)

	first := span{0, 256, "first"}
	second := span{1, 257, "second"}
	insertAll(t, c, first, second)
	assert.Equal(t, []span{first}, c.bins[4681], "leftmost finest-level bin")
	assert.Equal(t, []span{second}, c.bins[585])

	// Wider than the coarsest bin: exactly one expansion.
	big := span{1, 8388609, "big"}
	require.NoError(t, c.Insert(big))
	assert.Equal(t, 26, c.maxBinPower)

	assert.Contains(t, queried(t, c, 0, 256), first)
	assert.Contains(t, queried(t, c, 0, 256), second)
	assert.Contains(t, queried(t, c, 1000000, 1000001), big)
	assert.Equal(t, 3, c.Len())
}

func TestQueryEmptyCollection(t *testing.T) {
	c := newCollection(t)
	assert.Empty(t, queried(t, c, 0, 8388608))
}

func TestNewRequiresBoundsFunc(t *testing.T) {
	_, err := New[span](nil)
	assert.Error(t, err)
}
