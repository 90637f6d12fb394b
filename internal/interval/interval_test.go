package interval_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"midend/internal/interval"
)

func TestAddCoalescesAdjacentRanges(t *testing.T) {
	iv := interval.New()
	iv.Add(interval.Range{Start: 0, End: 4})
	iv.Add(interval.Range{Start: 4, End: 8})
	require.Equal(t, []interval.Range{{Start: 0, End: 8}}, iv.Ranges())
}

func TestAddKeepsNonAdjacentRangesDistinct(t *testing.T) {
	iv := interval.New()
	iv.Add(interval.Range{Start: 0, End: 4})
	iv.Add(interval.Range{Start: 6, End: 8})
	require.Equal(t, []interval.Range{{Start: 0, End: 4}, {Start: 6, End: 8}}, iv.Ranges())
}

func TestAddPanicsOnUnorderedInsertion(t *testing.T) {
	iv := interval.New()
	iv.Add(interval.Range{Start: 10, End: 20})
	require.Panics(t, func() {
		iv.Add(interval.Range{Start: 5, End: 8})
	})
}

func TestEndsBefore(t *testing.T) {
	a := interval.New()
	a.Add(interval.Range{Start: 0, End: 4})
	b := interval.New()
	b.Add(interval.Range{Start: 4, End: 10})
	require.True(t, a.EndsBefore(b))
	require.False(t, b.EndsBefore(a))
}

func TestAreOverlappingDisjoint(t *testing.T) {
	a := interval.New()
	a.Add(interval.Range{Start: 0, End: 4})
	a.Add(interval.Range{Start: 10, End: 12})
	b := interval.New()
	b.Add(interval.Range{Start: 4, End: 10})
	require.False(t, interval.AreOverlapping(a, b))
}

func TestAreOverlappingDetectsSharedPoint(t *testing.T) {
	a := interval.New()
	a.Add(interval.Range{Start: 0, End: 10})
	b := interval.New()
	b.Add(interval.Range{Start: 5, End: 8})
	require.True(t, interval.AreOverlapping(a, b))
}

func TestMergeCoalescesAcrossBothSides(t *testing.T) {
	a := interval.New()
	a.Add(interval.Range{Start: 0, End: 4})
	a.Add(interval.Range{Start: 10, End: 14})
	b := interval.New()
	b.Add(interval.Range{Start: 2, End: 11})

	merged := interval.Merge(a, b)
	require.Equal(t, []interval.Range{{Start: 0, End: 14}}, merged.Ranges())
}

func TestMergeNonOverlappingStaysSeparate(t *testing.T) {
	a := interval.New()
	a.Add(interval.Range{Start: 0, End: 2})
	b := interval.New()
	b.Add(interval.Range{Start: 5, End: 7})

	merged := interval.Merge(a, b)
	require.Equal(t, []interval.Range{{Start: 0, End: 2}, {Start: 5, End: 7}}, merged.Ranges())
}
