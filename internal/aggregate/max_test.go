package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgk/tipstream/internal/models"
)

func TestMaxSelectorPicksHighestSum(t *testing.T) {
	sel := NewMaxSelector()

	sel.Observe(models.TipTotal{WindowEnd: hourMillis, DriverID: 1, TipSum: 7.0})
	sel.Observe(models.TipTotal{WindowEnd: hourMillis, DriverID: 2, TipSum: 3.0})

	winner, ok := sel.Close(hourMillis)
	require.True(t, ok)
	assert.Equal(t, models.TipTotal{WindowEnd: hourMillis, DriverID: 1, TipSum: 7.0}, winner)
}

func TestMaxSelectorTieKeepsFirstArrival(t *testing.T) {
	sel := NewMaxSelector()

	sel.Observe(models.TipTotal{WindowEnd: hourMillis, DriverID: 3, TipSum: 10.0})
	sel.Observe(models.TipTotal{WindowEnd: hourMillis, DriverID: 4, TipSum: 10.0})

	winner, ok := sel.Close(hourMillis)
	require.True(t, ok)
	assert.Equal(t, int64(3), winner.DriverID, "strictly-greater comparison keeps the earlier record on ties")
}

func TestMaxSelectorTieIsReproducible(t *testing.T) {
	for run := 0; run < 50; run++ {
		sel := NewMaxSelector()
		sel.Observe(models.TipTotal{WindowEnd: hourMillis, DriverID: 3, TipSum: 10.0})
		sel.Observe(models.TipTotal{WindowEnd: hourMillis, DriverID: 4, TipSum: 10.0})
		winner, ok := sel.Close(hourMillis)
		require.True(t, ok)
		assert.Equal(t, int64(3), winner.DriverID)
	}
}

func TestMaxSelectorGroupsByWindowEnd(t *testing.T) {
	sel := NewMaxSelector()

	sel.Observe(models.TipTotal{WindowEnd: hourMillis, DriverID: 1, TipSum: 5.0})
	sel.Observe(models.TipTotal{WindowEnd: 2 * hourMillis, DriverID: 2, TipSum: 1.0})
	sel.Observe(models.TipTotal{WindowEnd: hourMillis, DriverID: 3, TipSum: 6.0})

	first, ok := sel.Close(hourMillis)
	require.True(t, ok)
	assert.Equal(t, int64(3), first.DriverID)

	second, ok := sel.Close(2 * hourMillis)
	require.True(t, ok)
	assert.Equal(t, int64(2), second.DriverID)
}

func TestMaxSelectorEmptyWindow(t *testing.T) {
	sel := NewMaxSelector()

	_, ok := sel.Close(hourMillis)
	assert.False(t, ok)
}

func TestMaxSelectorCloseDiscardsGroup(t *testing.T) {
	sel := NewMaxSelector()

	sel.Observe(models.TipTotal{WindowEnd: hourMillis, DriverID: 1, TipSum: 5.0})

	_, ok := sel.Close(hourMillis)
	require.True(t, ok)

	// A second close for the same window finds nothing.
	_, ok = sel.Close(hourMillis)
	assert.False(t, ok)
}
