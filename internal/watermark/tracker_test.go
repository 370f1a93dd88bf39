package watermark

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerAdvances(t *testing.T) {
	wm := NewTracker()

	assert.Equal(t, int64(100), wm.Observe(100))
	assert.Equal(t, int64(250), wm.Observe(250))
	assert.Equal(t, int64(250), wm.Current())
}

func TestTrackerNeverRegresses(t *testing.T) {
	wm := NewTracker()

	wm.Observe(1000)
	// An out-of-order event with a smaller timestamp leaves it unchanged.
	assert.Equal(t, int64(1000), wm.Observe(500))
	assert.Equal(t, int64(1000), wm.Current())
}

func TestTrackerPassed(t *testing.T) {
	wm := NewTracker()

	assert.False(t, wm.Passed(0))

	wm.Observe(3_600_000)
	assert.True(t, wm.Passed(3_600_000))
	assert.False(t, wm.Passed(3_600_001))
}

func TestTrackerAdvanceToEnd(t *testing.T) {
	wm := NewTracker()
	wm.Observe(42)

	wm.AdvanceToEnd()
	assert.True(t, wm.Passed(1<<62))
}

func TestTrackerConcurrentObserve(t *testing.T) {
	wm := NewTracker()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(base int64) {
			defer wg.Done()
			for ts := int64(0); ts < 1000; ts++ {
				wm.Observe(base + ts)
			}
		}(int64(i) * 1000)
	}
	wg.Wait()

	assert.Equal(t, int64(7999), wm.Current())
}
