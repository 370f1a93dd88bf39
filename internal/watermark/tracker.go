package watermark

import (
	"math"
	"sync/atomic"
)

// Tracker derives event-time progress from observed timestamps. The watermark
// is the maximum timestamp seen so far and never regresses, so an
// out-of-order event with a smaller timestamp leaves it unchanged.
//
// Readers and the writer may run on different goroutines; reads observe a
// consistent snapshot.
type Tracker struct {
	current atomic.Int64
}

// NewTracker returns a tracker with the watermark at its minimum, before any
// observed event.
func NewTracker() *Tracker {
	t := &Tracker{}
	t.current.Store(math.MinInt64)
	return t
}

// Observe folds one event timestamp into the watermark and returns the
// watermark after the update.
func (t *Tracker) Observe(tsMillis int64) int64 {
	for {
		cur := t.current.Load()
		if tsMillis <= cur {
			return cur
		}
		if t.current.CompareAndSwap(cur, tsMillis) {
			return tsMillis
		}
	}
}

// Current returns the watermark.
func (t *Tracker) Current() int64 {
	return t.current.Load()
}

// Passed reports whether event-time progress has reached endMillis, i.e.
// whether a window ending there is eligible for closure.
func (t *Tracker) Passed(endMillis int64) bool {
	return t.current.Load() >= endMillis
}

// AdvanceToEnd pushes the watermark to the maximum value. Used when a bounded
// source is exhausted so every remaining window closes.
func (t *Tracker) AdvanceToEnd() {
	t.current.Store(math.MaxInt64)
}
