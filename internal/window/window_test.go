package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAssign(t *testing.T) {
	hour := int64(time.Hour / time.Millisecond)

	tests := []struct {
		name      string
		ts        int64
		size      time.Duration
		wantStart int64
		wantEnd   int64
	}{
		{
			name:      "epoch lands in first hour",
			ts:        0,
			size:      time.Hour,
			wantStart: 0,
			wantEnd:   hour,
		},
		{
			name:      "mid window",
			ts:        hour/2 + 123,
			size:      time.Hour,
			wantStart: 0,
			wantEnd:   hour,
		},
		{
			name:      "window end belongs to the next window",
			ts:        hour,
			size:      time.Hour,
			wantStart: hour,
			wantEnd:   2 * hour,
		},
		{
			name:      "last millisecond stays in its window",
			ts:        hour - 1,
			size:      time.Hour,
			wantStart: 0,
			wantEnd:   hour,
		},
		{
			name:      "pre-epoch timestamp floors downward",
			ts:        -1,
			size:      time.Hour,
			wantStart: -hour,
			wantEnd:   0,
		},
		{
			name:      "minute windows",
			ts:        150_000,
			size:      time.Minute,
			wantStart: 120_000,
			wantEnd:   180_000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Assign(tt.ts, tt.size)
			assert.Equal(t, tt.wantStart, w.Start)
			assert.Equal(t, tt.wantEnd, w.End)
			assert.True(t, w.Contains(tt.ts))
		})
	}
}

func TestAssignIsDeterministic(t *testing.T) {
	ts := int64(5_400_000)
	first := Assign(ts, time.Hour)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Assign(ts, time.Hour))
	}
}

func TestWindowsAreGapless(t *testing.T) {
	// Consecutive timestamps either share a window or land in adjacent ones.
	size := time.Minute
	prev := Assign(0, size)
	for ts := int64(1); ts < 5*60_000; ts += 977 {
		w := Assign(ts, size)
		if w != prev {
			assert.Equal(t, prev.End, w.Start, "windows must not leave gaps")
		}
		prev = w
	}
}

func TestContains(t *testing.T) {
	w := Window{Start: 1000, End: 2000}

	assert.True(t, w.Contains(1000))
	assert.True(t, w.Contains(1999))
	assert.False(t, w.Contains(2000))
	assert.False(t, w.Contains(999))
}
