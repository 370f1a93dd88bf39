package aggregate

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tgk/tipstream/internal/models"
	"github.com/tgk/tipstream/internal/watermark"
	"github.com/tgk/tipstream/internal/window"
)

var (
	// ErrLateEvent marks an event whose window already closed. Late events
	// are dropped rather than reopening emitted state; callers count them
	// and move on.
	ErrLateEvent = errors.New("event is late, window already closed")

	// ErrSumOverflow means a running sum left the representable range. This
	// is state corruption, not a per-event problem, and terminates the
	// pipeline.
	ErrSumOverflow = errors.New("tip sum overflowed")
)

// windowState holds the per-driver running sums for one open window. The
// order slice remembers which driver appeared first so emission order, and
// with it the downstream tie-break, is a function of arrival order alone.
type windowState struct {
	sums  map[int64]float64
	order []int64
}

// TipAccumulator keeps one running tip sum per (window, driver) pair and
// emits the finished totals once the watermark passes a window's end.
//
// Sums are combined with plain addition, so the total for a pair is
// independent of the arrival order of its events. State for a window exists
// exactly for the drivers observed inside it and is discarded at emission;
// a closed window never accepts further updates.
//
// Not safe for concurrent use; the pipeline drives it from a single
// goroutine, which is also what serializes per-key updates.
type TipAccumulator struct {
	size time.Duration
	wm   *watermark.Tracker
	open map[window.Window]*windowState
}

// NewTipAccumulator creates an accumulator over tumbling windows of the
// given size, gated by the shared watermark tracker.
func NewTipAccumulator(size time.Duration, wm *watermark.Tracker) *TipAccumulator {
	return &TipAccumulator{
		size: size,
		wm:   wm,
		open: make(map[window.Window]*windowState),
	}
}

// Apply folds one event into its (window, driver) sum. The caller must have
// observed the event's timestamp on the watermark tracker already.
func (a *TipAccumulator) Apply(ev models.FareEvent) error {
	w := window.Assign(ev.EventTimeMillis, a.size)
	if a.wm.Passed(w.End) {
		// The window was already emitted and its state discarded.
		return fmt.Errorf("driver %d at %d: %w", ev.DriverID, ev.EventTimeMillis, ErrLateEvent)
	}

	state, ok := a.open[w]
	if !ok {
		state = &windowState{sums: make(map[int64]float64)}
		a.open[w] = state
	}
	prev, seen := state.sums[ev.DriverID]
	sum := prev + ev.Tip
	if math.IsInf(sum, 0) || math.IsNaN(sum) {
		return fmt.Errorf("window %s driver %d: %w", w, ev.DriverID, ErrSumOverflow)
	}
	if !seen {
		state.order = append(state.order, ev.DriverID)
	}
	state.sums[ev.DriverID] = sum
	return nil
}

// ClosedWindow carries everything emitted for one closed window: one total
// per driver observed in it, in the order the drivers first appeared.
type ClosedWindow struct {
	Window window.Window
	Totals []models.TipTotal
}

// CloseExpired emits every window whose end the watermark has passed,
// ordered by window end, and discards their state. Windows that saw no
// events simply have no state and produce nothing.
func (a *TipAccumulator) CloseExpired() []ClosedWindow {
	var closed []ClosedWindow
	for w, state := range a.open {
		if !a.wm.Passed(w.End) {
			continue
		}
		cw := ClosedWindow{Window: w, Totals: make([]models.TipTotal, 0, len(state.order))}
		for _, driverID := range state.order {
			cw.Totals = append(cw.Totals, models.TipTotal{
				WindowEnd: w.End,
				DriverID:  driverID,
				TipSum:    state.sums[driverID],
			})
		}
		closed = append(closed, cw)
		delete(a.open, w)
	}
	sort.Slice(closed, func(i, j int) bool {
		return closed[i].Window.End < closed[j].Window.End
	})
	return closed
}

// Pending returns the number of windows still holding state.
func (a *TipAccumulator) Pending() int {
	return len(a.open)
}
