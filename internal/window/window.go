package window

import (
	"fmt"
	"time"
)

// DefaultSize is the aggregation window used when no override is configured.
const DefaultSize = time.Hour

// Window is a tumbling event-time bucket covering [Start, End) in
// milliseconds. Windows of a given size are non-overlapping and gapless.
type Window struct {
	Start int64
	End   int64
}

// Assign maps an event timestamp to the tumbling window it belongs to.
// Stateless and deterministic: the same timestamp always lands in the same
// window regardless of processing order.
func Assign(tsMillis int64, size time.Duration) Window {
	sz := size.Milliseconds()
	// Floor toward negative infinity so pre-epoch timestamps still bucket
	// correctly.
	start := tsMillis - ((tsMillis%sz)+sz)%sz
	return Window{Start: start, End: start + sz}
}

// Contains reports whether ts falls inside the half-open interval.
func (w Window) Contains(tsMillis int64) bool {
	return tsMillis >= w.Start && tsMillis < w.End
}

func (w Window) String() string {
	return fmt.Sprintf("[%d,%d)", w.Start, w.End)
}
