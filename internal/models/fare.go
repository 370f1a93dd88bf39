package models

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNegativeTip  = errors.New("tip amount is negative")
	ErrBadTip       = errors.New("tip amount is not a finite number")
	ErrBadTimestamp = errors.New("event timestamp is negative")
)

// FareEvent is a single fare record as produced by a source. Timestamps are
// event time in milliseconds since epoch, carried by the event itself.
type FareEvent struct {
	DriverID        int64   `json:"driver_id" bson:"driver_id"`
	Tip             float64 `json:"tip" bson:"tip"`
	EventTimeMillis int64   `json:"event_time" bson:"event_time"`
}

// Validate rejects malformed events before they reach any window state.
func (e FareEvent) Validate() error {
	if math.IsNaN(e.Tip) || math.IsInf(e.Tip, 0) {
		return fmt.Errorf("driver %d: %w", e.DriverID, ErrBadTip)
	}
	if e.Tip < 0 {
		return fmt.Errorf("driver %d: %w", e.DriverID, ErrNegativeTip)
	}
	if e.EventTimeMillis < 0 {
		return fmt.Errorf("driver %d: %w", e.DriverID, ErrBadTimestamp)
	}
	return nil
}

// TipTotal is the aggregation result for one driver in one window, and also
// the shape of the per-window winner selected downstream.
type TipTotal struct {
	WindowEnd int64   `json:"window_end" bson:"window_end"`
	DriverID  int64   `json:"driver_id" bson:"driver_id"`
	TipSum    float64 `json:"tip_sum" bson:"tip_sum"`
}

func (t TipTotal) String() string {
	return fmt.Sprintf("(%d,%d,%g)", t.WindowEnd, t.DriverID, t.TipSum)
}
