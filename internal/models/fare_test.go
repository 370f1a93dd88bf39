package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFareEventValidate(t *testing.T) {
	tests := []struct {
		name    string
		event   FareEvent
		wantErr error
	}{
		{
			name:  "valid event",
			event: FareEvent{DriverID: 1, Tip: 5.0, EventTimeMillis: 100},
		},
		{
			name:  "zero tip is valid",
			event: FareEvent{DriverID: 1, Tip: 0, EventTimeMillis: 100},
		},
		{
			name:  "epoch timestamp is valid",
			event: FareEvent{DriverID: 1, Tip: 1.0, EventTimeMillis: 0},
		},
		{
			name:    "negative tip",
			event:   FareEvent{DriverID: 1, Tip: -0.5, EventTimeMillis: 100},
			wantErr: ErrNegativeTip,
		},
		{
			name:    "NaN tip",
			event:   FareEvent{DriverID: 1, Tip: math.NaN(), EventTimeMillis: 100},
			wantErr: ErrBadTip,
		},
		{
			name:    "infinite tip",
			event:   FareEvent{DriverID: 1, Tip: math.Inf(1), EventTimeMillis: 100},
			wantErr: ErrBadTip,
		},
		{
			name:    "negative timestamp",
			event:   FareEvent{DriverID: 1, Tip: 1.0, EventTimeMillis: -1},
			wantErr: ErrBadTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestTipTotalString(t *testing.T) {
	total := TipTotal{WindowEnd: 3600000, DriverID: 1, TipSum: 7.0}
	assert.Equal(t, "(3600000,1,7)", total.String())
}
