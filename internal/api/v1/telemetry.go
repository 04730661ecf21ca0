package v1

import (
	"fmt"
	"time"
)

// Phase holds one reading per phase of a three-phase feed.
// A nil field means the sensor did not report a usable value for that phase.
type Phase struct {
	R *float64 `json:"r"`
	Y *float64 `json:"y"`
	B *float64 `json:"b"`
}

// At returns the reading for phase index 0 (R), 1 (Y) or 2 (B).
func (p Phase) At(i int) *float64 {
	switch i {
	case 0:
		return p.R
	case 1:
		return p.Y
	case 2:
		return p.B
	}
	return nil
}

// TelemetryRow is one persisted sample from a sensor feed.
//
// Every numeric field is either a finite number or nil. Zero is a valid
// reading; nil is the absence of one.
type TelemetryRow struct {
	// ID is assigned by the store on insert.
	ID int64 `json:"id"`

	// DeviceID is the broker topic the sample arrived on, used verbatim.
	DeviceID string `json:"device_id"`

	// TimeKey is the store's clock at insert time. Not unique per device.
	TimeKey time.Time `json:"time_key"`

	Voltage       Phase    `json:"voltage"`
	Voltage3Phase Phase    `json:"voltage_3phase"`
	Current       Phase    `json:"current"`
	PowerFactor   Phase    `json:"pf"`
	Frequency     *float64 `json:"frequency"`
	PowerFactorT  *float64 `json:"pf_t"`
}

// Validate ensures the row carries the attributes the store requires.
func (r *TelemetryRow) Validate() error {
	if r.DeviceID == "" {
		return fmt.Errorf("device_id is required")
	}
	return nil
}
