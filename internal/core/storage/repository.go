package storage

import (
	"context"
	"time"

	v1 "github.com/gridpulse-lab/gridpulse/internal/api/v1"
)

// TelemetryWriter persists mapped telemetry rows.
type TelemetryWriter interface {
	// InsertTelemetry appends one row and populates row.ID and row.TimeKey
	// from the store.
	InsertTelemetry(ctx context.Context, row *v1.TelemetryRow) error
}

// WindowStats is the single-query aggregate over one device and window.
type WindowStats struct {
	Rows int64

	// SumWatts is the sum over rows of per-row instantaneous power, where a
	// phase with any missing factor contributes zero.
	SumWatts float64

	First *time.Time
	Last  *time.Time
}

// WindowReader runs the read side of energy aggregation.
// Windows are half-open: start <= time_key < end.
type WindowReader interface {
	WindowStats(ctx context.Context, deviceID string, start, end time.Time) (WindowStats, error)

	// LatestInWindow returns the most recent row in the window, or nil when
	// the window is empty.
	LatestInWindow(ctx context.Context, deviceID string, start, end time.Time) (*v1.TelemetryRow, error)
}

// SnapshotReader answers liveness probes.
type SnapshotReader interface {
	// LatestTimeKey returns the newest time_key, restricted to deviceID when it
	// is non-empty. Returns nil when there are no rows.
	LatestTimeKey(ctx context.Context, deviceID string) (*time.Time, error)
}
