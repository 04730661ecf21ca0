package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/gridpulse-lab/gridpulse/internal/core/storage"
)

const defaultStaleAfter = 60 * time.Second

// Probe is the freshness view of a device's latest row.
type Probe struct {
	Status   string     `json:"status"`
	DeviceID string     `json:"device_id,omitempty"`
	TimeKey  *time.Time `json:"time_key"`
	// AgeSeconds is nil when there are no rows.
	AgeSeconds *float64 `json:"age_seconds"`
	Stale      bool     `json:"stale"`
}

// Service answers "when did this device last report".
type Service struct {
	store      storage.SnapshotReader
	location   *time.Location
	staleAfter time.Duration
	now        func() time.Time
}

// NewService creates the snapshot service. staleAfter <= 0 means 60s.
func NewService(store storage.SnapshotReader, loc *time.Location, staleAfter time.Duration) *Service {
	if store == nil {
		panic("snapshot: store must not be nil")
	}
	if loc == nil {
		loc = time.UTC
	}
	if staleAfter <= 0 {
		staleAfter = defaultStaleAfter
	}
	return &Service{
		store:      store,
		location:   loc,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// LatestTimestamp returns the newest time_key, for deviceID when non-empty
// and across all devices otherwise. Nil means no rows.
func (s *Service) LatestTimestamp(ctx context.Context, deviceID string) (*time.Time, error) {
	ts, err := s.store.LatestTimeKey(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("latest time_key: %w", err)
	}
	if ts == nil {
		return nil, nil
	}
	local := ts.In(s.location)
	return &local, nil
}

// Probe reports the latest time_key with its age. A device with no rows is
// stale.
func (s *Service) Probe(ctx context.Context, deviceID string) (*Probe, error) {
	ts, err := s.LatestTimestamp(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	p := &Probe{Status: "ok", DeviceID: deviceID, TimeKey: ts, Stale: true}
	if ts != nil {
		age := max(0, s.now().Sub(*ts).Seconds())
		p.AgeSeconds = &age
		p.Stale = age > s.staleAfter.Seconds()
	}
	return p, nil
}
