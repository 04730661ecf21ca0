package energy

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gridpulse-lab/gridpulse/internal/core/storage"
)

// ModeFast marks results computed with the single-query sum of power.
const ModeFast = "fast"

// wattSecondsPerKWh converts summed watts x seconds into kWh.
const wattSecondsPerKWh = 3_600_000.0

// ErrInvalidQuery is returned (wrapped) for requests that cannot be answered.
var ErrInvalidQuery = errors.New("invalid energy query")

// Request selects one device and window.
type Request struct {
	DeviceID string
	Start    time.Time
	End      time.Time

	// SampleSeconds is the assumed spacing between rows.
	SampleSeconds int

	// EmissionFactor is kg CO2 per kWh.
	EmissionFactor float64
}

// Validate reports why the request cannot be answered, wrapping ErrInvalidQuery.
func (r Request) Validate() error {
	switch {
	case r.DeviceID == "":
		return fmt.Errorf("%w: device_id is required", ErrInvalidQuery)
	case !r.End.After(r.Start):
		return fmt.Errorf("%w: window end %s is not after start %s", ErrInvalidQuery, r.End, r.Start)
	case r.SampleSeconds < 1:
		return fmt.Errorf("%w: sample_sec must be at least 1, got %d", ErrInvalidQuery, r.SampleSeconds)
	case math.IsNaN(r.EmissionFactor) || math.IsInf(r.EmissionFactor, 0) || r.EmissionFactor < 0:
		return fmt.Errorf("%w: emission factor must be a non-negative number, got %v", ErrInvalidQuery, r.EmissionFactor)
	}
	return nil
}

// Result is the aggregate over one window. A window without rows yields a
// zero Result with nil timestamps.
type Result struct {
	DeviceID string
	Start    time.Time
	End      time.Time

	RowsCount int64
	SumWatts  float64
	FirstTime *time.Time
	LastTime  *time.Time

	KWh   float64
	KgCO2 float64

	// KWLatest is the power of the newest row in the window, at KWTime.
	KWLatest float64
	KWTime   *time.Time

	GapSeconds     int64
	SecondsCovered int64
	// MaxDT is the longest inferred spacing between rows.
	MaxDT int64

	Mode          string
	SampleSeconds int
}

// Engine derives energy figures from stored power samples.
type Engine struct {
	store     storage.WindowReader
	kwDivisor float64
}

// NewEngine creates an engine. kwDivisor scales kw_latest after the watt to
// kilowatt conversion; values <= 0 mean 1.
func NewEngine(store storage.WindowReader, kwDivisor float64) *Engine {
	if store == nil {
		panic("energy: store must not be nil")
	}
	if kwDivisor <= 0 || math.IsNaN(kwDivisor) || math.IsInf(kwDivisor, 0) {
		kwDivisor = 1
	}
	return &Engine{store: store, kwDivisor: kwDivisor}
}

// DailyEnergy aggregates the window and reads the latest power sample.
//
// Energy is the sum of per-row power times the sample interval. Rows are
// assumed uniformly spaced; GapSeconds is the coarse measure of how far the
// window falls short of that.
func (e *Engine) DailyEnergy(ctx context.Context, req Request) (*Result, error) {
	res, err := e.windowEnergy(ctx, req)
	if err != nil {
		return nil, err
	}
	if res.RowsCount == 0 {
		return res, nil
	}

	latest, err := e.store.LatestInWindow(ctx, req.DeviceID, req.Start, req.End)
	if err != nil {
		return nil, fmt.Errorf("latest sample for %s: %w", req.DeviceID, err)
	}
	if latest != nil {
		res.KWLatest = InstantPower(latest) / 1000 / e.kwDivisor
		ts := latest.TimeKey
		res.KWTime = &ts
	}
	return res, nil
}

// windowEnergy runs the aggregate query only.
func (e *Engine) windowEnergy(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	stats, err := e.store.WindowStats(ctx, req.DeviceID, req.Start, req.End)
	if err != nil {
		return nil, fmt.Errorf("window stats for %s: %w", req.DeviceID, err)
	}

	res := &Result{
		DeviceID:      req.DeviceID,
		Start:         req.Start,
		End:           req.End,
		Mode:          ModeFast,
		SampleSeconds: req.SampleSeconds,
	}
	if stats.Rows <= 0 {
		return res, nil
	}

	sample := int64(req.SampleSeconds)

	res.RowsCount = stats.Rows
	res.SumWatts = stats.SumWatts
	res.FirstTime = stats.First
	res.LastTime = stats.Last
	res.KWh = stats.SumWatts * float64(sample) / wattSecondsPerKWh
	res.KgCO2 = res.KWh * req.EmissionFactor
	res.SecondsCovered = stats.Rows * sample
	res.GapSeconds = gapSeconds(stats, sample)
	res.MaxDT = sample
	if stats.Rows > 1 {
		res.MaxDT = max(sample, res.GapSeconds+sample)
	}
	return res, nil
}

// gapSeconds is elapsed time between first and last row minus the time
// rows-1 evenly spaced samples would take, floored at zero.
func gapSeconds(stats storage.WindowStats, sample int64) int64 {
	if stats.Rows < 2 || stats.First == nil || stats.Last == nil {
		return 0
	}
	elapsed := max(0, int64(stats.Last.Sub(*stats.First)/time.Second))
	expected := (stats.Rows - 1) * sample
	return max(0, elapsed-expected)
}
