package energy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gridpulse-lab/gridpulse/internal/core/storage"
	"github.com/gridpulse-lab/gridpulse/internal/observability/metrics"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// summaryTimeout bounds a shared summary computation once it no longer
// follows any single caller's context.
const summaryTimeout = 30 * time.Second

// Defaults fill in query parameters the caller left out.
type Defaults struct {
	DeviceID       string
	SampleSeconds  int
	EmissionFactor float64
}

// Service answers today/yesterday energy queries in a fixed time zone.
type Service struct {
	engine    *Engine
	snapshots storage.SnapshotReader
	location  *time.Location
	defaults  Defaults
	now       func() time.Time

	summaryGroup singleflight.Group // Dedupe concurrent identical summaries
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithClock replaces time.Now, used to pick "today".
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates the query service.
func NewService(engine *Engine, snapshots storage.SnapshotReader, loc *time.Location, defaults Defaults, opts ...ServiceOption) *Service {
	if engine == nil {
		panic("energy: engine must not be nil")
	}
	if snapshots == nil {
		panic("energy: snapshot reader must not be nil")
	}
	if loc == nil {
		loc = time.UTC
	}
	if defaults.SampleSeconds < 1 {
		defaults.SampleSeconds = 5
	}
	s := &Service{
		engine:    engine,
		snapshots: snapshots,
		location:  loc,
		defaults:  defaults,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Daily computes the report for today and yesterday concurrently.
func (s *Service) Daily(ctx context.Context, deviceID string, sampleSeconds int, emissionFactor float64) (*DailyReport, error) {
	start := time.Now()

	today := DayWindow(s.now(), s.location)
	yesterday := today.Previous()

	var todayRes, yesterdayRes *Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.engine.DailyEnergy(gctx, s.request(deviceID, today, sampleSeconds, emissionFactor))
		todayRes = r
		return err
	})
	g.Go(func() error {
		r, err := s.engine.DailyEnergy(gctx, s.request(deviceID, yesterday, sampleSeconds, emissionFactor))
		yesterdayRes = r
		return err
	})
	if err := g.Wait(); err != nil {
		metrics.ObserveEnergyQuery(metrics.ResultError, time.Since(start))
		return nil, err
	}
	metrics.ObserveEnergyQuery(metrics.ResultSuccess, time.Since(start))

	slog.Debug("[Energy] Daily report computed",
		"device_id", deviceID,
		"today_rows", todayRes.RowsCount,
		"yesterday_rows", yesterdayRes.RowsCount,
		"duration", time.Since(start))

	return &DailyReport{
		DeviceID:       deviceID,
		EmissionFactor: emissionFactor,
		Today:          s.dayReport(today, todayRes),
		Yesterday:      s.dayReport(yesterday, yesterdayRes),
	}, nil
}

// Summary is the fast variant: rounded kWh for both days plus the device's
// latest time_key. Concurrent calls for the same device and sample interval
// share one computation; nothing is cached afterwards.
//
// The shared computation is detached from the caller that started it, so a
// cancelled caller returns its own ctx error without failing the others.
func (s *Service) Summary(ctx context.Context, deviceID string, sampleSeconds int) (*Summary, error) {
	key := fmt.Sprintf("%s|%d", deviceID, sampleSeconds)
	ch := s.summaryGroup.DoChan(key, func() (interface{}, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), summaryTimeout)
		defer cancel()
		return s.summary(shared, deviceID, sampleSeconds)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			slog.Debug("[Energy] Summary shared with concurrent caller", "device_id", deviceID)
		}
		out := *res.Val.(*Summary)
		return &out, nil
	}
}

func (s *Service) summary(ctx context.Context, deviceID string, sampleSeconds int) (*Summary, error) {
	start := time.Now()

	today := DayWindow(s.now(), s.location)
	yesterday := today.Previous()

	todayRes, err := s.engine.windowEnergy(ctx, s.request(deviceID, today, sampleSeconds, 0))
	if err != nil {
		metrics.ObserveEnergyQuery(metrics.ResultError, time.Since(start))
		return nil, err
	}
	yesterdayRes, err := s.engine.windowEnergy(ctx, s.request(deviceID, yesterday, sampleSeconds, 0))
	if err != nil {
		metrics.ObserveEnergyQuery(metrics.ResultError, time.Since(start))
		return nil, err
	}
	latest, err := s.snapshots.LatestTimeKey(ctx, deviceID)
	if err != nil {
		metrics.ObserveEnergyQuery(metrics.ResultError, time.Since(start))
		return nil, fmt.Errorf("latest time_key for %s: %w", deviceID, err)
	}

	elapsed := time.Since(start)
	metrics.ObserveEnergyQuery(metrics.ResultSuccess, elapsed)

	return &Summary{
		Status:        "ok",
		DeviceID:      deviceID,
		SampleSeconds: sampleSeconds,
		KWhToday:      round(todayRes.KWh, 3),
		KWhYesterday:  round(yesterdayRes.KWh, 3),
		LatestTimeKey: s.localTime(latest),
		ElapsedMS:     round(float64(elapsed)/float64(time.Millisecond), 1),
	}, nil
}

func (s *Service) request(deviceID string, w Window, sampleSeconds int, ef float64) Request {
	return Request{
		DeviceID:       deviceID,
		Start:          w.Start,
		End:            w.End,
		SampleSeconds:  sampleSeconds,
		EmissionFactor: ef,
	}
}

func (s *Service) dayReport(w Window, r *Result) DayReport {
	return DayReport{
		Date:     w.Date(),
		KWh:      r.KWh,
		KgCO2:    r.KgCO2,
		KWLatest: r.KWLatest,
		KWTime:   s.localTime(r.KWTime),
		Meta: Meta{
			KWhTotal:       r.KWh,
			SecondsCovered: r.SecondsCovered,
			GapSeconds:     r.GapSeconds,
			MaxDT:          r.MaxDT,
			FirstTime:      s.localTime(r.FirstTime),
			LastTime:       s.localTime(r.LastTime),
			RowsCount:      r.RowsCount,
			Mode:           r.Mode,
			SampleSeconds:  r.SampleSeconds,
		},
	}
}

func (s *Service) localTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	local := t.In(s.location)
	return &local
}

// round uses decimal half-away-from-zero rounding, like SQL ROUND.
func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
