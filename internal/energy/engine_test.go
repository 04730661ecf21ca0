package energy

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	v1 "github.com/gridpulse-lab/gridpulse/internal/api/v1"
	"github.com/gridpulse-lab/gridpulse/internal/core/storage"
	storagemocks "github.com/gridpulse-lab/gridpulse/internal/mocks/storage"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

var (
	bangkok = time.FixedZone("ICT", 7*3600)
	dayOne  = time.Date(2026, 2, 8, 0, 0, 0, 0, bangkok)
)

func baseRequest() Request {
	return Request{
		DeviceID:       "sensor/3phase10",
		Start:          dayOne,
		End:            dayOne.AddDate(0, 0, 1),
		SampleSeconds:  5,
		EmissionFactor: 0.566,
	}
}

func balancedRow(ts time.Time) *v1.TelemetryRow {
	return &v1.TelemetryRow{
		DeviceID:    "sensor/3phase10",
		TimeKey:     ts,
		Voltage:     v1.Phase{R: f(230), Y: f(230), B: f(230)},
		Current:     v1.Phase{R: f(10), Y: f(10), B: f(10)},
		PowerFactor: v1.Phase{R: f(1), Y: f(1), B: f(1)},
	}
}

func TestInstantPower(t *testing.T) {
	tests := []struct {
		name string
		row  *v1.TelemetryRow
		want float64
	}{
		{
			name: "balanced load",
			row:  balancedRow(dayOne),
			want: 6900,
		},
		{
			name: "three phase sample",
			row: &v1.TelemetryRow{
				Voltage:     v1.Phase{R: f(230), Y: f(231), B: f(229)},
				Current:     v1.Phase{R: f(2), Y: f(1.8), B: f(2.1)},
				PowerFactor: v1.Phase{R: f(0.95), Y: f(0.96), B: f(0.94)},
			},
			want: 230*2*0.95 + 231*1.8*0.96 + 229*2.1*0.94,
		},
		{
			name: "missing factor zeroes only that phase",
			row: &v1.TelemetryRow{
				Voltage:     v1.Phase{R: f(230), Y: f(230), B: f(230)},
				Current:     v1.Phase{R: f(10), Y: nil, B: f(10)},
				PowerFactor: v1.Phase{R: f(1), Y: f(1), B: f(1)},
			},
			want: 4600,
		},
		{
			name: "zero is a reading",
			row: &v1.TelemetryRow{
				Voltage:     v1.Phase{R: f(0), Y: f(230), B: f(230)},
				Current:     v1.Phase{R: f(10), Y: f(0), B: f(10)},
				PowerFactor: v1.Phase{R: f(1), Y: f(1), B: f(0.5)},
			},
			want: 1150,
		},
		{
			name: "empty row",
			row:  &v1.TelemetryRow{},
			want: 0,
		},
		{
			name: "nil row",
			row:  nil,
			want: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.InDelta(t, tc.want, InstantPower(tc.row), 1e-9)
		})
	}
}

func TestEngine_ZeroRowWindow(t *testing.T) {
	store := storagemocks.NewWindowReader(t)
	req := baseRequest()
	store.EXPECT().
		WindowStats(mock.Anything, req.DeviceID, req.Start, req.End).
		Return(storage.WindowStats{}, nil).
		Once()

	res, err := NewEngine(store, 1).DailyEnergy(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 0.0, res.KWh)
	require.Equal(t, int64(0), res.RowsCount)
	require.Equal(t, int64(0), res.GapSeconds)
	require.Equal(t, int64(0), res.SecondsCovered)
	require.Equal(t, int64(0), res.MaxDT)
	require.Equal(t, 0.0, res.KgCO2)
	require.Equal(t, 0.0, res.KWLatest)
	require.Nil(t, res.FirstTime)
	require.Nil(t, res.LastTime)
	require.Nil(t, res.KWTime)
	require.Equal(t, ModeFast, res.Mode)
	require.Equal(t, 5, res.SampleSeconds)
}

func TestEngine_UniformWindowEnergy(t *testing.T) {
	const (
		rows   = 720
		watts  = 6900.0
		sample = 5
	)

	req := baseRequest()
	first := dayOne.Add(time.Hour)
	last := first.Add(time.Duration(rows-1) * sample * time.Second)

	store := storagemocks.NewWindowReader(t)
	store.EXPECT().
		WindowStats(mock.Anything, req.DeviceID, req.Start, req.End).
		Return(storage.WindowStats{Rows: rows, SumWatts: rows * watts, First: &first, Last: &last}, nil).
		Once()
	store.EXPECT().
		LatestInWindow(mock.Anything, req.DeviceID, req.Start, req.End).
		Return(balancedRow(last), nil).
		Once()

	res, err := NewEngine(store, 1).DailyEnergy(context.Background(), req)
	require.NoError(t, err)

	wantKWh := rows * watts * sample / 3_600_000.0
	require.InDelta(t, wantKWh, res.KWh, 1e-9)
	require.InDelta(t, 6.9, res.KWh, 1e-9)
	require.InDelta(t, wantKWh*0.566, res.KgCO2, 1e-9)
	require.Equal(t, int64(0), res.GapSeconds)
	require.Equal(t, int64(rows*sample), res.SecondsCovered)
	require.Equal(t, int64(sample), res.MaxDT)
	require.InDelta(t, 6.9, res.KWLatest, 1e-9)
	require.NotNil(t, res.KWTime)
	require.True(t, last.Equal(*res.KWTime))
}

func TestEngine_GapEstimate(t *testing.T) {
	req := baseRequest()
	first := dayOne.Add(8 * time.Hour)
	last := first.Add(3600 * time.Second)

	store := storagemocks.NewWindowReader(t)
	store.EXPECT().
		WindowStats(mock.Anything, req.DeviceID, req.Start, req.End).
		Return(storage.WindowStats{Rows: 2, SumWatts: 2000, First: &first, Last: &last}, nil).
		Once()
	store.EXPECT().
		LatestInWindow(mock.Anything, req.DeviceID, req.Start, req.End).
		Return(balancedRow(last), nil).
		Once()

	res, err := NewEngine(store, 1).DailyEnergy(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, int64(3595), res.GapSeconds)
	require.Equal(t, int64(3600), res.MaxDT)
	require.Equal(t, int64(10), res.SecondsCovered)
}

func TestGapSeconds(t *testing.T) {
	at := func(sec int) *time.Time {
		ts := dayOne.Add(time.Duration(sec) * time.Second)
		return &ts
	}

	tests := []struct {
		name  string
		stats storage.WindowStats
		want  int64
	}{
		{name: "single row", stats: storage.WindowStats{Rows: 1, First: at(0), Last: at(0)}, want: 0},
		{name: "denser than expected", stats: storage.WindowStats{Rows: 100, First: at(0), Last: at(60)}, want: 0},
		{name: "exactly uniform", stats: storage.WindowStats{Rows: 13, First: at(0), Last: at(60)}, want: 0},
		{name: "one missing sample", stats: storage.WindowStats{Rows: 12, First: at(0), Last: at(60)}, want: 5},
		{name: "sub-second elapsed truncates", stats: storage.WindowStats{Rows: 2, First: at(0), Last: func() *time.Time { ts := dayOne.Add(7900 * time.Millisecond); return &ts }()}, want: 2},
		{name: "missing bounds", stats: storage.WindowStats{Rows: 5}, want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, gapSeconds(tc.stats, 5))
		})
	}
}

func TestEngine_KWDivisor(t *testing.T) {
	req := baseRequest()
	ts := dayOne.Add(time.Hour)

	store := storagemocks.NewWindowReader(t)
	store.EXPECT().
		WindowStats(mock.Anything, req.DeviceID, req.Start, req.End).
		Return(storage.WindowStats{Rows: 1, SumWatts: 6900, First: &ts, Last: &ts}, nil).
		Once()
	store.EXPECT().
		LatestInWindow(mock.Anything, req.DeviceID, req.Start, req.End).
		Return(balancedRow(ts), nil).
		Once()

	res, err := NewEngine(store, 3).DailyEnergy(context.Background(), req)
	require.NoError(t, err)
	require.InDelta(t, 2.3, res.KWLatest, 1e-9)
	require.Equal(t, int64(5), res.MaxDT)
}

func TestEngine_InvalidRequests(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Request)
	}{
		{name: "no device", mutate: func(r *Request) { r.DeviceID = "" }},
		{name: "empty window", mutate: func(r *Request) { r.End = r.Start }},
		{name: "reversed window", mutate: func(r *Request) { r.End = r.Start.Add(-time.Hour) }},
		{name: "zero sample", mutate: func(r *Request) { r.SampleSeconds = 0 }},
		{name: "negative emission factor", mutate: func(r *Request) { r.EmissionFactor = -0.1 }},
		{name: "NaN emission factor", mutate: func(r *Request) { r.EmissionFactor = math.NaN() }},
		{name: "infinite emission factor", mutate: func(r *Request) { r.EmissionFactor = math.Inf(1) }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := storagemocks.NewWindowReader(t)
			req := baseRequest()
			tc.mutate(&req)

			_, err := NewEngine(store, 1).DailyEnergy(context.Background(), req)
			require.ErrorIs(t, err, ErrInvalidQuery)
		})
	}
}

func TestEngine_StoreErrors(t *testing.T) {
	storeErr := errors.New("pq: canceling statement due to statement timeout")
	req := baseRequest()

	t.Run("window stats", func(t *testing.T) {
		store := storagemocks.NewWindowReader(t)
		store.EXPECT().WindowStats(mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(storage.WindowStats{}, storeErr).Once()

		_, err := NewEngine(store, 1).DailyEnergy(context.Background(), req)
		require.ErrorIs(t, err, storeErr)
		require.NotErrorIs(t, err, ErrInvalidQuery)
	})

	t.Run("latest row", func(t *testing.T) {
		ts := dayOne.Add(time.Hour)
		store := storagemocks.NewWindowReader(t)
		store.EXPECT().WindowStats(mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(storage.WindowStats{Rows: 1, SumWatts: 100, First: &ts, Last: &ts}, nil).Once()
		store.EXPECT().LatestInWindow(mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, storeErr).Once()

		_, err := NewEngine(store, 1).DailyEnergy(context.Background(), req)
		require.ErrorIs(t, err, storeErr)
	})
}
