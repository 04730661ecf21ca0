package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubHealth struct{ err error }

func (s stubHealth) Ping(context.Context) error { return s.err }

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		health     HealthChecker
		wantStatus int
		wantBody   string
	}{
		{name: "healthy", health: stubHealth{}, wantStatus: http.StatusOK, wantBody: `"database":"connected"`},
		{name: "no checker", health: nil, wantStatus: http.StatusOK, wantBody: `"status":"healthy"`},
		{name: "db down", health: stubHealth{err: errors.New("dial tcp: refused")}, wantStatus: http.StatusServiceUnavailable, wantBody: `"error":"database unreachable"`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := New(Options{Addr: ":0"}, tc.health)

			resp := httptest.NewRecorder()
			s.Engine.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))

			require.Equal(t, tc.wantStatus, resp.Code)
			require.Contains(t, resp.Body.String(), tc.wantBody)
		})
	}
}

func TestMetricsRoute(t *testing.T) {
	s := New(Options{Addr: ":0", MetricsPath: "/metrics"}, stubHealth{})

	resp := httptest.NewRecorder()
	s.Engine.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), "go_goroutines")
}

func TestMetricsRouteDisabled(t *testing.T) {
	s := New(Options{Addr: ":0"}, stubHealth{})

	resp := httptest.NewRecorder()
	s.Engine.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := New(Options{Addr: "127.0.0.1:0"}, stubHealth{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, s.Run(ctx))
}
