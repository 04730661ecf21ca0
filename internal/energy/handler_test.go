package energy

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httperr "github.com/gridpulse-lab/gridpulse/internal/core/errors"
	"github.com/gridpulse-lab/gridpulse/internal/core/storage"
	storagemocks "github.com/gridpulse-lab/gridpulse/internal/mocks/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHandleDaily(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		query          string
		setup          func(svc *Service, windows *storagemocks.WindowReader)
		expectedStatus int
		assertBody     func(t *testing.T, body []byte)
	}{
		{
			name:  "defaults applied",
			query: "",
			setup: func(_ *Service, windows *storagemocks.WindowReader) {
				windows.EXPECT().
					WindowStats(mock.Anything, "sensor/3phase10", mock.Anything, mock.Anything).
					Return(storage.WindowStats{}, nil).
					Twice()
			},
			expectedStatus: http.StatusOK,
			assertBody: func(t *testing.T, body []byte) {
				var report DailyReport
				require.NoError(t, json.Unmarshal(body, &report))
				require.Equal(t, "sensor/3phase10", report.DeviceID)
				require.Equal(t, 0.566, report.EmissionFactor)
				require.Equal(t, "2026-02-08", report.Today.Date)
				require.Equal(t, 5, report.Today.Meta.SampleSeconds)
				require.Equal(t, "fast", report.Yesterday.Meta.Mode)
			},
		},
		{
			name:  "sample below one is clamped",
			query: "?device_id=sensor/3phase11&sample_sec=0&ef=0.5",
			setup: func(_ *Service, windows *storagemocks.WindowReader) {
				windows.EXPECT().
					WindowStats(mock.Anything, "sensor/3phase11", mock.Anything, mock.Anything).
					Return(storage.WindowStats{}, nil).
					Twice()
			},
			expectedStatus: http.StatusOK,
			assertBody: func(t *testing.T, body []byte) {
				var report DailyReport
				require.NoError(t, json.Unmarshal(body, &report))
				require.Equal(t, 1, report.Today.Meta.SampleSeconds)
				require.Equal(t, 0.5, report.EmissionFactor)
			},
		},
		{
			name:  "non-numeric sample reads as zero and is clamped",
			query: "?sample_sec=five",
			setup: func(_ *Service, windows *storagemocks.WindowReader) {
				windows.EXPECT().
					WindowStats(mock.Anything, "sensor/3phase10", mock.Anything, mock.Anything).
					Return(storage.WindowStats{}, nil).
					Twice()
			},
			expectedStatus: http.StatusOK,
			assertBody: func(t *testing.T, body []byte) {
				var report DailyReport
				require.NoError(t, json.Unmarshal(body, &report))
				require.Equal(t, 1, report.Today.Meta.SampleSeconds)
			},
		},
		{
			name:  "sample with trailing text keeps its leading number",
			query: "?sample_sec=10s",
			setup: func(_ *Service, windows *storagemocks.WindowReader) {
				windows.EXPECT().
					WindowStats(mock.Anything, "sensor/3phase10", mock.Anything, mock.Anything).
					Return(storage.WindowStats{}, nil).
					Twice()
			},
			expectedStatus: http.StatusOK,
			assertBody: func(t *testing.T, body []byte) {
				var report DailyReport
				require.NoError(t, json.Unmarshal(body, &report))
				require.Equal(t, 10, report.Today.Meta.SampleSeconds)
			},
		},
		{
			name:           "negative emission factor",
			query:          "?ef=-1",
			setup:          func(*Service, *storagemocks.WindowReader) {},
			expectedStatus: http.StatusBadRequest,
			assertBody:     assertErrorType(httperr.HttpInvalidQueryError),
		},
		{
			name:  "store failure",
			query: "?device_id=sensor/3phase10",
			setup: func(_ *Service, windows *storagemocks.WindowReader) {
				windows.EXPECT().
					WindowStats(mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.WindowStats{}, errors.New("connection refused")).
					Maybe()
			},
			expectedStatus: http.StatusInternalServerError,
			assertBody:     assertErrorType(httperr.HttpInternalError),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, windows, _ := newTestService(t)
			tc.setup(svc, windows)

			r := gin.New()
			svc.RegisterRoutes(r)

			req := httptest.NewRequest(http.MethodGet, "/v1/energy/daily"+tc.query, nil)
			resp := httptest.NewRecorder()
			r.ServeHTTP(resp, req)

			require.Equal(t, tc.expectedStatus, resp.Code)
			tc.assertBody(t, resp.Body.Bytes())
		})
	}
}

func TestHandleSummary(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc, windows, snapshots := newTestService(t)
	latest := time.Date(2026, 2, 8, 7, 29, 55, 0, time.UTC)

	windows.EXPECT().
		WindowStats(mock.Anything, "sensor/3phase10", mock.Anything, mock.Anything).
		Return(storage.WindowStats{Rows: 720, SumWatts: 720 * 6900}, nil).
		Twice()
	snapshots.EXPECT().
		LatestTimeKey(mock.Anything, "sensor/3phase10").
		Return(&latest, nil).
		Once()

	r := gin.New()
	svc.RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/v1/energy/kwh?sample_sec=5", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var summary Summary
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &summary))
	require.Equal(t, "ok", summary.Status)
	require.Equal(t, 6.9, summary.KWhToday)
	require.Equal(t, 6.9, summary.KWhYesterday)
	require.NotNil(t, summary.LatestTimeKey)
	require.True(t, latest.Equal(*summary.LatestTimeKey))
}

func assertErrorType(errorType string) func(t *testing.T, body []byte) {
	return func(t *testing.T, body []byte) {
		var errResp httperr.ErrorResponse
		require.NoError(t, json.Unmarshal(body, &errResp))
		require.Equal(t, httperr.StatusError, errResp.Status)
		require.Equal(t, errorType, errResp.ErrorType)
	}
}

func TestLenientInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"5", 5},
		{" 7", 7},
		{"+3", 3},
		{"-4", -4},
		{"2.9", 2},
		{"-2.9", -2},
		{".5", 0},
		{"1e3", 1000},
		{"12abc", 12},
		{"five", 0},
		{"", 0},
		{"1e400", math.MaxInt32},
		{"99999999999", math.MaxInt32},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			require.Equal(t, tc.want, lenientInt(tc.in))
		})
	}
}
