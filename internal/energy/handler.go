package energy

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	httperr "github.com/gridpulse-lab/gridpulse/internal/core/errors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the energy query routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/energy/daily", s.HandleDaily)
	r.GET("/v1/energy/kwh", s.HandleSummary)
}

type energyQuery struct {
	DeviceID  string   `form:"device_id"`
	SampleSec *string  `form:"sample_sec"`
	EF        *float64 `form:"ef"`
}

// leadingNumber matches the numeric prefix of a query value.
var leadingNumber = regexp.MustCompile(`^[ \t\n\r\v\f]*[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// lenientInt reads the leading number of s truncated toward zero. Values
// without one read as 0, so "5s" is 5 and "five" is 0.
func lenientInt(s string) int {
	num := strings.TrimLeft(leadingNumber.FindString(s), " \t\n\r\v\f")
	f, err := strconv.ParseFloat(num, 64)
	if err != nil && !math.IsInf(f, 0) {
		return 0
	}
	switch {
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int(f)
}

// resolve applies defaults. sample_sec below 1, including values that are
// not numbers, is raised to 1.
func (s *Service) resolve(q energyQuery) (deviceID string, sampleSec int, ef float64) {
	deviceID = q.DeviceID
	if deviceID == "" {
		deviceID = s.defaults.DeviceID
	}
	sampleSec = s.defaults.SampleSeconds
	if q.SampleSec != nil {
		sampleSec = max(1, lenientInt(*q.SampleSec))
	}
	ef = s.defaults.EmissionFactor
	if q.EF != nil {
		ef = *q.EF
	}
	return deviceID, sampleSec, ef
}

// HandleDaily handles GET /v1/energy/daily
// Query parameters: device_id, sample_sec, ef
func (s *Service) HandleDaily(c *gin.Context) {
	var q energyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, httperr.NewErrorResponse(
			httperr.HttpInvalidQueryError, "Invalid query parameters", err.Error()))
		return
	}

	deviceID, sampleSec, ef := s.resolve(q)
	report, err := s.Daily(c.Request.Context(), deviceID, sampleSec, ef)
	if err != nil {
		writeQueryError(c, err, "Failed to compute daily energy")
		return
	}

	c.JSON(http.StatusOK, report)
}

// HandleSummary handles GET /v1/energy/kwh
// Query parameters: device_id, sample_sec
func (s *Service) HandleSummary(c *gin.Context) {
	var q energyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, httperr.NewErrorResponse(
			httperr.HttpInvalidQueryError, "Invalid query parameters", err.Error()))
		return
	}

	deviceID, sampleSec, _ := s.resolve(q)
	summary, err := s.Summary(c.Request.Context(), deviceID, sampleSec)
	if err != nil {
		writeQueryError(c, err, "Failed to compute kWh summary")
		return
	}

	c.JSON(http.StatusOK, summary)
}

func writeQueryError(c *gin.Context, err error, message string) {
	if errors.Is(err, ErrInvalidQuery) {
		c.JSON(http.StatusBadRequest, httperr.NewErrorResponse(
			httperr.HttpInvalidQueryError, "Invalid energy query", err.Error()))
		return
	}

	slog.Error("[Energy] Query failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, httperr.NewErrorResponse(
		httperr.HttpInternalError, message, err.Error()))
}
