package snapshot

import (
	"log/slog"
	"net/http"

	httperr "github.com/gridpulse-lab/gridpulse/internal/core/errors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the snapshot routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/snapshot/latest", s.HandleLatest)
}

// HandleLatest handles GET /v1/snapshot/latest
// Query parameters: device_id (optional)
func (s *Service) HandleLatest(c *gin.Context) {
	deviceID := c.Query("device_id")

	probe, err := s.Probe(c.Request.Context(), deviceID)
	if err != nil {
		slog.Error("[Snapshot] Query failed", "device_id", deviceID, "error", err)
		c.JSON(http.StatusInternalServerError, httperr.NewErrorResponse(
			httperr.HttpInternalError, "Failed to query latest time_key", err.Error()))
		return
	}

	c.JSON(http.StatusOK, probe)
}
