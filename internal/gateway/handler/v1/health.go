package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kiosk404/hivegate/internal/pkg/core"
)

// HealthHandler serves GET /health (§6.2).
type HealthHandler struct {
	version string
	started time.Time
}

func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{version: version, started: time.Now()}
}

func (h *HealthHandler) Get(c *gin.Context) {
	core.WriteResponse(c, nil, HealthResponse{
		Status:  "ok",
		Version: h.version,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
	})
}
