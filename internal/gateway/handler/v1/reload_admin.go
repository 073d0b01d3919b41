package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/kiosk404/hivegate/internal/gateway/tenant"
	"github.com/kiosk404/hivegate/internal/pkg/core"
	"github.com/kiosk404/hivegate/internal/pkg/errorx"
)

// ReloadHandler serves POST /admin/reload, re-reading the tenant
// configuration file and atomically swapping in a new generation (§4.1
// Reload, §9 "copy-on-write for generation swaps").
type ReloadHandler struct {
	registry   *tenant.Registry
	configPath string
}

func NewReloadHandler(registry *tenant.Registry, configPath string) *ReloadHandler {
	return &ReloadHandler{registry: registry, configPath: configPath}
}

func (h *ReloadHandler) Reload(c *gin.Context) {
	if err := h.registry.ReloadFile(h.configPath); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, CodeReloadFailed, "reload %s", h.configPath), nil)
		return
	}
	core.WriteResponse(c, nil, gin.H{"status": "reloaded"})
}
