package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/kiosk404/hivegate/internal/gateway/tenant"
	"github.com/kiosk404/hivegate/internal/pkg/core"
)

// TenantAdminHandler serves GET /admin/tenants, a secret-free listing of
// every loaded tenant for operator visibility (§6.1).
type TenantAdminHandler struct {
	registry *tenant.Registry
}

func NewTenantAdminHandler(registry *tenant.Registry) *TenantAdminHandler {
	return &TenantAdminHandler{registry: registry}
}

func (h *TenantAdminHandler) List(c *gin.Context) {
	summaries := h.registry.Summaries()
	data := make([]TenantSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		data = append(data, TenantSummaryResponse{
			ID:                   s.ID,
			Name:                 s.Name,
			Language:             s.Language,
			PostgresEnabled:      s.PostgresEnabled,
			KnowledgeBaseEnabled: s.KnowledgeBaseEnabled,
			FallbackEnabled:      s.FallbackEnabled,
		})
	}
	core.WriteResponse(c, nil, data)
}
