package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/kiosk404/hivegate/internal/gateway/llm/provider"
	"github.com/kiosk404/hivegate/internal/pkg/core"
)

// ModelHandler serves GET /v1/models, listing every registered provider
// plugin name as an OpenAI-compatible model entry.
type ModelHandler struct{}

func NewModelHandler() *ModelHandler { return &ModelHandler{} }

func (h *ModelHandler) List(c *gin.Context) {
	names := provider.Names()
	data := make([]ModelObject, 0, len(names))
	for _, name := range names {
		data = append(data, ModelObject{ID: name, Object: "model", OwnedBy: "hivegate"})
	}
	core.WriteResponse(c, nil, ModelListResponse{Object: "list", Data: data})
}
