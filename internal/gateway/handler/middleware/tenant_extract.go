package middleware

import (
	"bytes"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kiosk404/hivegate/internal/pkg/json"
)

// chatBodyPeek is the minimal shape read from the request body to extract
// tenant_id/model without disturbing the handler's own binding (§4.2).
type chatBodyPeek struct {
	TenantID string `json:"tenant_id"`
	Model    string `json:"model"`
}

// TenantHint carries the extraction-order candidates gathered before the
// handler runs (§4.2): explicit header, bearer-key prefix, model-name
// prefix, and body tenant_id.
type TenantHint struct {
	Header     string
	BearerKey  string
	ModelField string
	BodyTenant string
}

const tenantHintKey = "gateway.tenant_hint"

// ExtractTenantHint reads the tenant header, Authorization bearer key, and
// a peek of the JSON body, stashing a TenantHint in the Gin context for the
// handler to hand to tenant.Registry.Resolve. It restores the request body
// so the handler's own JSON binding still works.
func ExtractTenantHint(headerName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		hint := TenantHint{Header: c.GetHeader(headerName)}

		if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			hint.BearerKey = strings.TrimPrefix(auth, "Bearer ")
		}

		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err == nil {
				c.Request.Body = io.NopCloser(bytes.NewReader(body))
				var peek chatBodyPeek
				if json.Unmarshal(body, &peek) == nil {
					hint.ModelField = peek.Model
					hint.BodyTenant = peek.TenantID
				}
			}
		}

		c.Set(tenantHintKey, hint)
		c.Next()
	}
}

// HintFrom retrieves the TenantHint stashed by ExtractTenantHint.
func HintFrom(c *gin.Context) TenantHint {
	if v, ok := c.Get(tenantHintKey); ok {
		if h, ok := v.(TenantHint); ok {
			return h
		}
	}
	return TenantHint{}
}
