package tenant

import "github.com/kiosk404/hivegate/internal/pkg/errorx"

// Error codes for the tenant registry, per §7. Format: 10XXYY, where XX=01
// identifies this component and YY numbers the error.
const (
	CodeConfigInvalid      = 100101
	CodeTenantDuplicate    = 100102
	CodeCredentialMissing  = 100103
	CodeTenantRequired     = 100104
	CodeTenantUnknown      = 100105
	CodeTenantDisabled     = 100106
	CodeTenantConflict     = 100107
)

func init() {
	errorx.MustRegister(errorx.NewCoder(CodeConfigInvalid, 400, "tenant configuration is invalid"))
	errorx.MustRegister(errorx.NewCoder(CodeTenantDuplicate, 400, "duplicate tenant id"))
	errorx.MustRegister(errorx.NewCoder(CodeCredentialMissing, 400, "tenant credential missing"))
	errorx.MustRegister(errorx.NewCoder(CodeTenantRequired, 400, "tenant id required"))
	errorx.MustRegister(errorx.NewCoder(CodeTenantUnknown, 404, "unknown tenant"))
	errorx.MustRegister(errorx.NewCoder(CodeTenantDisabled, 403, "tenant disabled"))
	errorx.MustRegister(errorx.NewCoder(CodeTenantConflict, 400, "tenant id disagreement between header and body"))
}
