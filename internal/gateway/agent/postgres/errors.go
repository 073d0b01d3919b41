package postgres

import "github.com/kiosk404/hivegate/internal/pkg/errorx"

// Error codes for the PostgreSQL agent, per §7. Format: 10XXYY, XX=04.
const (
	CodeSafetyRejected      = 100401
	CodeQueryTooExpensive   = 100402
	CodeSchemaUnavailable   = 100403
	CodeClarificationNeeded = 100404
	CodeGenerationFailed    = 100405
)

func init() {
	errorx.MustRegister(errorx.NewCoder(CodeSafetyRejected, 422, "generated query failed the safety gate"))
	errorx.MustRegister(errorx.NewCoder(CodeQueryTooExpensive, 504, "query exceeded the execution time budget"))
	errorx.MustRegister(errorx.NewCoder(CodeSchemaUnavailable, 502, "schema introspection unavailable"))
	errorx.MustRegister(errorx.NewCoder(CodeClarificationNeeded, 422, "question requires clarification"))
	errorx.MustRegister(errorx.NewCoder(CodeGenerationFailed, 502, "SQL generation failed"))
}
