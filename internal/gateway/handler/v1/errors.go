package v1

import "github.com/kiosk404/hivegate/internal/pkg/errorx"

// Error codes for the HTTP handler layer, per §7. Format: 10XXYY, XX=05.
const (
	CodeBind             = 100501
	CodeMessagesEmpty    = 100502
	CodeNoUserMessage    = 100503
	CodeDispatchFailed   = 100504
	CodeReloadFailed     = 100505
	CodeUnauthorized     = 100506
)

func init() {
	errorx.MustRegister(errorx.NewCoder(CodeBind, 400, "request body binding failed"))
	errorx.MustRegister(errorx.NewCoder(CodeMessagesEmpty, 400, "messages array is required and must not be empty"))
	errorx.MustRegister(errorx.NewCoder(CodeNoUserMessage, 400, "no user message found in messages array"))
	errorx.MustRegister(errorx.NewCoder(CodeDispatchFailed, 500, "agent dispatch failed"))
	errorx.MustRegister(errorx.NewCoder(CodeReloadFailed, 400, "configuration reload failed"))
	errorx.MustRegister(errorx.NewCoder(CodeUnauthorized, 401, "unauthorized"))
}
