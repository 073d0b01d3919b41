// Package core provides the HTTP response envelope every gateway handler
// writes through, so a client always sees the same {"error": {message, type,
// code}} shape on failure (or the bare payload on success) regardless of
// which handler answered.
package core

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kiosk404/hivegate/internal/pkg/errorx"
	"github.com/kiosk404/hivegate/internal/pkg/logger"
)

// errorEnvelope is the body written on any non-nil error, in the
// OpenAI-compatible shape clients already expect from /v1/chat/completions.
type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

// WriteResponse writes err as a structured error envelope when non-nil,
// otherwise writes data as a 200 JSON body. A registered *errorx.Error
// drives the HTTP status and public message; any other error is logged
// with its detail and surfaced to the client as a generic 500.
func WriteResponse(c *gin.Context, err error, data any) {
	if err == nil {
		if data == nil {
			c.Status(http.StatusOK)
			return
		}
		c.JSON(http.StatusOK, data)
		return
	}

	status := http.StatusInternalServerError
	message := "an internal error occurred"
	if coded, ok := err.(interface {
		HTTPStatus() int
		Message() string
	}); ok {
		status = coded.HTTPStatus()
		message = coded.Message()
	}

	logger.For("http").With("error", err.Error()).Warnf("request failed: %s", err.Error())
	c.JSON(status, errorEnvelope{Error: errorBody{Message: message, Type: "gateway_error", Code: errorx.Code(err)}})
}
