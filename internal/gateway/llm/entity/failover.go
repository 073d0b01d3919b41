// Package entity holds the shared value types passed between the LLM
// Provider Abstraction, the Dispatcher, and the agents: model references,
// completion parameters/results, and failure classification.
package entity

import (
	"fmt"
	"net/http"
	"strings"
)

// FailoverReason classifies why a provider call failed, driving both the
// Dispatcher's recoverable/fatal split (§4.3) and the LLM Provider's retry
// decision (§4.7).
type FailoverReason int32

const (
	FailoverReasonUnknown FailoverReason = iota
	FailoverReasonAuth
	FailoverReasonRateLimit
	FailoverReasonBilling
	FailoverReasonTimeout
	FailoverReasonFormat
	FailoverReasonUnavailable
	FailoverReasonServerError
)

func (r FailoverReason) String() string {
	switch r {
	case FailoverReasonAuth:
		return "auth"
	case FailoverReasonRateLimit:
		return "rate_limit"
	case FailoverReasonBilling:
		return "billing"
	case FailoverReasonTimeout:
		return "timeout"
	case FailoverReasonFormat:
		return "format"
	case FailoverReasonUnavailable:
		return "unavailable"
	case FailoverReasonServerError:
		return "server_error"
	default:
		return fmt.Sprintf("FailoverReason(%d)", r)
	}
}

// IsRetryable reports whether retrying the same provider/model might
// succeed.
func (r FailoverReason) IsRetryable() bool {
	switch r {
	case FailoverReasonRateLimit, FailoverReasonTimeout, FailoverReasonUnavailable, FailoverReasonServerError:
		return true
	default:
		return false
	}
}

// ShouldFailover reports whether this reason should trigger the
// dispatcher's next candidate agent (§4.3) rather than surfacing directly.
// Format errors never failover: the request itself is malformed and a
// different agent or provider will not fix that.
func (r FailoverReason) ShouldFailover() bool {
	return r != FailoverReasonFormat
}

// HTTPStatusCode returns the canonical HTTP status for this reason.
func (r FailoverReason) HTTPStatusCode() int {
	switch r {
	case FailoverReasonAuth:
		return http.StatusUnauthorized
	case FailoverReasonRateLimit:
		return http.StatusTooManyRequests
	case FailoverReasonBilling:
		return http.StatusPaymentRequired
	case FailoverReasonTimeout:
		return http.StatusRequestTimeout
	case FailoverReasonFormat:
		return http.StatusBadRequest
	case FailoverReasonUnavailable:
		return http.StatusServiceUnavailable
	case FailoverReasonServerError:
		return http.StatusInternalServerError
	default:
		return 0
	}
}

// FailoverError is the structured error every provider call normalizes to
// before the Dispatcher inspects it.
type FailoverError struct {
	Reason     FailoverReason `json:"reason"`
	Provider   string         `json:"provider,omitempty"`
	Model      string         `json:"model,omitempty"`
	StatusCode int            `json:"status_code,omitempty"`
	Code       string         `json:"code,omitempty"`
	Message    string         `json:"message"`
	Cause      error          `json:"-"`
}

func (e *FailoverError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[failover:%s]", e.Reason))
	if e.Provider != "" || e.Model != "" {
		sb.WriteString(fmt.Sprintf(" %s/%s:", e.Provider, e.Model))
	}
	sb.WriteString(" ")
	sb.WriteString(e.Message)
	if e.StatusCode != 0 {
		sb.WriteString(fmt.Sprintf(" (HTTP %d)", e.StatusCode))
	}
	if e.Code != "" {
		sb.WriteString(fmt.Sprintf(" [code=%s]", e.Code))
	}
	return sb.String()
}

func (e *FailoverError) Unwrap() error { return e.Cause }

func (e *FailoverError) Is(target error) bool {
	t, ok := target.(*FailoverError)
	if !ok {
		return false
	}
	if t.Provider == "" && t.Model == "" && t.Message == "" {
		return e.Reason == t.Reason
	}
	return false
}

// NewFailoverError builds a FailoverError directly, used when a component
// already knows the classification (e.g. the safety gate rejecting SQL).
func NewFailoverError(reason FailoverReason, provider, model, message string) *FailoverError {
	return &FailoverError{Reason: reason, Provider: provider, Model: model, StatusCode: reason.HTTPStatusCode(), Message: message}
}

// NewFailoverErrorFromCause classifies an arbitrary error from a provider
// call and wraps it with provider/model context.
func NewFailoverErrorFromCause(err error, provider, model string) *FailoverError {
	if err == nil {
		return nil
	}
	if fe, ok := err.(*FailoverError); ok {
		if fe.Provider == "" {
			fe.Provider = provider
		}
		if fe.Model == "" {
			fe.Model = model
		}
		return fe
	}
	reason := ClassifyError(err)
	return &FailoverError{
		Reason:     reason,
		Provider:   provider,
		Model:      model,
		StatusCode: extractStatusCode(err),
		Code:       extractErrorCode(err),
		Message:    err.Error(),
		Cause:      err,
	}
}

// ClassifyError determines the FailoverReason for a raw error using a
// layered approach: HTTP status, then provider error code, then message
// pattern matching as a last resort.
func ClassifyError(err error) FailoverReason {
	if err == nil {
		return FailoverReasonUnknown
	}
	if fe, ok := err.(*FailoverError); ok {
		return fe.Reason
	}
	if status := extractStatusCode(err); status != 0 {
		if reason := classifyFromStatus(status); reason != FailoverReasonUnknown {
			return reason
		}
	}
	if code := extractErrorCode(err); code != "" {
		if reason := classifyFromCode(code); reason != FailoverReasonUnknown {
			return reason
		}
	}
	return classifyFromMessage(err.Error())
}

func classifyFromStatus(status int) FailoverReason {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return FailoverReasonAuth
	case status == http.StatusPaymentRequired:
		return FailoverReasonBilling
	case status == http.StatusTooManyRequests:
		return FailoverReasonRateLimit
	case status == http.StatusRequestTimeout:
		return FailoverReasonTimeout
	case status == http.StatusBadRequest:
		return FailoverReasonFormat
	case status == http.StatusServiceUnavailable:
		return FailoverReasonUnavailable
	case status == http.StatusInternalServerError || status == http.StatusBadGateway || status == http.StatusGatewayTimeout:
		return FailoverReasonServerError
	default:
		return FailoverReasonUnknown
	}
}

func classifyFromCode(code string) FailoverReason {
	switch strings.ToUpper(code) {
	case "ETIMEDOUT", "ESOCKETTIMEDOUT", "ECONNRESET", "ECONNABORTED":
		return FailoverReasonTimeout
	case "ECONNREFUSED":
		return FailoverReasonUnavailable
	default:
		return FailoverReasonUnknown
	}
}

func classifyFromMessage(msg string) FailoverReason {
	lower := strings.ToLower(msg)

	for _, p := range []string{"timeout", "timed out", "deadline exceeded", "context canceled"} {
		if strings.Contains(lower, p) {
			return FailoverReasonTimeout
		}
	}
	for _, p := range []string{"rate limit", "rate_limit", "ratelimit", "too many requests", "quota exceeded", "throttl"} {
		if strings.Contains(lower, p) {
			return FailoverReasonRateLimit
		}
	}
	for _, p := range []string{"unauthorized", "authentication", "invalid api key", "invalid_api_key", "forbidden", "access denied"} {
		if strings.Contains(lower, p) {
			return FailoverReasonAuth
		}
	}
	for _, p := range []string{"billing", "payment", "insufficient_quota", "insufficient funds", "credit"} {
		if strings.Contains(lower, p) {
			return FailoverReasonBilling
		}
	}
	for _, p := range []string{"unavailable", "service overloaded", "overloaded", "connection refused"} {
		if strings.Contains(lower, p) {
			return FailoverReasonUnavailable
		}
	}
	for _, p := range []string{"internal server error", "internal error", "bad gateway"} {
		if strings.Contains(lower, p) {
			return FailoverReasonServerError
		}
	}
	return FailoverReasonUnknown
}

type statusCodeCarrier interface{ StatusCode() int }
type statusCarrier interface{ Status() int }

func extractStatusCode(err error) int {
	if c, ok := err.(statusCodeCarrier); ok {
		return c.StatusCode()
	}
	if c, ok := err.(statusCarrier); ok {
		return c.Status()
	}
	return 0
}

type errorCodeCarrier interface{ ErrorCode() string }

func extractErrorCode(err error) string {
	if c, ok := err.(errorCodeCarrier); ok {
		return c.ErrorCode()
	}
	return ""
}
