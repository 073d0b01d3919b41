// Package errorx provides a numeric error-code registry used across the
// gateway: every error surfaced to a client carries a stable 6-digit code,
// an HTTP status, and a message, registered once at init() time.
package errorx

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// Coder is a registered error code.
type Coder interface {
	Code() int
	HTTPStatus() int
	String() string
}

var (
	codersMu sync.RWMutex
	coders   = map[int]Coder{}
)

// MustRegister registers a Coder, panicking on collision. Intended for
// package init() blocks, where a duplicate code is a programming error.
func MustRegister(c Coder) {
	codersMu.Lock()
	defer codersMu.Unlock()
	if _, exists := coders[c.Code()]; exists {
		panic(fmt.Sprintf("errorx: code %d already registered", c.Code()))
	}
	coders[c.Code()] = c
}

func lookup(code int) Coder {
	codersMu.RLock()
	defer codersMu.RUnlock()
	if c, ok := coders[code]; ok {
		return c
	}
	return unknownCoder{}
}

// coder is the concrete Coder every component registers at init() time.
type coder struct {
	code       int
	httpStatus int
	message    string
}

// NewCoder builds a Coder for MustRegister. code is the 6-digit registry
// code (10XXYY); httpStatus is the status returned to HTTP clients; message
// is the public, client-safe description.
func NewCoder(code, httpStatus int, message string) Coder {
	return coder{code: code, httpStatus: httpStatus, message: message}
}

func (c coder) Code() int       { return c.code }
func (c coder) HTTPStatus() int { return c.httpStatus }
func (c coder) String() string  { return c.message }

type unknownCoder struct{}

func (unknownCoder) Code() int         { return 100000 }
func (unknownCoder) HTTPStatus() int   { return http.StatusInternalServerError }
func (unknownCoder) String() string    { return "an internal error occurred" }

// Error is the error type carried through the gateway: a registered code
// plus an optional formatted detail and an optional wrapped cause.
type Error struct {
	code    int
	detail  string
	cause   error
}

func (e *Error) Error() string {
	if e.detail != "" {
		return e.detail
	}
	return lookup(e.code).String()
}

func (e *Error) Unwrap() error { return e.cause }

// Code returns the registered numeric code.
func (e *Error) Code() int { return e.code }

// HTTPStatus returns the HTTP status associated with the registered code.
func (e *Error) HTTPStatus() int { return lookup(e.code).HTTPStatus() }

// Message returns the registered public message for the code (never the
// wrapped cause — internal detail must not leak to clients).
func (e *Error) Message() string { return lookup(e.code).String() }

// WithCode builds a new *Error from a registered code and a formatted detail
// (logged, not necessarily returned to the client).
func WithCode(code int, format string, args ...any) *Error {
	return &Error{code: code, detail: fmt.Sprintf(format, args...)}
}

// WrapC wraps an existing error under a registered code, preserving the
// cause for logging and unwrapping while the code drives the client-facing
// status/message.
func WrapC(cause error, code int, format string, args ...any) *Error {
	return &Error{code: code, detail: fmt.Sprintf(format, args...), cause: cause}
}

// FromCode builds a bare *Error from a code with no extra detail.
func FromCode(code int) *Error {
	return &Error{code: code}
}

// Code extracts the registered numeric code from err, or 0 if err is not
// (or does not wrap) an *Error.
func Code(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return 0
}
