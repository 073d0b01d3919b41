package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type testStatusErr struct {
	status int
	msg    string
}

func (e testStatusErr) Error() string   { return e.msg }
func (e testStatusErr) StatusCode() int { return e.status }

func TestClassifyErrorByStatus(t *testing.T) {
	assert.Equal(t, FailoverReasonRateLimit, ClassifyError(testStatusErr{status: 429, msg: "slow down"}))
	assert.Equal(t, FailoverReasonAuth, ClassifyError(testStatusErr{status: 401, msg: "nope"}))
	assert.Equal(t, FailoverReasonServerError, ClassifyError(testStatusErr{status: 502, msg: "bad gateway"}))
}

func TestClassifyErrorByMessage(t *testing.T) {
	assert.Equal(t, FailoverReasonTimeout, ClassifyError(errors.New("context deadline exceeded")))
	assert.Equal(t, FailoverReasonRateLimit, ClassifyError(errors.New("quota exceeded for this month")))
	assert.Equal(t, FailoverReasonUnknown, ClassifyError(errors.New("something inscrutable happened")))
}

func TestShouldFailover(t *testing.T) {
	assert.False(t, FailoverReasonFormat.ShouldFailover())
	assert.True(t, FailoverReasonAuth.ShouldFailover())
	assert.True(t, FailoverReasonServerError.ShouldFailover())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, FailoverReasonTimeout.IsRetryable())
	assert.True(t, FailoverReasonRateLimit.IsRetryable())
	assert.False(t, FailoverReasonAuth.IsRetryable())
	assert.False(t, FailoverReasonFormat.IsRetryable())
}

func TestNewFailoverErrorFromCausePreservesExisting(t *testing.T) {
	inner := NewFailoverError(FailoverReasonBilling, "openai", "gpt-4o", "insufficient funds")
	wrapped := NewFailoverErrorFromCause(inner, "openai", "gpt-4o")
	assert.Same(t, inner, wrapped)
}
