// Package dispatch implements the Dispatcher (§4.3): intent classification,
// agent selection, execution under a shared deadline, and fallback
// chaining.
package dispatch

import (
	"context"
	"time"

	"github.com/kiosk404/hivegate/internal/gateway/llm/entity"
	"github.com/kiosk404/hivegate/internal/gateway/tenant"
)

// State is one point in the per-execution state machine (§4.3).
type State string

const (
	StateClassifying State = "classifying"
	StateSelecting    State = "selecting"
	StateRunning      State = "running"
	StateRendering    State = "rendering"
	StateRetrying     State = "retrying"
	StateDone         State = "done"
)

// OutcomeKind is the three-way result every agent attempt produces (§3,
// §4.3, §9): success, a failure that permits trying the next candidate, or
// a failure that must surface immediately.
type OutcomeKind string

const (
	OutcomeSuccess     OutcomeKind = "success"
	OutcomeRecoverable OutcomeKind = "recoverable"
	OutcomeFatal       OutcomeKind = "fatal"
)

// Outcome is what one agent attempt produced.
type Outcome struct {
	Kind    OutcomeKind
	Answer  string
	Usage   entity.Usage
	Sources []string // e.g. tables used, passage ids — rendered as a footer
	Err     error
}

// ChatRequest is created per HTTP call (§3).
type ChatRequest struct {
	Messages  []entity.Message
	ModelHint string
	Stream    bool
	TenantID  string
	AgentType tenant.AgentType // explicit override, or AgentAuto
	Overrides entity.Params
}

// LastUserMessage returns the most recent user-role message's content, the
// question the dispatcher classifies and every agent answers.
func (r ChatRequest) LastUserMessage() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == entity.RoleUser {
			return r.Messages[i].Content
		}
	}
	return ""
}

// Execution is created per dispatch (§3). deadline - start ≤ global
// timeout is enforced by the caller constructing it from the tenant's
// GlobalPolicy.
type Execution struct {
	Request  ChatRequest
	Runtime  *tenant.TenantRuntime
	Start    time.Time
	Deadline time.Time
	Attempts int
	State    State
}

func (e *Execution) remaining() time.Duration {
	return time.Until(e.Deadline)
}

// Agent is the interface every candidate implements: run once against the
// execution's question and return exactly one Outcome.
type Agent interface {
	Type() tenant.AgentType
	Run(ctx context.Context, exec *Execution) Outcome
}
