package dispatch

import (
	"context"
	"time"

	"github.com/kiosk404/hivegate/internal/gateway/metrics"
	"github.com/kiosk404/hivegate/internal/gateway/tenant"
	"github.com/kiosk404/hivegate/internal/gateway/tracing"
	"github.com/kiosk404/hivegate/internal/pkg/errorx"
	"github.com/kiosk404/hivegate/internal/pkg/logger"
)

var log = logger.For("dispatcher")

// Error codes for the dispatcher, per §7.
const (
	CodeAgentUnavailable = 100301
	CodeTimeout          = 100302
)

func init() {
	errorx.MustRegister(errorx.NewCoder(CodeAgentUnavailable, 503, "no agent could answer the request"))
	errorx.MustRegister(errorx.NewCoder(CodeTimeout, 504, "request exceeded its deadline"))
}

// candidateOrder is the fixed fallback chain (§4.3).
var candidateOrder = []tenant.AgentType{tenant.AgentPostgres, tenant.AgentKnowledgeBase, tenant.AgentFallback}

// Dispatcher selects an agent, runs it, and applies the fallback chain
// (§4.3).
type Dispatcher struct {
	classifier *Classifier
	agents     map[tenant.AgentType]Agent
}

func NewDispatcher(classifier *Classifier, agents ...Agent) *Dispatcher {
	byType := make(map[tenant.AgentType]Agent, len(agents))
	for _, a := range agents {
		byType[a.Type()] = a
	}
	return &Dispatcher{classifier: classifier, agents: byType}
}

// Dispatch runs the state machine Classifying → Selecting → Running →
// Rendering → Done (looping through Retrying on recoverable failure),
// bounded by policy.RetryCount total attempts and policy.Timeout() as the
// shared deadline (§4.3, §5).
func (d *Dispatcher) Dispatch(ctx context.Context, req ChatRequest, rt *tenant.TenantRuntime, policy tenant.GlobalPolicy) Outcome {
	ctx, span := tracing.StartDispatch(ctx, req.TenantID)
	defer span.End()

	exec := &Execution{
		Request:  req,
		Runtime:  rt,
		Start:    time.Now(),
		Deadline: time.Now().Add(policy.Timeout()),
		State:    StateClassifying,
	}
	ctx, cancel := context.WithDeadline(ctx, exec.Deadline)
	defer cancel()

	question := req.LastUserMessage()

	first := req.AgentType
	if first == "" || first == tenant.AgentAuto {
		first = d.classifier.Classify(ctx, req.TenantID, rt, question)
	}

	order := reorder(candidateOrder, first)

	var lastOutcome Outcome
	maxAttempts := policy.RetryCount
	if maxAttempts <= 0 {
		maxAttempts = len(order)
	}

	exec.State = StateSelecting
	for _, agentType := range order {
		if exec.Attempts >= maxAttempts {
			break
		}
		if ctx.Err() != nil {
			return Outcome{Kind: OutcomeFatal, Err: errorx.WithCode(CodeTimeout, "deadline exceeded after %d attempts", exec.Attempts)}
		}
		if !enabledFor(rt, agentType) {
			continue
		}
		agent, ok := d.agents[agentType]
		if !ok {
			continue
		}

		exec.Attempts++
		exec.State = StateRunning
		tracing.SetDispatchAgent(span, string(agentType))
		outcome := agent.Run(ctx, exec)
		exec.State = StateRendering

		switch outcome.Kind {
		case OutcomeSuccess:
			exec.State = StateDone
			metrics.AgentDispatchTotal.WithLabelValues(string(agentType), "success").Inc()
			return outcome
		case OutcomeFatal:
			exec.State = StateDone
			metrics.AgentDispatchTotal.WithLabelValues(string(agentType), "fatal").Inc()
			tracing.RecordError(span, outcome.Err)
			return outcome
		case OutcomeRecoverable:
			lastOutcome = outcome
			exec.State = StateRetrying
			metrics.AgentDispatchTotal.WithLabelValues(string(agentType), "recoverable").Inc()
			log.Warnf("tenant=%s agent=%s recoverable failure, trying next candidate: %v", req.TenantID, agentType, outcome.Err)
			continue
		}
	}

	exec.State = StateDone
	if lastOutcome.Err == nil {
		lastOutcome.Err = errorx.FromCode(CodeAgentUnavailable)
	}
	lastOutcome.Kind = OutcomeFatal
	tracing.RecordError(span, lastOutcome.Err)
	return lastOutcome
}

// reorder moves first to the front of order, preserving the relative order
// of the rest, so an explicit agent_type or classifier pick is tried before
// the fallback chain resumes.
func reorder(order []tenant.AgentType, first tenant.AgentType) []tenant.AgentType {
	out := make([]tenant.AgentType, 0, len(order))
	out = append(out, first)
	for _, a := range order {
		if a != first {
			out = append(out, a)
		}
	}
	return out
}

func enabledFor(rt *tenant.TenantRuntime, agentType tenant.AgentType) bool {
	if rt == nil {
		return agentType == tenant.AgentFallback
	}
	switch agentType {
	case tenant.AgentPostgres:
		return rt.Config.Settings.EnablePostgresAgent
	case tenant.AgentKnowledgeBase:
		return rt.Config.Settings.EnableKnowledgeBaseAgent
	case tenant.AgentFallback:
		return rt.Config.Settings.EnableFallbackAgent
	default:
		return false
	}
}
