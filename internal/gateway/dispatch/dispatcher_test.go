package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/hivegate/internal/gateway/llm/entity"
	"github.com/kiosk404/hivegate/internal/gateway/tenant"
)

type stubAgent struct {
	agentType tenant.AgentType
	outcomes  []Outcome
	calls     int
}

func (s *stubAgent) Type() tenant.AgentType { return s.agentType }

func (s *stubAgent) Run(ctx context.Context, exec *Execution) Outcome {
	o := s.outcomes[s.calls%len(s.outcomes)]
	s.calls++
	return o
}

func testRuntime(t *testing.T) *tenant.TenantRuntime {
	r := tenant.NewRegistry()
	require.NoError(t, r.Load(context.Background(), []byte(`
tenants:
  acme:
    name: Acme
    database: {host: h, database: d}
    settings: {enable_postgres_agent: true, enable_knowledge_base_agent: true, enable_fallback_agent: true}
global_settings: {retry_count: 3, timeout_seconds: 5}
`)))
	rt, err := r.Get("acme")
	require.NoError(t, err)
	return rt
}

func TestDispatchSucceedsOnFirstCandidate(t *testing.T) {
	pg := &stubAgent{agentType: tenant.AgentPostgres, outcomes: []Outcome{{Kind: OutcomeSuccess, Answer: "42"}}}
	d := NewDispatcher(NewClassifier(nil, nil, entity.ModelRef{}), pg)

	rt := testRuntime(t)
	req := ChatRequest{TenantID: "acme", AgentType: tenant.AgentPostgres, Messages: nil}
	out := d.Dispatch(context.Background(), req, rt, tenant.GlobalPolicy{RetryCount: 3, TimeoutSeconds: 5})

	assert.Equal(t, OutcomeSuccess, out.Kind)
	assert.Equal(t, "42", out.Answer)
	assert.Equal(t, 1, pg.calls)
}

func TestDispatchFallsBackOnRecoverableFailure(t *testing.T) {
	pg := &stubAgent{agentType: tenant.AgentPostgres, outcomes: []Outcome{{Kind: OutcomeRecoverable}}}
	kb := &stubAgent{agentType: tenant.AgentKnowledgeBase, outcomes: []Outcome{{Kind: OutcomeSuccess, Answer: "from kb"}}}
	d := NewDispatcher(NewClassifier(nil, nil, entity.ModelRef{}), pg, kb)

	rt := testRuntime(t)
	req := ChatRequest{TenantID: "acme", AgentType: tenant.AgentPostgres}
	out := d.Dispatch(context.Background(), req, rt, tenant.GlobalPolicy{RetryCount: 3, TimeoutSeconds: 5})

	assert.Equal(t, OutcomeSuccess, out.Kind)
	assert.Equal(t, "from kb", out.Answer)
	assert.Equal(t, 1, pg.calls)
	assert.Equal(t, 1, kb.calls)
}

func TestDispatchFatalDoesNotFallBack(t *testing.T) {
	pg := &stubAgent{agentType: tenant.AgentPostgres, outcomes: []Outcome{{Kind: OutcomeFatal}}}
	kb := &stubAgent{agentType: tenant.AgentKnowledgeBase, outcomes: []Outcome{{Kind: OutcomeSuccess, Answer: "unused"}}}
	d := NewDispatcher(NewClassifier(nil, nil, entity.ModelRef{}), pg, kb)

	rt := testRuntime(t)
	req := ChatRequest{TenantID: "acme", AgentType: tenant.AgentPostgres}
	out := d.Dispatch(context.Background(), req, rt, tenant.GlobalPolicy{RetryCount: 3, TimeoutSeconds: 5})

	assert.Equal(t, OutcomeFatal, out.Kind)
	assert.Equal(t, 0, kb.calls)
}

func TestDispatchExhaustsAllCandidatesToAgentUnavailable(t *testing.T) {
	pg := &stubAgent{agentType: tenant.AgentPostgres, outcomes: []Outcome{{Kind: OutcomeRecoverable}}}
	kb := &stubAgent{agentType: tenant.AgentKnowledgeBase, outcomes: []Outcome{{Kind: OutcomeRecoverable}}}
	fb := &stubAgent{agentType: tenant.AgentFallback, outcomes: []Outcome{{Kind: OutcomeRecoverable}}}
	d := NewDispatcher(NewClassifier(nil, nil, entity.ModelRef{}), pg, kb, fb)

	rt := testRuntime(t)
	req := ChatRequest{TenantID: "acme", AgentType: tenant.AgentPostgres}
	out := d.Dispatch(context.Background(), req, rt, tenant.GlobalPolicy{RetryCount: 3, TimeoutSeconds: 5})

	assert.Equal(t, OutcomeFatal, out.Kind)
	assert.Equal(t, CodeAgentUnavailable, codeOf(t, out.Err))
}

func codeOf(t *testing.T, err error) int {
	t.Helper()
	type coder interface{ Code() int }
	c, ok := err.(coder)
	require.True(t, ok, "expected an *errorx.Error, got %T", err)
	return c.Code()
}
