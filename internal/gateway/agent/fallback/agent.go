// Package fallback implements the Generative Fallback Agent (§4.6):
// best-effort free-form answer with a disclaimer, no external IO beyond the
// LLM call.
package fallback

import (
	"context"
	"fmt"

	"github.com/kiosk404/hivegate/internal/gateway/dispatch"
	"github.com/kiosk404/hivegate/internal/gateway/llm"
	"github.com/kiosk404/hivegate/internal/gateway/llm/entity"
	"github.com/kiosk404/hivegate/internal/gateway/llm/provider/spi"
	"github.com/kiosk404/hivegate/internal/gateway/tenant"
)

const disclaimer = "This answer was generated from general knowledge, not from your configured data sources."

// Agent is the fallback candidate: returns success unless the question is
// empty (fatal) or the LLM call itself fails (§4.6).
type Agent struct {
	manager *llm.Manager
}

func New(manager *llm.Manager) *Agent { return &Agent{manager: manager} }

func (a *Agent) Type() tenant.AgentType { return tenant.AgentFallback }

func (a *Agent) Run(ctx context.Context, exec *dispatch.Execution) dispatch.Outcome {
	question := exec.Request.LastUserMessage()
	if question == "" {
		return dispatch.Outcome{Kind: dispatch.OutcomeFatal, Err: fmt.Errorf("fallback: empty question")}
	}

	ref := entity.ModelRef{Provider: "openai", Model: "gpt-4o-mini"}
	cfg := spi.Config{}
	if exec.Runtime != nil {
		ref = dispatch.ParseModelRef(exec.Runtime.Config.Model)
		cfg.APIKey = exec.Runtime.Config.APIKeys[ref.Provider]
	}

	lang := "en"
	if exec.Runtime != nil && exec.Runtime.Config.Settings.ResponseLanguage != "" {
		lang = exec.Runtime.Config.Settings.ResponseLanguage
	}

	messages := []entity.Message{
		{Role: entity.RoleSystem, Content: fmt.Sprintf("Answer concisely in %s. You have no access to the user's private data sources.", lang)},
		{Role: entity.RoleUser, Content: question},
	}

	params := entity.Params{}.WithOverrides(exec.Request.Overrides)
	result, err := a.manager.Complete(ctx, exec.Request.TenantID, ref, cfg, messages, params)
	if err != nil {
		reason := entity.ClassifyError(err)
		kind := dispatch.OutcomeFatal
		if reason.IsRetryable() {
			kind = dispatch.OutcomeRecoverable
		}
		return dispatch.Outcome{Kind: kind, Err: err}
	}

	return dispatch.Outcome{
		Kind:   dispatch.OutcomeSuccess,
		Answer: result.Text + "\n\n---\n" + disclaimer,
		Usage:  result.Usage,
	}
}
