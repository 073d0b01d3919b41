// Package knowledge implements the Knowledge-Base Agent (§4.5): retrieval
// against a tenant's prefixed knowledge base, then citation-required
// synthesis via the LLM Provider.
package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/kiosk404/hivegate/internal/gateway/dispatch"
	"github.com/kiosk404/hivegate/internal/gateway/llm"
	"github.com/kiosk404/hivegate/internal/gateway/llm/entity"
	"github.com/kiosk404/hivegate/internal/gateway/llm/provider/spi"
	"github.com/kiosk404/hivegate/internal/gateway/tenant"
)

// Agent is the knowledge-base candidate (§4.5).
type Agent struct {
	manager *llm.Manager
	client  *Client
}

func New(manager *llm.Manager, client *Client) *Agent {
	return &Agent{manager: manager, client: client}
}

func (a *Agent) Type() tenant.AgentType { return tenant.AgentKnowledgeBase }

func (a *Agent) Run(ctx context.Context, exec *dispatch.Execution) dispatch.Outcome {
	rt := exec.Runtime
	if rt == nil {
		return dispatch.Outcome{Kind: dispatch.OutcomeFatal, Err: fmt.Errorf("knowledge base: no tenant runtime")}
	}

	question := exec.Request.LastUserMessage()
	kb := rt.Config.KnowledgeBase
	topK := kb.MaxResults
	if topK <= 0 {
		topK = 5
	}

	passages, err := a.client.Search(ctx, kb.Prefix, kb.Bucket, kb.Region, string(kb.SearchType), question, topK)
	if err != nil {
		reason := entity.ClassifyError(err)
		kind := dispatch.OutcomeFatal
		if reason.IsRetryable() {
			kind = dispatch.OutcomeRecoverable
		}
		return dispatch.Outcome{Kind: kind, Err: err}
	}

	// Empty retrieval is recoverable: the dispatcher may fall back (§4.5).
	if len(passages) == 0 {
		return dispatch.Outcome{Kind: dispatch.OutcomeRecoverable, Err: fmt.Errorf("knowledge base: no passages retrieved for tenant %s", rt.Config.ID)}
	}

	ref := dispatch.ParseModelRef(rt.Config.Model)
	cfg := spi.Config{APIKey: rt.Config.APIKeys[ref.Provider]}

	lang := rt.Config.Settings.ResponseLanguage
	if lang == "" {
		lang = "en"
	}

	var sb strings.Builder
	sb.WriteString("Passages (cite by id in brackets, e.g. [p1]):\n")
	sources := make([]string, 0, len(passages))
	for _, p := range passages {
		fmt.Fprintf(&sb, "[%s] %s\n", p.ID, p.Content)
		sources = append(sources, p.ID)
	}

	messages := []entity.Message{
		{Role: entity.RoleSystem, Content: fmt.Sprintf("Answer using only the given passages, in %s. Every claim must cite a passage id in brackets.", lang)},
		{Role: entity.RoleUser, Content: sb.String() + "\n\nQuestion: " + question},
	}

	params := entity.Params{MaxTokens: rt.Config.Settings.MaxTokens}.WithOverrides(exec.Request.Overrides)
	result, err := a.manager.Complete(ctx, exec.Request.TenantID, ref, cfg, messages, params)
	if err != nil {
		reason := entity.ClassifyError(err)
		kind := dispatch.OutcomeFatal
		if reason.IsRetryable() {
			kind = dispatch.OutcomeRecoverable
		}
		return dispatch.Outcome{Kind: kind, Err: err}
	}

	return dispatch.Outcome{Kind: dispatch.OutcomeSuccess, Answer: result.Text, Usage: result.Usage, Sources: sources}
}
