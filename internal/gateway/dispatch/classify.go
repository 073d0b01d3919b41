package dispatch

import (
	"context"
	"strings"

	"github.com/kiosk404/hivegate/internal/gateway/llm"
	"github.com/kiosk404/hivegate/internal/gateway/llm/cache"
	"github.com/kiosk404/hivegate/internal/gateway/llm/entity"
	"github.com/kiosk404/hivegate/internal/gateway/tenant"
)

// structuredCues are keyword cues for data-type intent: tables, counts,
// ranges, sums, column names, date filters, money terms, in both English
// and Thai (§4.3).
var structuredCues = []string{
	// English
	"how many", "count", "total", "sum", "average", "table", "column",
	"row", "between", "date", "month", "year", "revenue", "sales",
	"price", "amount", "order", "invoice", "per day", "per month",
	// Thai
	"กี่", "จำนวน", "รวม", "ยอด", "ตาราง", "คอลัมน์", "วันที่", "เดือน", "ปี", "ราคา", "บาท",
}

// unstructuredCues hint at document/retrieval intent rather than structured
// data.
var unstructuredCues = []string{
	"policy", "document", "manual", "guide", "procedure", "faq", "explain",
	"นโยบาย", "เอกสาร", "คู่มือ", "ขั้นตอน",
}

// Classifier implements §4.3's intent classification: a cheap deterministic
// keyword pass first, falling back to one cached LLM routing call only when
// ambiguous.
type Classifier struct {
	manager *llm.Manager
	routing *cache.RoutingCache
	routeRef entity.ModelRef
}

func NewClassifier(manager *llm.Manager, routing *cache.RoutingCache, routeRef entity.ModelRef) *Classifier {
	return &Classifier{manager: manager, routing: routing, routeRef: routeRef}
}

// Classify returns the agent type to try first. If req.AgentType is
// anything but AgentAuto, classification is bypassed entirely per §4.3.
func (c *Classifier) Classify(ctx context.Context, tenantID string, rt *tenant.TenantRuntime, question string) tenant.AgentType {
	lower := strings.ToLower(question)

	structuredHit := containsAny(lower, structuredCues)
	unstructuredHit := containsAny(lower, unstructuredCues)

	switch {
	case structuredHit && !unstructuredHit:
		return tenant.AgentPostgres
	case unstructuredHit && !structuredHit:
		return tenant.AgentKnowledgeBase
	case structuredHit && unstructuredHit:
		// ambiguous: ask the LLM router once, cached by normalized question.
		return c.routeWithLLM(ctx, tenantID, rt, question)
	default:
		return c.routeWithLLM(ctx, tenantID, rt, question)
	}
}

func containsAny(s string, cues []string) bool {
	for _, cue := range cues {
		if strings.Contains(s, cue) {
			return true
		}
	}
	return false
}

const routingPrompt = `Classify the following user question as exactly one of: postgres, knowledge_base, fallback.
postgres: the question asks about structured/tabular data (counts, sums, dates, records).
knowledge_base: the question asks about policy, documentation, or unstructured text content.
fallback: neither applies, or the question is open-ended/conversational.
Respond with exactly one word: postgres, knowledge_base, or fallback.

Question: %s`

// routeWithLLM asks the LLM Provider once with a terse routing prompt,
// caching the answer by normalized question hash for 10 minutes (§4.3).
func (c *Classifier) routeWithLLM(ctx context.Context, tenantID string, rt *tenant.TenantRuntime, question string) tenant.AgentType {
	if v, ok := c.routing.Get(ctx, tenantID, question); ok {
		return tenant.AgentType(v)
	}

	if c.manager == nil {
		return fallbackDefault(rt)
	}

	result, err := c.manager.Complete(ctx, tenantID, c.routeRef, providerConfigFor(rt), []entity.Message{
		{Role: entity.RoleUser, Content: sprintfRoutingPrompt(question)},
	}, entity.Params{MaxTokens: 8})
	if err != nil {
		return fallbackDefault(rt)
	}

	agentType := parseRoutingAnswer(result.Text)
	c.routing.Set(ctx, tenantID, question, string(agentType))
	return agentType
}

func sprintfRoutingPrompt(question string) string {
	return strings.Replace(routingPrompt, "%s", question, 1)
}

func parseRoutingAnswer(answer string) tenant.AgentType {
	switch strings.TrimSpace(strings.ToLower(answer)) {
	case "postgres":
		return tenant.AgentPostgres
	case "knowledge_base":
		return tenant.AgentKnowledgeBase
	default:
		return tenant.AgentFallback
	}
}

// fallbackDefault applies the tie-break order decided in SPEC_FULL.md §9:
// tenant default_agent_type, then the global fallback agent.
func fallbackDefault(rt *tenant.TenantRuntime) tenant.AgentType {
	if rt != nil && rt.Config.Settings.DefaultAgentType != "" && rt.Config.Settings.DefaultAgentType != tenant.AgentAuto {
		return rt.Config.Settings.DefaultAgentType
	}
	return tenant.AgentFallback
}
