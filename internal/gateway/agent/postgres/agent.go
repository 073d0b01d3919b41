package postgres

import (
	"context"
	"fmt"

	"github.com/kiosk404/hivegate/internal/gateway/dispatch"
	"github.com/kiosk404/hivegate/internal/gateway/llm"
	"github.com/kiosk404/hivegate/internal/gateway/llm/entity"
	"github.com/kiosk404/hivegate/internal/gateway/llm/provider/spi"
	"github.com/kiosk404/hivegate/internal/gateway/store/boltstore"
	"github.com/kiosk404/hivegate/internal/gateway/tenant"
	"github.com/kiosk404/hivegate/internal/pkg/errorx"
	"github.com/kiosk404/hivegate/internal/pkg/logger"
)

// maxGenerationAttempts bounds how many SQL candidates are generated before
// the safety gate's rejection count forces a clarifying question (§4.4
// step 6: two consecutive rejections).
const maxGenerationAttempts = clarificationThreshold + 1

var log = logger.For("postgres_agent")

// Agent orchestrates the full pipeline: schema acquisition, NL→SQL
// generation, the safety gate, bounded execution, and rendering (§4.4).
type Agent struct {
	registry     *tenant.Registry
	introspector *Introspector
	generator    *Generator
}

func New(registry *tenant.Registry, manager *llm.Manager) *Agent {
	return &Agent{registry: registry, introspector: NewIntrospector(), generator: NewGenerator(manager)}
}

// NewWithStore is New, but schema introspection falls back to a
// bolt-persisted snapshot on a cold cache (§11.4).
func NewWithStore(registry *tenant.Registry, manager *llm.Manager, store *boltstore.Store) *Agent {
	return &Agent{registry: registry, introspector: NewIntrospectorWithStore(store), generator: NewGenerator(manager)}
}

func (a *Agent) Type() tenant.AgentType { return tenant.AgentPostgres }

func (a *Agent) Run(ctx context.Context, exec *dispatch.Execution) dispatch.Outcome {
	rt := exec.Runtime
	if rt == nil {
		return dispatch.Outcome{Kind: dispatch.OutcomeFatal, Err: errorx.FromCode(CodeSchemaUnavailable)}
	}

	question := exec.Request.LastUserMessage()
	if question == "" {
		return dispatch.Outcome{Kind: dispatch.OutcomeFatal, Err: fmt.Errorf("postgres agent: empty question")}
	}

	pool, err := a.registry.PoolFor(ctx, rt)
	if err != nil {
		return dispatch.Outcome{Kind: dispatch.OutcomeRecoverable, Err: errorx.WrapC(err, CodeSchemaUnavailable, "connect to tenant %s database", rt.Config.ID)}
	}

	snapshot, err := a.introspector.Acquire(ctx, pool, rt)
	if err != nil {
		return dispatch.Outcome{Kind: dispatch.OutcomeRecoverable, Err: errorx.WrapC(err, CodeSchemaUnavailable, "introspect tenant %s schema", rt.Config.ID)}
	}

	ref := dispatch.ParseModelRef(rt.Config.Model)
	cfg := spi.Config{APIKey: rt.Config.APIKeys[ref.Provider]}
	lang := rt.Config.Settings.ResponseLanguage
	if lang == "" {
		lang = "en"
	}

	allowedSchemas := snapshot.AllowedSchemas()
	summary := snapshot.Summarize(question, defaultSchemaBudgetBytes)

	var (
		candidate     GeneratedQuery
		rejectionHint string
		rejections    int
	)

	for attempt := 0; attempt < maxGenerationAttempts; attempt++ {
		q, err := a.generator.Generate(ctx, exec.Request.TenantID, ref, cfg, summary, question, lang, rejectionHint, exec.Request.Overrides)
		if err != nil {
			reason := entity.ClassifyError(err)
			if reason.IsRetryable() {
				return dispatch.Outcome{Kind: dispatch.OutcomeRecoverable, Err: errorx.WrapC(err, CodeGenerationFailed, "generate sql")}
			}
			return dispatch.Outcome{Kind: dispatch.OutcomeFatal, Err: errorx.WrapC(err, CodeGenerationFailed, "generate sql")}
		}

		gate := CheckSafety(q.SQL, q.Params, allowedSchemas)
		if gate.Allowed {
			candidate = q
			break
		}

		rejections++
		rejectionHint = fmt.Sprintf("%s: %s", gate.Reason, gate.Detail)
		log.With("tenant_id", rt.Config.ID).Warnf("safety gate rejected candidate: %s", rejectionHint)

		if rejections >= clarificationThreshold {
			return dispatch.Outcome{
				Kind:   dispatch.OutcomeSuccess,
				Answer: ClarifyQuestion(question, "The generated query could not be made safe to run."),
			}
		}
	}

	if candidate.SQL == "" {
		return dispatch.Outcome{Kind: dispatch.OutcomeFatal, Err: errorx.FromCode(CodeSafetyRejected)}
	}

	maxRows := defaultMaxRows
	result, err := Execute(ctx, a.registry, rt, candidate, maxRows)
	if err != nil {
		if ctx.Err() != nil {
			return dispatch.Outcome{Kind: dispatch.OutcomeRecoverable, Err: errorx.WrapC(err, CodeQueryTooExpensive, "execute sql")}
		}
		reason := entity.ClassifyError(err)
		if reason.IsRetryable() {
			return dispatch.Outcome{Kind: dispatch.OutcomeRecoverable, Err: errorx.WrapC(err, CodeQueryTooExpensive, "execute sql")}
		}
		return dispatch.Outcome{Kind: dispatch.OutcomeFatal, Err: errorx.WrapC(err, CodeSafetyRejected, "execute sql")}
	}

	if looksLikeMisunderstanding(result) {
		return dispatch.Outcome{
			Kind:   dispatch.OutcomeSuccess,
			Answer: ClarifyQuestion(question, "The query returned no rows; the question may not match the data on hand."),
		}
	}

	tablesUsed := tablesReferencedBy(candidate.SQL, snapshot)
	answer := Render(question, result, tablesUsed)

	return dispatch.Outcome{Kind: dispatch.OutcomeSuccess, Answer: answer, Sources: tablesUsed}
}

// tablesReferencedBy scans the generated SQL's word tokens for table names
// known to the snapshot, used only to build the rendering's source footer.
func tablesReferencedBy(sql string, snapshot *SchemaSnapshot) []string {
	toks := tokenize(sql)
	known := map[string]bool{}
	for _, t := range snapshot.Tables {
		known[t.Name] = true
	}
	seen := map[string]bool{}
	var out []string
	for _, t := range toks {
		if t.kind != tokenWord {
			continue
		}
		name := t.text
		if idx := lastDot(name); idx >= 0 {
			name = name[idx+1:]
		}
		if known[name] && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}
