package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kiosk404/hivegate/internal/gateway/llm"
	"github.com/kiosk404/hivegate/internal/gateway/llm/entity"
	"github.com/kiosk404/hivegate/internal/gateway/llm/provider/spi"
)

// GeneratedQuery is the structured output the model must return (§3).
type GeneratedQuery struct {
	SQL       string
	Params    []any
	Rationale string
}

const policyPreamble = `You translate natural-language questions into a single read-only PostgreSQL
SELECT statement against the schema below. Rules:
- Only SELECT statements, including read-only CTEs whose terminal statement is SELECT.
- Never emit INSERT, UPDATE, DELETE, DROP, TRUNCATE, ALTER, CREATE, GRANT, REVOKE, COPY, CALL, DO, VACUUM, ANALYZE, or LOCK.
- Use $1, $2, ... positional placeholders for every value derived from the question; never inline a literal that came from user input.
- Reference only the tables and columns listed in the schema.
Respond with exactly three lines, in this order, and nothing else:
SQL: <the statement>
PARAMS: <comma-separated parameter values, or NONE>
RATIONALE: <one sentence>`

// Generator drives §4.4 step 2: LLM structured-output SQL generation, one
// candidate at a time against the safety gate (step 3).
type Generator struct {
	manager *llm.Manager
}

func NewGenerator(manager *llm.Manager) *Generator { return &Generator{manager: manager} }

// Generate asks the LLM for one candidate query given the schema summary,
// question, and response language, and the reason a prior candidate was
// rejected (empty on the first attempt). overrides layers any per-request
// temperature/max_tokens/stop the caller asked for onto the generator's own
// low-temperature, bounded-length defaults.
func (g *Generator) Generate(ctx context.Context, tenantID string, ref entity.ModelRef, cfg spi.Config, schemaSummary, question, lang, rejectionHint string, overrides entity.Params) (GeneratedQuery, error) {
	var sb strings.Builder
	sb.WriteString(policyPreamble)
	sb.WriteString("\n\nSchema:\n")
	sb.WriteString(schemaSummary)
	sb.WriteString("\n\nRespond in ")
	sb.WriteString(lang)
	sb.WriteString(" for the rationale field only; SQL and PARAMS are always plain ASCII.\n\nQuestion: ")
	sb.WriteString(question)
	if rejectionHint != "" {
		sb.WriteString("\n\nThe previous candidate was rejected: ")
		sb.WriteString(rejectionHint)
		sb.WriteString(". Produce a corrected candidate.")
	}

	messages := []entity.Message{
		{Role: entity.RoleSystem, Content: "You are a careful SQL generator. Follow the response format exactly."},
		{Role: entity.RoleUser, Content: sb.String()},
	}

	params := entity.Params{MaxTokens: 512, Temperature: 0}.WithOverrides(overrides)
	result, err := g.manager.Complete(ctx, tenantID, ref, cfg, messages, params)
	if err != nil {
		return GeneratedQuery{}, fmt.Errorf("sql generation: %w", err)
	}

	return parseGeneratedQuery(result.Text)
}

func parseGeneratedQuery(text string) (GeneratedQuery, error) {
	var q GeneratedQuery
	lines := strings.Split(text, "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "SQL:"):
			q.SQL = strings.TrimSpace(strings.TrimPrefix(line, "SQL:"))
		case strings.HasPrefix(line, "PARAMS:"):
			raw := strings.TrimSpace(strings.TrimPrefix(line, "PARAMS:"))
			q.Params = parseParams(raw)
		case strings.HasPrefix(line, "RATIONALE:"):
			q.Rationale = strings.TrimSpace(strings.TrimPrefix(line, "RATIONALE:"))
		}
	}
	if q.SQL == "" {
		return GeneratedQuery{}, fmt.Errorf("sql generation: model response missing SQL line: %q", text)
	}
	return q, nil
}

func parseParams(raw string) []any {
	if raw == "" || strings.EqualFold(raw, "NONE") {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]any, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if n, err := strconv.ParseFloat(p, 64); err == nil {
			out = append(out, n)
			continue
		}
		out = append(out, strings.Trim(p, `"'`))
	}
	return out
}
