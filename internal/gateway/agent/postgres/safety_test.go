package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckSafetyAllowsSimpleSelect(t *testing.T) {
	allowed := map[string]bool{"public": true}
	res := CheckSafety("SELECT id, name FROM public.customers WHERE region = $1", []any{"east"}, allowed)
	assert.True(t, res.Allowed)
}

func TestCheckSafetyRejectsMultipleStatements(t *testing.T) {
	allowed := map[string]bool{"public": true}
	res := CheckSafety("DROP TABLE employees; SELECT 1", nil, allowed)
	assert.False(t, res.Allowed)
	assert.Equal(t, RejectForbiddenKeyword, res.Reason)
}

func TestCheckSafetyRejectsMultipleSelectStatements(t *testing.T) {
	allowed := map[string]bool{"public": true}
	res := CheckSafety("SELECT 1; SELECT 2", nil, allowed)
	assert.False(t, res.Allowed)
	assert.Equal(t, RejectMultiStatement, res.Reason)
}

func TestCheckSafetyRejectsForbiddenKeyword(t *testing.T) {
	allowed := map[string]bool{"public": true}
	res := CheckSafety("SELECT * FROM public.customers; DELETE FROM public.customers", nil, allowed)
	assert.False(t, res.Allowed)
}

func TestCheckSafetyIgnoresKeywordsInsideStringLiterals(t *testing.T) {
	// DROP appears only inside a string literal, so it must never trigger
	// RejectForbiddenKeyword — but the literal itself is still an unbound
	// value the generator should have expressed as a $n placeholder.
	allowed := map[string]bool{"public": true}
	res := CheckSafety("SELECT * FROM public.logs WHERE message = 'DROP everything please'", nil, allowed)
	assert.False(t, res.Allowed)
	assert.Equal(t, RejectUnboundLiteral, res.Reason)
}

func TestCheckSafetyAllowsStringLiteralBackedByPlaceholder(t *testing.T) {
	allowed := map[string]bool{"public": true}
	res := CheckSafety("SELECT * FROM public.customers WHERE region = $1", []any{"east"}, allowed)
	assert.True(t, res.Allowed)
}

func TestCheckSafetyRejectsInlinedLiteralEvenWithMatchingParamCount(t *testing.T) {
	allowed := map[string]bool{"public": true}
	res := CheckSafety("SELECT * FROM public.customers WHERE region = 'east'", []any{"east"}, allowed)
	assert.False(t, res.Allowed)
	assert.Equal(t, RejectUnboundLiteral, res.Reason)
}

func TestCheckSafetyRejectsDisallowedSchema(t *testing.T) {
	allowed := map[string]bool{"public": true}
	res := CheckSafety("SELECT * FROM billing.invoices", nil, allowed)
	assert.False(t, res.Allowed)
	assert.Equal(t, RejectDisallowedSchema, res.Reason)
}

func TestCheckSafetyAllowsCTEWithSelect(t *testing.T) {
	allowed := map[string]bool{"public": true}
	res := CheckSafety("WITH x AS (SELECT 1) SELECT 1", nil, allowed)
	assert.True(t, res.Allowed)
}

func TestCheckSafetyRejectsMissingSelect(t *testing.T) {
	allowed := map[string]bool{"public": true}
	res := CheckSafety("VALUES (1, 2)", nil, allowed)
	assert.False(t, res.Allowed)
	assert.Equal(t, RejectNoSelect, res.Reason)
}

func TestCheckSafetyRejectsUnboundParams(t *testing.T) {
	allowed := map[string]bool{"public": true}
	res := CheckSafety("SELECT * FROM public.customers WHERE region = $1", []any{"east", "west"}, allowed)
	assert.False(t, res.Allowed)
	assert.Equal(t, RejectUnboundLiteral, res.Reason)
}

func TestTokenizeHandlesDollarQuotes(t *testing.T) {
	toks := tokenize("SELECT $$it's fine; DROP$$ AS note")
	var sawDrop bool
	for _, tok := range toks {
		if tok.kind == tokenWord && tok.text == "DROP" {
			sawDrop = true
		}
	}
	assert.False(t, sawDrop, "DROP inside a dollar-quoted literal must not tokenize as a bare word")
}

func TestCountPlaceholders(t *testing.T) {
	assert.Equal(t, 2, countPlaceholders("WHERE a = $1 AND b = $2"))
	assert.Equal(t, 0, countPlaceholders("WHERE a = 'literal'"))
}
