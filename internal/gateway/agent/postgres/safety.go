package postgres

import (
	"fmt"
	"strings"
)

// forbiddenKeywords is the hard-reject list (§4.4 step 3). Matched against
// uppercased token text outside string/dollar-quoted literals.
var forbiddenKeywords = map[string]bool{
	"INSERT": true, "UPDATE": true, "DELETE": true, "DROP": true,
	"TRUNCATE": true, "ALTER": true, "CREATE": true, "GRANT": true,
	"REVOKE": true, "COPY": true, "CALL": true, "DO": true,
	"VACUUM": true, "ANALYZE": true, "LOCK": true,
}

// token is one lexical unit of a tokenized SQL string.
type token struct {
	kind tokenKind
	text string
}

type tokenKind int

const (
	tokenWord tokenKind = iota
	tokenString
	tokenPunct
)

// tokenize performs a minimal PostgreSQL-dialect-aware lexical split: it
// distinguishes bare words/identifiers from single-quoted and dollar-quoted
// string literals, so the safety gate never mistakes a keyword that
// appears inside a literal for an actual SQL keyword.
func tokenize(sql string) []token {
	var out []token
	i := 0
	n := len(sql)
	for i < n {
		c := sql[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '\'':
			j := i + 1
			for j < n {
				if sql[j] == '\'' {
					if j+1 < n && sql[j+1] == '\'' {
						j += 2
						continue
					}
					break
				}
				j++
			}
			end := j + 1
			if end > n {
				end = n
			}
			out = append(out, token{kind: tokenString, text: sql[i:end]})
			i = end
		case c == '$':
			tag, ok := dollarTag(sql, i)
			if ok {
				closer := tag
				idx := strings.Index(sql[i+len(tag):], closer)
				if idx < 0 {
					out = append(out, token{kind: tokenString, text: sql[i:]})
					i = n
					continue
				}
				end := i + len(tag) + idx + len(closer)
				out = append(out, token{kind: tokenString, text: sql[i:end]})
				i = end
				continue
			}
			out = append(out, token{kind: tokenPunct, text: "$"})
			i++
		case isWordRune(c):
			j := i
			for j < n && (isWordRune(sql[j]) || sql[j] == '.') {
				j++
			}
			out = append(out, token{kind: tokenWord, text: sql[i:j]})
			i = j
		case c == ';':
			out = append(out, token{kind: tokenPunct, text: ";"})
			i++
		default:
			out = append(out, token{kind: tokenPunct, text: string(c)})
			i++
		}
	}
	return out
}

func isWordRune(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// dollarTag matches a PostgreSQL dollar-quote tag ($$ or $tag$) starting at
// sql[i].
func dollarTag(sql string, i int) (string, bool) {
	j := i + 1
	for j < len(sql) && isWordRune(sql[j]) {
		j++
	}
	if j < len(sql) && sql[j] == '$' {
		return sql[i : j+1], true
	}
	return "", false
}

// RejectionReason names why the safety gate refused a generated query.
type RejectionReason string

const (
	RejectMultiStatement    RejectionReason = "multiple_statements"
	RejectForbiddenKeyword  RejectionReason = "forbidden_keyword"
	RejectDisallowedSchema  RejectionReason = "disallowed_schema"
	RejectNoSelect          RejectionReason = "no_select"
	RejectUnboundLiteral    RejectionReason = "unbound_literal"
)

// GateResult is the safety gate's verdict on one candidate query.
type GateResult struct {
	Allowed bool
	Reason  RejectionReason
	Detail  string
}

// CheckSafety implements §4.4 step 3: single-statement, keyword-blacklist,
// schema-allowlist, SELECT-presence, and bound-parameter checks, tokenized
// with string/dollar-quote awareness so literal text never triggers a
// false positive.
func CheckSafety(sql string, params []any, allowedSchemas map[string]bool) GateResult {
	toks := tokenize(sql)

	statementCount := 0
	hasSelect := false
	var unboundLiteral string

	for idx, t := range toks {
		switch t.kind {
		case tokenString:
			if unboundLiteral == "" {
				unboundLiteral = t.text
			}
		case tokenPunct:
			if t.text == ";" {
				trailingOnly := true
				for _, rest := range toks[idx+1:] {
					if rest.kind == tokenPunct && rest.text == ";" {
						continue
					}
					trailingOnly = false
					break
				}
				if !trailingOnly {
					statementCount++
				}
			}
		case tokenWord:
			upper := strings.ToUpper(t.text)
			if forbiddenKeywords[upper] {
				return GateResult{Allowed: false, Reason: RejectForbiddenKeyword, Detail: upper}
			}
			if upper == "SELECT" {
				hasSelect = true
			}
			if strings.Contains(t.text, ".") {
				schema := t.text[:strings.Index(t.text, ".")]
				if allowedSchemas != nil && len(allowedSchemas) > 0 && !allowedSchemas[schema] && !systemSchemas[schema] {
					return GateResult{Allowed: false, Reason: RejectDisallowedSchema, Detail: schema}
				}
			}
		}
	}

	if statementCount > 0 {
		return GateResult{Allowed: false, Reason: RejectMultiStatement}
	}
	if !hasSelect {
		return GateResult{Allowed: false, Reason: RejectNoSelect}
	}
	if unboundLiteral != "" {
		return GateResult{Allowed: false, Reason: RejectUnboundLiteral, Detail: fmt.Sprintf("literal %s inlined instead of a $n placeholder", unboundLiteral)}
	}
	if countPlaceholders(sql) < len(params) {
		return GateResult{Allowed: false, Reason: RejectUnboundLiteral, Detail: fmt.Sprintf("%d params declared, fewer placeholders found", len(params))}
	}

	return GateResult{Allowed: true}
}

// countPlaceholders counts $1, $2, ... style positional placeholders.
func countPlaceholders(sql string) int {
	count := 0
	for i := 0; i < len(sql); i++ {
		if sql[i] == '$' && i+1 < len(sql) && sql[i+1] >= '0' && sql[i+1] <= '9' {
			count++
			i++
			for i+1 < len(sql) && sql[i+1] >= '0' && sql[i+1] <= '9' {
				i++
			}
		}
	}
	return count
}
