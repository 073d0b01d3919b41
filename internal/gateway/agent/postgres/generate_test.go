package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGeneratedQuery(t *testing.T) {
	text := "SQL: SELECT * FROM orders WHERE id = $1\nPARAMS: 42\nRATIONALE: looks up one order by id"
	q, err := parseGeneratedQuery(text)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM orders WHERE id = $1", q.SQL)
	assert.Equal(t, []any{float64(42)}, q.Params)
	assert.Equal(t, "looks up one order by id", q.Rationale)
}

func TestParseGeneratedQueryNoParams(t *testing.T) {
	text := "SQL: SELECT COUNT(*) FROM orders\nPARAMS: NONE\nRATIONALE: counts all orders"
	q, err := parseGeneratedQuery(text)
	require.NoError(t, err)
	assert.Nil(t, q.Params)
}

func TestParseGeneratedQueryMissingSQLFails(t *testing.T) {
	_, err := parseGeneratedQuery("RATIONALE: no sql given")
	assert.Error(t, err)
}

func TestParseParamsMixesNumbersAndStrings(t *testing.T) {
	params := parseParams("42, east, 3.5")
	assert.Equal(t, []any{float64(42), "east", float64(3.5)}, params)
}
