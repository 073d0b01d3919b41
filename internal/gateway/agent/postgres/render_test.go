package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderScalarResult(t *testing.T) {
	result := &ResultSet{
		Columns: []string{"count"},
		Rows:    []map[string]any{{"count": 42}},
	}
	out := Render("how many orders today", result, []string{"orders"})
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "Source: orders")
}

func TestRenderSmallTable(t *testing.T) {
	result := &ResultSet{
		Columns: []string{"id", "name"},
		Rows: []map[string]any{
			{"id": 1, "name": "alice"},
			{"id": 2, "name": "bob"},
		},
	}
	out := Render("list customers", result, []string{"customers"})
	assert.Contains(t, out, "| id | name |")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "(2 row(s))")
}

func TestRenderLargeTableSummarizesHead(t *testing.T) {
	rows := make([]map[string]any, 25)
	for i := range rows {
		rows[i] = map[string]any{"id": i}
	}
	result := &ResultSet{Columns: []string{"id"}, Rows: rows}
	out := Render("list all ids", result, nil)
	assert.Contains(t, out, "Showing the first 10 of 25 rows.")
}

func TestInjectLimitAppendsWhenAbsent(t *testing.T) {
	sql := injectLimit("SELECT * FROM orders", 500)
	assert.Contains(t, sql, "LIMIT 500")
}

func TestInjectLimitLeavesExplicitLimitAlone(t *testing.T) {
	sql := injectLimit("SELECT * FROM orders LIMIT 10", 500)
	assert.Equal(t, "SELECT * FROM orders LIMIT 10", sql)
}

func TestInjectLimitRewritesExplicitLimitAboveCap(t *testing.T) {
	sql := injectLimit("SELECT * FROM orders LIMIT 100000", 500)
	assert.Equal(t, "SELECT * FROM orders LIMIT 500", sql)
}

func TestInjectLimitLeavesExplicitLimitEqualToCap(t *testing.T) {
	sql := injectLimit("SELECT * FROM orders LIMIT 500", 500)
	assert.Equal(t, "SELECT * FROM orders LIMIT 500", sql)
}
