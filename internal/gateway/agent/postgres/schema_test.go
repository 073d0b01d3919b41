package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleSnapshot() *SchemaSnapshot {
	return &SchemaSnapshot{
		Tables: []Table{
			{
				Schema:      "public",
				Name:        "orders",
				RowEstimate: 10000,
				Columns: []Column{
					{Name: "id", DataType: "bigint"},
					{Name: "customer_id", DataType: "bigint"},
					{Name: "total", DataType: "numeric"},
				},
			},
			{
				Schema:      "public",
				Name:        "customers",
				RowEstimate: 500,
				Columns: []Column{
					{Name: "id", DataType: "bigint"},
					{Name: "name", DataType: "text"},
				},
			},
		},
	}
}

func TestSummarizeRanksRelevantTableFirst(t *testing.T) {
	snap := sampleSnapshot()
	summary := snap.Summarize("how many orders were placed last month", 4096)
	assert.True(t, indexOfSubstring(summary, "TABLE public.orders") < indexOfSubstring(summary, "TABLE public.customers"))
}

func TestSummarizeRespectsByteBudget(t *testing.T) {
	snap := sampleSnapshot()
	summary := snap.Summarize("orders", 40)
	assert.LessOrEqual(t, len(summary), 40) // each table block is measured before it is written, so the budget is never exceeded
}

func TestSummarizeTieBreaksByTableNameWhenScoresEqual(t *testing.T) {
	snap := sampleSnapshot()
	summary := snap.Summarize("unrelated question about nothing in particular", 4096)
	assert.True(t, indexOfSubstring(summary, "TABLE public.customers") < indexOfSubstring(summary, "TABLE public.orders"))
}

func TestAllowedSchemasCollectsDistinctSchemas(t *testing.T) {
	snap := sampleSnapshot()
	allowed := snap.AllowedSchemas()
	assert.True(t, allowed["public"])
	assert.Len(t, allowed, 1)
}

func indexOfSubstring(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
