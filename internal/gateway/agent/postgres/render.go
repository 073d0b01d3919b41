package postgres

import (
	"fmt"
	"strings"

	"github.com/mitchellh/go-wordwrap"
)

const smallTableRowCap = 20
const largeTableHeadRows = 10
const cellWrapWidth = 40

// Render produces the human-readable answer for a successfully executed
// query (§4.4 step 5): a restated scalar sentence, a Markdown table for
// small result sets, or a head summary for large ones, always followed by
// a source footer naming the tables used and the row count.
func Render(question string, result *ResultSet, tablesUsed []string) string {
	var body string
	switch {
	case len(result.Rows) == 1 && len(result.Columns) == 1:
		body = renderScalar(question, result)
	case len(result.Rows) <= smallTableRowCap:
		body = renderTable(result.Columns, result.Rows)
	default:
		body = renderLargeTable(result.Columns, result.Rows)
	}

	return body + "\n\n" + sourceFooter(tablesUsed, len(result.Rows))
}

func renderScalar(question string, result *ResultSet) string {
	col := result.Columns[0]
	val := result.Rows[0][col]
	return fmt.Sprintf("The answer to \"%s\" is %v (%s).", question, val, col)
}

func renderTable(columns []string, rows []map[string]any) string {
	var sb strings.Builder
	sb.WriteString("| " + strings.Join(columns, " | ") + " |\n")
	sb.WriteString("|" + strings.Repeat(" --- |", len(columns)) + "\n")
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = wordwrap.WrapString(fmt.Sprintf("%v", row[col]), cellWrapWidth)
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return sb.String()
}

func renderLargeTable(columns []string, rows []map[string]any) string {
	head := rows
	if len(head) > largeTableHeadRows {
		head = head[:largeTableHeadRows]
	}
	table := renderTable(columns, head)
	return fmt.Sprintf("%s\nShowing the first %d of %d rows.", table, len(head), len(rows))
}

func sourceFooter(tablesUsed []string, rowCount int) string {
	if len(tablesUsed) == 0 {
		return fmt.Sprintf("Source: %d row(s).", rowCount)
	}
	return fmt.Sprintf("Source: %s (%d row(s)).", strings.Join(tablesUsed, ", "), rowCount)
}
