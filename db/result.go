package db

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/flatdb/flatdb/core"
)

// Result is the outcome of one successfully executed statement: the
// selected rows (empty for mutations) and the number of rows a mutation
// affected.
type Result struct {
	Columns          []string
	Rows             []core.Row
	AffectedCount    int
	RecordsRead      int
	ExecutionTimeSec float64
}

// Render writes the result as a formatted table followed by a compact
// stats line.
func (result Result) Render(w io.Writer) {
	if len(result.Rows) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)

		header := make(table.Row, len(result.Columns))
		for i, column := range result.Columns {
			header[i] = column
		}
		t.AppendHeader(header)

		for _, row := range result.Rows {
			cells := make(table.Row, len(row))
			for i, value := range row {
				cells[i] = value.String()
			}
			t.AppendRow(cells)
		}
		t.Render()
	}

	if result.AffectedCount > 0 {
		fmt.Fprintf(w, "%d row(s) affected (%s)\n", result.AffectedCount, result.ExecutionTime())
	} else {
		fmt.Fprintf(w, "%d row(s) (%s)\n", len(result.Rows), result.ExecutionTime())
	}
}

func (result Result) Display() {
	result.Render(os.Stdout)
}

// ExecutionTime formats the execution duration in human-readable form.
func (result Result) ExecutionTime() string {
	secs := result.ExecutionTimeSec
	switch {
	case secs < 0.001:
		return "<1ms"
	case secs < 1:
		ms := secs * 1000
		if ms < 10 {
			return fmt.Sprintf("%.1fms", ms)
		}
		return fmt.Sprintf("%dms", int(ms))
	case secs < 60:
		if secs < 10 {
			return fmt.Sprintf("%.1fs", secs)
		}
		return fmt.Sprintf("%ds", int(secs))
	default:
		mins := int(secs / 60)
		remain := int(secs) % 60
		if remain == 0 {
			return fmt.Sprintf("%dm", mins)
		}
		return fmt.Sprintf("%dm%ds", mins, remain)
	}
}
