package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// Print writes t as a bordered console table. limit caps the printed rows;
// 0 prints everything. A trailer line reports how many rows were omitted.
func Print(w io.Writer, t Tabular, limit int) {
	rows := Strings(t)
	total := len(rows)
	if limit > 0 && total > limit {
		rows = rows[:limit]
	}
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(t.Header())
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.AppendBulk(rows)
	tw.Render()
	if len(rows) < total {
		fmt.Fprintf(w, "... %d more rows (showing %d of %d)\n", total-len(rows), len(rows), total)
	}
}
