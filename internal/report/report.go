// Package report renders rule outputs for people: console tables, XLSX and
// CSV files. Display-only transforms such as showing zero counts as empty
// cells live here and never feed back into computation.
package report

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"

	"github.com/KaramelBytes/ews-cli/internal/table"
)

// Tabular is anything with a header and records aligned with it.
type Tabular interface {
	Header() []string
	Records() [][]any
}

// ZeroBlanker is implemented by reports whose zero counts in the named
// columns are displayed as empty cells.
type ZeroBlanker interface {
	BlankZeroColumns() []string
}

// Format is an output file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts "xlsx" or "csv" in any case, with or without a dot.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "xlsx":
		return FormatXLSX, nil
	case "csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unsupported output format: %s (use xlsx|csv)", s)
}

// FormatFromPath infers the format from the file extension, using fallback
// when the extension is not recognized.
func FormatFromPath(path string, fallback Format) Format {
	if f, err := ParseFormat(filepath.Ext(path)); err == nil {
		return f
	}
	return fallback
}

// Cells returns the display cells of t: records with blanked zeros applied.
func Cells(t Tabular) [][]any {
	header := t.Header()
	recs := t.Records()
	zb, ok := t.(ZeroBlanker)
	if !ok {
		return recs
	}
	blank := make(map[int]bool)
	for _, name := range zb.BlankZeroColumns() {
		for i, h := range header {
			if h == name {
				blank[i] = true
			}
		}
	}
	out := make([][]any, len(recs))
	for i, rec := range recs {
		row := make([]any, len(rec))
		copy(row, rec)
		for j := range row {
			if blank[j] && isZero(row[j]) {
				row[j] = ""
			}
		}
		out[i] = row
	}
	return out
}

// Strings renders the display cells as text.
func Strings(t Tabular) [][]string {
	cells := Cells(t)
	out := make([][]string, len(cells))
	for i, rec := range cells {
		row := make([]string, len(rec))
		for j, v := range rec {
			row[j] = formatCell(v)
		}
		out[i] = row
	}
	return out
}

func formatCell(v any) string {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) {
			return ""
		}
	case bool:
		if x {
			return "True"
		}
		return "False"
	}
	return cast.ToString(v)
}

func isZero(v any) bool {
	n, err := cast.ToIntE(v)
	return err == nil && n == 0 && v != ""
}

// TableView adapts a raw table.Table to Tabular, e.g. for previews.
type TableView struct {
	T table.Table
}

func (v TableView) Header() []string { return v.T.Header }

func (v TableView) Records() [][]any {
	out := make([][]any, len(v.T.Rows))
	for i, r := range v.T.Rows {
		rec := make([]any, len(r))
		for j, c := range r {
			rec[j] = c
		}
		out[i] = rec
	}
	return out
}
