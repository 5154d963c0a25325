package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/ews-cli/internal/table"
)

// Options controls how an uploaded file is turned into a table.
type Options struct {
	// Encoding of delimited text: "latin1" (default) or "utf8".
	Encoding string
	// Delimiter for CSV. If 0, chosen from the file name (tab for .tsv, else comma).
	Delimiter rune
	// XLSX sheet selection. SheetName wins over SheetIndex (1-based).
	SheetName  string
	SheetIndex int
}

// Parser turns one file format into a table.
type Parser interface {
	CanParse(filename string) bool
	Parse(r io.Reader, filename string, opt Options) (table.Table, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// Parse selects a parser based on filename and reads r with it.
func Parse(r io.Reader, filename string, opt Options) (table.Table, error) {
	for _, p := range registry {
		if p.CanParse(filename) {
			return p.Parse(r, filename, opt)
		}
	}
	return table.Table{}, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(filename))
}

// ParseFile opens path and parses it by extension.
func ParseFile(path string, opt Options) (table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return table.Table{}, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return Parse(f, path, opt)
}

// Supported reports whether some registered parser accepts filename.
func Supported(filename string) bool {
	for _, p := range registry {
		if p.CanParse(filename) {
			return true
		}
	}
	return false
}

func init() {
	Register(csvParser{})
	Register(xlsxParser{})
}

// ErrUnsupported indicates a format is not supported yet.
var ErrUnsupported = errors.New("unsupported input format")

// dropBlankRows removes rows whose cells are all empty or whitespace, such as
// spacer rows inside a worksheet or trailing ",,," lines.
func dropBlankRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, r := range rows {
		for _, c := range r {
			if strings.TrimSpace(c) != "" {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// padRows extends short rows to width so every row can be indexed by header
// position.
func padRows(rows [][]string, width int) [][]string {
	for i, r := range rows {
		if len(r) < width {
			tmp := make([]string, width)
			copy(tmp, r)
			rows[i] = tmp
		}
	}
	return rows
}
