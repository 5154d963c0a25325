package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/KaramelBytes/ews-cli/internal/table"
)

type csvParser struct{}

func (csvParser) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

// Parse reads delimited text. Latin-1 decoding never fails, so any byte
// sequence loads; a UTF-8 BOM then shows up as "ï»¿" in the first header
// and is removed by header normalization.
func (csvParser) Parse(r io.Reader, filename string, opt Options) (table.Table, error) {
	switch strings.ToLower(strings.TrimSpace(opt.Encoding)) {
	case "", "latin1", "latin-1", "iso-8859-1":
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	case "utf8", "utf-8":
	default:
		return table.Table{}, fmt.Errorf("unsupported encoding: %s (use latin1|utf8)", opt.Encoding)
	}
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(filename)
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.Comma = delim

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return table.Table{}, nil
	}
	if err != nil {
		return table.Table{}, fmt.Errorf("read csv header: %w", err)
	}
	t := table.Table{Header: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return table.Table{}, fmt.Errorf("read csv row %d: %w", len(t.Rows)+2, err)
		}
		t.Rows = append(t.Rows, rec)
	}
	t.Rows = padRows(dropBlankRows(t.Rows), len(header))
	return t, nil
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}
