package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/ews-cli/internal/utils"
)

// DefaultSheet is the worksheet name used for XLSX output.
const DefaultSheet = "Sheet1"

// WriteXLSX writes t as a single-sheet workbook. Numbers and booleans stay
// typed cells; blanked zeros are empty cells.
func WriteXLSX(w io.Writer, t Tabular) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, 0, len(t.Header()))
	for _, h := range t.Header() {
		header = append(header, h)
	}
	if err := f.SetSheetRow(DefaultSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, rec := range Cells(t) {
		row := make([]any, len(rec))
		for j, v := range rec {
			if x, ok := v.(float64); ok && math.IsNaN(x) {
				v = nil
			}
			row[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(DefaultSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// WriteCSV writes t as UTF-8 CSV with a leading BOM so Excel detects the
// encoding.
func WriteCSV(w io.Writer, t Tabular) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, rec := range Strings(t) {
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write renders t in the given format to w.
func Write(w io.Writer, t Tabular, format Format) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, t)
	case FormatCSV:
		return WriteCSV(w, t)
	}
	return fmt.Errorf("unsupported output format: %s", format)
}

// WriteFile renders t to path atomically.
func WriteFile(path string, t Tabular, format Format) error {
	var buf bytes.Buffer
	if err := Write(&buf, t, format); err != nil {
		return err
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

// ContentType returns the MIME type for a format.
func ContentType(format Format) string {
	if format == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
