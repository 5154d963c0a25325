package parser_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/ews-cli/internal/parser"
)

func TestParseFileCSV_Latin1WithBOM(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "meetings.csv")
	// UTF-8 BOM, then a Latin-1 encoded "é" (0xE9) in a cell
	content := []byte("\xEF\xBB\xBFState,Branch_Name,Note\nTX,B1,caf\xE9\nCA,B2\n")
	require.NoError(t, os.WriteFile(p, content, 0o644))

	tb, err := parser.ParseFile(p, parser.Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"ï»¿State", "Branch_Name", "Note"}, tb.Header)
	require.Len(t, tb.Rows, 2)
	assert.Equal(t, "café", tb.Rows[0][2])
	// short rows are padded to the header width
	assert.Equal(t, []string{"CA", "B2", ""}, tb.Rows[1])
}

func TestParseCSV_UTF8AndDelimiters(t *testing.T) {
	in := "a;b\n1;\"x;y\"\n"
	tb, err := parser.Parse(strings.NewReader(in), "data.csv", parser.Options{Encoding: "utf8", Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tb.Header)
	assert.Equal(t, [][]string{{"1", "x;y"}}, tb.Rows)

	tb, err = parser.Parse(strings.NewReader("a\tb\n1\t2\n"), "data.TSV", parser.Options{})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "2"}}, tb.Rows)

	_, err = parser.Parse(strings.NewReader(in), "data.csv", parser.Options{Encoding: "ebcdic"})
	assert.Error(t, err)
}

func TestParseCSV_Empty(t *testing.T) {
	tb, err := parser.Parse(strings.NewReader(""), "empty.csv", parser.Options{})
	require.NoError(t, err)
	assert.Empty(t, tb.Header)
	assert.Empty(t, tb.Rows)
}

func TestParseXLSX_SheetSelection(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), "Summary"))
	_, err := f.NewSheet("Loans")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Summary", "A1", &[]any{"ignored"}))
	require.NoError(t, f.SetSheetRow("Loans", "A1", &[]any{"State", "Cust_ID", "Loan_ID"}))
	require.NoError(t, f.SetSheetRow("Loans", "A2", &[]any{"TX", "CU1", "L1"}))
	require.NoError(t, f.SetSheetRow("Loans", "A3", &[]any{"TX"}))
	var buf bytes.Buffer
	_, err = f.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.Bytes()

	tb, err := parser.Parse(bytes.NewReader(raw), "book.xlsx", parser.Options{SheetName: "loans"})
	require.NoError(t, err)
	assert.Equal(t, []string{"State", "Cust_ID", "Loan_ID"}, tb.Header)
	assert.Equal(t, [][]string{{"TX", "CU1", "L1"}, {"TX", "", ""}}, tb.Rows)

	tb, err = parser.Parse(bytes.NewReader(raw), "book.xlsx", parser.Options{SheetIndex: 2})
	require.NoError(t, err)
	assert.Equal(t, "State", tb.Header[0])

	tb, err = parser.Parse(bytes.NewReader(raw), "book.xlsx", parser.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ignored"}, tb.Header)

	_, err = parser.Parse(bytes.NewReader(raw), "book.xlsx", parser.Options{SheetName: "nope"})
	assert.ErrorContains(t, err, "Available sheets: Summary, Loans")

	_, err = parser.Parse(bytes.NewReader(raw), "book.xlsx", parser.Options{SheetIndex: 5})
	assert.Error(t, err)
}

func TestParseUnsupported(t *testing.T) {
	_, err := parser.Parse(strings.NewReader("x"), "notes.docx", parser.Options{})
	assert.ErrorIs(t, err, parser.ErrUnsupported)
	assert.False(t, parser.Supported("notes.docx"))
	assert.True(t, parser.Supported("DATA.CSV"))
	assert.True(t, parser.Supported("book.xlsx"))
}

func TestParseSkipsBlankRows(t *testing.T) {
	t.Run("Should skip delimiter-only CSV lines", func(t *testing.T) {
		body := "State,Cust_ID\nTX,CU1\n,\n , \nTX,CU2\n"
		tb, err := parser.Parse(strings.NewReader(body), "loans.csv", parser.Options{})
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"TX", "CU1"}, {"TX", "CU2"}}, tb.Rows)
	})

	t.Run("Should skip empty worksheet rows", func(t *testing.T) {
		f := excelize.NewFile()
		sheet := f.GetSheetName(0)
		require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"State", "Cust_ID"}))
		require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"TX", "CU1"}))
		require.NoError(t, f.SetSheetRow(sheet, "A4", &[]any{"TX", "CU2"}))
		var buf bytes.Buffer
		_, err := f.WriteTo(&buf)
		require.NoError(t, err)

		tb, err := parser.Parse(&buf, "book.xlsx", parser.Options{})
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"TX", "CU1"}, {"TX", "CU2"}}, tb.Rows)
	})
}
