package table

// Table is an in-memory dataset with named columns. Every row is expected to
// have len(Header) cells; loaders pad short rows with empty strings.
type Table struct {
	Header []string
	Rows   [][]string
}

// Index returns the position of the named column, or -1 if it is absent.
// Names are matched exactly; call Normalize first for canonical lookups.
func (t Table) Index(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Len returns the number of data rows.
func (t Table) Len() int { return len(t.Rows) }

// Head returns a table holding at most the first n rows. The rows are shared
// with t, not copied.
func (t Table) Head(n int) Table {
	if n < 0 || n >= len(t.Rows) {
		return Table{Header: t.Header, Rows: t.Rows}
	}
	return Table{Header: t.Header, Rows: t.Rows[:n]}
}

// Cell returns row[idx], or "" when the row is shorter than idx.
func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
