package table

import "strings"

// bomMarker is the UTF-8 byte order mark (EF BB BF) as it appears after the
// file was decoded as Latin-1.
const bomMarker = "\u00ef\u00bb\u00bf"

// NormalizeHeader canonicalizes a column name: BOM artifacts removed,
// surrounding whitespace trimmed, lowercased.
func NormalizeHeader(h string) string {
	for strings.Contains(h, bomMarker) || strings.Contains(h, "\uFEFF") {
		h = strings.ReplaceAll(h, bomMarker, "")
		h = strings.ReplaceAll(h, "\uFEFF", "")
	}
	return strings.ToLower(strings.TrimSpace(h))
}

// Normalize returns a copy of t with normalized headers. Cell values and row
// order are unchanged and t itself is not modified.
func Normalize(t Table) Table {
	out := Table{
		Header: make([]string, len(t.Header)),
		Rows:   make([][]string, len(t.Rows)),
	}
	for i, h := range t.Header {
		out.Header[i] = NormalizeHeader(h)
	}
	for i, r := range t.Rows {
		cp := make([]string, len(r))
		copy(cp, r)
		out.Rows[i] = cp
	}
	return out
}
