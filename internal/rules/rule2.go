package rules

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/KaramelBytes/ews-cli/internal/table"
)

// Normalized column names read by Rule 2, in the order they are checked.
const (
	ColCustID = "cust_id"
	ColLoanID = "loan_id"
	ColStatus = "lms_application_status"
)

var rule2Columns = []string{ColState, ColBranch, ColCustID, ColLoanID, ColStatus}

// Statuses is the fixed status vocabulary, in report column order.
var Statuses = [...]string{
	"Active",
	"Bureau Check",
	"Cgt-1",
	"Draft",
	"Grt-1",
	"Pre Sanction",
	"Pre Sanction Verification",
	"Rejected",
	"Sanctioned",
}

const (
	statusActive   = 0
	statusRejected = 7
)

// GrandTotalColumn is the header of the per-row status sum.
const GrandTotalColumn = "Grand Total"

var statusIndex = func() map[string]int {
	m := make(map[string]int, len(Statuses))
	for i, s := range Statuses {
		m[s] = i
	}
	return m
}()

// Rule2Row is one (state, branch, customer) group.
type Rule2Row struct {
	State  string
	Branch string
	CustID string
	// Counts holds distinct loan ids per status, indexed like Statuses.
	Counts     [len(Statuses)]int
	GrandTotal int
}

// Count returns the loan count for a status name, 0 for unknown names.
func (r Rule2Row) Count(status string) int {
	i, ok := statusIndex[status]
	if !ok {
		return 0
	}
	return r.Counts[i]
}

// Rule2Report is the "Loan Status Funnel" pivot.
type Rule2Report struct {
	Rows []Rule2Row
	// Unrecognized counts input rows whose status is outside Statuses.
	Unrecognized int
	// BlankKeys counts input rows dropped because a group column was empty.
	BlankKeys int
}

type rule2Key [3]string

type rule2Loan struct {
	key    rule2Key
	loan   string
	status int
}

// canonicalStatus trims and title-cases a raw status value.
func canonicalStatus(c cases.Caser, raw string) string {
	return c.String(strings.TrimSpace(raw))
}

// ApplyRule2 builds the per-customer status pivot, keeps customers with at
// least one active loan and ranks them by rejected loans.
func (e *Engine) ApplyRule2(t table.Table) (*Rule2Report, error) {
	nt := table.Normalize(t)
	idx, err := requireColumns(nt, rule2Columns)
	if err != nil {
		return nil, err
	}

	// Casers carry state, so each call gets its own.
	title := cases.Title(language.Und)
	rep := &Rule2Report{}
	seen := make(map[rule2Loan]struct{}, len(nt.Rows))
	groups := make(map[rule2Key]*[len(Statuses)]int)
	for _, row := range nt.Rows {
		key := rule2Key{table.Cell(row, idx[0]), table.Cell(row, idx[1]), table.Cell(row, idx[2])}
		if hasBlank(key[:]) {
			rep.BlankKeys++
			continue
		}
		si, ok := statusIndex[canonicalStatus(title, table.Cell(row, idx[4]))]
		if !ok {
			rep.Unrecognized++
			continue
		}
		l := rule2Loan{key: key, loan: table.Cell(row, idx[3]), status: si}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		counts, ok := groups[l.key]
		if !ok {
			counts = new([len(Statuses)]int)
			groups[l.key] = counts
		}
		if l.loan != "" {
			counts[si]++
		}
	}

	keys := make([]rule2Key, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	views := make([][]string, len(keys))
	for i := range keys {
		views[i] = keys[i][:]
	}
	order := newKeyOrder(views)
	sort.Slice(keys, func(i, j int) bool { return order.less(keys[i][:], keys[j][:]) })

	for _, k := range keys {
		r := Rule2Row{State: k[0], Branch: k[1], CustID: k[2], Counts: *groups[k]}
		for _, n := range r.Counts {
			r.GrandTotal += n
		}
		if r.Counts[statusActive] > 0 {
			rep.Rows = append(rep.Rows, r)
		}
	}
	sort.SliceStable(rep.Rows, func(i, j int) bool {
		return rep.Rows[i].Counts[statusRejected] > rep.Rows[j].Counts[statusRejected]
	})
	return rep, nil
}

// Header lists the id columns, the nine statuses and Grand Total.
func (r *Rule2Report) Header() []string {
	h := make([]string, 0, 4+len(Statuses))
	h = append(h, ColState, ColBranch, ColCustID)
	h = append(h, Statuses[:]...)
	return append(h, GrandTotalColumn)
}

// Records returns numeric records aligned with Header.
func (r *Rule2Report) Records() [][]any {
	out := make([][]any, len(r.Rows))
	for i, row := range r.Rows {
		rec := make([]any, 0, 4+len(Statuses))
		rec = append(rec, row.State, row.Branch, row.CustID)
		for _, n := range row.Counts {
			rec = append(rec, n)
		}
		out[i] = append(rec, row.GrandTotal)
	}
	return out
}

// BlankZeroColumns names the columns whose zero cells are shown empty.
func (r *Rule2Report) BlankZeroColumns() []string {
	cols := append([]string{}, Statuses[:]...)
	return append(cols, GrandTotalColumn)
}
