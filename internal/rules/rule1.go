package rules

import (
	"sort"

	"github.com/KaramelBytes/ews-cli/internal/table"
)

// Normalized column names read by Rule 1, in the order they are checked.
const (
	ColState       = "state"
	ColBranch      = "branch_name"
	ColRegion      = "region_name"
	ColAttendedBy  = "attended by id"
	ColMeetingDate = "month, day, year of meeting date"
	ColCenter      = "center_id"
)

var rule1Columns = []string{ColState, ColBranch, ColRegion, ColAttendedBy, ColMeetingDate, ColCenter}

// rule1Percentile is the Days_Visited quantile used as the outlier cut-off.
const rule1Percentile = 0.975

// Rule1Row is one (state, branch, region, attended-by) group.
type Rule1Row struct {
	State      string
	Branch     string
	Region     string
	AttendedBy string
	// Centers holds the distinct center count per date, aligned with
	// Rule1Report.Dates.
	Centers     []int
	Total       int
	DaysVisited int
	P97_5       float64
	Above97_5   bool
}

// Rule1Report is the "Unique Center Per BM Per Day" pivot.
type Rule1Report struct {
	Dates []MeetingDate
	Rows  []Rule1Row
	// P97_5 is the 97.5th percentile of DaysVisited across Rows; NaN when
	// there are no rows.
	P97_5 float64
	// BlankKeys counts input rows dropped because a group column was empty.
	BlankKeys int
}

type rule1Key [4]string

type rule1Visit struct {
	key    rule1Key
	date   MeetingDate
	center string
}

// ApplyRule1 builds the per-person daily center pivot and flags the groups
// whose visited-day count reaches the 97.5th percentile.
func (e *Engine) ApplyRule1(t table.Table) (*Rule1Report, error) {
	nt := table.Normalize(t)
	idx, err := requireColumns(nt, rule1Columns)
	if err != nil {
		return nil, err
	}

	seen := make(map[rule1Visit]struct{}, len(nt.Rows))
	groups := make(map[rule1Key]map[MeetingDate]int)
	dateSet := make(map[MeetingDate]struct{})
	skipped := 0
	for _, row := range nt.Rows {
		v := rule1Visit{
			key: rule1Key{
				table.Cell(row, idx[0]),
				table.Cell(row, idx[1]),
				table.Cell(row, idx[2]),
				table.Cell(row, idx[3]),
			},
			date:   parseMeetingDate(table.Cell(row, idx[4]), e.opt.DateLayouts),
			center: table.Cell(row, idx[5]),
		}
		if hasBlank(v.key[:]) {
			skipped++
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		dateSet[v.date] = struct{}{}
		perDate, ok := groups[v.key]
		if !ok {
			perDate = make(map[MeetingDate]int)
			groups[v.key] = perDate
		}
		// rows are unique per center here, so counting them counts distinct centers
		if v.center != "" {
			perDate[v.date]++
		}
	}

	rep := &Rule1Report{Dates: make([]MeetingDate, 0, len(dateSet)), BlankKeys: skipped}
	for d := range dateSet {
		rep.Dates = append(rep.Dates, d)
	}
	sort.Slice(rep.Dates, func(i, j int) bool { return rep.Dates[i].Before(rep.Dates[j]) })

	keys := make([]rule1Key, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	views := make([][]string, len(keys))
	for i := range keys {
		views[i] = keys[i][:]
	}
	order := newKeyOrder(views)
	sort.Slice(keys, func(i, j int) bool { return order.less(keys[i][:], keys[j][:]) })

	days := make([]int, 0, len(keys))
	rep.Rows = make([]Rule1Row, 0, len(keys))
	for _, k := range keys {
		perDate := groups[k]
		r := Rule1Row{
			State:      k[0],
			Branch:     k[1],
			Region:     k[2],
			AttendedBy: k[3],
			Centers:    make([]int, len(rep.Dates)),
		}
		for i, d := range rep.Dates {
			n := perDate[d]
			r.Centers[i] = n
			r.Total += n
			if n > 0 {
				r.DaysVisited++
			}
		}
		days = append(days, r.DaysVisited)
		rep.Rows = append(rep.Rows, r)
	}

	rep.P97_5 = percentileOfInts(days, rule1Percentile)
	for i := range rep.Rows {
		rep.Rows[i].P97_5 = rep.P97_5
		rep.Rows[i].Above97_5 = float64(rep.Rows[i].DaysVisited) >= rep.P97_5
	}
	return rep, nil
}

// Header lists the four id columns, one column per date, then the derived
// columns.
func (r *Rule1Report) Header() []string {
	h := make([]string, 0, 8+len(r.Dates))
	h = append(h, ColState, ColBranch, ColRegion, ColAttendedBy)
	for _, d := range r.Dates {
		h = append(h, d.String())
	}
	return append(h, "Total", "Days_Visited", "P97_5", "Above_97_5")
}

// Records returns one numeric record per row, aligned with Header.
func (r *Rule1Report) Records() [][]any {
	out := make([][]any, len(r.Rows))
	for i, row := range r.Rows {
		rec := make([]any, 0, 8+len(row.Centers))
		rec = append(rec, row.State, row.Branch, row.Region, row.AttendedBy)
		for _, n := range row.Centers {
			rec = append(rec, n)
		}
		rec = append(rec, row.Total, row.DaysVisited, row.P97_5, row.Above97_5)
		out[i] = rec
	}
	return out
}
