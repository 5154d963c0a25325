package rules

import (
	"strings"
	"time"

	"github.com/spf13/cast"
)

// MeetingDate is a calendar day. The zero value (Valid false) marks a value
// that could not be parsed; it still takes part in grouping as its own key.
type MeetingDate struct {
	Year  int
	Month time.Month
	Day   int
	Valid bool
}

// missingDateLabel is the column header used for unparseable dates.
const missingDateLabel = "(blank)"

// defaultDateLayouts is tried in order; month-first wins over day-first for
// ambiguous numeric dates. Single-digit month, day and hour fields also
// accept two digits, so "1/2/2006" covers "01/02/2006".
var defaultDateLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"1/2/2006",
	"1/2/06",
	"1-2-06",
	"2006/01/02",
	"2 January 2006",
	"02-Jan-2006",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	time.RFC3339,
}

func dateOf(t time.Time) MeetingDate {
	return MeetingDate{Year: t.Year(), Month: t.Month(), Day: t.Day(), Valid: true}
}

// parseMeetingDate tries the extra layouts, then the defaults, then cast's
// own format list.
func parseMeetingDate(s string, extra []string) MeetingDate {
	s = strings.TrimSpace(s)
	if s == "" {
		return MeetingDate{}
	}
	for _, l := range extra {
		if t, err := time.Parse(l, s); err == nil {
			return dateOf(t)
		}
	}
	for _, l := range defaultDateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return dateOf(t)
		}
	}
	if t, err := cast.ToTimeE(s); err == nil {
		return dateOf(t)
	}
	return MeetingDate{}
}

// Time returns midnight UTC of the day, or the zero time for a missing date.
func (d MeetingDate) Time() time.Time {
	if !d.Valid {
		return time.Time{}
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d MeetingDate) String() string {
	if !d.Valid {
		return missingDateLabel
	}
	return d.Time().Format("2006-01-02")
}

// Before orders dates chronologically with the missing date last.
func (d MeetingDate) Before(o MeetingDate) bool {
	if !d.Valid || !o.Valid {
		return d.Valid && !o.Valid
	}
	return d.Time().Before(o.Time())
}
