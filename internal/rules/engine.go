package rules

import (
	"fmt"

	"github.com/KaramelBytes/ews-cli/internal/table"
)

// Options tunes input interpretation. The zero value is ready to use.
type Options struct {
	// DateLayouts are time.Parse layouts tried before the built-in ones when
	// reading the meeting date column.
	DateLayouts []string
}

// Engine runs the rules with a fixed set of Options. It holds no mutable
// state and may be shared between goroutines.
type Engine struct {
	opt Options
}

// New returns an Engine using opt.
func New(opt Options) *Engine {
	return &Engine{opt: opt}
}

// Report is the tabular view shared by both rule outputs. Records hold
// numeric cells; presentation transforms are left to the renderer.
type Report interface {
	Header() []string
	Records() [][]any
}

// Definition describes a rule to callers that dispatch by id.
type Definition struct {
	ID         string
	Title      string
	OutputBase string
}

// Catalog lists the available rules in display order.
var Catalog = []Definition{
	{ID: "rule1", Title: "Unique Center Per BM Per Day", OutputBase: "Rule_1_Output"},
	{ID: "rule2", Title: "Loan Status Funnel", OutputBase: "Rule_2_Output"},
}

// Lookup returns the catalog entry for id.
func Lookup(id string) (Definition, bool) {
	for _, d := range Catalog {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}

// Apply runs the rule identified by id against t.
func (e *Engine) Apply(id string, t table.Table) (Report, error) {
	var (
		rep Report
		err error
	)
	switch id {
	case "rule1":
		var r *Rule1Report
		r, err = e.ApplyRule1(t)
		rep = r
	case "rule2":
		var r *Rule2Report
		r, err = e.ApplyRule2(t)
		rep = r
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRule, id)
	}
	if err != nil {
		return nil, err
	}
	return rep, nil
}

// ApplyRule1 runs Rule 1 with default options.
func ApplyRule1(t table.Table) (*Rule1Report, error) {
	return New(Options{}).ApplyRule1(t)
}

// ApplyRule2 runs Rule 2 with default options.
func ApplyRule2(t table.Table) (*Rule2Report, error) {
	return New(Options{}).ApplyRule2(t)
}
