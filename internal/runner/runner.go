// Package runner wraps a rule engine with the per-run concerns shared by the
// CLI and the HTTP shell: run ids, logging and metrics.
package runner

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/ews-cli/internal/logger"
	"github.com/KaramelBytes/ews-cli/internal/metrics"
	"github.com/KaramelBytes/ews-cli/internal/rules"
	"github.com/KaramelBytes/ews-cli/internal/table"
)

// Result is a finished run.
type Result struct {
	RunID   string
	Rule    rules.Definition
	Report  rules.Report
	Input   int
	Elapsed time.Duration
}

// Runner executes rules. Metrics is optional.
type Runner struct {
	Engine  *rules.Engine
	Log     logger.Logger
	Metrics *metrics.Recorder
}

// New returns a Runner without metrics.
func New(engine *rules.Engine, log logger.Logger) *Runner {
	return &Runner{Engine: engine, Log: log}
}

// Run applies the rule id to t. A MissingColumnError is returned unwrapped
// so callers can show its message verbatim.
func (r *Runner) Run(id string, t table.Table) (*Result, error) {
	def, ok := rules.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", rules.ErrUnknownRule, id)
	}
	res := &Result{RunID: uuid.NewString(), Rule: def, Input: t.Len()}
	start := time.Now()
	rep, err := r.Engine.Apply(id, t)
	res.Elapsed = time.Since(start)

	rows := 0
	if err == nil {
		rows = len(rep.Records())
	}
	if r.Metrics != nil {
		r.Metrics.Observe(id, start, rows, err)
	}
	if err != nil {
		r.Log.Warn("rule failed", "run_id", res.RunID, "rule", id, "err", err)
		return nil, err
	}
	res.Report = rep
	kv := []any{"run_id", res.RunID, "rule", id, "input_rows", res.Input, "report_rows", rows, "elapsed", res.Elapsed}
	switch rr := rep.(type) {
	case *rules.Rule1Report:
		if rr.BlankKeys > 0 {
			kv = append(kv, "blank_key_rows", rr.BlankKeys)
		}
	case *rules.Rule2Report:
		if rr.Unrecognized > 0 {
			kv = append(kv, "unrecognized_statuses", rr.Unrecognized)
		}
		if rr.BlankKeys > 0 {
			kv = append(kv, "blank_key_rows", rr.BlankKeys)
		}
	}
	r.Log.Debug("rule finished", kv...)
	return res, nil
}
