package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/KaramelBytes/ews-cli/internal/rules"
)

// Outcome label values.
const (
	OutcomeOK            = "ok"
	OutcomeMissingColumn = "missing_column"
	OutcomeError         = "error"
)

// Recorder tracks rule runs.
type Recorder struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	rows     *prometheus.GaugeVec
}

// New registers the rule metrics on reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ews",
			Name:      "rule_runs_total",
			Help:      "Rule runs by rule id and outcome.",
		}, []string{"rule", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ews",
			Name:      "rule_duration_seconds",
			Help:      "Wall time of a rule run, parsing excluded.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"rule"}),
		rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "ews",
			Name:      "report_rows",
			Help:      "Row count of the most recent successful report per rule.",
		}, []string{"rule"}),
	}
	reg.MustRegister(r.runs, r.duration, r.rows)
	return r
}

// Outcome classifies a run error for the outcome label.
func Outcome(err error) string {
	var mc *rules.MissingColumnError
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &mc):
		return OutcomeMissingColumn
	default:
		return OutcomeError
	}
}

// Observe records one run that started at start.
func (r *Recorder) Observe(rule string, start time.Time, rows int, err error) {
	r.runs.WithLabelValues(rule, Outcome(err)).Inc()
	r.duration.WithLabelValues(rule).Observe(time.Since(start).Seconds())
	if err == nil {
		r.rows.WithLabelValues(rule).Set(float64(rows))
	}
}
