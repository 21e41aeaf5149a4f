package services

import (
	"github.com/prometheus/client_golang/prometheus"

	"censusqc/internal/detectors"
	"censusqc/internal/fixes"
)

// Metrics tracks validation and remediation activity.
type Metrics struct {
	validationRuns prometheus.Counter
	issuesFound    *prometheus.CounterVec
	fixesApplied   *prometheus.CounterVec
	fixFailures    *prometheus.CounterVec
}

// NewMetrics creates the metric set and registers it with the given
// registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		validationRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "censusqc",
			Name:      "validation_runs_total",
			Help:      "Number of full validation runs.",
		}),
		issuesFound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "censusqc",
			Name:      "issues_found_total",
			Help:      "Issues found by validation runs, by category and severity.",
		}, []string{"category", "severity"}),
		fixesApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "censusqc",
			Name:      "fixes_applied_total",
			Help:      "Successful fix applications, by action.",
		}, []string{"action"}),
		fixFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "censusqc",
			Name:      "fix_failures_total",
			Help:      "Failed fix applications, by action.",
		}, []string{"action"}),
	}
	if reg != nil {
		reg.MustRegister(m.validationRuns, m.issuesFound, m.fixesApplied, m.fixFailures)
	}
	return m
}

// ObserveRun records one validation run and its issues.
func (m *Metrics) ObserveRun(issues []detectors.Issue) {
	m.validationRuns.Inc()
	for _, issue := range issues {
		m.issuesFound.WithLabelValues(string(issue.Category), string(issue.Severity)).Inc()
	}
}

// ObserveFix records one fix attempt.
func (m *Metrics) ObserveFix(action fixes.Action, success bool) {
	if success {
		m.fixesApplied.WithLabelValues(string(action)).Inc()
		return
	}
	m.fixFailures.WithLabelValues(string(action)).Inc()
}
