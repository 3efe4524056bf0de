package usecases

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	evaluationDiagnostics = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "loanportal",
		Subsystem: "field_catalog",
		Name:      "evaluation_diagnostics_total",
		Help:      "Conditionals that fell back to their safe default, by diagnostic kind.",
	}, []string{"kind"})

	formulaFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "loanportal",
		Subsystem: "field_catalog",
		Name:      "formula_failures_total",
		Help:      "Formulas that failed to parse or evaluate while evaluating a record.",
	}, []string{"context"})

	reorderFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "loanportal",
		Subsystem: "field_catalog",
		Name:      "reorder_update_failures_total",
		Help:      "Display order updates of a bulk reorder that failed.",
	}, []string{"context"})

	auditProblems = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "loanportal",
		Subsystem: "field_catalog",
		Name:      "audit_problems",
		Help:      "Invariant violations found by the last catalog audit.",
	}, []string{"context"})
)
