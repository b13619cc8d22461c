package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"billaudit/internal/domain"
)

var (
	// auditsTotal counts completed audits.
	// Labels: outcome (compliant, advisory, rejected)
	auditsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "billaudit",
		Subsystem: "audit",
		Name:      "evaluations_total",
		Help:      "Total audits by outcome",
	}, []string{"outcome"})

	// violationsTotal counts violations by rule type and severity.
	violationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "billaudit",
		Subsystem: "audit",
		Name:      "violations_total",
		Help:      "Total policy violations by violation type and severity",
	}, []string{"violation_type", "severity"})

	complianceScoreHist = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "billaudit",
		Subsystem: "audit",
		Name:      "compliance_score",
		Help:      "Distribution of compliance scores",
		Buckets:   []float64{0, 25, 50, 60, 70, 80, 90, 95, 100},
	})

	auditDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "billaudit",
		Subsystem: "audit",
		Name:      "duration_seconds",
		Help:      "Time to load policies, extract fields and evaluate",
		Buckets:   prometheus.DefBuckets,
	})
)

func recordAudit(result *domain.AuditResult, seconds float64) {
	auditDuration.Observe(seconds)
	complianceScoreHist.Observe(result.ComplianceScore)
	for _, v := range result.Violations {
		violationsTotal.WithLabelValues(string(v.ViolationType), string(v.Severity)).Inc()
	}

	outcome := "compliant"
	if !result.IsCompliant {
		outcome = "advisory"
		if !Decide(result).Accept {
			outcome = "rejected"
		}
	}
	auditsTotal.WithLabelValues(outcome).Inc()
}
