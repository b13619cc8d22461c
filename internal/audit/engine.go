package audit

import (
	"fmt"
	"log"
	"math"
	"time"

	"billaudit/internal/domain"
)

const fullyCompliantSummary = "Invoice is fully compliant with all audit policies"

// Engine evaluates extracted invoice data against a policy snapshot.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	registry *Registry
	dateNow  func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRegistry replaces the rule registry.
func WithRegistry(r *Registry) EngineOption {
	return func(e *Engine) { e.registry = r }
}

// WithDateWindow makes date_range policies compare parsed dates against now.
// It applies to the final registry whatever the option order, and never
// modifies a registry passed to WithRegistry.
func WithDateWindow(now func() time.Time) EngineOption {
	return func(e *Engine) { e.dateNow = now }
}

// NewEngine creates an Engine with the built-in rules.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{registry: DefaultRegistry()}
	for _, opt := range opts {
		opt(e)
	}
	if e.dateNow != nil {
		e.registry = e.registry.Clone()
		e.registry.Register(DateRangeRule{Now: e.dateNow})
	}
	return e
}

// Evaluate runs every active policy, in order, and scores the result.
// Inactive policies are ignored and do not count toward the score.
func (e *Engine) Evaluate(data InvoiceData, policies []domain.AuditPolicy, rawText string) domain.AuditResult {
	violations := []domain.Violation{}
	active := 0
	var unknown []domain.RuleType

	for i := range policies {
		p := &policies[i]
		if !p.IsActive {
			continue
		}
		active++

		rule := e.registry.Get(p.RuleType)
		if rule == nil {
			unknown = append(unknown, p.RuleType)
			continue
		}

		var field FieldValue
		if p.FieldName == domain.FieldContent {
			field = TextValue(rawText)
		} else {
			field = data.Field(p.FieldName)
		}

		if v := rule.Evaluate(p, field, rawText); v != nil {
			violations = append(violations, *v)
		}
	}

	if len(unknown) > 0 {
		log.Printf("audit.Engine.Evaluate: skipped %d policies with unknown rule types %v", len(unknown), unknown)
	}

	return buildResult(violations, active)
}

func buildResult(violations []domain.Violation, active int) domain.AuditResult {
	var errs, warnings int
	for _, v := range violations {
		switch {
		case v.Severity == domain.SeverityWarning:
			warnings++
		case v.Severity.IsBlocking():
			errs++
		}
	}

	return domain.AuditResult{
		IsCompliant:     len(violations) == 0,
		TotalViolations: len(violations),
		Violations:      violations,
		ComplianceScore: complianceScore(errs, active),
		Summary:         summarize(len(violations), errs, warnings, active),
	}
}

func complianceScore(errs, active int) float64 {
	if active == 0 {
		return 100
	}
	score := float64(active-errs) / float64(active) * 100
	if score < 0 {
		score = 0
	}
	return math.Round(score*100) / 100
}

func summarize(total, errs, warnings, active int) string {
	if total == 0 {
		return fullyCompliantSummary
	}
	s := fmt.Sprintf("Invoice has %d policy violations", errs)
	if warnings > 0 {
		s += fmt.Sprintf(", %d warnings", warnings)
	}
	return s + fmt.Sprintf(" out of %d rules checked", active)
}
