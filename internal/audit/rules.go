package audit

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"billaudit/internal/domain"
)

// RuleEvaluator checks one kind of audit policy. Evaluate returns nil when the
// policy holds, or when the policy cannot be applied (absent field, unusable
// expected value, unknown condition).
type RuleEvaluator interface {
	RuleType() domain.RuleType
	Evaluate(policy *domain.AuditPolicy, field FieldValue, rawText string) *domain.Violation
}

// Registry maps rule types to their evaluators.
type Registry struct {
	evaluators map[domain.RuleType]RuleEvaluator
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{evaluators: make(map[domain.RuleType]RuleEvaluator)}
}

// DefaultRegistry returns a Registry holding every built-in rule type.
// The date range rule uses the substring heuristic.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(RequiredFieldRule{})
	r.Register(AmountLimitRule{})
	r.Register(FormatCheckRule{})
	r.Register(ContentWarningRule{})
	r.Register(DateRangeRule{})
	return r
}

// Register adds or replaces the evaluator for its rule type.
func (r *Registry) Register(e RuleEvaluator) {
	r.evaluators[e.RuleType()] = e
}

// Clone returns a copy that can be changed without affecting r.
func (r *Registry) Clone() *Registry {
	c := NewRegistry()
	for _, e := range r.evaluators {
		c.Register(e)
	}
	return c
}

// Get returns the evaluator for a rule type, or nil if none is registered.
func (r *Registry) Get(t domain.RuleType) RuleEvaluator {
	return r.evaluators[t]
}

var titleCaser = cases.Title(language.English)

// fieldTitle turns "vendor_name" into "Vendor Name".
func fieldTitle(field string) string {
	return titleCaser.String(strings.ReplaceAll(field, "_", " "))
}

func newViolation(p *domain.AuditPolicy, t domain.ViolationType, msg string) *domain.Violation {
	return &domain.Violation{
		RuleName:      p.RuleName,
		FieldName:     p.FieldName,
		ViolationType: t,
		Severity:      p.EffectiveSeverity(),
		Message:       msg,
	}
}
