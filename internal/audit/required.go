package audit

import (
	"fmt"

	"billaudit/internal/domain"
)

// RequiredFieldRule flags a field that is absent or empty.
type RequiredFieldRule struct{}

func (RequiredFieldRule) RuleType() domain.RuleType { return domain.RuleTypeRequiredField }

func (RequiredFieldRule) Evaluate(p *domain.AuditPolicy, field FieldValue, _ string) *domain.Violation {
	if p.Condition != domain.ConditionExists || field.Present() {
		return nil
	}
	return newViolation(p, domain.ViolationMissingField,
		fmt.Sprintf("%s is required but missing", fieldTitle(p.FieldName)))
}
