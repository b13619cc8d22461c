package audit

import (
	"fmt"
	"regexp"

	"billaudit/internal/domain"
)

// FormatCheckRule requires a field to match a regular expression anchored at
// the start of the value. A malformed expression skips the rule.
type FormatCheckRule struct{}

func (FormatCheckRule) RuleType() domain.RuleType { return domain.RuleTypeFormatCheck }

func (FormatCheckRule) Evaluate(p *domain.AuditPolicy, field FieldValue, _ string) *domain.Violation {
	if p.Condition != domain.ConditionFormatMatch || !field.Present() {
		return nil
	}
	re, err := regexp.Compile(`^(?:` + p.Expected() + `)`)
	if err != nil {
		return nil
	}
	if re.MatchString(field.String()) {
		return nil
	}
	return newViolation(p, domain.ViolationFormatMismatch,
		fmt.Sprintf("%s format is invalid", fieldTitle(p.FieldName)))
}
