package audit

import (
	"fmt"
	"strconv"
	"strings"

	"billaudit/internal/domain"
)

// AmountLimitRule enforces a strict upper or lower bound on a numeric field.
// Non-numeric field or limit values skip the rule.
type AmountLimitRule struct{}

func (AmountLimitRule) RuleType() domain.RuleType { return domain.RuleTypeAmountLimit }

func (AmountLimitRule) Evaluate(p *domain.AuditPolicy, field FieldValue, _ string) *domain.Violation {
	if !field.Present() {
		return nil
	}
	amount, ok := field.Float()
	if !ok {
		return nil
	}
	limit, err := strconv.ParseFloat(strings.TrimSpace(p.Expected()), 64)
	if err != nil {
		return nil
	}

	switch p.Condition {
	case domain.ConditionMaxValue:
		if amount > limit {
			return newViolation(p, domain.ViolationAmountExceeded,
				fmt.Sprintf("Amount $%s exceeds maximum limit of $%s", formatNumber(amount), formatNumber(limit)))
		}
	case domain.ConditionMinValue:
		if amount < limit {
			return newViolation(p, domain.ViolationAmountBelowMinimum,
				fmt.Sprintf("Amount $%s is below minimum limit of $%s", formatNumber(amount), formatNumber(limit)))
		}
	}
	return nil
}
