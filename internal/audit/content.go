package audit

import (
	"fmt"
	"strings"

	"billaudit/internal/domain"
)

// ContentWarningRule flags raw text containing any keyword from a
// comma-separated list. Matching is case-insensitive and substring based,
// so "WINE" trips "wine" and so does "winery".
type ContentWarningRule struct{}

func (ContentWarningRule) RuleType() domain.RuleType { return domain.RuleTypeContentWarning }

func (ContentWarningRule) Evaluate(p *domain.AuditPolicy, _ FieldValue, rawText string) *domain.Violation {
	if p.Condition != domain.ConditionContainsKeywords {
		return nil
	}
	content := strings.ToLower(rawText)

	var found []string
	for _, kw := range ParseKeywords(p.Expected()) {
		if strings.Contains(content, kw) {
			found = append(found, kw)
		}
	}
	if len(found) == 0 {
		return nil
	}

	v := newViolation(p, domain.ViolationContentWarning,
		fmt.Sprintf("Content contains flagged items: %s", strings.Join(found, ", ")))
	v.FlaggedItems = found
	return v
}

// ParseKeywords splits a keyword list into trimmed, lower-cased, non-empty keywords.
func ParseKeywords(list string) []string {
	var out []string
	for _, kw := range strings.Split(list, ",") {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
