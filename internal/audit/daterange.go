package audit

import (
	"strconv"
	"strings"
	"time"

	"billaudit/internal/domain"
)

const dateRangeMessage = "Invoice date appears to be outside acceptable range"

// dateLayouts are tried in order; month-first forms come before day-first ones.
var dateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"1-2-2006",
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"02-01-2006",
	"01/02/06",
	"1/2/06",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateRangeRule checks that a date field is recent.
//
// With a nil Now the rule only looks for the words "old" or "expired" in the
// value. With Now set, dates that parse are compared against the window of
// expected_value days ending one day after Now; unparseable dates still use
// the word check. A non-integer expected_value skips the rule.
type DateRangeRule struct {
	Now func() time.Time
}

func (DateRangeRule) RuleType() domain.RuleType { return domain.RuleTypeDateRange }

func (r DateRangeRule) Evaluate(p *domain.AuditPolicy, field FieldValue, _ string) *domain.Violation {
	if p.Condition != domain.ConditionWithinDays || !field.Present() {
		return nil
	}
	days, err := strconv.Atoi(strings.TrimSpace(p.Expected()))
	if err != nil {
		return nil
	}

	value := field.String()
	if r.Now != nil {
		if d, ok := parseDate(value); ok {
			if outsideWindow(d, r.Now(), days) {
				return newViolation(p, domain.ViolationDateOutOfRange, dateRangeMessage)
			}
			return nil
		}
	}

	lower := strings.ToLower(value)
	if strings.Contains(lower, "old") || strings.Contains(lower, "expired") {
		return newViolation(p, domain.ViolationDateOutOfRange, dateRangeMessage)
	}
	return nil
}

func outsideWindow(d, now time.Time, days int) bool {
	earliest := now.AddDate(0, 0, -days)
	latest := now.AddDate(0, 0, 1)
	return d.Before(earliest) || d.After(latest)
}
