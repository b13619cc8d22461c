package audit

import "billaudit/internal/domain"

// Decision is the gate outcome for an audited submission.
type Decision struct {
	Accept   bool
	Blocking int
}

// Err returns a *domain.ComplianceError for rejected submissions, nil otherwise.
func (d Decision) Err(result *domain.AuditResult) error {
	if d.Accept {
		return nil
	}
	return &domain.ComplianceError{Blocking: d.Blocking, Result: result}
}

// Decide accepts compliant results and results whose violations are all
// advisory (warning or low). Any medium or high violation rejects.
func Decide(result *domain.AuditResult) Decision {
	if result == nil || result.IsCompliant {
		return Decision{Accept: true}
	}
	n := len(result.BlockingViolations())
	return Decision{Accept: n == 0, Blocking: n}
}
