package service

import (
	"context"
	"strings"

	"billaudit/internal/audit"
	"billaudit/internal/domain"
	"billaudit/internal/port"
)

// AuditService exposes the policy set and dry-run audits.
type AuditService interface {
	ListPolicies(ctx context.Context) ([]domain.AuditPolicy, error)
	Preview(ctx context.Context, text string) (*audit.Report, error)
}

// PreviewAuditor audits text without counting it as a production audit.
type PreviewAuditor interface {
	Preview(ctx context.Context, rawText string) (*audit.Report, error)
}

type auditService struct {
	policyRepo port.AuditPolicyRepository
	auditor    PreviewAuditor
}

// NewAuditService creates a new AuditService implementation.
func NewAuditService(policyRepo port.AuditPolicyRepository, auditor PreviewAuditor) AuditService {
	return &auditService{policyRepo: policyRepo, auditor: auditor}
}

func (s *auditService) ListPolicies(ctx context.Context) ([]domain.AuditPolicy, error) {
	return s.policyRepo.List(ctx)
}

// Preview audits text exactly as an uploaded image's analysis would be audited.
// Nothing is persisted.
func (s *auditService) Preview(ctx context.Context, text string) (*audit.Report, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyText
	}
	return s.auditor.Preview(ctx, text)
}
