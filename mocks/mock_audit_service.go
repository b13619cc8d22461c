package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"billaudit/internal/audit"
	"billaudit/internal/domain"
)

// MockAuditService is a mock implementation of service.AuditService.
type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) ListPolicies(ctx context.Context) ([]domain.AuditPolicy, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditPolicy), args.Error(1)
}

func (m *MockAuditService) Preview(ctx context.Context, text string) (*audit.Report, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*audit.Report), args.Error(1)
}
