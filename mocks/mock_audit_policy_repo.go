package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"billaudit/internal/domain"
)

// MockAuditPolicyRepo is a mock implementation of port.AuditPolicyRepository.
type MockAuditPolicyRepo struct {
	mock.Mock
}

func (m *MockAuditPolicyRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockAuditPolicyRepo) CreateBatch(ctx context.Context, policies []domain.AuditPolicy) error {
	args := m.Called(ctx, policies)
	return args.Error(0)
}

func (m *MockAuditPolicyRepo) ListActive(ctx context.Context) ([]domain.AuditPolicy, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditPolicy), args.Error(1)
}

func (m *MockAuditPolicyRepo) List(ctx context.Context) ([]domain.AuditPolicy, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditPolicy), args.Error(1)
}
