package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"billaudit/internal/domain"
	"billaudit/internal/service"
	"billaudit/mocks"
)

func TestStatsService_GetStats(t *testing.T) {
	repo := new(mocks.MockStatsRepo)
	svc := service.NewStatsService(repo)

	expected := &domain.Stats{TotalDocuments: 10, ImageDocuments: 7, CompliantDocuments: 5, ActivePolicies: 12}
	repo.On("GetStats", mock.Anything).Return(expected, nil)

	stats, err := svc.GetStats(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, expected, stats)
}

func TestStatsService_GetStats_Error(t *testing.T) {
	repo := new(mocks.MockStatsRepo)
	svc := service.NewStatsService(repo)
	repo.On("GetStats", mock.Anything).Return(nil, errors.New("db error"))

	stats, err := svc.GetStats(context.Background())

	assert.Error(t, err)
	assert.Nil(t, stats)
}
