package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"payoutrecon/internal/model"
	"payoutrecon/internal/service"
)

type MockReconciliationService struct {
	mock.Mock
}

func (m *MockReconciliationService) RunDaily(ctx context.Context, req service.DailyRequest) (*model.Run, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Run), args.Error(1)
}

func (m *MockReconciliationService) RunRange(ctx context.Context, req service.RangeRequest) (*model.Run, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Run), args.Error(1)
}

func (m *MockReconciliationService) List(ctx context.Context, limit, offset int) (*service.RunListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RunListResult), args.Error(1)
}

func (m *MockReconciliationService) Get(ctx context.Context, id string) (*model.Run, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Run), args.Error(1)
}

func (m *MockReconciliationService) Days(ctx context.Context, id string) ([]model.DailySummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DailySummary), args.Error(1)
}

func (m *MockReconciliationService) Mismatches(ctx context.Context, id string) (*model.MismatchAnalysis, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MismatchAnalysis), args.Error(1)
}

func (m *MockReconciliationService) ReportURL(ctx context.Context, id, kind string) (string, error) {
	args := m.Called(ctx, id, kind)
	return args.String(0), args.Error(1)
}

func (m *MockReconciliationService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReconciliationService) AnalyzeRefunds(ctx context.Context, start, end string) (*model.RefundSummary, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RefundSummary), args.Error(1)
}
