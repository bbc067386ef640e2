package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"payoutrecon/internal/model"
	"payoutrecon/internal/repository"
)

type MockRunRepository struct {
	mock.Mock
}

func (m *MockRunRepository) Create(ctx context.Context, run *model.Run) (*model.Run, error) {
	args := m.Called(ctx, run)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Run), args.Error(1)
}

func (m *MockRunRepository) FindByID(ctx context.Context, id string) (*model.Run, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Run), args.Error(1)
}

func (m *MockRunRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Run], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Run]), args.Error(1)
}

func (m *MockRunRepository) UpdateStatus(ctx context.Context, id, status, errMsg string) error {
	args := m.Called(ctx, id, status, errMsg)
	return args.Error(0)
}

func (m *MockRunRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRunRepository) SaveDays(ctx context.Context, runID string, days []model.DailySummary) error {
	args := m.Called(ctx, runID, days)
	return args.Error(0)
}

func (m *MockRunRepository) ListDays(ctx context.Context, runID string, mismatchOnly bool) ([]model.DailySummary, error) {
	args := m.Called(ctx, runID, mismatchOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DailySummary), args.Error(1)
}

func (m *MockRunRepository) AddReport(ctx context.Context, rep *model.Report) (*model.Report, error) {
	args := m.Called(ctx, rep)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

func (m *MockRunRepository) ListReports(ctx context.Context, runID string) ([]model.Report, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Report), args.Error(1)
}
