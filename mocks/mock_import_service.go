package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"invoicebridge/internal/domain"
	"invoicebridge/internal/service"
)

// MockImportService is a mock implementation of service.ImportService.
type MockImportService struct {
	mock.Mock
}

func (m *MockImportService) Preview(ctx context.Context, input service.PreviewInput) (*service.PreviewResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PreviewResult), args.Error(1)
}

func (m *MockImportService) Import(ctx context.Context, input service.ImportInput) (*service.ImportResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ImportResult), args.Error(1)
}

func (m *MockImportService) GetPurchase(ctx context.Context, tenantID, purchaseID uuid.UUID) (*domain.Purchase, error) {
	args := m.Called(ctx, tenantID, purchaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Purchase), args.Error(1)
}
