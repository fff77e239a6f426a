package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"invoicebridge/internal/port"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendImportSummary(ctx context.Context, toEmail string, summary port.ImportSummary) error {
	args := m.Called(ctx, toEmail, summary)
	return args.Error(0)
}
