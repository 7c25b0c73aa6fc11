package testutil

import (
	"github.com/guardpost/console/internal/pdfgen"
	"github.com/stretchr/testify/mock"
)

var _ pdfgen.InvoiceRenderer = (*MockPDFRenderer)(nil)

type MockPDFRenderer struct {
	mock.Mock
}

// RenderInvoice implements pdfgen.InvoiceRenderer
func (m *MockPDFRenderer) RenderInvoice(data *pdfgen.InvoiceData) ([]byte, error) {
	args := m.Called(data)
	if b := args.Get(0); b != nil {
		return b.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

func NewMockPDFRenderer() *MockPDFRenderer {
	return &MockPDFRenderer{}
}
