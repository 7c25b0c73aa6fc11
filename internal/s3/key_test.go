package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		expected string
	}{
		{name: "with prefix", prefix: "invoices", expected: "invoices/tenant_1/inv_1.pdf"},
		{name: "nested prefix", prefix: "prod/invoices/", expected: "prod/invoices/tenant_1/inv_1.pdf"},
		{name: "without prefix", expected: "tenant_1/inv_1.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ObjectKey(tt.prefix, "tenant_1", "inv_1"))
		})
	}
}

func TestDocumentKindContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", DocumentKindPdf.ContentType())
	assert.Equal(t, "application/octet-stream", DocumentKind("zip").ContentType())
}
