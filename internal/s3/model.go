package s3

// Document is a rendered invoice kept in the archive
type Document struct {
	TenantID  string       `json:"tenant_id"`
	InvoiceID string       `json:"invoice_id"`
	Data      []byte       `json:"data"`
	Kind      DocumentKind `json:"kind"`
}

type DocumentKind string

const (
	DocumentKindPdf DocumentKind = "pdf"
)

// ContentType is the MIME type objects of this kind are stored with
func (k DocumentKind) ContentType() string {
	switch k {
	case DocumentKindPdf:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

func NewPdfDocument(tenantID, invoiceID string, data []byte) *Document {
	return &Document{
		TenantID:  tenantID,
		InvoiceID: invoiceID,
		Data:      data,
		Kind:      DocumentKindPdf,
	}
}
