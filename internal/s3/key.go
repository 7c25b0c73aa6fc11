package s3

import "path"

// ObjectKey is where an invoice's PDF lives: <prefix>/<tenant>/<invoice>.pdf,
// or <tenant>/<invoice>.pdf without a prefix
func ObjectKey(prefix, tenantID, invoiceID string) string {
	return path.Join(prefix, tenantID, invoiceID+".pdf")
}
