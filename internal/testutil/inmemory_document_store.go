package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/guardpost/console/internal/s3"
)

var _ s3.Service = (*InMemoryDocumentStore)(nil)

// InMemoryDocumentStore is an invoice archive backed by a map
type InMemoryDocumentStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	uploads int

	// Expiry is added to Now for presigned links
	Expiry    time.Duration
	Now       func() time.Time
	UploadErr error
}

func NewInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{
		objects: make(map[string][]byte),
		Expiry:  30 * time.Minute,
		Now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *InMemoryDocumentStore) UploadDocument(ctx context.Context, document *s3.Document) error {
	if s.UploadErr != nil {
		return s.UploadErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[s3.ObjectKey("", document.TenantID, document.InvoiceID)] = document.Data
	s.uploads++
	return nil
}

func (s *InMemoryDocumentStore) GetPresignedUrl(ctx context.Context, tenantID, invoiceID string) (*s3.PresignedURL, error) {
	return &s3.PresignedURL{
		URL:       "https://archive.example.com/" + s3.ObjectKey("", tenantID, invoiceID) + "?X-Amz-Signature=test",
		ExpiresAt: s.Now().Add(s.Expiry),
	}, nil
}

func (s *InMemoryDocumentStore) Exists(ctx context.Context, tenantID, invoiceID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[s3.ObjectKey("", tenantID, invoiceID)]
	return ok, nil
}

// Object returns the archived bytes of an invoice
func (s *InMemoryDocumentStore) Object(tenantID, invoiceID string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[s3.ObjectKey("", tenantID, invoiceID)]
	return data, ok
}

// Uploads counts the successful uploads
func (s *InMemoryDocumentStore) Uploads() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uploads
}

func (s *InMemoryDocumentStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = make(map[string][]byte)
	s.uploads = 0
	s.UploadErr = nil
}
