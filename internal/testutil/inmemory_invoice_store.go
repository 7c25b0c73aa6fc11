package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/guardpost/console/internal/domain/invoice"
	ierr "github.com/guardpost/console/internal/errors"
	"github.com/guardpost/console/internal/types"
)

var _ invoice.Repository = (*InMemoryInvoiceStore)(nil)

// InMemoryInvoiceStore implements invoice.Repository. It hands out copies so
// a service only sees its own writes after reading them back.
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]
	mu        sync.RWMutex
	documents map[string][]byte
	sent      []string

	// SendErr, when set, is returned by Send instead of delivering
	SendErr error
}

// NewInMemoryInvoiceStore creates a new in-memory invoice store
func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
		documents:     make(map[string][]byte),
	}
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) (*invoice.Invoice, error) {
	if inv == nil {
		return nil, ierr.NewError("invoice cannot be nil").
			WithHint("Invoice cannot be nil").
			Mark(ierr.ErrValidation)
	}

	stored := cloneInvoice(inv)
	if stored.ID == "" {
		stored.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE)
	}
	if stored.TenantID == "" {
		stored.TenantID = types.GetTenantID(ctx)
	}

	if err := s.InMemoryStore.Create(ctx, stored.ID, stored); err != nil {
		return nil, err
	}
	return cloneInvoice(stored), nil
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Invoice %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	if !CheckTenantFilter(ctx, inv.TenantID) {
		return nil, ierr.NewError("invoice not found").
			WithHintf("Invoice %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return cloneInvoice(inv), nil
}

func (s *InMemoryInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) (*invoice.Invoice, error) {
	if _, err := s.Get(ctx, inv.ID); err != nil {
		return nil, err
	}

	stored := cloneInvoice(inv)
	stored.UpdatedAt = time.Now().UTC()
	if err := s.InMemoryStore.Update(ctx, stored.ID, stored); err != nil {
		return nil, err
	}
	return cloneInvoice(stored), nil
}

// Send marks a previewed invoice as sent the way the backend does
func (s *InMemoryInvoiceStore) Send(ctx context.Context, id string) error {
	if s.SendErr != nil {
		return s.SendErr
	}

	inv, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if inv.Status != types.InvoiceStatusPreviewed {
		return ierr.NewError("invoice is not previewed").
			WithHintf("Invoice %s is %s", inv.InvoiceNumber, inv.Status).
			Mark(ierr.ErrInvalidOperation)
	}

	inv.Status = types.InvoiceStatusSent
	if err := s.InMemoryStore.Update(ctx, id, inv); err != nil {
		return err
	}

	s.mu.Lock()
	s.sent = append(s.sent, id)
	s.mu.Unlock()
	return nil
}

func (s *InMemoryInvoiceStore) DownloadDocument(ctx context.Context, id string, format types.DocumentFormat) ([]byte, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[documentKey(id, format)]
	if !ok {
		return nil, ierr.NewError("document not found").
			WithHintf("No %s document for invoice %s", format, id).
			Mark(ierr.ErrNotFound)
	}
	return doc, nil
}

// SetDocument stores the rendering DownloadDocument returns
func (s *InMemoryInvoiceStore) SetDocument(id string, format types.DocumentFormat, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[documentKey(id, format)] = content
}

// Sent returns the IDs of invoices delivered through Send, in order
func (s *InMemoryInvoiceStore) Sent() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.sent...)
}

// Clear resets all stored data
func (s *InMemoryInvoiceStore) Clear() {
	s.InMemoryStore.Clear()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = make(map[string][]byte)
	s.sent = nil
	s.SendErr = nil
}

func documentKey(id string, format types.DocumentFormat) string {
	return id + ":" + string(format)
}

func cloneInvoice(inv *invoice.Invoice) *invoice.Invoice {
	c := *inv
	if inv.PoSoNumber != nil {
		po := *inv.PoSoNumber
		c.PoSoNumber = &po
	}
	c.LineItems = make([]*invoice.LineItem, 0, len(inv.LineItems))
	for _, li := range inv.LineItems {
		item := *li
		if li.CatalogEntryID != nil {
			ref := *li.CatalogEntryID
			item.CatalogEntryID = &ref
		}
		c.LineItems = append(c.LineItems, &item)
	}
	return &c
}
