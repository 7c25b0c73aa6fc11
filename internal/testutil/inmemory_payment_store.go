package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/guardpost/console/internal/domain/payment"
	ierr "github.com/guardpost/console/internal/errors"
	"github.com/guardpost/console/internal/types"
)

var _ payment.Repository = (*InMemoryPaymentStore)(nil)

// InMemoryPaymentStore implements payment.Repository. A create carrying an
// idempotency key the store has already seen returns the original payment.
type InMemoryPaymentStore struct {
	*InMemoryStore[*payment.Payment]
	mu    sync.Mutex
	byKey map[string]string
	seq   time.Duration

	// CreateErr, when set, is returned by Create instead of recording
	CreateErr error
}

// NewInMemoryPaymentStore creates a new in-memory payment store
func NewInMemoryPaymentStore() *InMemoryPaymentStore {
	return &InMemoryPaymentStore{
		InMemoryStore: NewInMemoryStore[*payment.Payment](),
		byKey:         make(map[string]string),
	}
}

func (s *InMemoryPaymentStore) Create(ctx context.Context, p *payment.Payment) (*payment.Payment, error) {
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	if p == nil {
		return nil, ierr.NewError("payment cannot be nil").
			WithHint("Payment cannot be nil").
			Mark(ierr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if p.IdempotencyKey != "" {
		if id, ok := s.byKey[p.IdempotencyKey]; ok {
			existing, err := s.InMemoryStore.Get(ctx, id)
			if err != nil {
				return nil, err
			}
			c := *existing
			return &c, nil
		}
	}

	stored := *p
	if stored.ID == "" {
		stored.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT)
	}
	if stored.CreatedAt.IsZero() {
		// strictly increasing so payments recorded on the same date keep their order
		s.seq++
		stored.BaseModel = types.GetDefaultBaseModel(ctx)
		stored.CreatedAt = stored.CreatedAt.Add(s.seq)
	}

	if err := s.InMemoryStore.Create(ctx, stored.ID, &stored); err != nil {
		return nil, err
	}
	if stored.IdempotencyKey != "" {
		s.byKey[stored.IdempotencyKey] = stored.ID
	}

	c := stored
	return &c, nil
}

func (s *InMemoryPaymentStore) ListByInvoice(ctx context.Context, invoiceID string) ([]*payment.Payment, error) {
	items := s.InMemoryStore.List(ctx,
		func(ctx context.Context, p *payment.Payment) bool {
			return p.InvoiceID == invoiceID && CheckTenantFilter(ctx, p.TenantID)
		},
		func(a, b *payment.Payment) bool {
			return a.CreatedAt.Before(b.CreatedAt)
		},
	)

	result := make([]*payment.Payment, 0, len(items))
	for _, p := range items {
		c := *p
		result = append(result, &c)
	}
	return result, nil
}

// Clear resets all stored data
func (s *InMemoryPaymentStore) Clear() {
	s.InMemoryStore.Clear()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byKey = make(map[string]string)
	s.seq = 0
	s.CreateErr = nil
}
