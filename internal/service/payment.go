package service

import (
	"context"

	"github.com/guardpost/console/internal/api/dto"
	"github.com/guardpost/console/internal/domain/payment"
	"github.com/guardpost/console/internal/idempotency"
	"github.com/guardpost/console/internal/types"
	webhookDto "github.com/guardpost/console/internal/webhook/dto"
	"github.com/samber/lo"
)

// PaymentService registers payments against invoices and reports their ledgers
type PaymentService interface {
	// RegisterPayment validates a payment against the invoice's current
	// balance, records it with the backend and returns the refreshed ledger
	RegisterPayment(ctx context.Context, invoiceID string, req dto.RegisterPaymentRequest) (*dto.LedgerResponse, error)
	ListPayments(ctx context.Context, invoiceID string) (*dto.ListResponse[*dto.PaymentResponse], error)
	GetLedger(ctx context.Context, invoiceID string) (*dto.LedgerResponse, error)
}

type paymentService struct {
	ServiceParams
	idempGen *idempotency.Generator
}

func NewPaymentService(params ServiceParams) PaymentService {
	return &paymentService{
		ServiceParams: params,
		idempGen:      idempotency.NewGenerator(),
	}
}

func (s *paymentService) RegisterPayment(ctx context.Context, invoiceID string, req dto.RegisterPaymentRequest) (*dto.LedgerResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p := req.ToPayment(invoiceID, s.now())
	if err := p.Validate(); err != nil {
		return nil, err
	}

	// validate against the balance as the backend has it right now
	ledger, err := s.loadLedger(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := ledger.ValidateNewPayment(p.Amount); err != nil {
		s.Logger.Infow("payment rejected",
			"invoice_id", invoiceID,
			"amount", p.Amount,
			"remaining", ledger.RemainingBalance(),
			"error", err,
		)
		return nil, err
	}

	submission := req.SubmissionID
	if submission == "" {
		submission = types.GetRequestID(ctx)
	}
	p.IdempotencyKey = s.idempGen.GenerateKey(idempotency.ScopePayment, map[string]interface{}{
		"tenant_id":     types.GetTenantID(ctx),
		"invoice_id":    invoiceID,
		"amount":        types.FormatAmount(p.Amount),
		"method":        p.Method,
		"submission_id": submission,
	})

	created, err := s.PaymentRepo.Create(ctx, p)
	if err != nil {
		s.Logger.Errorw("failed to register payment",
			"invoice_id", invoiceID,
			"amount", p.Amount,
			"error", err,
		)
		return nil, err
	}

	s.Logger.Infow("registered payment",
		"invoice_id", invoiceID,
		"payment_id", created.ID,
		"amount", created.Amount,
		"method", created.Method,
	)
	s.SentryService.AddBreadcrumb("payment", "registered payment", map[string]interface{}{
		"invoice_id": invoiceID,
		"payment_id": created.ID,
	})
	s.publishWebhookEvent(ctx, types.WebhookEventPaymentRegistered, webhookDto.InternalPaymentEvent{
		PaymentID: created.ID,
		InvoiceID: invoiceID,
		TenantID:  types.GetTenantID(ctx),
	})

	// the backend's list is the ledger of record
	refreshed, err := s.loadLedger(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return dto.NewLedgerResponse(refreshed), nil
}

func (s *paymentService) ListPayments(ctx context.Context, invoiceID string) (*dto.ListResponse[*dto.PaymentResponse], error) {
	ledger, err := s.loadLedger(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	return &dto.ListResponse[*dto.PaymentResponse]{
		Items: lo.Map(ledger.Payments(), func(p *payment.Payment, _ int) *dto.PaymentResponse {
			return dto.NewPaymentResponse(p)
		}),
	}, nil
}

func (s *paymentService) GetLedger(ctx context.Context, invoiceID string) (*dto.LedgerResponse, error) {
	ledger, err := s.loadLedger(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return dto.NewLedgerResponse(ledger), nil
}

func (s *paymentService) loadLedger(ctx context.Context, invoiceID string) (*payment.Ledger, error) {
	inv, err := s.InvoiceRepo.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	payments, err := s.PaymentRepo.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	return payment.NewLedger(inv.ID, inv.Totals().GrandTotal, payments), nil
}
