package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/guardpost/console/internal/api/dto"
	"github.com/guardpost/console/internal/domain/invoice"
	ierr "github.com/guardpost/console/internal/errors"
	"github.com/guardpost/console/internal/testutil"
	"github.com/guardpost/console/internal/types"
	webhookDto "github.com/guardpost/console/internal/webhook/dto"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PaymentServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  PaymentService
	testData struct {
		invoice *invoice.Invoice
	}
}

func TestPaymentService(t *testing.T) {
	suite.Run(t, new(PaymentServiceSuite))
}

func (s *PaymentServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewPaymentService(newTestParams(&s.BaseServiceTestSuite))
	s.setupTestData()
}

func (s *PaymentServiceSuite) TearDownTest() {
	s.BaseServiceTestSuite.TearDownTest()
}

func (s *PaymentServiceSuite) setupTestData() {
	inv := invoice.New(s.GetContext(), s.GetNow())
	s.Require().NoError(inv.ReplaceLineItems([]*invoice.LineItem{
		invoice.NewLineItem("Guard hours", decimal.NewFromInt(2), decimal.NewFromInt(50), decimal.NewFromInt(10)),
	}))

	created, err := s.GetStores().InvoiceRepo.Create(s.GetContext(), inv)
	s.Require().NoError(err)
	s.testData.invoice = created
}

func (s *PaymentServiceSuite) register(amount string) (*dto.LedgerResponse, error) {
	return s.service.RegisterPayment(s.GetContext(), s.testData.invoice.ID, dto.RegisterPaymentRequest{
		Amount: decimal.RequireFromString(amount),
		Method: types.PaymentMethodCard,
	})
}

func (s *PaymentServiceSuite) TestRegisterPayment() {
	ledger, err := s.register("50.00")
	s.NoError(err)
	s.Equal("110.00", types.FormatAmount(ledger.Total))
	s.Equal("50.00", types.FormatAmount(ledger.Paid))
	s.Equal("60.00", types.FormatAmount(ledger.Remaining))
	s.False(ledger.FullyPaid)
	s.Equal(types.InvoiceDisplayStatusPending, ledger.DisplayStatus)
	s.Require().Len(ledger.Payments, 1)

	p := ledger.Payments[0]
	s.NotEmpty(p.ID)
	s.NotEmpty(p.IdempotencyKey)
	s.Equal(s.GetNow(), p.Date)
	s.Equal(types.PaymentMethodCard, p.Method)

	ledger, err = s.register("60.00")
	s.NoError(err)
	s.True(ledger.FullyPaid)
	s.True(ledger.Remaining.IsZero())
	s.Equal(types.InvoiceDisplayStatusPaid, ledger.DisplayStatus)
}

func (s *PaymentServiceSuite) TestRegisterPayment_PublishesEvent() {
	ledger, err := s.register("50.00")
	s.NoError(err)

	events := s.GetPubSub().GetEvents(s.GetConfig().Webhook.Topic)
	s.Require().Len(events, 1)
	s.Equal(types.WebhookEventPaymentRegistered, events[0].EventName)

	var data webhookDto.InternalPaymentEvent
	s.Require().NoError(json.Unmarshal(events[0].Payload, &data))
	s.Equal(ledger.Payments[0].ID, data.PaymentID)
	s.Equal(s.testData.invoice.ID, data.InvoiceID)
}

func (s *PaymentServiceSuite) TestRegisterPayment_Rejected() {
	tests := []struct {
		name    string
		amount  string
		wantErr error
	}{
		{name: "zero", amount: "0", wantErr: ierr.ErrInvalidAmount},
		{name: "negative", amount: "-5.00", wantErr: ierr.ErrInvalidAmount},
		{name: "rounds to zero", amount: "0.004", wantErr: ierr.ErrInvalidAmount},
		{name: "one cent over the balance", amount: "110.01", wantErr: ierr.ErrExceedsBalance},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.register(tt.amount)
			s.Error(err)
			s.True(ierr.Is(err, tt.wantErr))

			ledger, err := s.service.GetLedger(s.GetContext(), s.testData.invoice.ID)
			s.NoError(err)
			s.Empty(ledger.Payments)
			s.Empty(s.PublishedEvents())
		})
	}
}

func (s *PaymentServiceSuite) TestRegisterPayment_ExceedsRemainingBalance() {
	_, err := s.register("100.00")
	s.NoError(err)

	_, err = s.register("10.01")
	s.Error(err)
	s.True(ierr.IsBalance(err))

	ledger, err := s.service.GetLedger(s.GetContext(), s.testData.invoice.ID)
	s.NoError(err)
	s.Len(ledger.Payments, 1)
	s.Equal("10.00", types.FormatAmount(ledger.Remaining))
}

func (s *PaymentServiceSuite) TestRegisterPayment_RoundsToCents() {
	ledger, err := s.register("19.995")
	s.NoError(err)
	s.Equal("20.00", types.FormatAmount(ledger.Paid))
}

func (s *PaymentServiceSuite) TestRegisterPayment_InvalidMethod() {
	_, err := s.service.RegisterPayment(s.GetContext(), s.testData.invoice.ID, dto.RegisterPaymentRequest{
		Amount: decimal.NewFromInt(10),
		Method: types.PaymentMethod("BARTER"),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *PaymentServiceSuite) TestRegisterPayment_UnknownInvoice() {
	_, err := s.service.RegisterPayment(s.GetContext(), "inv_missing", dto.RegisterPaymentRequest{
		Amount: decimal.NewFromInt(10),
		Method: types.PaymentMethodCash,
	})
	s.True(ierr.IsNotFound(err))
}

func (s *PaymentServiceSuite) TestRegisterPayment_ResubmissionIsRecordedOnce() {
	req := dto.RegisterPaymentRequest{
		Amount:       decimal.NewFromInt(40),
		Method:       types.PaymentMethodCash,
		SubmissionID: "form-7",
	}

	first, err := s.service.RegisterPayment(s.GetContext(), s.testData.invoice.ID, req)
	s.NoError(err)
	second, err := s.service.RegisterPayment(s.GetContext(), s.testData.invoice.ID, req)
	s.NoError(err)

	s.Len(second.Payments, 1)
	s.Equal(first.Payments[0].ID, second.Payments[0].ID)
	s.Equal("70.00", types.FormatAmount(second.Remaining))

	req.SubmissionID = "form-8"
	third, err := s.service.RegisterPayment(s.GetContext(), s.testData.invoice.ID, req)
	s.NoError(err)
	s.Len(third.Payments, 2)
}

func (s *PaymentServiceSuite) TestRegisterPayment_RequestIDIsDefaultSubmission() {
	ctx := types.SetRequestID(s.GetContext(), "req-1")
	req := dto.RegisterPaymentRequest{
		Amount: decimal.NewFromInt(10),
		Method: types.PaymentMethodCash,
	}

	_, err := s.service.RegisterPayment(ctx, s.testData.invoice.ID, req)
	s.NoError(err)
	_, err = s.service.RegisterPayment(ctx, s.testData.invoice.ID, req)
	s.NoError(err)
	ledger, err := s.service.RegisterPayment(types.SetRequestID(s.GetContext(), "req-2"), s.testData.invoice.ID, req)
	s.NoError(err)

	s.Len(ledger.Payments, 2)
}

func (s *PaymentServiceSuite) TestRegisterPayment_BackendFailure() {
	s.GetStores().PaymentRepo.CreateErr = ierr.NewError("backend unavailable").Mark(ierr.ErrHTTPClient)

	_, err := s.register("10.00")
	s.True(ierr.IsRemote(err))
}

func (s *PaymentServiceSuite) TestListPayments_NewestFirst() {
	ctx := s.GetContext()
	dates := []time.Time{
		s.GetNow().AddDate(0, 0, -2),
		s.GetNow(),
		s.GetNow().AddDate(0, 0, -1),
	}
	for i, date := range dates {
		_, err := s.service.RegisterPayment(ctx, s.testData.invoice.ID, dto.RegisterPaymentRequest{
			Date:         lo.ToPtr(date),
			Amount:       decimal.NewFromInt(10),
			Method:       types.PaymentMethodCash,
			SubmissionID: string(rune('a' + i)),
		})
		s.Require().NoError(err)
	}

	resp, err := s.service.ListPayments(ctx, s.testData.invoice.ID)
	s.NoError(err)
	// newest registration first, whatever the payment dates
	s.Require().Len(resp.Items, 3)
	s.Equal(dates[2], resp.Items[0].Date)
	s.Equal(dates[1], resp.Items[1].Date)
	s.Equal(dates[0], resp.Items[2].Date)
}

func (s *PaymentServiceSuite) TestGetLedger_OtherTenant() {
	ctx := types.SetTenantID(context.Background(), "tenant_other")

	_, err := s.service.GetLedger(ctx, s.testData.invoice.ID)
	s.True(ierr.IsNotFound(err))
}
