package payment

import (
	"net/http"
	"testing"
	"time"

	ierr "github.com/guardpost/console/internal/errors"
	"github.com/guardpost/console/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type LedgerSuite struct {
	suite.Suite
	total decimal.Decimal
	day   time.Time
}

func TestLedger(t *testing.T) {
	suite.Run(t, new(LedgerSuite))
}

func (s *LedgerSuite) SetupTest() {
	s.total = decimal.RequireFromString("110.00")
	s.day = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
}

func (s *LedgerSuite) payment(amount string, daysAfter int) *Payment {
	return &Payment{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
		InvoiceID: "inv_1",
		Date:      s.day.AddDate(0, 0, daysAfter),
		Amount:    decimal.RequireFromString(amount),
		Method:    types.PaymentMethodBankTransfer,
	}
}

func (s *LedgerSuite) assertAmount(expected string, actual decimal.Decimal) {
	s.Equal(expected, types.FormatAmount(actual))
}

func (s *LedgerSuite) TestFullPaymentSettlesInvoice() {
	l := NewLedger("inv_1", s.total, nil)
	s.False(l.IsFullyPaid())
	s.assertAmount("110.00", l.RemainingBalance())

	s.Require().NoError(l.Record(s.payment("110.00", 0)))

	s.assertAmount("0.00", l.RemainingBalance())
	s.True(l.IsFullyPaid())
	s.Equal(types.InvoiceDisplayStatusPaid, l.Summary().DisplayStatus)
}

func (s *LedgerSuite) TestOverpaymentIsRejected() {
	l := NewLedger("inv_1", s.total, nil)

	err := l.Record(s.payment("110.01", 0))
	s.Require().Error(err)
	s.True(ierr.IsBalance(err))
	s.Equal(http.StatusUnprocessableEntity, ierr.HTTPStatusFromErr(err))

	s.Equal(0, l.Len())
	s.assertAmount("110.00", l.RemainingBalance())
}

func (s *LedgerSuite) TestPartialPaymentLeavesBalance() {
	l := NewLedger("inv_1", s.total, nil)
	s.Require().NoError(l.Record(s.payment("50.00", 0)))

	s.assertAmount("60.00", l.RemainingBalance())
	s.assertAmount("50.00", l.Paid())
	s.False(l.IsFullyPaid())
	s.Equal(types.InvoiceDisplayStatusPending, l.Summary().DisplayStatus)

	// the rest can still be paid exactly
	s.NoError(l.ValidateNewPayment(decimal.RequireFromString("60.00")))
	s.True(ierr.IsBalance(l.ValidateNewPayment(decimal.RequireFromString("60.01"))))
}

func (s *LedgerSuite) TestNonPositiveAmounts() {
	l := NewLedger("inv_1", s.total, nil)

	for _, amount := range []string{"0", "-0.01", "-100"} {
		err := l.ValidateNewPayment(decimal.RequireFromString(amount))
		s.Require().Error(err, amount)
		s.True(ierr.Is(err, ierr.ErrInvalidAmount), amount)
		s.True(ierr.IsValidation(err), amount)
	}
}

func (s *LedgerSuite) TestToleranceBoundary() {
	l := NewLedger("inv_1", s.total, []*Payment{s.payment("109.995", 0)})

	// 110.00 - 109.995 rounds to 0.01, above tolerance
	s.False(l.IsFullyPaid())

	l = NewLedger("inv_1", s.total, []*Payment{s.payment("109.996", 0)})
	s.True(l.IsFullyPaid())
}

func (s *LedgerSuite) TestNewestFirst() {
	first := s.payment("10.00", 5)
	first.CreatedAt = s.day.Add(time.Hour)
	backdated := s.payment("20.00", 0)
	backdated.CreatedAt = s.day.Add(49 * time.Hour)
	sameInstantEarlierDate := s.payment("5.00", 1)
	sameInstantEarlierDate.CreatedAt = s.day.Add(2 * time.Hour)
	sameInstantLaterDate := s.payment("6.00", 2)
	sameInstantLaterDate.CreatedAt = s.day.Add(2 * time.Hour)

	l := NewLedger("inv_1", s.total, []*Payment{first, sameInstantEarlierDate, backdated, nil, sameInstantLaterDate})

	payments := l.Payments()
	s.Require().Len(payments, 4)
	s.Equal(backdated.ID, payments[0].ID)
	s.Equal(sameInstantLaterDate.ID, payments[1].ID)
	s.Equal(sameInstantEarlierDate.ID, payments[2].ID)
	s.Equal(first.ID, payments[3].ID)
	s.assertAmount("41.00", l.Paid())
}

func (s *LedgerSuite) TestRecordMatchesRebuiltOrder() {
	first := s.payment("10.00", 5)
	first.CreatedAt = s.day.Add(time.Hour)
	backdated := s.payment("20.00", 0)
	backdated.CreatedAt = s.day.Add(49 * time.Hour)

	recorded := NewLedger("inv_1", s.total, []*Payment{first})
	s.Require().NoError(recorded.Record(backdated))

	rebuilt := NewLedger("inv_1", s.total, []*Payment{first, backdated})

	ids := func(l *Ledger) []string {
		return lo.Map(l.Payments(), func(p *Payment, _ int) string { return p.ID })
	}
	s.Equal([]string{backdated.ID, first.ID}, ids(recorded))
	s.Equal(ids(recorded), ids(rebuilt))
}

func (s *LedgerSuite) TestPaymentsReturnsCopy() {
	l := NewLedger("inv_1", s.total, []*Payment{s.payment("10.00", 0)})
	payments := l.Payments()
	payments[0] = nil
	s.NotNil(l.Payments()[0])
}

func (s *LedgerSuite) TestRecordRejectsOtherInvoice() {
	l := NewLedger("inv_1", s.total, nil)
	p := s.payment("10.00", 0)
	p.InvoiceID = "inv_2"

	err := l.Record(p)
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))
	s.Equal(0, l.Len())
}

func TestPayment_Validate(t *testing.T) {
	valid := func() *Payment {
		return &Payment{
			InvoiceID: "inv_1",
			Date:      time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			Amount:    decimal.RequireFromString("10.00"),
			Method:    types.PaymentMethodCash,
		}
	}

	tests := []struct {
		name     string
		mutate   func(p *Payment)
		sentinel error
	}{
		{"valid", func(p *Payment) {}, nil},
		{"missing invoice", func(p *Payment) { p.InvoiceID = "" }, ierr.ErrValidation},
		{"unknown method", func(p *Payment) { p.Method = "CHEQUE" }, ierr.ErrValidation},
		{"missing date", func(p *Payment) { p.Date = time.Time{} }, ierr.ErrValidation},
		{"zero amount", func(p *Payment) { p.Amount = decimal.Zero }, ierr.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(p)
			err := p.Validate()
			if tt.sentinel == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, ierr.Is(err, tt.sentinel))
		})
	}
}
