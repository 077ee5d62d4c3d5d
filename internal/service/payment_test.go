package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/flexprice/leasebill/internal/api/dto"
	"github.com/flexprice/leasebill/internal/domain/events"
	"github.com/flexprice/leasebill/internal/domain/invoice"
	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type PaymentServiceSuite struct {
	billingSuite
	service PaymentService
}

func TestPaymentService(t *testing.T) {
	suite.Run(t, new(PaymentServiceSuite))
}

func (s *PaymentServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewPaymentService(s.params())
}

func (s *PaymentServiceSuite) payRequest(invoiceID, amount string) *dto.ApplyPaymentRequest {
	return &dto.ApplyPaymentRequest{
		InvoiceID:   invoiceID,
		Amount:      dec(amount),
		PaymentMode: types.PaymentModeBankTransfer,
		Reference:   "UTR-" + amount,
	}
}

// racingInvoiceRepo lets another writer in right before the first update
type racingInvoiceRepo struct {
	invoice.Repository
	once  sync.Once
	race  func(ctx context.Context)
	calls atomic.Int32
}

func (r *racingInvoiceRepo) Update(ctx context.Context, inv *invoice.Invoice) error {
	r.calls.Add(1)
	r.once.Do(func() { r.race(ctx) })
	return r.Repository.Update(ctx, inv)
}

// conflictingInvoiceRepo loses every race
type conflictingInvoiceRepo struct {
	invoice.Repository
	calls atomic.Int32
}

func (r *conflictingInvoiceRepo) Update(_ context.Context, inv *invoice.Invoice) error {
	r.calls.Add(1)
	return ierr.NewErrorf("invoice %s was modified concurrently", inv.ID).
		Mark(ierr.ErrVersionConflict)
}

func (s *PaymentServiceSuite) TestPartialThenFullPayment() {
	inv := s.createIssuedInvoice("lease_1", "1000")

	first, err := s.service.ApplyPayment(s.GetContext(), s.payRequest(inv.ID, "400"))
	s.Require().NoError(err)
	s.Equal(types.PaymentStatusCompleted, first.PaymentStatus)
	s.Equal("lease_1", first.LeaseID)

	stored := s.reloadInvoice(inv.ID)
	s.Equal(types.InvoiceStatusPartiallyPaid, stored.InvoiceStatus)
	s.Equal("600.00", stored.BalanceAmount.StringFixed(2))
	s.Nil(stored.PaidAt)

	_, err = s.service.ApplyPayment(s.GetContext(), s.payRequest(inv.ID, "600"))
	s.Require().NoError(err)

	stored = s.reloadInvoice(inv.ID)
	s.Equal(types.InvoiceStatusPaid, stored.InvoiceStatus)
	s.True(stored.BalanceAmount.IsZero())
	s.Equal("1000.00", stored.PaidAmount.StringFixed(2))
	s.NotNil(stored.PaidAt)

	history, err := s.service.GetPaymentHistory(s.GetContext(), first.ID)
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.Equal(types.PaymentStatus(""), history[0].FromStatus)
	s.Equal(types.PaymentStatusCompleted, history[0].ToStatus)

	filter := types.NewPaymentFilter()
	filter.InvoiceID = inv.ID
	list, err := s.service.ListPayments(s.GetContext(), filter)
	s.Require().NoError(err)
	s.Len(list.Items, 2)

	s.Equal([]events.Name{events.PaymentApplied, events.PaymentApplied}, s.GetPublisher().EventNames())
}

func (s *PaymentServiceSuite) TestOverpaymentRejected() {
	inv := s.createIssuedInvoice("lease_1", "1000")

	_, err := s.service.ApplyPayment(s.GetContext(), s.payRequest(inv.ID, "1000.01"))
	s.True(ierr.IsInvalidOperation(err))

	stored := s.reloadInvoice(inv.ID)
	s.Equal(types.InvoiceStatusIssued, stored.InvoiceStatus)
	s.True(stored.PaidAmount.IsZero())
	s.Equal(inv.Version, stored.Version)

	count, err := s.GetStores().PaymentRepo.Count(s.GetContext(), types.NewPaymentFilter())
	s.Require().NoError(err)
	s.Zero(count)
	s.Empty(s.GetPublisher().Events())
}

func (s *PaymentServiceSuite) TestNonPayableInvoices() {
	voided := s.createIssuedInvoice("lease_1", "1000")
	stored := s.reloadInvoice(voided.ID)
	s.Require().NoError(stored.Void(s.GetNow()))
	s.Require().NoError(s.GetStores().InvoiceRepo.Update(s.GetContext(), stored))

	_, err := s.service.ApplyPayment(s.GetContext(), s.payRequest(voided.ID, "100"))
	s.True(ierr.IsInvalidOperation(err))

	paid := s.createIssuedInvoice("lease_2", "100")
	_, err = s.service.ApplyPayment(s.GetContext(), s.payRequest(paid.ID, "100"))
	s.Require().NoError(err)
	_, err = s.service.ApplyPayment(s.GetContext(), s.payRequest(paid.ID, "1"))
	s.True(ierr.IsInvalidOperation(err))

	_, err = s.service.ApplyPayment(s.GetContext(), s.payRequest("inv_missing", "1"))
	s.True(ierr.IsNotFound(err))
}

func (s *PaymentServiceSuite) TestModeSpecificFields() {
	inv := s.createIssuedInvoice("lease_1", "1000")

	req := s.payRequest(inv.ID, "100")
	req.PaymentMode = types.PaymentModeGateway
	_, err := s.service.ApplyPayment(s.GetContext(), req)
	s.True(ierr.IsValidation(err))

	req.GatewayName = lo.ToPtr("razorpay")
	req.GatewayTransactionID = lo.ToPtr("pay_29QQoUBi66xm2f")
	p, err := s.service.ApplyPayment(s.GetContext(), req)
	s.Require().NoError(err)
	s.Equal("razorpay", *p.GatewayName)

	req = s.payRequest(inv.ID, "100")
	req.PaymentMode = types.PaymentModeBBPS
	_, err = s.service.ApplyPayment(s.GetContext(), req)
	s.True(ierr.IsValidation(err))

	req = s.payRequest(inv.ID, "0")
	_, err = s.service.ApplyPayment(s.GetContext(), req)
	s.True(ierr.IsValidation(err))
}

func (s *PaymentServiceSuite) TestConcurrentPaymentsNeverOverpay() {
	inv := s.createIssuedInvoice("lease_1", "800")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = s.service.ApplyPayment(s.GetContext(), s.payRequest(inv.ID, "500"))
		}()
	}
	wg.Wait()

	succeeded := lo.CountBy(errs, func(err error) bool { return err == nil })
	s.Equal(1, succeeded)
	for _, err := range errs {
		if err != nil {
			s.True(ierr.IsInvalidOperation(err))
		}
	}

	stored := s.reloadInvoice(inv.ID)
	s.Equal("500.00", stored.PaidAmount.StringFixed(2))
	s.Equal("300.00", stored.BalanceAmount.StringFixed(2))
	s.Equal(types.InvoiceStatusPartiallyPaid, stored.InvoiceStatus)
}

func (s *PaymentServiceSuite) TestConflictIsRetried() {
	inv := s.createIssuedInvoice("lease_1", "1000")
	store := s.GetStores().InvoiceRepo

	repo := &racingInvoiceRepo{Repository: store}
	repo.race = func(ctx context.Context) {
		other, err := store.Get(ctx, inv.ID)
		s.Require().NoError(err)
		s.Require().NoError(other.ApplyPayment(dec("300"), s.GetNow()))
		s.Require().NoError(store.Update(ctx, other))
	}
	params := s.params()
	params.InvoiceRepo = repo
	svc := NewPaymentService(params)

	_, err := svc.ApplyPayment(s.GetContext(), s.payRequest(inv.ID, "500"))
	s.Require().NoError(err)
	s.Equal(int32(2), repo.calls.Load())

	stored := s.reloadInvoice(inv.ID)
	s.Equal("800.00", stored.PaidAmount.StringFixed(2))
	s.Equal(types.InvoiceStatusPartiallyPaid, stored.InvoiceStatus)

	// the lost attempt left no payment behind
	count, err := s.GetStores().PaymentRepo.Count(s.GetContext(), types.NewPaymentFilter())
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *PaymentServiceSuite) TestConflictRetriesAreBounded() {
	inv := s.createIssuedInvoice("lease_1", "1000")

	repo := &conflictingInvoiceRepo{Repository: s.GetStores().InvoiceRepo}
	params := s.params()
	params.InvoiceRepo = repo
	svc := NewPaymentService(params)

	_, err := svc.ApplyPayment(s.GetContext(), s.payRequest(inv.ID, "500"))
	s.True(ierr.IsVersionConflict(err))
	s.Equal(int32(s.GetConfig().Billing.MaxConflictRetries), repo.calls.Load())
	s.True(s.reloadInvoice(inv.ID).PaidAmount.IsZero())
}

func (s *PaymentServiceSuite) TestRefund() {
	inv := s.createIssuedInvoice("lease_1", "1000")
	p, err := s.service.ApplyPayment(s.GetContext(), s.payRequest(inv.ID, "1000"))
	s.Require().NoError(err)

	refund, err := s.service.RefundPayment(s.GetContext(), p.ID, &dto.RefundPaymentRequest{Reason: "duplicate transfer"})
	s.Require().NoError(err)
	s.Equal("-1000.00", refund.Amount.StringFixed(2))
	s.Equal(p.ID, *refund.RefundOfPaymentID)
	s.Equal(types.PaymentStatusRefunded, refund.PaymentStatus)

	stored := s.reloadInvoice(inv.ID)
	s.Equal(types.InvoiceStatusIssued, stored.InvoiceStatus)
	s.True(stored.PaidAmount.IsZero())
	s.Nil(stored.PaidAt)

	original, err := s.service.GetPayment(s.GetContext(), p.ID)
	s.Require().NoError(err)
	s.Equal(types.PaymentStatusRefunded, original.PaymentStatus)

	history, err := s.service.GetPaymentHistory(s.GetContext(), p.ID)
	s.Require().NoError(err)
	s.Require().Len(history, 2)
	s.Equal(types.PaymentStatusCompleted, history[1].FromStatus)
	s.Equal(types.PaymentStatusRefunded, history[1].ToStatus)
	s.Equal("duplicate transfer", history[1].Reason)

	_, err = s.service.RefundPayment(s.GetContext(), p.ID, &dto.RefundPaymentRequest{Reason: "again"})
	s.True(ierr.IsInvalidOperation(err))
	_, err = s.service.RefundPayment(s.GetContext(), refund.ID, &dto.RefundPaymentRequest{Reason: "again"})
	s.True(ierr.IsInvalidOperation(err))
	_, err = s.service.RefundPayment(s.GetContext(), p.ID, &dto.RefundPaymentRequest{})
	s.True(ierr.IsValidation(err))
}

func (s *PaymentServiceSuite) TestPartialRefund() {
	inv := s.createIssuedInvoice("lease_1", "1000")
	_, err := s.service.ApplyPayment(s.GetContext(), s.payRequest(inv.ID, "600"))
	s.Require().NoError(err)
	second, err := s.service.ApplyPayment(s.GetContext(), s.payRequest(inv.ID, "400"))
	s.Require().NoError(err)

	_, err = s.service.RefundPayment(s.GetContext(), second.ID, &dto.RefundPaymentRequest{Reason: "bounced"})
	s.Require().NoError(err)

	stored := s.reloadInvoice(inv.ID)
	s.Equal(types.InvoiceStatusPartiallyPaid, stored.InvoiceStatus)
	s.Equal("400.00", stored.BalanceAmount.StringFixed(2))
}

func (s *PaymentServiceSuite) TestHistoryOfUnknownPayment() {
	_, err := s.service.GetPaymentHistory(s.GetContext(), "pay_missing")
	s.True(ierr.IsNotFound(err))
}
