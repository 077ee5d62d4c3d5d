package service

import (
	"testing"
	"time"

	"github.com/flexprice/leasebill/internal/api/dto"
	"github.com/flexprice/leasebill/internal/domain/events"
	"github.com/flexprice/leasebill/internal/domain/paymentconfirmation"
	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/testutil"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type PaymentConfirmationServiceSuite struct {
	billingSuite
	service  PaymentConfirmationService
	payments PaymentService
}

func TestPaymentConfirmationService(t *testing.T) {
	suite.Run(t, new(PaymentConfirmationServiceSuite))
}

func (s *PaymentConfirmationServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewPaymentConfirmationService(s.params())
	s.payments = NewPaymentService(s.params())
}

func (s *PaymentConfirmationServiceSuite) claim(invoiceID, amount string) *paymentconfirmation.Request {
	r, err := s.service.CreateRequest(s.GetContext(), &dto.CreateConfirmationRequest{
		InvoiceID:    invoiceID,
		Amount:       dec(amount),
		ClaimedDate:  time.Date(2024, time.December, 30, 18, 30, 0, 0, time.UTC),
		ProofFileRef: lo.ToPtr("proofs/receipt-1.jpg"),
		Notes:        "paid the caretaker",
	})
	s.Require().NoError(err)
	return r
}

func (s *PaymentConfirmationServiceSuite) TestConfirmAppliesPayment() {
	inv := s.createIssuedInvoice("lease_1", "1000")
	r := s.claim(inv.ID, "400")
	s.Equal(types.ConfirmationRequestStatusPending, r.RequestStatus)
	s.Equal("lease_1", r.LeaseID)

	// the claim alone does not touch the invoice
	s.True(s.reloadInvoice(inv.ID).PaidAmount.IsZero())

	confirmed, err := s.service.ConfirmRequest(s.GetContext(), r.ID, &dto.ConfirmPaymentRequest{Note: "cash counted"})
	s.Require().NoError(err)
	s.Equal(types.ConfirmationRequestStatusConfirmed, confirmed.RequestStatus)
	s.Require().NotNil(confirmed.PaymentID)
	s.Equal(testutil.DefaultUserID, *confirmed.ReviewedBy)
	s.Equal("cash counted", confirmed.ReviewNote)

	p, err := s.payments.GetPayment(s.GetContext(), *confirmed.PaymentID)
	s.Require().NoError(err)
	s.Equal(types.PaymentModeCash, p.PaymentMode)
	s.Equal(r.ID, *p.ConfirmationRequestID)
	s.Equal(r.ID, p.Reference)
	s.Equal(date(2024, time.December, 30), p.ReceivedAt)

	stored := s.reloadInvoice(inv.ID)
	s.Equal(types.InvoiceStatusPartiallyPaid, stored.InvoiceStatus)
	s.Equal("600.00", stored.BalanceAmount.StringFixed(2))

	s.Equal([]events.Name{
		events.PaymentConfirmationCreated,
		events.PaymentApplied,
		events.PaymentConfirmationConfirmed,
	}, s.GetPublisher().EventNames())
}

func (s *PaymentConfirmationServiceSuite) TestRequestsCloseOnce() {
	inv := s.createIssuedInvoice("lease_1", "1000")
	r := s.claim(inv.ID, "400")

	_, err := s.service.ConfirmRequest(s.GetContext(), r.ID, nil)
	s.Require().NoError(err)

	_, err = s.service.ConfirmRequest(s.GetContext(), r.ID, nil)
	s.True(ierr.IsInvalidOperation(err))
	_, err = s.service.RejectRequest(s.GetContext(), r.ID, &dto.RejectPaymentRequest{Reason: "too late"})
	s.True(ierr.IsInvalidOperation(err))
	_, err = s.service.CancelRequest(s.GetContext(), r.ID)
	s.True(ierr.IsInvalidOperation(err))

	count, err := s.GetStores().PaymentRepo.Count(s.GetContext(), types.NewPaymentFilter())
	s.Require().NoError(err)
	s.Equal(1, count)
	s.Equal("400.00", s.reloadInvoice(inv.ID).PaidAmount.StringFixed(2))
}

func (s *PaymentConfirmationServiceSuite) TestReject() {
	inv := s.createIssuedInvoice("lease_1", "1000")
	r := s.claim(inv.ID, "400")

	_, err := s.service.RejectRequest(s.GetContext(), r.ID, &dto.RejectPaymentRequest{})
	s.True(ierr.IsValidation(err))

	rejected, err := s.service.RejectRequest(s.GetContext(), r.ID, &dto.RejectPaymentRequest{Reason: "no such receipt"})
	s.Require().NoError(err)
	s.Equal(types.ConfirmationRequestStatusRejected, rejected.RequestStatus)
	s.Equal("no such receipt", *rejected.RejectionReason)
	s.Nil(rejected.PaymentID)

	s.Equal(types.InvoiceStatusIssued, s.reloadInvoice(inv.ID).InvoiceStatus)
	s.Contains(s.GetPublisher().EventNames(), events.PaymentConfirmationRejected)
}

func (s *PaymentConfirmationServiceSuite) TestBalanceCheckedAtConfirmation() {
	inv := s.createIssuedInvoice("lease_1", "1000")
	r := s.claim(inv.ID, "600")

	_, err := s.payments.ApplyPayment(s.GetContext(), &dto.ApplyPaymentRequest{
		InvoiceID:   inv.ID,
		Amount:      dec("500"),
		PaymentMode: types.PaymentModeUPI,
	})
	s.Require().NoError(err)

	_, err = s.service.ConfirmRequest(s.GetContext(), r.ID, nil)
	s.True(ierr.IsInvalidOperation(err))

	pending, err := s.service.GetRequest(s.GetContext(), r.ID)
	s.Require().NoError(err)
	s.Equal(types.ConfirmationRequestStatusPending, pending.RequestStatus)
	s.Equal("500.00", s.reloadInvoice(inv.ID).PaidAmount.StringFixed(2))
}

func (s *PaymentConfirmationServiceSuite) TestCreateValidatesAgainstInvoice() {
	inv := s.createIssuedInvoice("lease_1", "1000")

	_, err := s.service.CreateRequest(s.GetContext(), &dto.CreateConfirmationRequest{
		InvoiceID:   inv.ID,
		Amount:      dec("1500"),
		ClaimedDate: s.GetNow(),
	})
	s.True(ierr.IsInvalidOperation(err))

	_, err = s.service.CreateRequest(s.GetContext(), &dto.CreateConfirmationRequest{
		InvoiceID: inv.ID,
		Amount:    dec("100"),
	})
	s.True(ierr.IsValidation(err))

	_, err = s.service.CreateRequest(s.GetContext(), &dto.CreateConfirmationRequest{
		InvoiceID:   "inv_missing",
		Amount:      dec("100"),
		ClaimedDate: s.GetNow(),
	})
	s.True(ierr.IsNotFound(err))
}

func (s *PaymentConfirmationServiceSuite) TestCancelAndList() {
	inv := s.createIssuedInvoice("lease_1", "1000")
	first := s.claim(inv.ID, "100")
	s.claim(inv.ID, "200")

	cancelled, err := s.service.CancelRequest(s.GetContext(), first.ID)
	s.Require().NoError(err)
	s.Equal(types.ConfirmationRequestStatusCancelled, cancelled.RequestStatus)

	filter := types.NewConfirmationRequestFilter()
	filter.InvoiceID = inv.ID
	filter.RequestStatus = []types.ConfirmationRequestStatus{types.ConfirmationRequestStatusPending}
	list, err := s.service.ListRequests(s.GetContext(), filter)
	s.Require().NoError(err)
	s.Require().Len(list.Items, 1)
	s.Equal("200.00", list.Items[0].Amount.StringFixed(2))
}

func (s *PaymentConfirmationServiceSuite) TestProofLink() {
	inv := s.createIssuedInvoice("lease_1", "1000")
	r := s.claim(inv.ID, "100")

	resp, err := s.service.GetRequest(s.GetContext(), r.ID)
	s.Require().NoError(err)
	s.Equal("https://files.test/proofs/receipt-1.jpg", resp.ProofURL)

	_, err = s.service.GetRequest(s.GetContext(), "pcr_missing")
	s.True(ierr.IsNotFound(err))
}
