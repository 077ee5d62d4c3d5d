package service

import (
	"context"

	"github.com/flexprice/leasebill/internal/api/dto"
	"github.com/flexprice/leasebill/internal/domain/creditnote"
	"github.com/flexprice/leasebill/internal/domain/events"
	"github.com/flexprice/leasebill/internal/domain/invoice"
	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/shopspring/decimal"
)

// CreditNoteService corrects issued invoices. Lines and totals of an issued
// invoice never change; credit notes record the correction instead.
type CreditNoteService interface {
	// IssueCreditNote reduces the effective balance of an unsettled invoice
	// (adjustment). On a paid invoice it records a refund of at most the
	// paid amount less earlier refunds. A refund note is a record only and
	// moves no money.
	IssueCreditNote(ctx context.Context, req *dto.IssueCreditNoteRequest) (*creditnote.CreditNote, error)
	GetCreditNote(ctx context.Context, id string) (*creditnote.CreditNote, error)
	ListCreditNotes(ctx context.Context, invoiceID string) (*dto.ListCreditNotesResponse, error)
}

type creditNoteService struct {
	ServiceParams
}

func NewCreditNoteService(params ServiceParams) CreditNoteService {
	return &creditNoteService{
		ServiceParams: params,
	}
}

func (s *creditNoteService) IssueCreditNote(ctx context.Context, req *dto.IssueCreditNoteRequest) (*creditnote.CreditNote, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var cn *creditnote.CreditNote
	err := s.retryOnConflict(ctx, "issue_credit_note", func(ctx context.Context) error {
		return s.DB.WithTx(ctx, func(ctx context.Context) error {
			inv, err := s.InvoiceRepo.Get(ctx, req.InvoiceID)
			if err != nil {
				return err
			}
			if err := s.validateInvoiceEligibility(inv); err != nil {
				return err
			}

			now := s.Clock.UtcNow()
			noteType := types.CreditNoteTypeAdjustment
			if inv.EffectiveBalance().IsPositive() {
				if err := inv.ApplyCredit(req.Amount, now); err != nil {
					return err
				}
				inv.Touch(ctx, now)
				if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
					return err
				}
			} else {
				noteType = types.CreditNoteTypeRefund
				if err := s.validateRefundAmount(ctx, inv, req.Amount); err != nil {
					return err
				}
			}

			cn = &creditnote.CreditNote{
				ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CREDIT_NOTE),
				OrgID:            inv.OrgID,
				InvoiceID:        inv.ID,
				CreditNoteNumber: types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_CREDIT_NOTE),
				CreditNoteType:   noteType,
				Amount:           req.Amount,
				Reason:           req.Reason,
				IssuedAt:         now,
				BaseModel:        types.GetDefaultBaseModel(ctx, now),
			}
			return s.CreditNoteRepo.Create(ctx, cn)
		})
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("issued credit note",
		"credit_note_id", cn.ID,
		"credit_note_number", cn.CreditNoteNumber,
		"credit_note_type", cn.CreditNoteType,
		"invoice_id", cn.InvoiceID,
		"amount", cn.Amount.String(),
	)
	s.publishEvent(ctx, events.CreditNoteIssued, cn.OrgID, cn.ID, cn)
	return cn, nil
}

func (s *creditNoteService) validateInvoiceEligibility(inv *invoice.Invoice) error {
	switch inv.InvoiceStatus {
	case types.InvoiceStatusIssued, types.InvoiceStatusPartiallyPaid,
		types.InvoiceStatusOverdue, types.InvoiceStatusPaid:
		return nil
	}
	return ierr.NewErrorf("cannot credit an invoice in status %s", inv.InvoiceStatus).
		WithHint("Credit notes can only be issued against issued, partially paid, overdue or paid invoices").
		WithReportableDetails(map[string]any{
			"invoice_id":     inv.ID,
			"invoice_status": inv.InvoiceStatus,
		}).
		Mark(ierr.ErrInvalidOperation)
}

// validateRefundAmount caps refund notes at what was paid less earlier refund notes
func (s *creditNoteService) validateRefundAmount(ctx context.Context, inv *invoice.Invoice, amount decimal.Decimal) error {
	refunded, err := s.CreditNoteRepo.SumByInvoice(ctx, inv.ID, types.CreditNoteTypeRefund)
	if err != nil {
		return err
	}
	available := inv.PaidAmount.Sub(refunded)
	if amount.GreaterThan(available) {
		return ierr.NewError("credit note exceeds refundable amount").
			WithHintf("At most %s can still be credited", available.StringFixed(2)).
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
				"amount":     amount,
				"paid":       inv.PaidAmount,
				"refunded":   refunded,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	return nil
}

func (s *creditNoteService) GetCreditNote(ctx context.Context, id string) (*creditnote.CreditNote, error) {
	return s.CreditNoteRepo.Get(ctx, id)
}

func (s *creditNoteService) ListCreditNotes(ctx context.Context, invoiceID string) (*dto.ListCreditNotesResponse, error) {
	if _, err := s.InvoiceRepo.Get(ctx, invoiceID); err != nil {
		return nil, err
	}
	notes, err := s.CreditNoteRepo.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	resp := types.NewListResponse(notes, len(notes), types.NewNoLimitQueryFilter())
	return &resp, nil
}
