package service

import (
	"context"

	"github.com/flexprice/leasebill/internal/api/dto"
	"github.com/flexprice/leasebill/internal/domain/events"
	"github.com/flexprice/leasebill/internal/domain/invoice"
	"github.com/flexprice/leasebill/internal/domain/payment"
	"github.com/flexprice/leasebill/internal/types"
)

// PaymentService applies money to invoices. An application is one
// transaction: the invoice write, the payment row and its history row.
type PaymentService interface {
	ApplyPayment(ctx context.Context, req *dto.ApplyPaymentRequest) (*payment.Payment, error)
	RefundPayment(ctx context.Context, paymentID string, req *dto.RefundPaymentRequest) (*payment.Payment, error)
	GetPayment(ctx context.Context, id string) (*payment.Payment, error)
	ListPayments(ctx context.Context, filter *types.PaymentFilter) (*dto.ListPaymentsResponse, error)
	GetPaymentHistory(ctx context.Context, paymentID string) ([]*payment.StatusHistory, error)
}

type paymentService struct {
	ServiceParams
}

func NewPaymentService(params ServiceParams) PaymentService {
	return &paymentService{
		ServiceParams: params,
	}
}

// PaymentAppliedPayload is the body of a payment.applied event
type PaymentAppliedPayload struct {
	Payment *payment.Payment `json:"payment"`
	Invoice *invoice.Invoice `json:"invoice"`
}

func (s *paymentService) ApplyPayment(ctx context.Context, req *dto.ApplyPaymentRequest) (*payment.Payment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var p *payment.Payment
	var inv *invoice.Invoice
	err := s.retryOnConflict(ctx, "apply_payment", func(ctx context.Context) error {
		return s.DB.WithTx(ctx, func(ctx context.Context) error {
			var err error
			p, inv, err = s.applyPayment(ctx, req)
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("applied payment",
		"payment_id", p.ID,
		"invoice_id", inv.ID,
		"amount", p.Amount.String(),
		"payment_mode", p.PaymentMode,
		"invoice_status", inv.InvoiceStatus,
	)
	s.publishEvent(ctx, events.PaymentApplied, p.OrgID, p.ID, &PaymentAppliedPayload{
		Payment: p,
		Invoice: inv,
	})
	return p, nil
}

// applyPayment is one attempt against freshly loaded state. It must run
// inside a transaction; the invoice write goes first so a lost race fails
// before any payment row exists.
func (s *paymentService) applyPayment(ctx context.Context, req *dto.ApplyPaymentRequest) (*payment.Payment, *invoice.Invoice, error) {
	inv, err := s.InvoiceRepo.Get(ctx, req.InvoiceID)
	if err != nil {
		return nil, nil, err
	}

	now := s.Clock.UtcNow()
	if err := inv.ApplyPayment(req.Amount, now); err != nil {
		return nil, nil, err
	}
	if err := inv.CheckInvariants(); err != nil {
		return nil, nil, err
	}
	inv.Touch(ctx, now)
	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, nil, err
	}

	p := req.ToPayment(ctx, inv.OrgID, inv.LeaseID, now)
	if err := s.PaymentRepo.Create(ctx, p); err != nil {
		return nil, nil, err
	}
	history := payment.NewStatusHistory(p.ID, "", p.PaymentStatus, types.GetUserIDOrDefault(ctx), "", now)
	if err := s.PaymentRepo.AppendStatusHistory(ctx, history); err != nil {
		return nil, nil, err
	}
	return p, inv, nil
}

func (s *paymentService) RefundPayment(ctx context.Context, paymentID string, req *dto.RefundPaymentRequest) (*payment.Payment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var refund *payment.Payment
	err := s.retryOnConflict(ctx, "refund_payment", func(ctx context.Context) error {
		return s.DB.WithTx(ctx, func(ctx context.Context) error {
			original, err := s.PaymentRepo.Get(ctx, paymentID)
			if err != nil {
				return err
			}
			if err := original.CanRefund(); err != nil {
				return err
			}
			inv, err := s.InvoiceRepo.Get(ctx, original.InvoiceID)
			if err != nil {
				return err
			}

			now := s.Clock.UtcNow()
			changedBy := types.GetUserIDOrDefault(ctx)
			if err := inv.ApplyRefund(original.Amount); err != nil {
				return err
			}
			inv.Touch(ctx, now)
			if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
				return err
			}

			original.PaymentStatus = types.PaymentStatusRefunded
			original.Touch(ctx, now)
			if err := s.PaymentRepo.Update(ctx, original); err != nil {
				return err
			}
			if err := s.PaymentRepo.AppendStatusHistory(ctx, payment.NewStatusHistory(
				original.ID, types.PaymentStatusCompleted, types.PaymentStatusRefunded, changedBy, req.Reason, now,
			)); err != nil {
				return err
			}

			refund = &payment.Payment{
				ID:                types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
				OrgID:             original.OrgID,
				InvoiceID:         original.InvoiceID,
				LeaseID:           original.LeaseID,
				Amount:            original.Amount.Neg(),
				PaymentMode:       original.PaymentMode,
				PaymentStatus:     types.PaymentStatusRefunded,
				Reference:         req.Reason,
				RefundOfPaymentID: &original.ID,
				ReceivedAt:        now,
				Version:           1,
				BaseModel:         types.GetDefaultBaseModel(ctx, now),
			}
			if err := s.PaymentRepo.Create(ctx, refund); err != nil {
				return err
			}
			return s.PaymentRepo.AppendStatusHistory(ctx, payment.NewStatusHistory(
				refund.ID, "", types.PaymentStatusRefunded, changedBy, req.Reason, now,
			))
		})
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("refunded payment",
		"payment_id", paymentID,
		"refund_id", refund.ID,
		"amount", refund.Amount.String(),
	)
	s.publishEvent(ctx, events.PaymentRefunded, refund.OrgID, refund.ID, refund)
	return refund, nil
}

func (s *paymentService) GetPayment(ctx context.Context, id string) (*payment.Payment, error) {
	return s.PaymentRepo.Get(ctx, id)
}

func (s *paymentService) ListPayments(ctx context.Context, filter *types.PaymentFilter) (*dto.ListPaymentsResponse, error) {
	if filter == nil {
		filter = types.NewPaymentFilter()
	}
	if err := filter.QueryFilter.Validate(); err != nil {
		return nil, err
	}

	payments, err := s.PaymentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	count, err := s.PaymentRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := types.NewListResponse(payments, count, filter.QueryFilter)
	return &resp, nil
}

func (s *paymentService) GetPaymentHistory(ctx context.Context, paymentID string) ([]*payment.StatusHistory, error) {
	if _, err := s.PaymentRepo.Get(ctx, paymentID); err != nil {
		return nil, err
	}
	return s.PaymentRepo.ListStatusHistory(ctx, paymentID)
}
