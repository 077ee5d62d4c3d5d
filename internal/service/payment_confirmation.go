package service

import (
	"context"

	"github.com/flexprice/leasebill/internal/api/dto"
	"github.com/flexprice/leasebill/internal/domain/events"
	"github.com/flexprice/leasebill/internal/domain/paymentconfirmation"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/samber/lo"
)

// PaymentConfirmationService handles tenant claims of cash payments. A claim
// becomes a payment only when the owner confirms it, and it is checked
// against the invoice balance at that moment, not when it was filed.
type PaymentConfirmationService interface {
	CreateRequest(ctx context.Context, req *dto.CreateConfirmationRequest) (*paymentconfirmation.Request, error)
	ConfirmRequest(ctx context.Context, id string, req *dto.ConfirmPaymentRequest) (*paymentconfirmation.Request, error)
	RejectRequest(ctx context.Context, id string, req *dto.RejectPaymentRequest) (*paymentconfirmation.Request, error)
	CancelRequest(ctx context.Context, id string) (*paymentconfirmation.Request, error)
	GetRequest(ctx context.Context, id string) (*dto.ConfirmationRequestResponse, error)
	ListRequests(ctx context.Context, filter *types.ConfirmationRequestFilter) (*dto.ListConfirmationRequestsResponse, error)
}

type paymentConfirmationService struct {
	ServiceParams
	payments *paymentService
}

func NewPaymentConfirmationService(params ServiceParams) PaymentConfirmationService {
	return &paymentConfirmationService{
		ServiceParams: params,
		payments:      &paymentService{ServiceParams: params},
	}
}

func (s *paymentConfirmationService) CreateRequest(ctx context.Context, req *dto.CreateConfirmationRequest) (*paymentconfirmation.Request, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	inv, err := s.InvoiceRepo.Get(ctx, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	if err := inv.ValidatePayable(req.Amount); err != nil {
		return nil, err
	}

	r := req.ToRequest(ctx, inv.OrgID, inv.LeaseID, s.Clock.UtcNow())
	if err := s.ConfirmationRepo.Create(ctx, r); err != nil {
		return nil, err
	}

	s.Logger.Infow("payment confirmation requested",
		"request_id", r.ID,
		"invoice_id", r.InvoiceID,
		"amount", r.Amount.String(),
	)
	s.publishEvent(ctx, events.PaymentConfirmationCreated, r.OrgID, r.ID, r)
	return r, nil
}

func (s *paymentConfirmationService) ConfirmRequest(ctx context.Context, id string, req *dto.ConfirmPaymentRequest) (*paymentconfirmation.Request, error) {
	if req == nil {
		req = &dto.ConfirmPaymentRequest{}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var confirmed *paymentconfirmation.Request
	var applied *PaymentAppliedPayload
	err := s.retryOnConflict(ctx, "confirm_payment", func(ctx context.Context) error {
		return s.DB.WithTx(ctx, func(ctx context.Context) error {
			r, err := s.ConfirmationRepo.Get(ctx, id)
			if err != nil {
				return err
			}
			if err := r.CanReview(); err != nil {
				return err
			}

			claimed := r.ClaimedDate
			apply := &dto.ApplyPaymentRequest{
				InvoiceID:             r.InvoiceID,
				Amount:                r.Amount,
				PaymentMode:           types.PaymentModeCash,
				Reference:             r.ID,
				ConfirmationRequestID: lo.ToPtr(r.ID),
				ReceivedAt:            &claimed,
			}
			if err := apply.Validate(); err != nil {
				return err
			}
			p, inv, err := s.payments.applyPayment(ctx, apply)
			if err != nil {
				return err
			}

			now := s.Clock.UtcNow()
			if err := r.Confirm(p.ID, types.GetUserIDOrDefault(ctx), req.Note, now); err != nil {
				return err
			}
			r.Touch(ctx, now)
			if err := s.ConfirmationRepo.Update(ctx, r); err != nil {
				return err
			}
			confirmed = r
			applied = &PaymentAppliedPayload{Payment: p, Invoice: inv}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("payment confirmation approved",
		"request_id", confirmed.ID,
		"payment_id", applied.Payment.ID,
		"invoice_status", applied.Invoice.InvoiceStatus,
	)
	s.publishEvent(ctx, events.PaymentApplied, applied.Payment.OrgID, applied.Payment.ID, applied)
	s.publishEvent(ctx, events.PaymentConfirmationConfirmed, confirmed.OrgID, confirmed.ID, confirmed)
	return confirmed, nil
}

func (s *paymentConfirmationService) RejectRequest(ctx context.Context, id string, req *dto.RejectPaymentRequest) (*paymentconfirmation.Request, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r, err := s.review(ctx, id, "reject_payment", func(r *paymentconfirmation.Request) error {
		return r.Reject(req.Reason, types.GetUserIDOrDefault(ctx), s.Clock.UtcNow())
	})
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.PaymentConfirmationRejected, r.OrgID, r.ID, r)
	return r, nil
}

func (s *paymentConfirmationService) CancelRequest(ctx context.Context, id string) (*paymentconfirmation.Request, error) {
	return s.review(ctx, id, "cancel_payment_confirmation", func(r *paymentconfirmation.Request) error {
		return r.Cancel(s.Clock.UtcNow())
	})
}

// review closes a request without touching any invoice
func (s *paymentConfirmationService) review(ctx context.Context, id, opName string, fn func(r *paymentconfirmation.Request) error) (*paymentconfirmation.Request, error) {
	var result *paymentconfirmation.Request
	err := s.retryOnConflict(ctx, opName, func(ctx context.Context) error {
		r, err := s.ConfirmationRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(r); err != nil {
			return err
		}
		r.Touch(ctx, s.Clock.UtcNow())
		if err := s.ConfirmationRepo.Update(ctx, r); err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("payment confirmation closed",
		"request_id", result.ID,
		"operation", opName,
		"request_status", result.RequestStatus,
	)
	return result, nil
}

func (s *paymentConfirmationService) GetRequest(ctx context.Context, id string) (*dto.ConfirmationRequestResponse, error) {
	r, err := s.ConfirmationRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := &dto.ConfirmationRequestResponse{Request: r}
	if r.ProofFileRef != nil && s.ProofLinks != nil {
		url, err := s.ProofLinks.GetLink(ctx, *r.ProofFileRef)
		if err != nil {
			s.Logger.Warnw("failed to build proof link",
				"request_id", r.ID,
				"error", err,
			)
		} else {
			resp.ProofURL = url
		}
	}
	return resp, nil
}

func (s *paymentConfirmationService) ListRequests(ctx context.Context, filter *types.ConfirmationRequestFilter) (*dto.ListConfirmationRequestsResponse, error) {
	if filter == nil {
		filter = types.NewConfirmationRequestFilter()
	}
	if err := filter.QueryFilter.Validate(); err != nil {
		return nil, err
	}

	requests, err := s.ConfirmationRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	count, err := s.ConfirmationRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := types.NewListResponse(requests, count, filter.QueryFilter)
	return &resp, nil
}
