package dto

import (
	"context"
	"time"

	"github.com/flexprice/leasebill/internal/domain/paymentconfirmation"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/flexprice/leasebill/internal/validator"
	"github.com/shopspring/decimal"
)

// CreateConfirmationRequest is a tenant's claim of an offline payment
type CreateConfirmationRequest struct {
	InvoiceID    string          `json:"invoice_id" validate:"required"`
	Amount       decimal.Decimal `json:"amount" validate:"decimal_gt0"`
	ClaimedDate  time.Time       `json:"claimed_date" validate:"required"`
	ProofFileRef *string         `json:"proof_file_ref,omitempty"`
	Notes        string          `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

func (r *CreateConfirmationRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *CreateConfirmationRequest) ToRequest(ctx context.Context, orgID, leaseID string, now time.Time) *paymentconfirmation.Request {
	return &paymentconfirmation.Request{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT_CONFIRMATION),
		OrgID:         orgID,
		InvoiceID:     r.InvoiceID,
		LeaseID:       leaseID,
		Amount:        r.Amount,
		ClaimedDate:   types.TruncateToDay(r.ClaimedDate),
		ProofFileRef:  r.ProofFileRef,
		Notes:         r.Notes,
		RequestStatus: types.ConfirmationRequestStatusPending,
		Version:       1,
		BaseModel:     types.GetDefaultBaseModel(ctx, now),
	}
}

type ConfirmPaymentRequest struct {
	Note string `json:"note,omitempty" validate:"omitempty,max=1000"`
}

func (r *ConfirmPaymentRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type RejectPaymentRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

func (r *RejectPaymentRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ConfirmationRequestResponse carries a short-lived link to the proof file
type ConfirmationRequestResponse struct {
	*paymentconfirmation.Request
	ProofURL string `json:"proof_url,omitempty"`
}

type ListConfirmationRequestsResponse = types.ListResponse[*paymentconfirmation.Request]
