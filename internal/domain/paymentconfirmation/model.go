package paymentconfirmation

import (
	"strings"
	"time"

	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/shopspring/decimal"
)

// Request is a tenant's claim of a cash payment waiting for owner review.
// It leaves pending exactly once.
type Request struct {
	ID              string                          `db:"id" json:"id"`
	OrgID           string                          `db:"org_id" json:"org_id"`
	InvoiceID       string                          `db:"invoice_id" json:"invoice_id"`
	LeaseID         string                          `db:"lease_id" json:"lease_id"`
	Amount          decimal.Decimal                 `db:"amount" json:"amount"`
	ClaimedDate     time.Time                       `db:"claimed_date" json:"claimed_date"`
	ProofFileRef    *string                         `db:"proof_file_ref" json:"proof_file_ref,omitempty"`
	Notes           string                          `db:"notes" json:"notes,omitempty"`
	RequestStatus   types.ConfirmationRequestStatus `db:"request_status" json:"request_status"`
	PaymentID       *string                         `db:"payment_id" json:"payment_id,omitempty"`
	ReviewedBy      *string                         `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time                      `db:"reviewed_at" json:"reviewed_at,omitempty"`
	ReviewNote      string                          `db:"review_note" json:"review_note,omitempty"`
	RejectionReason *string                         `db:"rejection_reason" json:"rejection_reason,omitempty"`
	Version         int                             `db:"version" json:"version"`

	types.BaseModel
}

func (r *Request) ensurePending() error {
	if r.RequestStatus != types.ConfirmationRequestStatusPending {
		return ierr.NewErrorf("confirmation request is already %s", r.RequestStatus).
			WithHint("Only pending requests can be reviewed").
			WithReportableDetails(map[string]any{
				"request_id":     r.ID,
				"request_status": r.RequestStatus,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	return nil
}

// CanReview reports whether the request is still pending
func (r *Request) CanReview() error {
	return r.ensurePending()
}

// Confirm links the created payment
func (r *Request) Confirm(paymentID, reviewer, note string, now time.Time) error {
	if err := r.ensurePending(); err != nil {
		return err
	}
	r.RequestStatus = types.ConfirmationRequestStatusConfirmed
	r.PaymentID = &paymentID
	r.ReviewedBy = &reviewer
	r.ReviewedAt = &now
	r.ReviewNote = note
	return nil
}

// Reject closes the request without a payment. A reason is mandatory.
func (r *Request) Reject(reason, reviewer string, now time.Time) error {
	if strings.TrimSpace(reason) == "" {
		return ierr.NewError("rejection reason is required").
			WithHint("Please explain why the payment claim is rejected").
			Mark(ierr.ErrValidation)
	}
	if err := r.ensurePending(); err != nil {
		return err
	}
	r.RequestStatus = types.ConfirmationRequestStatusRejected
	r.RejectionReason = &reason
	r.ReviewedBy = &reviewer
	r.ReviewedAt = &now
	return nil
}

// Cancel withdraws the request on the tenant's behalf
func (r *Request) Cancel(now time.Time) error {
	if err := r.ensurePending(); err != nil {
		return err
	}
	r.RequestStatus = types.ConfirmationRequestStatusCancelled
	r.ReviewedAt = &now
	return nil
}
