package payment

import (
	"time"

	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/shopspring/decimal"
)

// Payment is money received against an invoice. The amount never changes
// once completed; a refund is a separate negative payment pointing at it.
type Payment struct {
	// Unique identifier for this payment
	ID        string `db:"id" json:"id"`
	OrgID     string `db:"org_id" json:"org_id"`
	InvoiceID string `db:"invoice_id" json:"invoice_id"`
	LeaseID   string `db:"lease_id" json:"lease_id"`
	// Amount is negative for refund records
	Amount        decimal.Decimal     `db:"amount" json:"amount"`
	PaymentMode   types.PaymentMode   `db:"payment_mode" json:"payment_mode"`
	PaymentStatus types.PaymentStatus `db:"payment_status" json:"payment_status"`
	// Reference is the payer supplied reference (UTR, cheque number, receipt)
	Reference string `db:"reference" json:"reference,omitempty"`
	// Gateway fields are recorded as-is, the gateway protocol is not interpreted
	GatewayName          *string `db:"gateway_name" json:"gateway_name,omitempty"`
	GatewayTransactionID *string `db:"gateway_transaction_id" json:"gateway_transaction_id,omitempty"`
	// BBPSReference is the Bharat Bill Payment System transaction reference
	BBPSReference *string `db:"bbps_reference" json:"bbps_reference,omitempty"`
	// Optional links to the source of the money
	UtilityStatementID    *string `db:"utility_statement_id" json:"utility_statement_id,omitempty"`
	DepositTransactionID  *string `db:"deposit_transaction_id" json:"deposit_transaction_id,omitempty"`
	ConfirmationRequestID *string `db:"confirmation_request_id" json:"confirmation_request_id,omitempty"`
	// RefundOfPaymentID is set on refund records
	RefundOfPaymentID *string   `db:"refund_of_payment_id" json:"refund_of_payment_id,omitempty"`
	ReceivedAt        time.Time `db:"received_at" json:"received_at"`
	Version           int       `db:"version" json:"version"`

	types.BaseModel
}

// IsRefund reports whether this record reverses another payment
func (p *Payment) IsRefund() bool {
	return p.RefundOfPaymentID != nil
}

// CanRefund reports whether the payment can still be reversed
func (p *Payment) CanRefund() error {
	if p.IsRefund() {
		return ierr.NewError("refund records cannot be refunded").
			WithReportableDetails(map[string]any{"payment_id": p.ID}).
			Mark(ierr.ErrInvalidOperation)
	}
	if p.PaymentStatus != types.PaymentStatusCompleted {
		return ierr.NewErrorf("payment in status %s cannot be refunded", p.PaymentStatus).
			WithHint("Only completed payments can be refunded").
			WithReportableDetails(map[string]any{
				"payment_id":     p.ID,
				"payment_status": p.PaymentStatus,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	return nil
}

// StatusHistory is an append-only audit row of a payment status change
type StatusHistory struct {
	ID         string              `db:"id" json:"id"`
	PaymentID  string              `db:"payment_id" json:"payment_id"`
	FromStatus types.PaymentStatus `db:"from_status" json:"from_status"`
	ToStatus   types.PaymentStatus `db:"to_status" json:"to_status"`
	ChangedBy  string              `db:"changed_by" json:"changed_by"`
	ChangedAt  time.Time           `db:"changed_at" json:"changed_at"`
	Reason     string              `db:"reason" json:"reason,omitempty"`
}

// NewStatusHistory builds the audit row for a transition
func NewStatusHistory(paymentID string, from, to types.PaymentStatus, changedBy, reason string, at time.Time) *StatusHistory {
	return &StatusHistory{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT_HISTORY),
		PaymentID:  paymentID,
		FromStatus: from,
		ToStatus:   to,
		ChangedBy:  changedBy,
		ChangedAt:  at,
		Reason:     reason,
	}
}
