package dto

import (
	"context"
	"time"

	"github.com/flexprice/leasebill/internal/domain/payment"
	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/flexprice/leasebill/internal/validator"
	"github.com/shopspring/decimal"
)

// ApplyPaymentRequest records money received against an invoice
type ApplyPaymentRequest struct {
	InvoiceID            string            `json:"invoice_id" validate:"required"`
	Amount               decimal.Decimal   `json:"amount" validate:"decimal_gt0"`
	PaymentMode          types.PaymentMode `json:"payment_mode" validate:"required"`
	Reference            string            `json:"reference,omitempty" validate:"omitempty,max=255"`
	GatewayName          *string           `json:"gateway_name,omitempty"`
	GatewayTransactionID *string           `json:"gateway_transaction_id,omitempty"`
	BBPSReference        *string           `json:"bbps_reference,omitempty"`
	UtilityStatementID   *string           `json:"utility_statement_id,omitempty"`
	DepositTransactionID *string           `json:"deposit_transaction_id,omitempty"`
	// ConfirmationRequestID is set when the payment comes from an approved claim
	ConfirmationRequestID *string    `json:"confirmation_request_id,omitempty"`
	ReceivedAt            *time.Time `json:"received_at,omitempty"`
}

func (r *ApplyPaymentRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := r.PaymentMode.Validate(); err != nil {
		return err
	}
	switch r.PaymentMode {
	case types.PaymentModeGateway:
		if r.GatewayName == nil || r.GatewayTransactionID == nil {
			return ierr.NewError("gateway payments need a gateway name and transaction id").
				WithHint("Please provide gateway_name and gateway_transaction_id").
				Mark(ierr.ErrValidation)
		}
	case types.PaymentModeBBPS:
		if r.BBPSReference == nil {
			return ierr.NewError("bbps payments need a bbps reference").
				WithHint("Please provide bbps_reference").
				Mark(ierr.ErrValidation)
		}
	case types.PaymentModeDeposit:
		if r.DepositTransactionID == nil {
			return ierr.NewError("deposit payments need a deposit transaction id").
				WithHint("Please provide deposit_transaction_id").
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

// ToPayment builds the completed payment record for an invoice
func (r *ApplyPaymentRequest) ToPayment(ctx context.Context, orgID, leaseID string, now time.Time) *payment.Payment {
	received := now
	if r.ReceivedAt != nil {
		received = *r.ReceivedAt
	}
	return &payment.Payment{
		ID:                    types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
		OrgID:                 orgID,
		InvoiceID:             r.InvoiceID,
		LeaseID:               leaseID,
		Amount:                r.Amount,
		PaymentMode:           r.PaymentMode,
		PaymentStatus:         types.PaymentStatusCompleted,
		Reference:             r.Reference,
		GatewayName:           r.GatewayName,
		GatewayTransactionID:  r.GatewayTransactionID,
		BBPSReference:         r.BBPSReference,
		UtilityStatementID:    r.UtilityStatementID,
		DepositTransactionID:  r.DepositTransactionID,
		ConfirmationRequestID: r.ConfirmationRequestID,
		ReceivedAt:            received,
		Version:               1,
		BaseModel:             types.GetDefaultBaseModel(ctx, now),
	}
}

type RefundPaymentRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

func (r *RefundPaymentRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type ListPaymentsResponse = types.ListResponse[*payment.Payment]
