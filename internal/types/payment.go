package types

import (
	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/samber/lo"
)

// PaymentMode is how the money reached the landlord
type PaymentMode string

const (
	PaymentModeCash         PaymentMode = "cash"
	PaymentModeBankTransfer PaymentMode = "bank_transfer"
	PaymentModeUPI          PaymentMode = "upi"
	PaymentModeCard         PaymentMode = "card"
	PaymentModeCheque       PaymentMode = "cheque"
	PaymentModeGateway      PaymentMode = "gateway"
	PaymentModeBBPS         PaymentMode = "bbps"
	PaymentModeDeposit      PaymentMode = "deposit"
)

func (m PaymentMode) String() string {
	return string(m)
}

func (m PaymentMode) Validate() error {
	allowed := []PaymentMode{
		PaymentModeCash,
		PaymentModeBankTransfer,
		PaymentModeUPI,
		PaymentModeCard,
		PaymentModeCheque,
		PaymentModeGateway,
		PaymentModeBBPS,
		PaymentModeDeposit,
	}
	if !lo.Contains(allowed, m) {
		return ierr.NewError("invalid payment mode").
			WithHint("Please provide a valid payment mode").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PaymentStatus is the state of a payment record
type PaymentStatus string

const (
	PaymentStatusPending             PaymentStatus = "pending"
	PaymentStatusProcessing          PaymentStatus = "processing"
	PaymentStatusCompleted           PaymentStatus = "completed"
	PaymentStatusFailed              PaymentStatus = "failed"
	PaymentStatusCancelled           PaymentStatus = "cancelled"
	PaymentStatusRefunded            PaymentStatus = "refunded"
	PaymentStatusPendingConfirmation PaymentStatus = "pending_confirmation"
	PaymentStatusRejected            PaymentStatus = "rejected"
)

func (s PaymentStatus) String() string {
	return string(s)
}

func (s PaymentStatus) Validate() error {
	allowed := []PaymentStatus{
		PaymentStatusPending,
		PaymentStatusProcessing,
		PaymentStatusCompleted,
		PaymentStatusFailed,
		PaymentStatusCancelled,
		PaymentStatusRefunded,
		PaymentStatusPendingConfirmation,
		PaymentStatusRejected,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid payment status").
			WithHint("Please provide a valid payment status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ConfirmationRequestStatus is the state of a tenant cash-payment claim
type ConfirmationRequestStatus string

const (
	ConfirmationRequestStatusPending   ConfirmationRequestStatus = "pending"
	ConfirmationRequestStatusConfirmed ConfirmationRequestStatus = "confirmed"
	ConfirmationRequestStatusRejected  ConfirmationRequestStatus = "rejected"
	ConfirmationRequestStatusCancelled ConfirmationRequestStatus = "cancelled"
)

func (s ConfirmationRequestStatus) String() string {
	return string(s)
}

// OverpaymentPolicy decides what happens to an amount above the open balance
type OverpaymentPolicy string

const (
	OverpaymentPolicyReject OverpaymentPolicy = "reject"
)
