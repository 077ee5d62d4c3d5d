package events

import (
	"context"
	"time"

	"github.com/flexprice/leasebill/internal/types"
)

// Name identifies a domain event for subscribers
type Name string

const (
	InvoiceIssued                Name = "invoice.issued"
	InvoiceOverdue               Name = "invoice.overdue"
	InvoiceVoided                Name = "invoice.voided"
	InvoiceCancelled             Name = "invoice.cancelled"
	PaymentApplied               Name = "payment.applied"
	PaymentRefunded              Name = "payment.refunded"
	PaymentConfirmationCreated   Name = "payment_confirmation.created"
	PaymentConfirmationConfirmed Name = "payment_confirmation.confirmed"
	PaymentConfirmationRejected  Name = "payment_confirmation.rejected"
	CreditNoteIssued             Name = "credit_note.issued"
	InvoiceRunCompleted          Name = "invoice_run.completed"
)

// DomainEvent is emitted by billing for notification and reporting consumers.
// Billing never sends email or SMS itself.
type DomainEvent struct {
	ID        string    `json:"id"`
	EventName Name      `json:"event_name"`
	OrgID     string    `json:"org_id"`
	EntityID  string    `json:"entity_id"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
	Payload   any       `json:"payload"`
}

// NewDomainEvent stamps an event with a fresh ID and the request ID from ctx
func NewDomainEvent(ctx context.Context, name Name, orgID, entityID string, at time.Time, payload any) *DomainEvent {
	return &DomainEvent{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_EVENT),
		EventName: name,
		OrgID:     orgID,
		EntityID:  entityID,
		Timestamp: at,
		RequestID: types.GetRequestID(ctx),
		Payload:   payload,
	}
}
