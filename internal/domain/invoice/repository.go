package invoice

import (
	"context"
	"time"

	"github.com/flexprice/leasebill/internal/types"
)

// Repository defines the interface for invoice persistence operations
type Repository interface {
	// Create inserts the invoice and its lines. A duplicate idempotency key
	// returns ErrAlreadyExists.
	Create(ctx context.Context, inv *Invoice) error

	// Get retrieves an invoice with its lines
	Get(ctx context.Context, id string) (*Invoice, error)

	// GetByIdempotencyKey retrieves the invoice generated for a key
	GetByIdempotencyKey(ctx context.Context, key string) (*Invoice, error)

	// Update writes the invoice header only if the stored version still
	// equals inv.Version, then increments inv.Version. A lost race returns
	// ErrVersionConflict.
	Update(ctx context.Context, inv *Invoice) error

	// ReplaceLines overwrites the lines of a draft invoice
	ReplaceLines(ctx context.Context, invoiceID string, lines []*InvoiceLine) error

	List(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)
	Count(ctx context.Context, filter *types.InvoiceFilter) (int, error)

	// ListPastDue returns issued or partially paid invoices due before asOf
	ListPastDue(ctx context.Context, orgID string, asOf time.Time) ([]*Invoice, error)

	// GetLatestPeriodEnd returns the latest period end invoiced for a lease,
	// ignoring voided and cancelled invoices. Nil when none exist.
	GetLatestPeriodEnd(ctx context.Context, leaseID string) (*time.Time, error)
}

// SequenceRepository hands out invoice numbers
type SequenceRepository interface {
	// NextValue atomically increments and returns the org's counter for the month
	NextValue(ctx context.Context, orgID, yearMonth string) (int64, error)
}
