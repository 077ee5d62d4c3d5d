package payment

import (
	"context"

	"github.com/flexprice/leasebill/internal/types"
)

// Repository defines the interface for payment persistence
type Repository interface {
	Create(ctx context.Context, payment *Payment) error
	Get(ctx context.Context, id string) (*Payment, error)

	// Update is a version checked write, ErrVersionConflict on a lost race
	Update(ctx context.Context, payment *Payment) error

	List(ctx context.Context, filter *types.PaymentFilter) ([]*Payment, error)
	Count(ctx context.Context, filter *types.PaymentFilter) (int, error)

	// AppendStatusHistory writes an audit row. Rows are never updated.
	AppendStatusHistory(ctx context.Context, history *StatusHistory) error
	ListStatusHistory(ctx context.Context, paymentID string) ([]*StatusHistory, error)
}
