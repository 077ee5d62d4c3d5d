package paymentconfirmation

import (
	"context"

	"github.com/flexprice/leasebill/internal/types"
)

type Repository interface {
	Create(ctx context.Context, req *Request) error
	Get(ctx context.Context, id string) (*Request, error)

	// Update writes only if the stored version equals req.Version, then increments it
	Update(ctx context.Context, req *Request) error

	List(ctx context.Context, filter *types.ConfirmationRequestFilter) ([]*Request, error)
	Count(ctx context.Context, filter *types.ConfirmationRequestFilter) (int, error)
}
