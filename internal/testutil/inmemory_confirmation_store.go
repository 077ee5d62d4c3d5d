package testutil

import (
	"context"

	"github.com/flexprice/leasebill/internal/domain/paymentconfirmation"
	"github.com/flexprice/leasebill/internal/types"
)

// InMemoryConfirmationStore implements paymentconfirmation.Repository
type InMemoryConfirmationStore struct {
	*InMemoryStore[*paymentconfirmation.Request]
}

func NewInMemoryConfirmationStore() *InMemoryConfirmationStore {
	return &InMemoryConfirmationStore{
		InMemoryStore: NewInMemoryStore(func(r *paymentconfirmation.Request) *paymentconfirmation.Request {
			c := *r
			return &c
		}),
	}
}

func (s *InMemoryConfirmationStore) Create(ctx context.Context, r *paymentconfirmation.Request) error {
	return s.InMemoryStore.Create(ctx, r.ID, r)
}

func (s *InMemoryConfirmationStore) Get(ctx context.Context, id string) (*paymentconfirmation.Request, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryConfirmationStore) Update(ctx context.Context, r *paymentconfirmation.Request) error {
	err := s.InMemoryStore.Mutate(ctx, r.ID, func(stored *paymentconfirmation.Request) (*paymentconfirmation.Request, error) {
		if stored.Version != r.Version {
			return nil, versionConflict("payment confirmation request", r.ID)
		}
		next := *r
		next.Version = r.Version + 1
		return &next, nil
	})
	if err != nil {
		return err
	}
	r.Version++
	return nil
}

func (s *InMemoryConfirmationStore) List(ctx context.Context, filter *types.ConfirmationRequestFilter) ([]*paymentconfirmation.Request, error) {
	return s.InMemoryStore.List(ctx, filter.QueryFilter, confirmationFilterFn(filter), func(i, j *paymentconfirmation.Request) bool {
		if i.CreatedAt.Equal(j.CreatedAt) {
			return i.ID < j.ID
		}
		return i.CreatedAt.After(j.CreatedAt)
	})
}

func (s *InMemoryConfirmationStore) Count(ctx context.Context, filter *types.ConfirmationRequestFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, confirmationFilterFn(filter))
}

func confirmationFilterFn(filter *types.ConfirmationRequestFilter) FilterFunc[*paymentconfirmation.Request] {
	return func(_ context.Context, r *paymentconfirmation.Request) bool {
		if filter.OrgID != "" && r.OrgID != filter.OrgID {
			return false
		}
		if filter.InvoiceID != "" && r.InvoiceID != filter.InvoiceID {
			return false
		}
		if filter.LeaseID != "" && r.LeaseID != filter.LeaseID {
			return false
		}
		return matchesAny(filter.RequestStatus, r.RequestStatus)
	}
}
