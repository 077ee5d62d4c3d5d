package testutil

import (
	"context"
	"sync"

	"github.com/flexprice/leasebill/internal/domain/payment"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/samber/lo"
)

// InMemoryPaymentStore implements payment.Repository
type InMemoryPaymentStore struct {
	*InMemoryStore[*payment.Payment]

	historyMu sync.RWMutex
	history   []*payment.StatusHistory
}

func NewInMemoryPaymentStore() *InMemoryPaymentStore {
	return &InMemoryPaymentStore{
		InMemoryStore: NewInMemoryStore(func(p *payment.Payment) *payment.Payment {
			c := *p
			return &c
		}),
	}
}

// Create enforces one payment per confirmation request
func (s *InMemoryPaymentStore) Create(ctx context.Context, p *payment.Payment) error {
	return s.InMemoryStore.CreateUnique(ctx, p.ID, p, func(existing *payment.Payment) bool {
		return p.ConfirmationRequestID != nil &&
			lo.FromPtr(existing.ConfirmationRequestID) == *p.ConfirmationRequestID
	})
}

func (s *InMemoryPaymentStore) Get(ctx context.Context, id string) (*payment.Payment, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryPaymentStore) Update(ctx context.Context, p *payment.Payment) error {
	err := s.InMemoryStore.Mutate(ctx, p.ID, func(stored *payment.Payment) (*payment.Payment, error) {
		if stored.Version != p.Version {
			return nil, versionConflict("payment", p.ID)
		}
		next := *p
		next.Version = p.Version + 1
		return &next, nil
	})
	if err != nil {
		return err
	}
	p.Version++
	return nil
}

func (s *InMemoryPaymentStore) List(ctx context.Context, filter *types.PaymentFilter) ([]*payment.Payment, error) {
	return s.InMemoryStore.List(ctx, filter.QueryFilter, paymentFilterFn(filter), func(i, j *payment.Payment) bool {
		if i.ReceivedAt.Equal(j.ReceivedAt) {
			return i.ID < j.ID
		}
		if filter.GetOrder() == types.OrderAsc {
			return i.ReceivedAt.Before(j.ReceivedAt)
		}
		return i.ReceivedAt.After(j.ReceivedAt)
	})
}

func (s *InMemoryPaymentStore) Count(ctx context.Context, filter *types.PaymentFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, paymentFilterFn(filter))
}

func paymentFilterFn(filter *types.PaymentFilter) FilterFunc[*payment.Payment] {
	return func(_ context.Context, p *payment.Payment) bool {
		if filter.OrgID != "" && p.OrgID != filter.OrgID {
			return false
		}
		if filter.InvoiceID != "" && p.InvoiceID != filter.InvoiceID {
			return false
		}
		if filter.LeaseID != "" && p.LeaseID != filter.LeaseID {
			return false
		}
		return matchesAny(filter.PaymentStatus, p.PaymentStatus)
	}
}

func (s *InMemoryPaymentStore) AppendStatusHistory(_ context.Context, h *payment.StatusHistory) error {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()
	c := *h
	s.history = append(s.history, &c)
	return nil
}

func (s *InMemoryPaymentStore) ListStatusHistory(_ context.Context, paymentID string) ([]*payment.StatusHistory, error) {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()
	return lo.FilterMap(s.history, func(h *payment.StatusHistory, _ int) (*payment.StatusHistory, bool) {
		c := *h
		return &c, h.PaymentID == paymentID
	}), nil
}

func (s *InMemoryPaymentStore) Clear() {
	s.InMemoryStore.Clear()
	s.historyMu.Lock()
	defer s.historyMu.Unlock()
	s.history = nil
}
