package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/flexprice/leasebill/internal/domain/invoice"
	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/samber/lo"
)

// InMemoryInvoiceStore implements invoice.Repository with the same unique
// keys and version checks as the database.
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]
}

func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore(func(inv *invoice.Invoice) *invoice.Invoice {
			return inv.Clone()
		}),
	}
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	return s.InMemoryStore.CreateUnique(ctx, inv.ID, inv, func(existing *invoice.Invoice) bool {
		if inv.IdempotencyKey != nil && lo.FromPtr(existing.IdempotencyKey) == *inv.IdempotencyKey {
			return true
		}
		return inv.InvoiceNumber != nil && existing.OrgID == inv.OrgID &&
			lo.FromPtr(existing.InvoiceNumber) == *inv.InvoiceNumber
	})
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryInvoiceStore) GetByIdempotencyKey(ctx context.Context, key string) (*invoice.Invoice, error) {
	return s.InMemoryStore.Find(ctx, func(_ context.Context, inv *invoice.Invoice) bool {
		return lo.FromPtr(inv.IdempotencyKey) == key
	})
}

// Update writes the header only; stored lines are kept
func (s *InMemoryInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	err := s.InMemoryStore.Mutate(ctx, inv.ID, func(stored *invoice.Invoice) (*invoice.Invoice, error) {
		if stored.Version != inv.Version {
			return nil, versionConflict("invoice", inv.ID)
		}
		if inv.InvoiceNumber != nil && stored.InvoiceNumber == nil {
			if s.numberTaken(stored.OrgID, *inv.InvoiceNumber) {
				return nil, ierr.NewErrorf("invoice number %s already used", *inv.InvoiceNumber).
					Mark(ierr.ErrAlreadyExists)
			}
		}
		next := inv.Clone()
		next.Lines = stored.Lines
		next.Version = inv.Version + 1
		return next, nil
	})
	if err != nil {
		return err
	}
	inv.Version++
	return nil
}

// numberTaken runs under the store lock held by Mutate
func (s *InMemoryInvoiceStore) numberTaken(orgID, number string) bool {
	for _, existing := range s.items {
		if existing.OrgID == orgID && lo.FromPtr(existing.InvoiceNumber) == number {
			return true
		}
	}
	return false
}

func (s *InMemoryInvoiceStore) ReplaceLines(ctx context.Context, invoiceID string, lines []*invoice.InvoiceLine) error {
	return s.InMemoryStore.Mutate(ctx, invoiceID, func(stored *invoice.Invoice) (*invoice.Invoice, error) {
		stored.Lines = lo.Map(lines, func(l *invoice.InvoiceLine, _ int) *invoice.InvoiceLine {
			line := *l
			line.InvoiceID = invoiceID
			return &line
		})
		return stored, nil
	})
}

func (s *InMemoryInvoiceStore) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	return s.InMemoryStore.List(ctx, filter.QueryFilter, invoiceFilterFn(filter), invoiceSortFn(filter.QueryFilter))
}

func (s *InMemoryInvoiceStore) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, invoiceFilterFn(filter))
}

func (s *InMemoryInvoiceStore) ListPastDue(ctx context.Context, orgID string, asOf time.Time) ([]*invoice.Invoice, error) {
	dueBefore := types.TruncateToDay(asOf)
	filter := &types.InvoiceFilter{
		QueryFilter:   types.NewNoLimitQueryFilter(),
		OrgID:         orgID,
		InvoiceStatus: []types.InvoiceStatus{types.InvoiceStatusIssued, types.InvoiceStatusPartiallyPaid},
		DueBefore:     &dueBefore,
	}
	return s.List(ctx, filter)
}

func (s *InMemoryInvoiceStore) GetLatestPeriodEnd(ctx context.Context, leaseID string) (*time.Time, error) {
	invoices, err := s.InMemoryStore.List(ctx, nil, func(_ context.Context, inv *invoice.Invoice) bool {
		return inv.LeaseID == leaseID &&
			inv.InvoiceStatus != types.InvoiceStatusVoided &&
			inv.InvoiceStatus != types.InvoiceStatusCancelled
	}, func(i, j *invoice.Invoice) bool {
		return i.PeriodEnd.After(j.PeriodEnd)
	})
	if err != nil || len(invoices) == 0 {
		return nil, err
	}
	return &invoices[0].PeriodEnd, nil
}

func invoiceFilterFn(filter *types.InvoiceFilter) FilterFunc[*invoice.Invoice] {
	return func(_ context.Context, inv *invoice.Invoice) bool {
		if filter == nil {
			return true
		}
		if filter.OrgID != "" && inv.OrgID != filter.OrgID {
			return false
		}
		if filter.LeaseID != "" && inv.LeaseID != filter.LeaseID {
			return false
		}
		if filter.PeriodKey != "" && inv.PeriodKey != filter.PeriodKey {
			return false
		}
		if filter.RunType != "" && inv.RunType != filter.RunType {
			return false
		}
		if filter.IdempotencyKey != "" && lo.FromPtr(inv.IdempotencyKey) != filter.IdempotencyKey {
			return false
		}
		if filter.DueBefore != nil && (inv.DueDate == nil || !inv.DueDate.Before(*filter.DueBefore)) {
			return false
		}
		return matchesAny(filter.InvoiceStatus, inv.InvoiceStatus)
	}
}

func invoiceSortFn(filter *types.QueryFilter) SortFunc[*invoice.Invoice] {
	return func(i, j *invoice.Invoice) bool {
		if i.CreatedAt.Equal(j.CreatedAt) {
			return i.ID < j.ID
		}
		if filter.GetOrder() == types.OrderAsc {
			return i.CreatedAt.Before(j.CreatedAt)
		}
		return i.CreatedAt.After(j.CreatedAt)
	}
}

// InMemorySequenceStore implements invoice.SequenceRepository
type InMemorySequenceStore struct {
	mu     sync.Mutex
	values map[string]int64
}

func NewInMemorySequenceStore() *InMemorySequenceStore {
	return &InMemorySequenceStore{values: make(map[string]int64)}
}

func (s *InMemorySequenceStore) NextValue(_ context.Context, orgID, yearMonth string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := orgID + ":" + yearMonth
	s.values[key]++
	return s.values[key], nil
}

func (s *InMemorySequenceStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]int64)
}
