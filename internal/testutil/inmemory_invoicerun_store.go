package testutil

import (
	"context"

	"github.com/flexprice/leasebill/internal/domain/invoicerun"
	"github.com/flexprice/leasebill/internal/types"
)

// InMemoryInvoiceRunStore implements invoicerun.Repository
type InMemoryInvoiceRunStore struct {
	*InMemoryStore[*invoicerun.InvoiceRun]
}

func NewInMemoryInvoiceRunStore() *InMemoryInvoiceRunStore {
	return &InMemoryInvoiceRunStore{
		InMemoryStore: NewInMemoryStore(copyInvoiceRun),
	}
}

func copyInvoiceRun(r *invoicerun.InvoiceRun) *invoicerun.InvoiceRun {
	c := *r
	c.Outcomes = append([]invoicerun.LeaseOutcome(nil), r.Outcomes...)
	return &c
}

// Begin mirrors the upsert on (org, period, run type)
func (s *InMemoryInvoiceRunStore) Begin(ctx context.Context, run *invoicerun.InvoiceRun) (*invoicerun.InvoiceRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.items {
		if existing.OrgID != run.OrgID || existing.PeriodKey != run.PeriodKey || existing.RunType != run.RunType {
			continue
		}
		existing.RunStatus = types.InvoiceRunStatusRunning
		existing.StartedAt = run.StartedAt
		existing.CompletedAt = nil
		existing.Attempts++
		existing.UpdatedAt = run.UpdatedAt
		existing.UpdatedBy = run.UpdatedBy
		s.items[id] = existing
		return copyInvoiceRun(existing), nil
	}

	stored := copyInvoiceRun(run)
	if stored.Attempts == 0 {
		stored.Attempts = 1
	}
	s.items[stored.ID] = stored
	return copyInvoiceRun(stored), nil
}

func (s *InMemoryInvoiceRunStore) Complete(ctx context.Context, run *invoicerun.InvoiceRun) error {
	return s.InMemoryStore.Mutate(ctx, run.ID, func(_ *invoicerun.InvoiceRun) (*invoicerun.InvoiceRun, error) {
		return run, nil
	})
}

func (s *InMemoryInvoiceRunStore) Get(ctx context.Context, id string) (*invoicerun.InvoiceRun, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryInvoiceRunStore) GetByKey(ctx context.Context, orgID string, periodKey types.PeriodKey, runType types.InvoiceRunType) (*invoicerun.InvoiceRun, error) {
	return s.InMemoryStore.Find(ctx, func(_ context.Context, r *invoicerun.InvoiceRun) bool {
		return r.OrgID == orgID && r.PeriodKey == periodKey && r.RunType == runType
	})
}
