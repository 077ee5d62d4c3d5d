package testutil

import (
	"context"

	"github.com/flexprice/leasebill/internal/domain/creditnote"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/shopspring/decimal"
)

// InMemoryCreditNoteStore implements creditnote.Repository
type InMemoryCreditNoteStore struct {
	*InMemoryStore[*creditnote.CreditNote]
}

func NewInMemoryCreditNoteStore() *InMemoryCreditNoteStore {
	return &InMemoryCreditNoteStore{
		InMemoryStore: NewInMemoryStore(func(cn *creditnote.CreditNote) *creditnote.CreditNote {
			c := *cn
			return &c
		}),
	}
}

func (s *InMemoryCreditNoteStore) Create(ctx context.Context, cn *creditnote.CreditNote) error {
	return s.InMemoryStore.CreateUnique(ctx, cn.ID, cn, func(existing *creditnote.CreditNote) bool {
		return existing.OrgID == cn.OrgID && existing.CreditNoteNumber == cn.CreditNoteNumber
	})
}

func (s *InMemoryCreditNoteStore) Get(ctx context.Context, id string) (*creditnote.CreditNote, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryCreditNoteStore) ListByInvoice(ctx context.Context, invoiceID string) ([]*creditnote.CreditNote, error) {
	return s.InMemoryStore.List(ctx, nil, func(_ context.Context, cn *creditnote.CreditNote) bool {
		return cn.InvoiceID == invoiceID
	}, func(i, j *creditnote.CreditNote) bool {
		if i.IssuedAt.Equal(j.IssuedAt) {
			return i.ID < j.ID
		}
		return i.IssuedAt.Before(j.IssuedAt)
	})
}

func (s *InMemoryCreditNoteStore) SumByInvoice(ctx context.Context, invoiceID string, noteType types.CreditNoteType) (decimal.Decimal, error) {
	notes, err := s.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, cn := range notes {
		if cn.CreditNoteType == noteType {
			sum = sum.Add(cn.Amount)
		}
	}
	return sum, nil
}
