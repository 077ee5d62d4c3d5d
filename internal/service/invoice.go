package service

import (
	"context"

	"github.com/flexprice/leasebill/internal/api/dto"
	"github.com/flexprice/leasebill/internal/domain/events"
	"github.com/flexprice/leasebill/internal/domain/invoice"
	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/samber/lo"
)

// InvoiceService drives invoices through their lifecycle. Every write is a
// version checked update.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, inv *invoice.Invoice) error
	IssueInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	UpdateDraftLines(ctx context.Context, id string, req *dto.UpdateDraftLinesRequest) (*dto.InvoiceResponse, error)
	VoidInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	CancelInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	// MarkOverdueIfPastDue reports whether the invoice moved to overdue.
	// Calling it again is a no-op.
	MarkOverdueIfPastDue(ctx context.Context, id string) (bool, error)
	// SweepOverdue marks every past-due invoice of the org and returns how many moved
	SweepOverdue(ctx context.Context, orgID string) (int, error)
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)
}

type invoiceService struct {
	ServiceParams
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{
		ServiceParams: params,
	}
}

func (s *invoiceService) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	if inv.InvoiceStatus != types.InvoiceStatusDraft {
		return ierr.NewError("only drafts can be created").
			Mark(ierr.ErrInvalidOperation)
	}
	if err := inv.CheckInvariants(); err != nil {
		return err
	}
	return s.InvoiceRepo.Create(ctx, inv)
}

func (s *invoiceService) IssueInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	var issued *invoice.Invoice
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		inv, err := s.InvoiceRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		if !invoice.CanTransition(inv.InvoiceStatus, invoice.EventIssue) {
			_, err := invoice.Transition(inv.InvoiceStatus, invoice.EventIssue)
			return err
		}

		now := s.Clock.UtcNow()
		yearMonth := invoice.SequenceYearMonth(now)
		seq, err := s.SequenceRepo.NextValue(ctx, inv.OrgID, yearMonth)
		if err != nil {
			return err
		}
		number := invoice.FormatInvoiceNumber(s.Config.Billing.InvoiceNumberPrefix, yearMonth, seq)
		if err := inv.Issue(number, now); err != nil {
			return err
		}
		inv.Touch(ctx, now)
		if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
			return err
		}
		issued = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("issued invoice",
		"invoice_id", issued.ID,
		"invoice_number", lo.FromPtr(issued.InvoiceNumber),
		"total", issued.TotalAmount.String(),
	)
	s.publishEvent(ctx, events.InvoiceIssued, issued.OrgID, issued.ID, issued)
	return dto.NewInvoiceResponse(issued), nil
}

func (s *invoiceService) UpdateDraftLines(ctx context.Context, id string, req *dto.UpdateDraftLinesRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var updated *invoice.Invoice
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		inv, err := s.InvoiceRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := inv.ReplaceLines(req.ToInvoiceLines()); err != nil {
			return err
		}
		if !inv.TotalAmount.IsPositive() {
			return ierr.NewError("draft total must be positive").
				WithHint("Void the draft instead of removing every charge").
				Mark(ierr.ErrValidation)
		}
		inv.Touch(ctx, s.Clock.UtcNow())
		if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
			return err
		}
		if err := s.InvoiceRepo.ReplaceLines(ctx, inv.ID, inv.Lines); err != nil {
			return err
		}
		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto.NewInvoiceResponse(updated), nil
}

func (s *invoiceService) VoidInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.transition(ctx, id, "void", func(inv *invoice.Invoice) error {
		return inv.Void(s.Clock.UtcNow())
	})
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.InvoiceVoided, inv.OrgID, inv.ID, inv)
	return dto.NewInvoiceResponse(inv), nil
}

func (s *invoiceService) CancelInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.transition(ctx, id, "cancel", func(inv *invoice.Invoice) error {
		return inv.Cancel(s.Clock.UtcNow())
	})
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.InvoiceCancelled, inv.OrgID, inv.ID, inv)
	return dto.NewInvoiceResponse(inv), nil
}

// transition loads the invoice, applies fn and writes it back, reloading
// and reapplying when another writer got there first.
func (s *invoiceService) transition(ctx context.Context, id, opName string, fn func(inv *invoice.Invoice) error) (*invoice.Invoice, error) {
	var result *invoice.Invoice
	err := s.retryOnConflict(ctx, opName, func(ctx context.Context) error {
		inv, err := s.InvoiceRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(inv); err != nil {
			return err
		}
		inv.Touch(ctx, s.Clock.UtcNow())
		if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
			return err
		}
		result = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("invoice status changed",
		"invoice_id", result.ID,
		"operation", opName,
		"invoice_status", result.InvoiceStatus,
	)
	return result, nil
}

func (s *invoiceService) MarkOverdueIfPastDue(ctx context.Context, id string) (bool, error) {
	var moved *invoice.Invoice
	err := s.retryOnConflict(ctx, "mark_overdue", func(ctx context.Context) error {
		moved = nil
		inv, err := s.InvoiceRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		now := s.Clock.UtcNow()
		changed, err := inv.MarkOverdue(now)
		if err != nil || !changed {
			return err
		}
		inv.Touch(ctx, now)
		if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
			return err
		}
		moved = inv
		return nil
	})
	if err != nil || moved == nil {
		return false, err
	}

	s.Logger.Infow("invoice is overdue",
		"invoice_id", moved.ID,
		"due_date", moved.DueDate,
		"effective_balance", moved.EffectiveBalance().String(),
	)
	s.publishEvent(ctx, events.InvoiceOverdue, moved.OrgID, moved.ID, moved)
	return true, nil
}

func (s *invoiceService) SweepOverdue(ctx context.Context, orgID string) (int, error) {
	if orgID == "" {
		return 0, ierr.NewError("org_id is required").
			Mark(ierr.ErrValidation)
	}

	pastDue, err := s.InvoiceRepo.ListPastDue(ctx, orgID, s.Clock.UtcNow())
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, inv := range pastDue {
		moved, err := s.MarkOverdueIfPastDue(ctx, inv.ID)
		if err != nil {
			// the next sweep picks it up again
			s.Logger.Warnw("failed to mark invoice overdue",
				"invoice_id", inv.ID,
				"error", err,
			)
			continue
		}
		if moved {
			marked++
		}
	}

	s.Logger.Infow("overdue sweep finished",
		"org_id", orgID,
		"candidates", len(pastDue),
		"marked", marked,
	)
	return marked, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewInvoiceResponse(inv), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	count, err := s.InvoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := lo.Map(invoices, func(inv *invoice.Invoice, _ int) *dto.InvoiceResponse {
		return dto.NewInvoiceResponse(inv)
	})
	resp := types.NewListResponse(items, count, filter.QueryFilter)
	return &resp, nil
}
