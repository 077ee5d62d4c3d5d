package invoicerun

import (
	"context"

	"github.com/flexprice/leasebill/internal/types"
)

type Repository interface {
	// Begin claims the run row for (org, period, run type). The first call
	// inserts it; later calls reset it to running and increment Attempts.
	// The unique key guarantees a single row per key.
	Begin(ctx context.Context, run *InvoiceRun) (*InvoiceRun, error)

	// Complete persists outcomes, status and completion time
	Complete(ctx context.Context, run *InvoiceRun) error

	Get(ctx context.Context, id string) (*InvoiceRun, error)
	GetByKey(ctx context.Context, orgID string, periodKey types.PeriodKey, runType types.InvoiceRunType) (*InvoiceRun, error)
}
