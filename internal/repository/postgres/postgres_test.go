package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/flexprice/leasebill/internal/domain/invoice"
	"github.com/flexprice/leasebill/internal/domain/invoicerun"
	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/logger"
	"github.com/flexprice/leasebill/internal/postgres"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RepositorySuite struct {
	suite.Suite
	ctx  context.Context
	mock sqlmock.Sqlmock
	db   *postgres.DB
	log  *logger.Logger
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupTest() {
	mockDB, mock, err := sqlmock.New()
	s.Require().NoError(err)
	s.ctx = context.Background()
	s.mock = mock
	s.log = logger.NewNoopLogger()
	s.db = postgres.NewFromSQLX(sqlx.NewDb(mockDB, "postgres"), s.log)
}

func (s *RepositorySuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RepositorySuite) testInvoice() *invoice.Invoice {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	return &invoice.Invoice{
		ID:             "inv_1",
		OrgID:          "org_1",
		LeaseID:        "lease_1",
		PeriodKey:      "2025-03",
		RunType:        types.InvoiceRunTypeRent,
		PeriodStart:    now,
		PeriodEnd:      now.AddDate(0, 1, -1),
		SubTotal:       decimal.NewFromInt(1000),
		TotalAmount:    decimal.NewFromInt(1000),
		BalanceAmount:  decimal.NewFromInt(1000),
		InvoiceStatus:  types.InvoiceStatusDraft,
		IdempotencyKey: lo.ToPtr("key_1"),
		Version:        1,
		Lines: []*invoice.InvoiceLine{
			{ID: "line_1", ChargeID: "chg_1", ChargeType: types.ChargeTypeRent, Amount: decimal.NewFromInt(1000)},
		},
		BaseModel: types.BaseModel{Status: types.StatusPublished, CreatedAt: now, UpdatedAt: now},
	}
}

func (s *RepositorySuite) TestInvoiceUpdateIncrementsVersion() {
	repo := NewInvoiceRepository(s.db, s.log)
	inv := s.testInvoice()

	s.mock.ExpectExec(regexp.QuoteMeta("UPDATE invoices SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s.Require().NoError(repo.Update(s.ctx, inv))
	s.Equal(2, inv.Version)
}

func (s *RepositorySuite) TestInvoiceUpdateLostRace() {
	repo := NewInvoiceRepository(s.db, s.log)
	inv := s.testInvoice()

	s.mock.ExpectExec(regexp.QuoteMeta("UPDATE invoices SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(s.ctx, inv)
	s.Require().Error(err)
	s.True(ierr.IsVersionConflict(err))
	s.Equal(1, inv.Version)
}

func (s *RepositorySuite) TestInvoiceCreateWritesLinesInTx() {
	repo := NewInvoiceRepository(s.db, s.log)
	inv := s.testInvoice()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO invoices")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO invoice_lines")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	s.Require().NoError(repo.Create(s.ctx, inv))
	s.Equal("inv_1", inv.Lines[0].InvoiceID)
}

func (s *RepositorySuite) TestInvoiceCreateDuplicateKey() {
	repo := NewInvoiceRepository(s.db, s.log)

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO invoices")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "uq_invoices_idempotency_key"})
	s.mock.ExpectRollback()

	err := repo.Create(s.ctx, s.testInvoice())
	s.Require().Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *RepositorySuite) TestInvoiceGetAttachesLines() {
	repo := NewInvoiceRepository(s.db, s.log)

	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM invoices")).
		WithArgs("inv_1", types.StatusPublished).
		WillReturnRows(sqlmock.NewRows([]string{"id", "org_id", "invoice_status", "total_amount", "balance_amount", "version"}).
			AddRow("inv_1", "org_1", "issued", "1000.00", "1000.00", 3))
	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM invoice_lines")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "invoice_id", "amount"}).
			AddRow("line_1", "inv_1", "600.00").
			AddRow("line_2", "inv_1", "400.00"))

	inv, err := repo.Get(s.ctx, "inv_1")
	s.Require().NoError(err)
	s.Equal(types.InvoiceStatusIssued, inv.InvoiceStatus)
	s.Equal(3, inv.Version)
	s.True(decimal.NewFromInt(1000).Equal(inv.TotalAmount))
	s.Len(inv.Lines, 2)
}

func (s *RepositorySuite) TestInvoiceGetNotFound() {
	repo := NewInvoiceRepository(s.db, s.log)

	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM invoices")).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(s.ctx, "missing")
	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *RepositorySuite) TestLatestPeriodEndEmpty() {
	repo := NewInvoiceRepository(s.db, s.log)

	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT MAX(period_end) FROM invoices")).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

	latest, err := repo.GetLatestPeriodEnd(s.ctx, "lease_1")
	s.Require().NoError(err)
	s.Nil(latest)
}

func (s *RepositorySuite) TestSequenceNextValue() {
	repo := NewInvoiceSequenceRepository(s.db, s.log)

	s.mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO invoice_sequences")).
		WithArgs(sqlmock.AnyArg(), "org_1", "202503").
		WillReturnRows(sqlmock.NewRows([]string{"last_value"}).AddRow(42))

	next, err := repo.NextValue(s.ctx, "org_1", "202503")
	s.Require().NoError(err)
	s.Equal(int64(42), next)
}

func (s *RepositorySuite) TestInvoiceRunBeginReusesRow() {
	repo := NewInvoiceRunRepository(s.db, s.log)
	now := time.Date(2025, 3, 26, 2, 0, 0, 0, time.UTC)
	run := &invoicerun.InvoiceRun{
		ID:        "run_2",
		OrgID:     "org_1",
		PeriodKey: "2025-04",
		RunType:   types.InvoiceRunTypeRent,
		StartedAt: now,
		BaseModel: types.BaseModel{Status: types.StatusPublished, CreatedAt: now, UpdatedAt: now},
	}

	s.mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO invoice_runs")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "org_id", "period_key", "run_type", "run_status", "outcomes", "attempts"}).
			AddRow("run_1", "org_1", "2025-04", "rent", "running", `[{"lease_id":"lease_1","outcome":"failed"}]`, 2))

	claimed, err := repo.Begin(s.ctx, run)
	s.Require().NoError(err)
	s.Equal("run_1", claimed.ID)
	s.Equal(2, claimed.Attempts)
	s.Require().Len(claimed.Outcomes, 1)
	s.Equal(types.LeaseOutcomeFailed, claimed.Outcomes[0].Outcome)
}

func (s *RepositorySuite) TestCreditNoteSum() {
	repo := NewCreditNoteRepository(s.db, s.log)

	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(amount), 0) FROM credit_notes")).
		WithArgs("inv_1", types.CreditNoteTypeRefund, types.StatusPublished).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("150.50"))

	total, err := repo.SumByInvoice(s.ctx, "inv_1", types.CreditNoteTypeRefund)
	s.Require().NoError(err)
	s.True(decimal.RequireFromString("150.50").Equal(total))
}

func TestInvoiceWhere(t *testing.T) {
	due := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	w := invoiceWhere(&types.InvoiceFilter{
		OrgID:         "org_1",
		DueBefore:     &due,
		InvoiceStatus: []types.InvoiceStatus{types.InvoiceStatusIssued, types.InvoiceStatusPartiallyPaid},
	})

	assert.Equal(t, " WHERE status = $1 AND org_id = $2 AND due_date < $3 AND invoice_status IN ($4, $5)", w.sql())
	require.Len(t, w.args, 5)
	assert.Equal(t, "partially_paid", w.args[4])
}

func TestPage(t *testing.T) {
	assert.Equal(t, " ORDER BY created_at DESC, id DESC LIMIT 50 OFFSET 0", page(nil, "created_at"))
	assert.Equal(t, " ORDER BY created_at ASC, id ASC", page(types.NewNoLimitQueryFilter(), "created_at"))
}
