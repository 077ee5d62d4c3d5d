package repository

import (
	"github.com/flexprice/leasebill/internal/cache"
	"github.com/flexprice/leasebill/internal/domain/charge"
	"github.com/flexprice/leasebill/internal/domain/creditnote"
	"github.com/flexprice/leasebill/internal/domain/invoice"
	"github.com/flexprice/leasebill/internal/domain/invoicerun"
	"github.com/flexprice/leasebill/internal/domain/lease"
	"github.com/flexprice/leasebill/internal/domain/payment"
	"github.com/flexprice/leasebill/internal/domain/paymentconfirmation"
	"github.com/flexprice/leasebill/internal/logger"
	"github.com/flexprice/leasebill/internal/postgres"
	postgresRepo "github.com/flexprice/leasebill/internal/repository/postgres"
	"go.uber.org/fx"
)

func NewLeaseRepository(db *postgres.DB, logger *logger.Logger) lease.Repository {
	return postgresRepo.NewLeaseRepository(db, logger)
}

func NewBillingSettingsRepository(db *postgres.DB, logger *logger.Logger, c cache.Cache) lease.SettingsRepository {
	return NewCachedSettingsRepository(postgresRepo.NewBillingSettingsRepository(db, logger), c)
}

func NewChargeRepository(db *postgres.DB, logger *logger.Logger) charge.Repository {
	return postgresRepo.NewChargeRepository(db, logger)
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return postgresRepo.NewInvoiceRepository(db, logger)
}

func NewInvoiceSequenceRepository(db *postgres.DB, logger *logger.Logger) invoice.SequenceRepository {
	return postgresRepo.NewInvoiceSequenceRepository(db, logger)
}

func NewInvoiceRunRepository(db *postgres.DB, logger *logger.Logger) invoicerun.Repository {
	return postgresRepo.NewInvoiceRunRepository(db, logger)
}

func NewPaymentRepository(db *postgres.DB, logger *logger.Logger) payment.Repository {
	return postgresRepo.NewPaymentRepository(db, logger)
}

func NewPaymentConfirmationRepository(db *postgres.DB, logger *logger.Logger) paymentconfirmation.Repository {
	return postgresRepo.NewPaymentConfirmationRepository(db, logger)
}

func NewCreditNoteRepository(db *postgres.DB, logger *logger.Logger) creditnote.Repository {
	return postgresRepo.NewCreditNoteRepository(db, logger)
}

// Module provides every repository to the fx graph
func Module() fx.Option {
	return fx.Provide(
		NewLeaseRepository,
		NewBillingSettingsRepository,
		NewChargeRepository,
		NewInvoiceRepository,
		NewInvoiceSequenceRepository,
		NewInvoiceRunRepository,
		NewPaymentRepository,
		NewPaymentConfirmationRepository,
		NewCreditNoteRepository,
	)
}
