package service

import (
	"github.com/flexprice/leasebill/internal/clock"
	"github.com/flexprice/leasebill/internal/config"
	"github.com/flexprice/leasebill/internal/domain/charge"
	"github.com/flexprice/leasebill/internal/domain/creditnote"
	"github.com/flexprice/leasebill/internal/domain/invoice"
	"github.com/flexprice/leasebill/internal/domain/invoicerun"
	"github.com/flexprice/leasebill/internal/domain/lease"
	"github.com/flexprice/leasebill/internal/domain/payment"
	"github.com/flexprice/leasebill/internal/domain/paymentconfirmation"
	"github.com/flexprice/leasebill/internal/idempotency"
	"github.com/flexprice/leasebill/internal/logger"
	"github.com/flexprice/leasebill/internal/postgres"
	"github.com/flexprice/leasebill/internal/publisher"
	"github.com/flexprice/leasebill/internal/s3"
	"go.uber.org/fx"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient
	Clock  clock.Clock

	// Repositories
	LeaseRepo        lease.Repository
	SettingsRepo     lease.SettingsRepository
	ChargeRepo       charge.Repository
	InvoiceRepo      invoice.Repository
	SequenceRepo     invoice.SequenceRepository
	InvoiceRunRepo   invoicerun.Repository
	PaymentRepo      payment.Repository
	ConfirmationRepo paymentconfirmation.Repository
	CreditNoteRepo   creditnote.Repository

	// Publishers
	EventPublisher publisher.EventPublisher

	ProofLinks  s3.ProofLinkProvider
	Idempotency *idempotency.Generator
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	clk clock.Clock,
	leaseRepo lease.Repository,
	settingsRepo lease.SettingsRepository,
	chargeRepo charge.Repository,
	invoiceRepo invoice.Repository,
	sequenceRepo invoice.SequenceRepository,
	invoiceRunRepo invoicerun.Repository,
	paymentRepo payment.Repository,
	confirmationRepo paymentconfirmation.Repository,
	creditNoteRepo creditnote.Repository,
	eventPublisher publisher.EventPublisher,
	proofLinks s3.ProofLinkProvider,
) ServiceParams {
	return ServiceParams{
		Logger:           logger,
		Config:           config,
		DB:               db,
		Clock:            clk,
		LeaseRepo:        leaseRepo,
		SettingsRepo:     settingsRepo,
		ChargeRepo:       chargeRepo,
		InvoiceRepo:      invoiceRepo,
		SequenceRepo:     sequenceRepo,
		InvoiceRunRepo:   invoiceRunRepo,
		PaymentRepo:      paymentRepo,
		ConfirmationRepo: confirmationRepo,
		CreditNoteRepo:   creditNoteRepo,
		EventPublisher:   eventPublisher,
		ProofLinks:       proofLinks,
		Idempotency:      idempotency.NewGenerator(),
	}
}

// Module provides the billing services to the fx graph
func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			NewServiceParams,
			NewInvoiceGenerationService,
			NewInvoiceService,
			NewInvoiceRunService,
			NewPaymentService,
			NewPaymentConfirmationService,
			NewCreditNoteService,
			NewLeaseSettingsService,
			NewNotificationService,
		),
	)
}
