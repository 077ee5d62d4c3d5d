package testutil

import (
	"context"
	"time"

	"github.com/flexprice/leasebill/internal/cache"
	"github.com/flexprice/leasebill/internal/clock"
	"github.com/flexprice/leasebill/internal/config"
	"github.com/flexprice/leasebill/internal/domain/charge"
	"github.com/flexprice/leasebill/internal/domain/creditnote"
	"github.com/flexprice/leasebill/internal/domain/invoice"
	"github.com/flexprice/leasebill/internal/domain/invoicerun"
	"github.com/flexprice/leasebill/internal/domain/lease"
	"github.com/flexprice/leasebill/internal/domain/payment"
	"github.com/flexprice/leasebill/internal/domain/paymentconfirmation"
	"github.com/flexprice/leasebill/internal/logger"
	"github.com/flexprice/leasebill/internal/postgres"
	"github.com/flexprice/leasebill/internal/s3"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/flexprice/leasebill/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	LeaseRepo        lease.Repository
	SettingsRepo     lease.SettingsRepository
	ChargeRepo       charge.Repository
	InvoiceRepo      invoice.Repository
	SequenceRepo     invoice.SequenceRepository
	InvoiceRunRepo   invoicerun.Repository
	PaymentRepo      payment.Repository
	ConfirmationRepo paymentconfirmation.Repository
	CreditNoteRepo   creditnote.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx        context.Context
	stores     Stores
	publisher  *InMemoryEventPublisher
	db         postgres.IClient
	logger     *logger.Logger
	config     *config.Configuration
	clock      *clock.Mock
	cache      cache.Cache
	proofLinks s3.ProofLinkProvider
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelInfo
	cfg.Billing.RetryInitialInterval = time.Millisecond
	cfg.Billing.RetryMaxInterval = 5 * time.Millisecond

	var err error
	s.config = cfg
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.clock = clock.NewMock(s.T())
	s.setupStores()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		LeaseRepo:        NewInMemoryLeaseStore(),
		SettingsRepo:     NewInMemorySettingsStore(),
		ChargeRepo:       NewInMemoryChargeStore(),
		InvoiceRepo:      NewInMemoryInvoiceStore(),
		SequenceRepo:     NewInMemorySequenceStore(),
		InvoiceRunRepo:   NewInMemoryInvoiceRunStore(),
		PaymentRepo:      NewInMemoryPaymentStore(),
		ConfirmationRepo: NewInMemoryConfirmationStore(),
		CreditNoteRepo:   NewInMemoryCreditNoteStore(),
	}

	s.db = NewMockPostgresClient(s.logger)
	s.publisher = NewInMemoryEventPublisher()
	s.cache = cache.NewInMemoryCache(s.config)
	s.proofLinks = s3.NewStaticProofLinkProvider("https://files.test")
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.LeaseRepo.(*InMemoryLeaseStore).Clear()
	s.stores.SettingsRepo.(*InMemorySettingsStore).Clear()
	s.stores.ChargeRepo.(*InMemoryChargeStore).Clear()
	s.stores.InvoiceRepo.(*InMemoryInvoiceStore).Clear()
	s.stores.SequenceRepo.(*InMemorySequenceStore).Clear()
	s.stores.InvoiceRunRepo.(*InMemoryInvoiceRunStore).Clear()
	s.stores.PaymentRepo.(*InMemoryPaymentStore).Clear()
	s.stores.ConfirmationRepo.(*InMemoryConfirmationStore).Clear()
	s.stores.CreditNoteRepo.(*InMemoryCreditNoteStore).Clear()
	s.publisher.Clear()
	s.cache.Flush(context.Background())
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetPublisher returns the recording event publisher
func (s *BaseServiceTestSuite) GetPublisher() *InMemoryEventPublisher {
	return s.publisher
}

// GetDB returns the test database client
func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetClock returns the settable test clock
func (s *BaseServiceTestSuite) GetClock() *clock.Mock {
	return s.clock
}

func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

func (s *BaseServiceTestSuite) GetProofLinks() s3.ProofLinkProvider {
	return s.proofLinks
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.clock.UtcNow()
}

// GetUUID returns a new UUID string
func (s *BaseServiceTestSuite) GetUUID() string {
	return types.GenerateUUID()
}
