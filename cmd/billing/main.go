package main

import (
	"context"
	"time"

	"github.com/flexprice/leasebill/internal/cache"
	"github.com/flexprice/leasebill/internal/clock"
	"github.com/flexprice/leasebill/internal/config"
	"github.com/flexprice/leasebill/internal/logger"
	"github.com/flexprice/leasebill/internal/postgres"
	"github.com/flexprice/leasebill/internal/publisher"
	"github.com/flexprice/leasebill/internal/pubsub"
	"github.com/flexprice/leasebill/internal/pubsub/kafka"
	"github.com/flexprice/leasebill/internal/pubsub/memory"
	pubsubRouter "github.com/flexprice/leasebill/internal/pubsub/router"
	"github.com/flexprice/leasebill/internal/repository"
	"github.com/flexprice/leasebill/internal/s3"
	"github.com/flexprice/leasebill/internal/scheduler"
	"github.com/flexprice/leasebill/internal/service"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/flexprice/leasebill/internal/validator"
	"go.uber.org/fx"
)

func init() {
	// Billing dates are calendar dates in UTC
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Clock
			clock.New,

			// Cache
			cache.NewInMemoryCache,

			// Proof files
			s3.NewProofLinkProvider,

			// PubSub
			providePubSub,
			publisher.NewEventPublisher,
			pubsubRouter.NewRouter,

			// Scheduler
			provideScheduler,
		),
		postgres.Module(),
		repository.Module(),
		service.Module(),
		fx.Invoke(start),
	)

	app := fx.New(opts...)
	app.Run()
}

// providePubSub returns one instance for both sides so that in-memory
// events reach the consumers of the same process
func providePubSub(lc fx.Lifecycle, cfg *config.Configuration, log *logger.Logger) (pubsub.PubSub, error) {
	var ps pubsub.PubSub
	switch cfg.Event.PublishDestination {
	case types.PublishToKafka:
		var err error
		ps, err = kafka.NewPubSub(cfg, log)
		if err != nil {
			return nil, err
		}
	default:
		ps = memory.NewPubSub(log)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return ps.Close()
		},
	})
	return ps, nil
}

func provideScheduler(
	cfg *config.Configuration,
	runs service.InvoiceRunService,
	invoices service.InvoiceService,
	params service.ServiceParams,
	log *logger.Logger,
) *scheduler.Scheduler {
	return scheduler.NewScheduler(cfg, runs, invoices, params.LeaseRepo, params.Clock, log)
}

func start(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	sched *scheduler.Scheduler,
	router *pubsubRouter.Router,
	subscriber pubsub.PubSub,
	notifications service.NotificationService,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal:
		startScheduler(lc, cfg, sched, log)
		startMessageRouter(lc, router, subscriber, notifications, log)
	case types.ModeScheduler:
		startScheduler(lc, cfg, sched, log)
	case types.ModeConsumer:
		startMessageRouter(lc, router, subscriber, notifications, log)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startScheduler(lc fx.Lifecycle, cfg *config.Configuration, sched *scheduler.Scheduler, log *logger.Logger) {
	if !cfg.Scheduler.Enabled {
		log.Info("Scheduler disabled, billing runs must be triggered manually")
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting billing scheduler...")
			return sched.Start()
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Stopping billing scheduler...")
			return sched.Stop(ctx)
		},
	})
}

func startMessageRouter(
	lc fx.Lifecycle,
	router *pubsubRouter.Router,
	subscriber pubsub.PubSub,
	notifications service.NotificationService,
	log *logger.Logger,
) {
	notifications.RegisterHandler(router, subscriber)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting message router...")
			go func() {
				if err := router.Run(context.Background()); err != nil {
					log.Errorw("message router stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down message router...")
			return router.Close()
		},
	})
}
