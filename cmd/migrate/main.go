package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/flexprice/leasebill/internal/config"
	"github.com/flexprice/leasebill/internal/logger"
	"github.com/flexprice/leasebill/internal/postgres"
	postgresRepo "github.com/flexprice/leasebill/internal/repository/postgres"
)

func main() {
	// Parse command line flags
	dryRun := flag.Bool("dry-run", false, "Print migration SQL without executing it")
	flag.Parse()

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	if *dryRun {
		logger.Info("Dry run mode - printing migration SQL without executing")
		fmt.Fprintln(os.Stdout, postgresRepo.Schema)
		return
	}

	logger.Infow("Connecting to database", "host", cfg.Postgres.Host)
	db, err := postgres.NewDB(cfg, logger)
	if err != nil {
		logger.Fatalw("Failed to connect to postgres", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("Running database migrations...")
	if err := postgresRepo.Migrate(ctx, db); err != nil {
		logger.Fatalw("Failed to create schema resources", "error", err)
	}
	logger.Info("Migration completed successfully")
}
