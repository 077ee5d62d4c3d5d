package postgres

import (
	"context"
	_ "embed"

	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/postgres"
)

//go:embed schema.sql
var Schema string

// Migrate applies the idempotent schema. Used by local deployments and tests
// against a real database.
func Migrate(ctx context.Context, db *postgres.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to apply database schema").
			Mark(ierr.ErrDatabase)
	}
	return nil
}
