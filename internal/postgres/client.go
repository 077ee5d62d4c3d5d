package postgres

import (
	"context"

	"go.uber.org/fx"
)

// IClient is the transaction boundary services depend on
type IClient interface {
	// WithTx wraps the given function in a transaction
	WithTx(ctx context.Context, fn func(context.Context) error) error
}

var _ IClient = (*DB)(nil)

// Module provides the database handle to the fx graph
func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			NewDB,
			func(db *DB) IClient { return db },
		),
	)
}
