package job

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"

	"github.com/dmitrymomot/courier/pkg/logger"
)

// Migrate brings the River schema up to date. A nil log discards output.
func Migrate(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	if pool == nil {
		return ErrPoolRequired
	}
	if log == nil {
		log = logger.NewNope()
	}

	migrator, err := rivermigrate.New[pgx.Tx](riverpgxv5.New(pool), &rivermigrate.Config{Logger: log})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMigrationFailed, err)
	}

	res, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMigrationFailed, err)
	}

	for _, v := range res.Versions {
		log.InfoContext(ctx, "river migration applied",
			slog.Int("version", v.Version),
			slog.Duration("duration", v.Duration),
		)
	}
	return nil
}
