package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/courier/pkg/db"
	"github.com/dmitrymomot/courier/pkg/job"
	"github.com/dmitrymomot/courier/pkg/templatestore"
)

func newMigrateCmd() *cobra.Command {
	var skipRiver bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long: `Applies the template store schema (email_templates, email_partials and
their translations) and the River job tables to DATABASE_URL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			return runMigrate(cmd.Context(), cfg.Courier.Database, !skipRiver, log)
		},
	}
	cmd.Flags().BoolVar(&skipRiver, "skip-river", false, "skip the River job tables")
	return cmd
}

func runMigrate(ctx context.Context, cfg db.Config, river bool, log *slog.Logger) error {
	pool, err := db.Connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Shutdown(pool)(ctx)

	if err := db.Migrate(ctx, pool, templatestore.Migrations(), cfg.MigrationsTable, log); err != nil {
		return err
	}
	if river {
		if err := job.Migrate(ctx, pool, log); err != nil {
			return err
		}
	}
	log.InfoContext(ctx, "migrations applied", slog.Bool("river", river))
	return nil
}
