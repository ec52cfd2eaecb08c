package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/courier"
	"github.com/dmitrymomot/courier/internal/server"
	"github.com/dmitrymomot/courier/pkg/amqp"
	"github.com/dmitrymomot/courier/pkg/config"
	"github.com/dmitrymomot/courier/pkg/db"
	"github.com/dmitrymomot/courier/pkg/logger"
	"github.com/dmitrymomot/courier/pkg/redis"
)

// appConfig is everything the commands read from the environment.
type appConfig struct {
	Server  server.Config
	Courier courier.Config
}

func newRootCmd() *cobra.Command {
	var envFiles []string

	root := &cobra.Command{
		Use:           "courier",
		Short:         "Event-driven transactional email",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if len(envFiles) == 0 {
				return nil
			}
			return config.LoadEnv(envFiles...)
		},
	}
	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "env files to load, later files win")

	root.AddCommand(
		newWorkerCmd(),
		newPreviewCmd(),
		newHandlersCmd(),
		newMigrateCmd(),
	)
	return root
}

func loadConfig() (appConfig, error) {
	var cfg appConfig
	err := config.Load(&cfg)
	return cfg, err
}

func newLogger(cfg appConfig) (*slog.Logger, error) {
	return logger.New(cfg.Courier.Log, append(logger.DefaultExtractors(), server.RequestIDExtractor())...)
}

// resources holds the connections opened for one command run.
type resources struct {
	pool     *pgxpool.Pool
	redis    goredis.UniversalClient
	amqp     *amqp.Client
	shutdown []server.Hook
}

// connect opens the connections cfg asks for. Postgres is opened when a
// database URL is set or the river queue or postgres templates need it.
func connect(ctx context.Context, cfg courier.Config, log *slog.Logger) (*resources, error) {
	r := &resources{}

	needsDB := cfg.Database.Enabled() || cfg.Queue == courier.QueueRiver || cfg.Templates == courier.TemplatesPostgres
	if needsDB {
		pool, err := db.Connect(ctx, cfg.Database, log)
		if err != nil {
			return nil, err
		}
		r.pool = pool
		r.shutdown = append(r.shutdown, db.Shutdown(pool))
	}

	if cfg.Redis.Enabled() {
		client, err := redis.Open(ctx, cfg.Redis, log)
		if err != nil {
			return nil, errors.Join(err, r.close(ctx))
		}
		r.redis = client
		r.shutdown = append(r.shutdown, redis.Shutdown(client))
	}

	if cfg.Queue == courier.QueueAMQP {
		client, err := amqp.Open(ctx, cfg.AMQP, log)
		if err != nil {
			return nil, errors.Join(err, r.close(ctx))
		}
		r.amqp = client
		r.shutdown = append(r.shutdown, client.Shutdown())
	}
	return r, nil
}

func (r *resources) options() []courier.Option {
	var opts []courier.Option
	if r.pool != nil {
		opts = append(opts, courier.WithPool(r.pool))
	}
	if r.redis != nil {
		opts = append(opts, courier.WithRedis(r.redis))
	}
	if r.amqp != nil {
		opts = append(opts, courier.WithAMQP(r.amqp))
	}
	return opts
}

// close runs the shutdown hooks, most recently opened first.
func (r *resources) close(ctx context.Context) error {
	var errs []error
	for i := len(r.shutdown) - 1; i >= 0; i-- {
		errs = append(errs, r.shutdown[i](ctx))
	}
	r.shutdown = nil
	return errors.Join(errs...)
}
