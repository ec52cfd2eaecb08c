package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

var (
	// ErrSetDialect is returned when goose rejects the postgres dialect.
	ErrSetDialect = errors.New("db migrator: failed to set dialect")
	// ErrApplyMigrations wraps a failed goose up.
	ErrApplyMigrations = errors.New("db migrator: failed to apply migrations")
	// ErrMigrationStatus wraps a failed version lookup.
	ErrMigrationStatus = errors.New("db migrator: failed to read migration status")
)

// goose keeps its base FS, logger and table name in package globals.
var gooseMu sync.Mutex

// Migrate applies every pending migration found at the root of migrations.
// Each schema owner passes its own table, so independent migration sets
// (template store, application tables) do not collide.
func Migrate(ctx context.Context, pool *pgxpool.Pool, migrations fs.FS, table string, log *slog.Logger) error {
	return withGoose(migrations, table, log, func() error {
		// Shares the pool's connections; closing it would close the pool.
		sqlDB := stdlib.OpenDBFromPool(pool)
		if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
			return errors.Join(ErrApplyMigrations, err)
		}
		return nil
	})
}

// MigrationVersion returns the latest applied version in table, 0 when none.
func MigrationVersion(ctx context.Context, pool *pgxpool.Pool, migrations fs.FS, table string) (int64, error) {
	var version int64
	err := withGoose(migrations, table, nil, func() error {
		v, err := goose.GetDBVersionContext(ctx, stdlib.OpenDBFromPool(pool))
		if err != nil {
			return errors.Join(ErrMigrationStatus, err)
		}
		version = v
		return nil
	})
	return version, err
}

func withGoose(migrations fs.FS, table string, log *slog.Logger, fn func() error) error {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(&gooseLoggerAdapter{log: log.With(slog.String("migrations_table", table))})
	goose.SetTableName(table)

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrSetDialect, err)
	}
	return fn()
}

type gooseLoggerAdapter struct {
	log *slog.Logger
}

func (g *gooseLoggerAdapter) Printf(format string, args ...any) {
	g.log.Info(fmt.Sprintf(format, args...))
}

// Fatalf logs only. goose returns the error to the caller afterwards.
func (g *gooseLoggerAdapter) Fatalf(format string, args ...any) {
	g.log.Error(fmt.Sprintf(format, args...))
}
