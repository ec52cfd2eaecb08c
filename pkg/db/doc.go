// Package db opens the PostgreSQL pool used by the template store and the River
// job queue, and applies goose migrations from an fs.FS.
//
// # Configuration
//
//	DATABASE_URL                - PostgreSQL connection URL (empty disables the database)
//	DATABASE_MIGRATIONS_TABLE   - goose table for the template store (default: courier_migrations)
//	DATABASE_MAX_OPEN_CONNS     - Maximum open connections (default: 20)
//	DATABASE_MIN_CONNS          - Minimum idle connections (default: 2)
//	DATABASE_HEALTHCHECK_PERIOD - Pool health check interval (default: 1m)
//	DATABASE_MAX_CONN_IDLE_TIME - Maximum connection idle time (default: 10m)
//	DATABASE_MAX_CONN_LIFETIME  - Maximum connection lifetime (default: 30m)
//	DATABASE_RETRY_ATTEMPTS     - Connection attempts at startup (default: 3)
//	DATABASE_RETRY_INTERVAL     - Base retry interval (default: 5s)
//
// # Usage
//
//	pool, err := db.Connect(ctx, cfg.Database, log)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := db.Migrate(ctx, pool, templatestore.Migrations(), cfg.Database.MigrationsTable, log); err != nil {
//		return err
//	}
//
// Healthcheck returns a probe for the ops server's /readyz endpoint. WithTx runs
// a function in a transaction with rollback on error or panic.
//
// # Errors
//
//   - ErrNotConfigured: Connect called without a connection string
//   - ErrFailedToParseDBConfig: invalid connection string
//   - ErrFailedToOpenDBConnection: connection failed after all retries
//   - ErrHealthcheckFailed: ping failed
//   - ErrSetDialect, ErrApplyMigrations, ErrMigrationStatus: goose failures
package db
