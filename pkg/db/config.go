package db

import "time"

// Config holds the PostgreSQL pool settings shared by the template store and the
// River queue. An empty ConnectionString means no database is configured.
type Config struct {
	ConnectionString string `env:"DATABASE_URL"`

	// MigrationsTable is the goose version table for the template store schema.
	MigrationsTable string `env:"DATABASE_MIGRATIONS_TABLE" envDefault:"courier_migrations"`

	HealthCheckPeriod time.Duration `env:"DATABASE_HEALTHCHECK_PERIOD" envDefault:"1m"`
	MaxConnIdleTime   time.Duration `env:"DATABASE_MAX_CONN_IDLE_TIME" envDefault:"10m"`
	MaxConnLifetime   time.Duration `env:"DATABASE_MAX_CONN_LIFETIME" envDefault:"30m"`

	// Startup retries back off linearly: attempt n waits n*RetryInterval.
	RetryAttempts int           `env:"DATABASE_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"DATABASE_RETRY_INTERVAL" envDefault:"5s"`

	// Workers hold a connection per running job; size MaxOpenConns above the
	// queue concurrency.
	MaxOpenConns int32 `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"20"`
	MinConns     int32 `env:"DATABASE_MIN_CONNS" envDefault:"2"`
}

// Enabled reports whether a connection string is set.
func (c Config) Enabled() bool {
	return c.ConnectionString != ""
}
