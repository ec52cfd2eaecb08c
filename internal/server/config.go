package server

import "time"

const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20
	defaultShutdownTimeout   = 30 * time.Second
)

// Config holds the ops server settings.
type Config struct {
	Address         string        `env:"OPS_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	HealthTimeout   time.Duration `env:"HEALTH_TIMEOUT" envDefault:"5s"`
}
