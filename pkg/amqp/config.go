package amqp

import (
	"fmt"
	"time"
)

// RequeuePolicy decides what happens to a message whose processing failed
// with a transient error.
type RequeuePolicy string

const (
	// RequeueOnce puts the message back once; a failed redelivery is dropped
	// or dead-lettered.
	RequeueOnce RequeuePolicy = "once"
	// RequeueAlways puts the message back after every transient failure.
	RequeueAlways RequeuePolicy = "always"
	// RequeueNever drops or dead-letters on the first failure.
	RequeueNever RequeuePolicy = "never"
)

func (p RequeuePolicy) valid() bool {
	switch p {
	case RequeueOnce, RequeueAlways, RequeueNever:
		return true
	}
	return false
}

// Config holds the RabbitMQ connection and queue settings.
// An empty URL means the AMQP queue driver is not configured.
type Config struct {
	URL   string `env:"URL"`
	Queue string `env:"QUEUE" envDefault:"courier.email"`

	// DeadLetterExchange receives rejected messages when set.
	DeadLetterExchange string `env:"DEAD_LETTER_EXCHANGE"`

	Requeue RequeuePolicy `env:"REQUEUE" envDefault:"once"`

	// Prefetch bounds unacknowledged deliveries and the number of messages
	// processed concurrently.
	Prefetch int `env:"PREFETCH" envDefault:"16"`

	RetryAttempts int           `env:"RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"RETRY_INTERVAL" envDefault:"5s"`
}

// Enabled reports whether a broker URL is set.
func (c Config) Enabled() bool {
	return c.URL != ""
}

func (c Config) validate() error {
	if !c.Enabled() {
		return ErrNotConfigured
	}
	if c.Queue == "" {
		return fmt.Errorf("%w: queue name is empty", ErrInvalidConfig)
	}
	if !c.Requeue.valid() {
		return fmt.Errorf("%w: requeue policy %q", ErrInvalidConfig, c.Requeue)
	}
	if c.Prefetch < 1 {
		return fmt.Errorf("%w: prefetch must be positive", ErrInvalidConfig)
	}
	return nil
}
