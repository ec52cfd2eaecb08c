package courier

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/courier/pkg/amqp"
	"github.com/dmitrymomot/courier/pkg/commerce"
	"github.com/dmitrymomot/courier/pkg/notify"
	"github.com/dmitrymomot/courier/pkg/processor"
	"github.com/dmitrymomot/courier/pkg/transport"
)

// Option configures a Courier.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	pool       *pgxpool.Pool
	redis      goredis.UniversalClient
	amqp       *amqp.Client
	registerer prometheus.Registerer
	source     transport.Source
	store      processor.TemplateStore
	queue      Queue
	handlers   []notify.Handler
	commerce   []commerce.Option
	processor  []processor.Option
}

// WithLogger sets the logger shared by every component. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithPool sets the Postgres pool used by the river queue and the postgres
// template source.
func WithPool(pool *pgxpool.Pool) Option {
	return func(o *options) {
		o.pool = pool
	}
}

// WithRedis makes the template cache shared through Redis instead of
// per process memory.
func WithRedis(client goredis.UniversalClient) Option {
	return func(o *options) {
		o.redis = client
	}
}

// WithAMQP sets the broker client used by the amqp queue driver.
func WithAMQP(client *amqp.Client) Option {
	return func(o *options) {
		o.amqp = client
	}
}

// WithMetrics registers dispatch and processor metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithTransportSource replaces the transport built from Config.Transport,
// e.g. with transport.Dynamic for per-tenant settings.
func WithTransportSource(src transport.Source) Option {
	return func(o *options) {
		o.source = src
	}
}

// WithTemplateStore replaces the store selected by Config.Templates.
func WithTemplateStore(store processor.TemplateStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithQueue replaces the driver selected by Config.Queue.
func WithQueue(q Queue) Option {
	return func(o *options) {
		o.queue = q
	}
}

// WithHandlers registers handlers next to the defaults.
func WithHandlers(handlers ...notify.Handler) Option {
	return func(o *options) {
		o.handlers = append(o.handlers, handlers...)
	}
}

// WithCommerceOptions configures the default storefront handlers.
func WithCommerceOptions(opts ...commerce.Option) Option {
	return func(o *options) {
		o.commerce = append(o.commerce, opts...)
	}
}

// WithProcessorOptions passes extra options to the processor, after the ones
// derived from Config.
func WithProcessorOptions(opts ...processor.Option) Option {
	return func(o *options) {
		o.processor = append(o.processor, opts...)
	}
}
