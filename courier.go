package courier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"sync"

	"github.com/dmitrymomot/courier/pkg/amqp"
	"github.com/dmitrymomot/courier/pkg/commerce"
	"github.com/dmitrymomot/courier/pkg/db"
	"github.com/dmitrymomot/courier/pkg/devmailbox"
	"github.com/dmitrymomot/courier/pkg/health"
	"github.com/dmitrymomot/courier/pkg/job"
	"github.com/dmitrymomot/courier/pkg/logger"
	"github.com/dmitrymomot/courier/pkg/mailer"
	"github.com/dmitrymomot/courier/pkg/mailer/file"
	"github.com/dmitrymomot/courier/pkg/notify"
	"github.com/dmitrymomot/courier/pkg/processor"
	"github.com/dmitrymomot/courier/pkg/redis"
	"github.com/dmitrymomot/courier/pkg/templatestore"
	"github.com/dmitrymomot/courier/pkg/transport"
)

// Courier wires the registry, processor and queue of one process.
type Courier struct {
	logger    *slog.Logger
	registry  *notify.Registry
	processor *processor.Processor
	store     processor.TemplateStore
	queue     Queue
	outbox    *file.Outbox
	scheduler *job.Scheduler
	metrics   *metrics
	checks    health.Checks
	cfg       Config
	mu        sync.Mutex
	started   bool
}

// Rendered is the result of Preview.
type Rendered struct {
	Email *mailer.Generated
	Job   notify.Job
}

// New assembles a Courier from cfg. Connections (Postgres, Redis, RabbitMQ)
// are opened by the caller and passed as options.
//
// Example:
//
//	c, err := courier.New(cfg,
//		courier.WithLogger(log),
//		courier.WithPool(pool),
//		courier.WithHandlers(myHandlers...),
//	)
//	if err != nil {
//		return err
//	}
//	err = c.Publish(ctx, commerce.OrderStateTransition{...})
func New(cfg Config, opts ...Option) (*Courier, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	o := options{logger: logger.NewNope()}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Courier{
		cfg:     cfg,
		logger:  o.logger,
		metrics: newMetrics(o.registerer),
		checks:  health.Checks{},
	}

	registry, err := newRegistry(cfg, o)
	if err != nil {
		return nil, err
	}
	c.registry = registry

	store := o.store
	if store == nil {
		if store, err = newTemplateStore(cfg, o); err != nil {
			return nil, err
		}
	}

	source := o.source
	if source == nil {
		built, err := cfg.Transport.Build()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		source = transport.Static(built)
	}
	resolverOpts := []transport.ResolverOption{transport.WithLogger(o.logger)}
	if cfg.DevMode {
		resolverOpts = append(resolverOpts, transport.WithDevMode(cfg.OutputPath))
		c.outbox = file.NewOutbox(cfg.OutputPath)
	}

	renderLogging, _ := cfg.renderLogging()
	procOpts := []processor.Option{
		processor.WithResolver(transport.NewResolver(source, resolverOpts...)),
		processor.WithLogger(o.logger),
		processor.WithTimeout(cfg.ProcessTimeout),
		processor.WithRenderLogging(renderLogging),
	}
	if o.registerer != nil {
		procOpts = append(procOpts, processor.WithMetrics(processor.NewMetrics(o.registerer)))
	}
	c.store = store
	c.processor = processor.New(store, append(procOpts, o.processor...)...)

	if c.queue, err = c.newQueue(o); err != nil {
		return nil, err
	}

	if o.pool != nil {
		c.checks["postgres"] = db.Healthcheck(o.pool)
	}
	if o.redis != nil {
		c.checks["redis"] = redis.Healthcheck(o.redis)
	}
	if o.amqp != nil {
		c.checks["amqp"] = amqp.Healthcheck(o.amqp)
	}
	return c, nil
}

func newRegistry(cfg Config, o options) (*notify.Registry, error) {
	global, custom, err := cfg.templateVars()
	if err != nil {
		return nil, err
	}
	r := notify.NewRegistry(
		notify.WithGlobalTemplateVars(global),
		notify.WithCustomTemplateVars(custom),
		notify.WithConcurrency(cfg.Concurrency),
		notify.WithLogger(o.logger),
	)

	var handlers []notify.Handler
	if cfg.DefaultHandlers {
		handlers = append(handlers, commerce.Handlers(o.commerce...)...)
	}
	if err := r.Register(append(handlers, o.handlers...)...); err != nil {
		return nil, err
	}
	return r, nil
}

func newTemplateStore(cfg Config, o options) (processor.TemplateStore, error) {
	switch cfg.Templates {
	case TemplatesDir:
		store, err := templatestore.LoadFS(os.DirFS(cfg.TemplatesDir))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		return store, nil
	case TemplatesPostgres:
		if o.pool == nil {
			return nil, fmt.Errorf("%w: postgres templates", ErrPoolRequired)
		}
		var cache templatestore.Cache = templatestore.NewMemoryCache(cfg.CacheSize)
		if o.redis != nil {
			cache = templatestore.NewRedisCache(o.redis, "courier:templates")
		}
		return templatestore.NewCached(templatestore.NewPostgres(o.pool), cache, cfg.CacheTTL), nil
	default:
		store, err := commerce.Templates()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		return store, nil
	}
}

// newQueue builds the configured driver. In dev mode the outbox is pruned by
// River's periodic jobs when River runs, and by an in-process scheduler otherwise.
func (c *Courier) newQueue(o options) (Queue, error) {
	var prune *job.PruneOutbox
	if c.outbox != nil {
		prune = job.NewPruneOutbox(c.outbox, c.cfg.OutboxMaxAge, c.cfg.OutboxPruneSchedule, o.logger)
	}
	schedule := func() error {
		if prune == nil {
			return nil
		}
		c.scheduler = job.NewScheduler(o.logger)
		return c.scheduler.Add(prune)
	}

	if o.queue != nil {
		return o.queue, schedule()
	}

	switch c.cfg.Queue {
	case QueueRiver:
		if o.pool == nil {
			return nil, fmt.Errorf("%w: river queue", ErrPoolRequired)
		}
		jobOpts := []job.Option{
			job.WithTask[notify.Job](processor.NewTask(c.processor)),
			job.WithLogger(o.logger),
			job.WithMaxWorkers(c.cfg.QueueWorkers),
			job.WithMaxAttempts(c.cfg.QueueMaxAttempts),
			job.WithPermanentErrors(processor.IsPermanent),
		}
		if prune != nil {
			jobOpts = append(jobOpts, job.WithScheduledTask(prune))
		}
		m, err := job.NewManager(o.pool, jobOpts...)
		if err != nil {
			return nil, err
		}
		c.checks["queue"] = job.Healthcheck(m)
		return NewRiverQueue(m), nil
	case QueueAMQP:
		if o.amqp == nil {
			return nil, ErrAMQPRequired
		}
		return NewAMQPQueue(o.amqp, c.processor.Process, o.logger), schedule()
	default:
		return NewInlineQueue(c.processor.Process), schedule()
	}
}

// Publish dispatches event to every matching handler and enqueues the jobs.
// Handlers and jobs fail independently: the jobs that were built are enqueued
// even when other handlers failed, and all errors are joined.
func (c *Courier) Publish(ctx context.Context, event any) error {
	c.metrics.event(eventName(event))

	jobs, err := c.registry.Dispatch(ctx, event)
	errs := []error{err}
	if err != nil {
		c.metrics.failed("dispatch")
	}

	for _, j := range jobs {
		if err := c.queue.Enqueue(ctx, j); err != nil {
			c.metrics.failed("enqueue")
			errs = append(errs, fmt.Errorf("courier: %s: %w", j.Type, err))
			continue
		}
		c.metrics.enqueued(j.Type, c.queue.Name())
	}
	return errors.Join(errs...)
}

// Preview renders the mock event of the handler registered under code.
// Nothing is sent.
func (c *Courier) Preview(ctx context.Context, code string) (*Rendered, error) {
	j, err := c.registry.Preview(ctx, code)
	if err != nil {
		return nil, err
	}
	out, err := c.processor.Render(ctx, j)
	if err != nil {
		return nil, err
	}
	return &Rendered{Job: j, Email: out}, nil
}

// Start initializes the processor and starts consuming the queue.
func (c *Courier) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return ErrAlreadyStarted
	}

	if err := c.processor.Initialize(ctx); err != nil {
		return err
	}
	if err := c.queue.Start(ctx); err != nil {
		return err
	}
	if c.scheduler != nil {
		if err := c.scheduler.Start(ctx); err != nil {
			return errors.Join(err, c.queue.Stop(ctx))
		}
	}
	c.started = true

	c.logger.InfoContext(ctx, "courier started",
		slog.String("queue", c.queue.Name()),
		slog.Int("handlers", len(c.registry.Handlers())),
		slog.Bool("dev_mode", c.cfg.DevMode),
	)
	return nil
}

// Stop stops consuming and waits for in-flight jobs until ctx ends.
func (c *Courier) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return nil
	}
	c.started = false

	var errs []error
	if c.scheduler != nil {
		errs = append(errs, c.scheduler.Stop(ctx))
	}
	errs = append(errs, c.queue.Stop(ctx))
	c.logger.InfoContext(ctx, "courier stopped")
	return errors.Join(errs...)
}

// Registry returns the handler registry.
func (c *Courier) Registry() *notify.Registry { return c.registry }

// Processor returns the processor, for consumers outside the configured queue.
func (c *Courier) Processor() *processor.Processor { return c.processor }

// Queue returns the active queue driver.
func (c *Courier) Queue() Queue { return c.queue }

// InvalidateTemplates drops cached template bodies so the next render reads
// the store again. Stores without a cache ignore it.
func (c *Courier) InvalidateTemplates(ctx context.Context) error {
	if inv, ok := c.store.(interface{ Invalidate(context.Context) error }); ok {
		return inv.Invalidate(ctx)
	}
	return nil
}

// Checks returns readiness checks for the connections the Courier uses.
func (c *Courier) Checks() health.Checks { return c.checks }

// Mailbox returns the dev mailbox over the file transport outbox.
func (c *Courier) Mailbox(opts ...devmailbox.Option) (*devmailbox.Mailbox, error) {
	if c.outbox == nil {
		return nil, ErrMailboxDisabled
	}
	return devmailbox.New(c.outbox, c.cfg.MailboxRoute, append([]devmailbox.Option{devmailbox.WithLogger(c.logger)}, opts...)...), nil
}

func eventName(event any) string {
	t := reflect.TypeOf(event)
	if t == nil {
		return "nil"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.String()
}
