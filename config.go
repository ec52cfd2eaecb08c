package courier

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrymomot/courier/pkg/amqp"
	"github.com/dmitrymomot/courier/pkg/db"
	"github.com/dmitrymomot/courier/pkg/logger"
	"github.com/dmitrymomot/courier/pkg/processor"
	"github.com/dmitrymomot/courier/pkg/redis"
	"github.com/dmitrymomot/courier/pkg/transport"
)

// QueueDriver selects where jobs go between Publish and the processor.
type QueueDriver string

const (
	// QueueInline processes jobs inside Publish.
	QueueInline QueueDriver = "inline"
	// QueueRiver stores jobs in Postgres through River.
	QueueRiver QueueDriver = "river"
	// QueueAMQP publishes jobs to a RabbitMQ queue.
	QueueAMQP QueueDriver = "amqp"
)

// TemplateSource selects where template bodies and partials are read from.
type TemplateSource string

const (
	// TemplatesEmbedded serves the default storefront templates.
	TemplatesEmbedded TemplateSource = "embedded"
	// TemplatesDir loads templates from Config.TemplatesDir.
	TemplatesDir TemplateSource = "dir"
	// TemplatesPostgres reads the email_templates tables.
	TemplatesPostgres TemplateSource = "postgres"
)

// Config is the process configuration. Load it with config.Load.
//
//	var cfg courier.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
type Config struct {
	// GlobalTemplateVars is a JSON object merged under every job's vars.
	GlobalTemplateVars string `env:"COURIER_GLOBAL_TEMPLATE_VARS"`
	// CustomTemplateVars is a JSON object layered over the global vars.
	CustomTemplateVars string `env:"COURIER_CUSTOM_TEMPLATE_VARS"`

	Queue         QueueDriver    `env:"COURIER_QUEUE" envDefault:"inline"`
	Templates     TemplateSource `env:"COURIER_TEMPLATES" envDefault:"embedded"`
	TemplatesDir  string         `env:"COURIER_TEMPLATES_DIR"`
	RenderLogging string         `env:"COURIER_RENDER_LOGGING" envDefault:"off"`

	// OutputPath is the file transport directory used in dev mode.
	OutputPath string `env:"COURIER_OUTPUT_PATH" envDefault:"./var/mail"`
	// MailboxRoute is where the dev mailbox is mounted on the ops server.
	MailboxRoute string `env:"COURIER_MAILBOX_ROUTE" envDefault:"/mailbox"`
	// OutboxPruneSchedule and OutboxMaxAge control dev outbox cleanup.
	OutboxPruneSchedule string `env:"COURIER_OUTBOX_PRUNE_SCHEDULE" envDefault:"@hourly"`

	Log       logger.Config
	AMQP      amqp.Config `envPrefix:"AMQP_"`
	Database  db.Config
	Redis     redis.Config
	Transport transport.EnvConfig

	OutboxMaxAge   time.Duration `env:"COURIER_OUTBOX_MAX_AGE" envDefault:"168h"`
	ProcessTimeout time.Duration `env:"COURIER_PROCESS_TIMEOUT" envDefault:"30s"`
	CacheTTL       time.Duration `env:"COURIER_TEMPLATE_CACHE_TTL" envDefault:"5m"`

	CacheSize        int  `env:"COURIER_TEMPLATE_CACHE_SIZE" envDefault:"512"`
	Concurrency      int  `env:"COURIER_DISPATCH_CONCURRENCY" envDefault:"8"`
	QueueWorkers     int  `env:"COURIER_QUEUE_WORKERS" envDefault:"10"`
	QueueMaxAttempts int  `env:"COURIER_QUEUE_MAX_ATTEMPTS" envDefault:"5"`
	DefaultHandlers  bool `env:"COURIER_DEFAULT_HANDLERS" envDefault:"true"`
	DevMode          bool `env:"COURIER_DEV_MODE"`
}

func (c Config) validate() error {
	switch c.Queue {
	case QueueInline, QueueRiver, QueueAMQP:
	default:
		return fmt.Errorf("%w: queue driver %q", ErrInvalidConfig, c.Queue)
	}
	switch c.Templates {
	case TemplatesEmbedded, TemplatesPostgres:
	case TemplatesDir:
		if c.TemplatesDir == "" {
			return fmt.Errorf("%w: templates dir is empty", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: template source %q", ErrInvalidConfig, c.Templates)
	}
	if _, err := c.renderLogging(); err != nil {
		return err
	}
	if c.DevMode && c.OutputPath == "" {
		return fmt.Errorf("%w: dev mode needs an output path", ErrInvalidConfig)
	}
	return nil
}

func (c Config) renderLogging() (processor.RenderLogging, error) {
	switch strings.ToLower(c.RenderLogging) {
	case "", "off":
		return processor.RenderLogOff, nil
	case "summary":
		return processor.RenderLogSummary, nil
	case "full":
		return processor.RenderLogFull, nil
	default:
		return processor.RenderLogOff, fmt.Errorf("%w: render logging %q", ErrInvalidConfig, c.RenderLogging)
	}
}

// templateVars decodes the global and custom var objects.
func (c Config) templateVars() (global, custom map[string]any, err error) {
	if global, err = decodeVars("global", c.GlobalTemplateVars); err != nil {
		return nil, nil, err
	}
	if custom, err = decodeVars("custom", c.CustomTemplateVars); err != nil {
		return nil, nil, err
	}
	return global, custom, nil
}

func decodeVars(name, raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var vars map[string]any
	if err := json.Unmarshal([]byte(raw), &vars); err != nil {
		return nil, fmt.Errorf("%w: %s template vars: %v", ErrInvalidConfig, name, err)
	}
	return vars, nil
}
