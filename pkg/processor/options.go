package processor

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/courier/pkg/mailer"
	"github.com/dmitrymomot/courier/pkg/storage"
	"github.com/dmitrymomot/courier/pkg/templatestore"
	"github.com/dmitrymomot/courier/pkg/transport"
)

// TemplateStore loads template bodies. Absence must be reported as
// templatestore.ErrNotFound. When the store also implements
// mailer.PartialLoader, the default generator renders with its partials.
type TemplateStore interface {
	Template(ctx context.Context, ref templatestore.Ref) (string, error)
}

// TransportSender delivers an email over the resolved transport.
// delivery.Sender is the default.
type TransportSender interface {
	Send(ctx context.Context, email *mailer.Email, cfg transport.Config) error
}

// TransportResolver yields the transport for a job. transport.Resolver is the default.
type TransportResolver interface {
	Resolve(ctx context.Context) (transport.Config, error)
}

// AttachmentFetcher loads attachments referenced by path.
type AttachmentFetcher interface {
	Fetch(ctx context.Context, location string) (*storage.File, error)
}

// RenderLogging selects how much rendered content Process logs.
type RenderLogging int

const (
	// RenderLogOff logs nothing about the rendered email.
	RenderLogOff RenderLogging = iota
	// RenderLogSummary logs the subject and body sizes at debug level.
	RenderLogSummary
	// RenderLogFull also logs the HTML and text bodies at debug level.
	RenderLogFull
)

// Option configures a Processor.
type Option func(*Processor)

// WithGenerator sets the generator. Default: mailer.NewTemplateGenerator over
// the store's partials.
func WithGenerator(g mailer.Generator) Option {
	return func(p *Processor) {
		p.generator = g
	}
}

// WithSender sets the transport sender. Default: delivery.New().
func WithSender(s TransportSender) Option {
	return func(p *Processor) {
		p.sender = s
	}
}

// WithResolver sets the transport resolver. Required.
func WithResolver(r TransportResolver) Option {
	return func(p *Processor) {
		p.resolver = r
	}
}

// WithFetcher sets the attachment fetcher. Default: a storage.Fetcher reading
// local files and http(s) URLs.
func WithFetcher(f AttachmentFetcher) Option {
	return func(p *Processor) {
		p.fetcher = f
	}
}

// WithLogger sets the logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(p *Processor) {
		p.metrics = m
	}
}

// WithTimeout bounds every Process call. Zero means no limit besides the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(p *Processor) {
		p.timeout = d
	}
}

// WithRenderLogging sets how much rendered content is logged. Default: RenderLogOff.
func WithRenderLogging(mode RenderLogging) Option {
	return func(p *Processor) {
		p.renderLogging = mode
	}
}
