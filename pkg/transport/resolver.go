package transport

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/courier/pkg/mailer/file"
)

// Source yields the transport configuration for a job.
type Source interface {
	Transport(ctx context.Context) (Config, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (Config, error)

// Transport implements Source.
func (f SourceFunc) Transport(ctx context.Context) (Config, error) {
	return f(ctx)
}

// Static returns a source that always yields cfg.
func Static(cfg Config) Source {
	return SourceFunc(func(context.Context) (Config, error) {
		return cfg, nil
	})
}

// Dynamic returns a source that calls fn for every resolution.
// fn receives the job's context, so it can pick a transport per channel.
func Dynamic(fn func(ctx context.Context) (Config, error)) Source {
	return SourceFunc(fn)
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithDevMode replaces every resolved transport with File writing to outputPath.
func WithDevMode(outputPath string) ResolverOption {
	return func(r *Resolver) {
		r.devMode = true
		r.devOutput = outputPath
	}
}

// WithLogger sets the logger used for dev-mode warnings.
func WithLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// Resolver turns a Source into the transport to use for a job.
type Resolver struct {
	source    Source
	logger    *slog.Logger
	devOutput string
	devMode   bool
}

// NewResolver creates a resolver over source. A nil source is allowed only in dev mode.
func NewResolver(source Source, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		source: source,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DevMode reports whether the resolver overrides transports with File.
func (r *Resolver) DevMode() bool {
	return r.devMode
}

// Resolve returns the transport for ctx.
func (r *Resolver) Resolve(ctx context.Context) (Config, error) {
	var base Config
	if r.source != nil {
		var err error
		if base, err = r.source.Transport(ctx); err != nil {
			return nil, fmt.Errorf("%w: resolve: %w", ErrInvalidConfig, err)
		}
	}

	if r.devMode {
		if base != nil && base.Kind() != KindFile {
			r.logger.WarnContext(ctx, "dev mode enabled, transport replaced by file transport",
				slog.String("transport", string(base.Kind())),
				slog.String("output_path", r.devOutput),
			)
		}
		return File{Config: file.Config{OutputPath: r.devOutput}}, nil
	}

	if base == nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, ErrNoTransport)
	}
	return base, nil
}
