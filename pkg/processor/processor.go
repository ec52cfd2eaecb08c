package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dmitrymomot/courier/pkg/delivery"
	"github.com/dmitrymomot/courier/pkg/logger"
	"github.com/dmitrymomot/courier/pkg/mailer"
	"github.com/dmitrymomot/courier/pkg/notify"
	"github.com/dmitrymomot/courier/pkg/storage"
	"github.com/dmitrymomot/courier/pkg/templatestore"
	"github.com/dmitrymomot/courier/pkg/transport"
)

// Processor turns a notify.Job into a delivered email: it loads the template,
// renders it, resolves the transport and sends.
//
// A Processor keeps no state between jobs; Process is safe for concurrent use.
type Processor struct {
	store     TemplateStore
	generator mailer.Generator
	sender    TransportSender
	resolver  TransportResolver
	fetcher   AttachmentFetcher
	logger    *slog.Logger
	metrics   *Metrics
	now       func() time.Time

	initErr       error
	timeout       time.Duration
	renderLogging RenderLogging
	initOnce      sync.Once
}

// New creates a processor reading templates from store.
// Call Initialize before the first Process; Process initializes lazily otherwise.
func New(store TemplateStore, opts ...Option) *Processor {
	p := &Processor{
		store:  store,
		logger: logger.NewNope(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Initialize picks the defaults for components not set through options, runs
// the generator's OnInit, then resolves and validates the transport once.
// For the file transport the output directory is created.
//
// Initialize runs once; later calls return the first result.
func (p *Processor) Initialize(ctx context.Context) error {
	p.initOnce.Do(func() {
		p.initErr = p.initialize(ctx)
	})
	return p.initErr
}

func (p *Processor) initialize(ctx context.Context) error {
	if p.store == nil {
		return fmt.Errorf("%w: no template store", ErrConfiguration)
	}
	if p.resolver == nil {
		return fmt.Errorf("%w: no transport resolver", ErrConfiguration)
	}

	if p.generator == nil {
		var opts []mailer.GeneratorOption
		if loader, ok := p.store.(mailer.PartialLoader); ok {
			opts = append(opts, mailer.WithPartials(loader))
		}
		p.generator = mailer.NewTemplateGenerator(opts...)
	}
	if p.sender == nil {
		p.sender = delivery.New()
	}
	if p.fetcher == nil {
		fetcher, err := storage.New(storage.Config{}, storage.WithRules(storage.NotEmpty()))
		if err != nil {
			return fmt.Errorf("%w: attachment fetcher: %w", ErrConfiguration, err)
		}
		p.fetcher = fetcher
	}

	if initializer, ok := p.generator.(mailer.Initializer); ok {
		if err := initializer.OnInit(ctx); err != nil {
			return fmt.Errorf("%w: generator: %w", ErrConfiguration, err)
		}
	}

	cfg, err := p.resolver.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	if err := transport.Validate(cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	if f, ok := cfg.(transport.File); ok {
		if err := os.MkdirAll(f.OutputPath, 0o755); err != nil {
			return fmt.Errorf("%w: create output directory: %w", ErrConfiguration, err)
		}
	}

	p.logger.InfoContext(ctx, "email processor initialized",
		slog.String("transport", string(transport.KindOf(cfg))),
	)
	return nil
}

// Process renders and sends the email described by job.
//
// Nothing is retried and nothing is sent unless every stage before sending
// succeeds. A failure is logged once and returned as *Error.
func (p *Processor) Process(ctx context.Context, job notify.Job) error {
	start := p.now()

	var kind transport.Kind
	err := p.Initialize(ctx)
	if err != nil {
		err = &Error{Err: err, Stage: StageInit}
	} else {
		if p.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, p.timeout)
			defer cancel()
		}
		kind, err = p.process(ctx, job)
	}
	if err != nil {
		var perr *Error
		if !errors.As(err, &perr) {
			perr = &Error{Err: err, Stage: StageSend}
		}
		perr.JobType = job.Type
		perr.Recipient = job.Recipient

		permanent := IsPermanent(perr)
		p.metrics.observeFailed(job.Type, perr.Stage, permanent, p.now().Sub(start))
		p.logger.ErrorContext(ctx, "email not sent",
			slog.String("stage", string(perr.Stage)),
			slog.String("job_type", job.Type),
			slog.String("recipient", job.Recipient),
			slog.String("transport", string(kind)),
			slog.Bool("permanent", permanent),
			slog.String("error", perr.Err.Error()),
		)
		return perr
	}

	elapsed := p.now().Sub(start)
	p.metrics.observeSent(job.Type, string(kind), elapsed)
	p.logger.InfoContext(ctx, "email sent",
		slog.String("job_type", job.Type),
		slog.String("recipient", job.Recipient),
		slog.String("transport", string(kind)),
		slog.Duration("duration", elapsed),
	)
	return nil
}

// Render runs the decode, template and generate stages of Process and returns
// the rendered email without resolving a transport or sending anything.
func (p *Processor) Render(ctx context.Context, job notify.Job) (*mailer.Generated, error) {
	if err := p.Initialize(ctx); err != nil {
		return nil, err
	}
	_, out, err := p.render(ctx, job)
	if err != nil {
		var perr *Error
		if errors.As(err, &perr) {
			perr.JobType = job.Type
			perr.Recipient = job.Recipient
		}
		return nil, err
	}
	return out, nil
}

// render returns ctx scoped to the job's request context and the generated email.
func (p *Processor) render(ctx context.Context, job notify.Job) (context.Context, *mailer.Generated, error) {
	rc, err := job.RequestContext()
	if err != nil {
		return ctx, nil, stageError(StageDecode, ErrDecode, err)
	}
	if len(mailer.SplitAddresses(job.Recipient)) == 0 {
		return ctx, nil, stageError(StageDecode, ErrDecode, notify.ErrNoRecipient)
	}
	ctx = notify.WithRequestContext(ctx, rc)

	name := job.TemplateName()
	body, err := p.store.Template(ctx, templatestore.RefFor(ctx, name))
	switch {
	case errors.Is(err, templatestore.ErrNotFound):
		return ctx, nil, stageError(StageTemplate, ErrTemplateNotFound, err)
	case err != nil:
		return ctx, nil, stageError(StageTemplate, ErrTemplateLoad, err)
	case body == "":
		return ctx, nil, stageError(StageTemplate, ErrTemplateNotFound, fmt.Errorf("%w: %s: empty body", templatestore.ErrNotFound, name))
	}

	out, err := p.generator.Generate(ctx, job.From, job.Subject, body, job.TemplateVars)
	if err != nil {
		return ctx, nil, stageError(StageGenerate, ErrGeneration, err)
	}
	p.logRendered(ctx, job, out)
	return ctx, out, nil
}

func (p *Processor) process(ctx context.Context, job notify.Job) (transport.Kind, error) {
	ctx, out, err := p.render(ctx, job)
	if err != nil {
		return "", err
	}

	cfg, err := p.resolver.Resolve(ctx)
	if err == nil {
		err = transport.Validate(cfg)
	}
	if err != nil {
		return "", stageError(StageTransport, ErrTransport, err)
	}
	kind := transport.KindOf(cfg)

	attachments, err := p.attachments(ctx, job.Attachments)
	if err != nil {
		return kind, stageError(StageAttachments, ErrAttachment, err)
	}

	email := &mailer.Email{
		From:        out.From,
		To:          mailer.SplitAddresses(job.Recipient),
		CC:          mailer.SplitAddresses(job.CC),
		BCC:         mailer.SplitAddresses(job.BCC),
		ReplyTo:     job.ReplyTo,
		Subject:     out.Subject,
		HTML:        out.HTML,
		Text:        out.Text,
		Attachments: attachments,
		Tags:        mailer.SimpleTags(job.Type),
	}
	if err := p.sender.Send(ctx, email, cfg); err != nil {
		return kind, stageError(StageSend, ErrTransport, err)
	}
	return kind, nil
}

func (p *Processor) attachments(ctx context.Context, serialized []notify.SerializedAttachment) ([]mailer.Attachment, error) {
	if len(serialized) == 0 {
		return nil, nil
	}

	out := make([]mailer.Attachment, 0, len(serialized))
	for _, a := range serialized {
		att := mailer.Attachment{
			Filename:    a.Filename,
			ContentType: a.ContentType,
			ContentID:   a.ContentID,
		}

		if a.IsInline() {
			data, err := a.DecodeContent()
			if err != nil {
				return nil, err
			}
			att.Content = data
		} else {
			file, err := p.fetcher.Fetch(ctx, a.Path)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", a.Filename, err)
			}
			att.Content = file.Data
			if att.ContentType == "" {
				att.ContentType = file.ContentType
			}
		}
		out = append(out, att)
	}
	return out, nil
}

func (p *Processor) logRendered(ctx context.Context, job notify.Job, out *mailer.Generated) {
	if p.renderLogging == RenderLogOff {
		return
	}
	attrs := []any{
		slog.String("job_type", job.Type),
		slog.String("subject", out.Subject),
		slog.Int("html_bytes", len(out.HTML)),
		slog.Int("text_bytes", len(out.Text)),
	}
	if p.renderLogging == RenderLogFull {
		attrs = append(attrs, slog.String("html", out.HTML), slog.String("text", out.Text))
	}
	p.logger.DebugContext(ctx, "email rendered", attrs...)
}

func stageError(stage Stage, sentinel, cause error) *Error {
	return &Error{Stage: stage, Err: fmt.Errorf("%w: %w", sentinel, cause)}
}
