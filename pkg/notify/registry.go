package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Registry holds the definitions of a process and turns events into jobs.
// It is safe for concurrent use; definitions are read-only once registered.
type Registry struct {
	logger   *slog.Logger
	byCode   map[string]Handler
	byType   map[reflect.Type][]Handler
	globals  map[string]any
	custom   map[string]any
	handlers []Handler
	limit    int
	mu       sync.RWMutex
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithGlobalTemplateVars sets the vars every job starts from.
func WithGlobalTemplateVars(vars map[string]any) RegistryOption {
	return func(r *Registry) {
		r.globals = maps.Clone(vars)
	}
}

// WithCustomTemplateVars sets vars layered over the global vars.
// Handler vars override both.
func WithCustomTemplateVars(vars map[string]any) RegistryOption {
	return func(r *Registry) {
		r.custom = maps.Clone(vars)
	}
}

// WithConcurrency bounds how many definitions are evaluated at once for one event.
// Zero or negative means unbounded.
func WithConcurrency(n int) RegistryOption {
	return func(r *Registry) {
		r.limit = n
	}
}

// WithLogger sets the logger used to report failed definitions.
func WithLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		logger: slog.New(slog.DiscardHandler),
		byCode: make(map[string]Handler),
		byType: make(map[reflect.Type][]Handler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type validator interface {
	Validate() error
}

// Register adds handlers in order. A duplicate or incomplete definition
// fails the whole call and nothing is registered.
func (r *Registry) Register(handlers ...Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(handlers))
	for _, h := range handlers {
		if v, ok := h.(validator); ok {
			if err := v.Validate(); err != nil {
				return err
			}
		}
		code := h.Code()
		if _, exists := r.byCode[code]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateHandler, code)
		}
		if _, exists := seen[code]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateHandler, code)
		}
		seen[code] = struct{}{}
	}

	for _, h := range handlers {
		r.handlers = append(r.handlers, h)
		r.byCode[h.Code()] = h
		t := h.EventType()
		r.byType[t] = append(r.byType[t], h)
	}
	return nil
}

// Handlers returns the registered handlers in registration order.
func (r *Registry) Handlers() []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.handlers)
}

// Handler returns the handler registered under code.
func (r *Registry) Handler(code string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.byCode[code]
	return h, ok
}

// TemplateVars returns the merged global and custom vars.
func (r *Registry) TemplateVars() map[string]any {
	return mergeVars(r.globals, r.custom)
}

// Dispatch builds one job per definition that listens for the event's type and
// whose filters pass. Matched definitions run concurrently. A failing definition
// does not affect the others: its error is joined into the returned error and
// the jobs of the remaining definitions are still returned, in registration order.
func (r *Registry) Dispatch(ctx context.Context, event any) ([]Job, error) {
	if event == nil {
		return nil, ErrNilEvent
	}

	value, handlers := r.match(event)
	if len(handlers) == 0 {
		return nil, nil
	}

	ctx = r.withRequestContext(ctx, event)
	globals := r.TemplateVars()

	type result struct {
		err     error
		job     Job
		matched bool
	}
	results := make([]result, len(handlers))

	var g errgroup.Group
	if r.limit > 0 {
		g.SetLimit(r.limit)
	}
	for i, h := range handlers {
		g.Go(func() error {
			job, matched, err := handle(ctx, h, value, globals)
			results[i] = result{job: job, matched: matched, err: err}
			return nil
		})
	}
	_ = g.Wait()

	jobs := make([]Job, 0, len(handlers))
	var errs []error
	for i, res := range results {
		if res.err != nil {
			r.logger.ErrorContext(ctx, "notification handler failed",
				slog.String("handler", handlers[i].Code()),
				slog.Any("error", res.err),
			)
			errs = append(errs, res.err)
			continue
		}
		if res.matched {
			jobs = append(jobs, res.job)
		}
	}
	return jobs, errors.Join(errs...)
}

// Preview builds the job of one definition from its mock event.
func (r *Registry) Preview(ctx context.Context, code string) (Job, error) {
	h, ok := r.Handler(code)
	if !ok {
		return Job{}, fmt.Errorf("%w: %q", ErrUnknownHandler, code)
	}
	mock, ok := h.MockEvent()
	if !ok {
		return Job{}, fmt.Errorf("%w: %q", ErrNoMockEvent, code)
	}

	ctx = r.withRequestContext(ctx, mock)
	job, matched, err := handle(ctx, h, mock, r.TemplateVars())
	if err != nil {
		return Job{}, err
	}
	if !matched {
		return Job{}, fmt.Errorf("%w: %q", ErrFilterMismatch, code)
	}
	return job, nil
}

func (r *Registry) match(event any) (any, []Handler) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t := reflect.TypeOf(event)
	if hs := r.byType[t]; len(hs) > 0 {
		return event, slices.Clone(hs)
	}
	if t.Kind() == reflect.Pointer {
		v := reflect.ValueOf(event)
		if v.IsNil() {
			return event, nil
		}
		if hs := r.byType[t.Elem()]; len(hs) > 0 {
			return v.Elem().Interface(), slices.Clone(hs)
		}
	}
	return event, nil
}

func (r *Registry) withRequestContext(ctx context.Context, event any) context.Context {
	if carrier, ok := event.(ContextCarrier); ok {
		return WithRequestContext(ctx, carrier.RequestContext())
	}
	return ctx
}

// handle shields the registry from Handler implementations that panic or
// return untyped errors.
func handle(ctx context.Context, h Handler, event any, globals map[string]any) (job Job, matched bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			job, matched = Job{}, false
			err = &HandlerError{Code: h.Code(), Err: fmt.Errorf("%w: %v", ErrPanic, rec)}
		}
	}()

	job, matched, err = h.Handle(ctx, event, globals)
	if err != nil {
		var he *HandlerError
		if !errors.As(err, &he) {
			err = &HandlerError{Code: h.Code(), Err: err}
		}
		return Job{}, false, err
	}
	return job, matched, nil
}
