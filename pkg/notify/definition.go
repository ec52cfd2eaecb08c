package notify

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
)

// NoData is the loader result type of definitions without a data loader.
type NoData = struct{}

// Payload is what resolvers receive: the event plus the loader result.
type Payload[E, D any] struct {
	Event E
	Data  D
}

// AddressFields holds the optional cc, bcc and reply-to addresses of a job.
// Multiple addresses are comma separated.
type AddressFields struct {
	CC      string
	BCC     string
	ReplyTo string
}

// Handler is a type-erased definition as seen by the registry.
type Handler interface {
	// Code is the unique handler code and the default template reference.
	Code() string
	// EventType is the event type the handler listens for.
	EventType() reflect.Type
	// Handle builds the job for event. matched is false when a filter rejected the event.
	Handle(ctx context.Context, event any, globals map[string]any) (job Job, matched bool, err error)
	// MockEvent returns the event used for previews, if one is set.
	MockEvent() (any, bool)
}

// Definition describes how an event of type E becomes an email job.
// D is the type of data attached by the loader.
//
// Every setter returns a new Definition, so a partially configured definition
// can be specialized several times without the copies affecting each other:
//
//	base := notify.On[OrderPlaced]("order-placed").
//		SetRecipient(func(p notify.Payload[OrderPlaced, notify.NoData]) string {
//			return p.Event.Email
//		}).
//		SetSubject("Order {{ .code }}")
//
//	vip := base.Filter(func(e OrderPlaced) bool { return e.VIP }).SetTemplateFile("order-placed-vip")
type Definition[E, D any] struct {
	loader       func(context.Context, E) (D, error)
	recipient    func(Payload[E, D]) string
	from         func(Payload[E, D]) string
	subject      func(Payload[E, D]) string
	templateVars func(Payload[E, D], map[string]any) map[string]any
	attachments  func(context.Context, Payload[E, D]) ([]Attachment, error)
	addresses    func(context.Context, Payload[E, D]) (AddressFields, error)
	mock         *E
	code         string
	templateFile string
	filters      []func(E) bool
}

// Define starts a definition for events of type E whose loader returns D.
func Define[E, D any](code string) Definition[E, D] {
	return Definition[E, D]{code: code}
}

// On starts a definition for events of type E without a data loader.
func On[E any](code string) Definition[E, NoData] {
	return Define[E, NoData](code)
}

// Filter appends a predicate. All predicates must pass, in the order they were added.
func (d Definition[E, D]) Filter(fn func(E) bool) Definition[E, D] {
	d.filters = append(slices.Clip(d.filters), fn)
	return d
}

// LoadData sets the loader whose result is exposed as Payload.Data.
func (d Definition[E, D]) LoadData(fn func(context.Context, E) (D, error)) Definition[E, D] {
	d.loader = fn
	return d
}

// SetRecipient sets the recipient resolver. An empty result fails the job.
func (d Definition[E, D]) SetRecipient(fn func(Payload[E, D]) string) Definition[E, D] {
	d.recipient = fn
	return d
}

// SetFrom sets the sender as a template, e.g. "{{ .fromAddress }}".
// It is rendered later with the job's template vars.
func (d Definition[E, D]) SetFrom(tmpl string) Definition[E, D] {
	d.from = constant[E, D](tmpl)
	return d
}

// SetFromFunc sets a sender resolver.
func (d Definition[E, D]) SetFromFunc(fn func(Payload[E, D]) string) Definition[E, D] {
	d.from = fn
	return d
}

// SetSubject sets the subject as a template rendered with the job's template vars.
func (d Definition[E, D]) SetSubject(tmpl string) Definition[E, D] {
	d.subject = constant[E, D](tmpl)
	return d
}

// SetSubjectFunc sets a subject resolver.
func (d Definition[E, D]) SetSubjectFunc(fn func(Payload[E, D]) string) Definition[E, D] {
	d.subject = fn
	return d
}

// SetTemplateFile overrides the template reference, which defaults to the code.
func (d Definition[E, D]) SetTemplateFile(name string) Definition[E, D] {
	d.templateFile = name
	return d
}

// SetTemplateVars sets the template vars resolver. It receives a copy of the
// process-wide vars; the returned map is layered over them.
func (d Definition[E, D]) SetTemplateVars(fn func(Payload[E, D], map[string]any) map[string]any) Definition[E, D] {
	d.templateVars = fn
	return d
}

// SetAttachments sets the attachments resolver.
func (d Definition[E, D]) SetAttachments(fn func(context.Context, Payload[E, D]) ([]Attachment, error)) Definition[E, D] {
	d.attachments = fn
	return d
}

// SetOptionalAddressFields sets the cc, bcc and reply-to resolver.
func (d Definition[E, D]) SetOptionalAddressFields(fn func(context.Context, Payload[E, D]) (AddressFields, error)) Definition[E, D] {
	d.addresses = fn
	return d
}

// SetMockEvent sets the event used to preview the email.
func (d Definition[E, D]) SetMockEvent(event E) Definition[E, D] {
	d.mock = &event
	return d
}

// Code implements Handler.
func (d Definition[E, D]) Code() string {
	return d.code
}

// EventType implements Handler.
func (d Definition[E, D]) EventType() reflect.Type {
	return reflect.TypeFor[E]()
}

// MockEvent implements Handler.
func (d Definition[E, D]) MockEvent() (any, bool) {
	if d.mock == nil {
		return nil, false
	}
	return *d.mock, true
}

// Validate reports whether the definition can produce jobs.
func (d Definition[E, D]) Validate() error {
	var missing []string
	if strings.TrimSpace(d.code) == "" {
		missing = append(missing, "code")
	}
	if d.recipient == nil {
		missing = append(missing, "recipient")
	}
	if d.subject == nil {
		missing = append(missing, "subject")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %q is missing %s", ErrIncompleteDefinition, d.code, strings.Join(missing, ", "))
	}
	return nil
}

// Handle implements Handler. Panics in user callbacks are recovered and
// reported as a HandlerError for the stage that was running.
func (d Definition[E, D]) Handle(ctx context.Context, event any, globals map[string]any) (job Job, matched bool, err error) {
	stage := StageFilter
	defer func() {
		if r := recover(); r != nil {
			job, matched = Job{}, false
			err = &HandlerError{Code: d.code, Stage: stage, Err: fmt.Errorf("%w: %v", ErrPanic, r)}
		}
	}()

	ev, ok := event.(E)
	if !ok {
		return Job{}, false, &HandlerError{
			Code:  d.code,
			Stage: stage,
			Err:   fmt.Errorf("%w: got %T, want %s", ErrEventType, event, d.EventType()),
		}
	}

	for _, f := range d.filters {
		if !f(ev) {
			return Job{}, false, nil
		}
	}

	fail := func(err error) (Job, bool, error) {
		return Job{}, true, &HandlerError{Code: d.code, Stage: stage, Err: err}
	}

	stage = StageLoad
	p := Payload[E, D]{Event: ev}
	if d.loader != nil {
		data, err := d.loader(ctx, ev)
		if err != nil {
			return fail(err)
		}
		p.Data = data
	}

	stage = StageResolve
	vars := mergeVars(globals)
	if d.templateVars != nil {
		vars = mergeVars(globals, d.templateVars(p, maps.Clone(globals)))
	}

	recipient := strings.TrimSpace(d.recipient(p))
	if recipient == "" {
		return fail(ErrNoRecipient)
	}
	var from string
	if d.from != nil {
		from = d.from(p)
	}
	subject := d.subject(p)

	stage = StageAttachments
	var atts []Attachment
	if d.attachments != nil {
		if atts, err = d.attachments(ctx, p); err != nil {
			return fail(err)
		}
	}
	serialized, err := SerializeAttachments(atts)
	if err != nil {
		return fail(err)
	}

	stage = StageAddresses
	var addr AddressFields
	if d.addresses != nil {
		if addr, err = d.addresses(ctx, p); err != nil {
			return fail(err)
		}
	}

	stage = StageSerialize
	plain, err := plainData(vars)
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrTemplateVars, err))
	}
	rc, _ := RequestContextFrom(ctx)
	rawCtx, err := EncodeRequestContext(rc)
	if err != nil {
		return fail(err)
	}

	templateFile := d.templateFile
	if templateFile == "" {
		templateFile = d.code
	}

	return Job{
		Ctx:          rawCtx,
		Type:         d.code,
		From:         from,
		Recipient:    recipient,
		Subject:      subject,
		TemplateFile: templateFile,
		TemplateVars: plain,
		Attachments:  serialized,
		CC:           addr.CC,
		BCC:          addr.BCC,
		ReplyTo:      addr.ReplyTo,
	}, true, nil
}

func constant[E, D any](s string) func(Payload[E, D]) string {
	return func(Payload[E, D]) string { return s }
}
