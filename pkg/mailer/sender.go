package mailer

import "context"

// Sender defines the minimal interface that email providers must implement.
// It accepts a fully-prepared Email and handles the actual delivery.
type Sender interface {
	// Send delivers an email message.
	// Returns an error if delivery fails; nothing is retried.
	Send(ctx context.Context, email *Email) error
}

// Generator renders the sender, subject and body templates of a job.
type Generator interface {
	Generate(ctx context.Context, from, subject, body string, vars map[string]any) (*Generated, error)
}

// Initializer is implemented by generators that need a one-time setup
// before the first Generate call.
type Initializer interface {
	OnInit(ctx context.Context) error
}

// Partial is a named template fragment, usable from bodies as {{ template "name" . }}.
type Partial struct {
	Name string
	Body string
}

// PartialLoader returns the partials visible to a render.
// Implementations scope the result by the request context carried in ctx.
type PartialLoader interface {
	Partials(ctx context.Context) ([]Partial, error)
}

// PartialLoaderFunc adapts a function to PartialLoader.
type PartialLoaderFunc func(ctx context.Context) ([]Partial, error)

// Partials implements PartialLoader.
func (f PartialLoaderFunc) Partials(ctx context.Context) ([]Partial, error) {
	return f(ctx)
}
