package mailer

import "errors"

var (
	// ErrNoRecipient indicates no recipient was specified.
	ErrNoRecipient = errors.New("email must have at least one recipient")

	// ErrNoSubject indicates no subject was provided.
	ErrNoSubject = errors.New("email must have a subject")

	// ErrNoContent indicates neither HTML nor text content was provided.
	ErrNoContent = errors.New("email must have content")

	// ErrConfiguration indicates the generator cannot start, e.g. a missing layout
	// or partials that fail to load or parse.
	ErrConfiguration = errors.New("mailer configuration error")

	// ErrLayoutNotFound indicates the layout file was not found.
	ErrLayoutNotFound = errors.New("layout not found")

	// ErrRenderFailed indicates template rendering failed.
	ErrRenderFailed = errors.New("failed to render template")

	// ErrSendFailed indicates email sending failed.
	ErrSendFailed = errors.New("failed to send email")

	// ErrInvalidFrontmatter indicates invalid YAML frontmatter.
	ErrInvalidFrontmatter = errors.New("invalid frontmatter")

	// ErrUnsupportedValue indicates a template helper received a value it cannot format.
	ErrUnsupportedValue = errors.New("unsupported value")
)
