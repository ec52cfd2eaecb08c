package notify

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateHandler is returned when two definitions share a code.
	ErrDuplicateHandler = errors.New("notify: duplicate handler code")

	// ErrIncompleteDefinition is returned when a definition lacks a code, recipient or subject.
	ErrIncompleteDefinition = errors.New("notify: incomplete definition")

	// ErrUnknownHandler is returned when no definition is registered under a code.
	ErrUnknownHandler = errors.New("notify: unknown handler")

	// ErrNoMockEvent is returned by Preview when the definition has no mock event.
	ErrNoMockEvent = errors.New("notify: definition has no mock event")

	// ErrFilterMismatch is returned by Preview when the mock event does not pass the filters.
	// Dispatch never returns it: a failing filter there is a normal outcome.
	ErrFilterMismatch = errors.New("notify: event does not match handler filters")

	// ErrNilEvent is returned when Dispatch receives a nil event.
	ErrNilEvent = errors.New("notify: nil event")

	// ErrEventType is returned when a handler receives an event of the wrong type.
	ErrEventType = errors.New("notify: unexpected event type")

	// ErrNoRecipient is returned when the recipient resolver yields an empty address.
	ErrNoRecipient = errors.New("notify: empty recipient")

	// ErrInvalidAttachment is returned for attachments that cannot cross the queue boundary.
	ErrInvalidAttachment = errors.New("notify: invalid attachment")

	// ErrInvalidContext is returned when a request context cannot be encoded or decoded.
	ErrInvalidContext = errors.New("notify: invalid request context")

	// ErrTemplateVars is returned when template variables cannot be reduced to plain data.
	ErrTemplateVars = errors.New("notify: template vars are not serializable")

	// ErrPanic marks a recovered panic inside a filter, loader or resolver.
	ErrPanic = errors.New("notify: handler panicked")
)

// Stage names the step of job construction that failed.
type Stage string

const (
	StageFilter      Stage = "filter"
	StageLoad        Stage = "load"
	StageResolve     Stage = "resolve"
	StageAttachments Stage = "attachments"
	StageAddresses   Stage = "addresses"
	StageSerialize   Stage = "serialize"
)

// HandlerError reports a failure while building the job of one definition.
// Other definitions matched by the same event are not affected.
type HandlerError struct {
	Err   error
	Code  string
	Stage Stage
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("notify: handler %q failed at %s: %v", e.Code, e.Stage, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}
