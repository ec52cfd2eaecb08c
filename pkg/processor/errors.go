package processor

import (
	"errors"
	"fmt"

	"github.com/dmitrymomot/courier/pkg/mailer"
	"github.com/dmitrymomot/courier/pkg/notify"
	"github.com/dmitrymomot/courier/pkg/storage"
)

var (
	// ErrConfiguration is returned by Initialize when the processor cannot start.
	ErrConfiguration = errors.New("processor: configuration error")

	// ErrDecode is returned for jobs that cannot be decoded or lack a recipient.
	ErrDecode = errors.New("processor: invalid job")

	// ErrTemplateNotFound is returned when the store has no active template for the job.
	ErrTemplateNotFound = errors.New("processor: template not found")

	// ErrTemplateLoad is returned when the template store fails.
	ErrTemplateLoad = errors.New("processor: template store failed")

	// ErrGeneration is returned when rendering the email fails.
	ErrGeneration = errors.New("processor: email generation failed")

	// ErrAttachment is returned when an attachment cannot be decoded or fetched.
	ErrAttachment = errors.New("processor: attachment failed")

	// ErrTransport is returned when the transport cannot be resolved or delivery fails.
	ErrTransport = errors.New("processor: transport error")
)

// Stage names the step of Process that failed.
type Stage string

const (
	StageInit        Stage = "init"
	StageDecode      Stage = "decode"
	StageTemplate    Stage = "template"
	StageGenerate    Stage = "generate"
	StageTransport   Stage = "transport"
	StageAttachments Stage = "attachments"
	StageSend        Stage = "send"
)

// Error is returned by Process. It matches both the stage sentinel
// (ErrTemplateNotFound, ErrTransport, ...) and the underlying cause with errors.Is.
type Error struct {
	Err       error
	Stage     Stage
	JobType   string
	Recipient string
}

func (e *Error) Error() string {
	return fmt.Sprintf("processor: job %q to %s failed at %s: %v", e.JobType, e.Recipient, e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsPermanent reports whether retrying the job cannot succeed: the job is
// malformed, its template is missing, it does not render, an attachment is
// missing or rejected, or the rendered email is invalid.
func IsPermanent(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrDecode),
		errors.Is(err, ErrTemplateNotFound),
		errors.Is(err, ErrGeneration):
		return true
	case errors.Is(err, ErrAttachment):
		return errors.Is(err, notify.ErrInvalidAttachment) ||
			errors.Is(err, storage.ErrNotFound) ||
			errors.Is(err, storage.ErrAccessDenied) ||
			errors.Is(err, storage.ErrFileTooLarge) ||
			errors.Is(err, storage.ErrEmptyFile) ||
			errors.Is(err, storage.ErrInvalidMIME) ||
			errors.Is(err, storage.ErrInvalidURL) ||
			errors.Is(err, storage.ErrUnsupportedScheme) ||
			errors.Is(err, storage.ErrOutsideRoot)
	case errors.Is(err, ErrTransport):
		return errors.Is(err, mailer.ErrNoRecipient) ||
			errors.Is(err, mailer.ErrNoSubject) ||
			errors.Is(err, mailer.ErrNoContent)
	}
	return false
}
