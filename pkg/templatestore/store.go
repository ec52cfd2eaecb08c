package templatestore

import (
	"context"
	"errors"

	"github.com/dmitrymomot/courier/pkg/mailer"
	"github.com/dmitrymomot/courier/pkg/notify"
)

// DefaultChannel is served when a channel has no template of its own.
const DefaultChannel = "default"

var (
	ErrNotFound      = errors.New("templatestore: template not found")
	ErrInvalidStatus = errors.New("templatestore: invalid status")
	ErrInvalidKind   = errors.New("templatestore: invalid partial kind")
)

// Status controls whether a template or partial is served.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusDeleted  Status = "deleted"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusDeleted:
		return true
	}
	return false
}

// PartialKind is the role of a partial within the layout.
type PartialKind string

const (
	PartialHeader PartialKind = "header"
	PartialFooter PartialKind = "footer"
)

// Valid reports whether k is a known partial kind.
func (k PartialKind) Valid() bool {
	return k == PartialHeader || k == PartialFooter
}

// Ref identifies the template to load for a job.
type Ref struct {
	Name     string
	Channel  string
	Language string
}

// RefFor builds a Ref for name scoped by the request context carried in ctx.
func RefFor(ctx context.Context, name string) Ref {
	rc, _ := notify.RequestContextFrom(ctx)
	return Ref{Name: name, Channel: rc.Channel, Language: rc.LanguageCode}
}

// Template is one language version of a named template in one channel.
type Template struct {
	Name     string
	Channel  string
	Language string
	Body     string
	Status   Status
}

// Partial is one language version of a named partial in one channel.
type Partial struct {
	Name     string
	Channel  string
	Language string
	Body     string
	Kind     PartialKind
	Status   Status
}

// Store loads template bodies and the partials visible to a render.
//
// Template returns ErrNotFound when nothing active matches ref; it never
// returns an empty body for a missing template. Partials reads the channel and
// language from the request context carried in ctx.
type Store interface {
	Template(ctx context.Context, ref Ref) (string, error)
	mailer.PartialLoader
}
