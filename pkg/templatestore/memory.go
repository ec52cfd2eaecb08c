package templatestore

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrymomot/courier/pkg/mailer"
	"github.com/dmitrymomot/courier/pkg/notify"
)

// Option configures a store.
type Option func(*options)

type options struct {
	fallbackLanguage string
}

func defaultOptions() options {
	return options{fallbackLanguage: "en"}
}

// WithFallbackLanguage sets the language served when no translation matches the
// request. Default: "en".
func WithFallbackLanguage(lang string) Option {
	return func(o *options) {
		o.fallbackLanguage = lang
	}
}

// Memory is an in-memory Store. It is safe for concurrent use.
type Memory struct {
	templates map[string][]Template
	partials  map[string][]Partial
	opts      options
	mu        sync.RWMutex
}

// NewMemory creates an empty in-memory store.
func NewMemory(opts ...Option) *Memory {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Memory{
		templates: make(map[string][]Template),
		partials:  make(map[string][]Partial),
		opts:      o,
	}
}

// PutTemplate adds t, replacing the version with the same name, channel and language.
// An empty status means active.
func (m *Memory) PutTemplate(t Template) error {
	t.Status = cmp.Or(t.Status, StatusActive)
	t.Channel = cmp.Or(t.Channel, DefaultChannel)
	if !t.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.templates[t.Name]
	i := slices.IndexFunc(list, func(x Template) bool {
		return x.Channel == t.Channel && x.Language == t.Language
	})
	if i >= 0 {
		list[i] = t
	} else {
		m.templates[t.Name] = append(list, t)
	}
	return nil
}

// PutPartial adds p, replacing the version with the same name, channel and language.
// An empty status means active.
func (m *Memory) PutPartial(p Partial) error {
	p.Status = cmp.Or(p.Status, StatusActive)
	p.Channel = cmp.Or(p.Channel, DefaultChannel)
	if !p.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, p.Status)
	}
	if p.Kind != "" && !p.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, p.Kind)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.partials[p.Name]
	i := slices.IndexFunc(list, func(x Partial) bool {
		return x.Channel == p.Channel && x.Language == p.Language
	})
	if i >= 0 {
		list[i] = p
	} else {
		m.partials[p.Name] = append(list, p)
	}
	return nil
}

// Template implements Store.
func (m *Memory) Template(_ context.Context, ref Ref) (string, error) {
	m.mu.RLock()
	list := m.templates[ref.Name]
	candidates := make([]candidate, len(list))
	for i, t := range list {
		candidates[i] = candidate{channel: t.Channel, language: t.Language, body: t.Body, status: t.Status}
	}
	m.mu.RUnlock()

	c, ok := pick(candidates, ref.Channel, ref.Language, m.opts.fallbackLanguage)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, ref.Name)
	}
	return c.body, nil
}

// Partials implements mailer.PartialLoader.
func (m *Memory) Partials(ctx context.Context) ([]mailer.Partial, error) {
	rc, _ := notify.RequestContextFrom(ctx)

	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]mailer.Partial, 0, len(m.partials))
	for name, list := range m.partials {
		candidates := make([]candidate, len(list))
		for i, p := range list {
			candidates[i] = candidate{channel: p.Channel, language: p.Language, body: p.Body, status: p.Status}
		}
		if c, ok := pick(candidates, rc.Channel, rc.LanguageCode, m.opts.fallbackLanguage); ok {
			result = append(result, mailer.Partial{Name: name, Body: c.body})
		}
	}
	slices.SortFunc(result, func(a, b mailer.Partial) int { return cmp.Compare(a.Name, b.Name) })
	return result, nil
}

var _ Store = (*Memory)(nil)
