package devmailbox

import (
	"errors"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"

	"github.com/dmitrymomot/courier/pkg/logger"
	"github.com/dmitrymomot/courier/pkg/mailer/file"
)

const defaultPruneAge = 24 * time.Hour

// Option configures a Mailbox.
type Option func(*Mailbox)

// WithLogger sets the logger for failed outbox reads.
func WithLogger(l *slog.Logger) Option {
	return func(m *Mailbox) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithPolicy replaces the sanitizer applied to previewed bodies.
func WithPolicy(p *bluemonday.Policy) Option {
	return func(m *Mailbox) {
		if p != nil {
			m.policy = p
		}
	}
}

// Mailbox serves the emails the file transport wrote to an outbox.
type Mailbox struct {
	outbox *file.Outbox
	policy *bluemonday.Policy
	logger *slog.Logger
	base   string
	now    func() time.Time
}

// New creates a mailbox mounted at route, for example "/mailbox".
func New(outbox *file.Outbox, route string, opts ...Option) *Mailbox {
	policy := bluemonday.UGCPolicy()
	policy.AllowStyling()

	m := &Mailbox{
		outbox: outbox,
		policy: policy,
		logger: logger.NewNope(),
		base:   "/" + strings.Trim(route, "/"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Route returns the mount point.
func (m *Mailbox) Route() string {
	return m.base
}

// Routes returns the mailbox router. Mount it at Route:
//
//	r.Mount(mb.Route(), mb.Routes())
func (m *Mailbox) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", m.list)
	r.Post("/prune", m.prune)
	r.Get("/{name}", m.show)
	r.Get("/{name}/raw", m.raw)
	return r
}

func (m *Mailbox) home() string {
	if m.base == "/" {
		return m.base
	}
	return m.base + "/"
}

func (m *Mailbox) link(parts ...string) string {
	return path.Join(append([]string{m.base}, parts...)...)
}

func (m *Mailbox) list(w http.ResponseWriter, r *http.Request) {
	entries, err := m.outbox.List()
	if err != nil {
		m.fail(w, r, err)
		return
	}
	templ.Handler(listPage(m, entries)).ServeHTTP(w, r)
}

func (m *Mailbox) show(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if path.Ext(name) == file.ExtJSON {
		rec, err := m.outbox.Record(name)
		if err != nil {
			m.fail(w, r, err)
			return
		}
		body := m.policy.Sanitize(rec.Body)
		templ.Handler(recordPage(m, name, rec, body)).ServeHTTP(w, r)
		return
	}

	data, err := m.outbox.Read(name)
	if err != nil {
		m.fail(w, r, err)
		return
	}
	templ.Handler(rawPage(m, name, string(data))).ServeHTTP(w, r)
}

func (m *Mailbox) raw(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	data, err := m.outbox.Read(name)
	if err != nil {
		m.fail(w, r, err)
		return
	}

	contentType := "message/rfc822"
	if path.Ext(name) == file.ExtJSON {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	_, _ = w.Write(data)
}

// prune removes entries older than ?older_than (a Go duration, 24h by default).
func (m *Mailbox) prune(w http.ResponseWriter, r *http.Request) {
	maxAge := defaultPruneAge
	if v := r.FormValue("older_than"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			http.Error(w, "invalid older_than duration", http.StatusBadRequest)
			return
		}
		maxAge = d
	}

	removed, err := m.outbox.Prune(maxAge, m.now())
	if err != nil {
		m.fail(w, r, err)
		return
	}
	m.logger.InfoContext(r.Context(), "mailbox pruned", slog.Int("removed", removed))
	http.Redirect(w, r, m.home(), http.StatusSeeOther)
}

func (m *Mailbox) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, file.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	m.logger.ErrorContext(r.Context(), "mailbox read failed", slog.Any("error", err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
