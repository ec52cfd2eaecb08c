package mailer

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"maps"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	texttemplate "text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/sync/singleflight"
)

// BodyFormat selects how template bodies are interpreted.
type BodyFormat int

const (
	// FormatHTML renders bodies with html/template.
	FormatHTML BodyFormat = iota
	// FormatMarkdown renders bodies with text/template, then converts markdown to HTML.
	FormatMarkdown
)

// GeneratorOption configures a TemplateGenerator.
type GeneratorOption func(*TemplateGenerator)

// WithPartials sets the partial loader consulted before every render.
func WithPartials(loader PartialLoader) GeneratorOption {
	return func(g *TemplateGenerator) {
		g.partials = loader
	}
}

// WithLayout wraps every rendered body in an html/template layout read from fsys.
// The layout receives .Content (the body), .Subject and .Vars.
//
// Example:
//
//	gen := mailer.NewTemplateGenerator(
//		mailer.WithLayout(templates.FS, "layouts/base.html"),
//	)
func WithLayout(fsys fs.FS, name string) GeneratorOption {
	return func(g *TemplateGenerator) {
		g.layoutFS = fsys
		g.layoutName = name
	}
}

// WithBodyFormat selects HTML (default) or markdown bodies.
func WithBodyFormat(format BodyFormat) GeneratorOption {
	return func(g *TemplateGenerator) {
		g.format = format
	}
}

// WithButtonStyle sets the inline style of markdown buttons.
func WithButtonStyle(style ButtonStyle) GeneratorOption {
	return func(g *TemplateGenerator) {
		g.buttonStyle = style
	}
}

// WithFuncs adds template functions next to formatDate and formatMoney.
func WithFuncs(funcs map[string]any) GeneratorOption {
	return func(g *TemplateGenerator) {
		maps.Copy(g.funcs, funcs)
	}
}

// partialSet is an immutable parsed set of partials. Renders clone it and
// add their own body, so concurrent renders never share a template tree.
type partialSet struct {
	html        *htmltemplate.Template
	text        *texttemplate.Template
	fingerprint string
}

// TemplateGenerator is the default Generator.
//
// The sender and subject are rendered with text/template, so values are not
// HTML-escaped. Absent vars render as empty text everywhere. Bodies are rendered with html/template, or with text/template
// followed by markdown conversion. The plain-text alternative is derived from
// the final HTML.
//
// Templates may read any field or map key and call any exported method of the
// values they receive. Job vars are plain data, so this reaches nothing beyond
// what the job carries.
type TemplateGenerator struct {
	partials    PartialLoader
	layoutFS    fs.FS
	funcs       map[string]any
	layout      atomic.Pointer[htmltemplate.Template]
	current     atomic.Pointer[partialSet]
	md          goldmark.Markdown
	layoutName  string
	group       singleflight.Group
	buttonStyle ButtonStyle
	format      BodyFormat
	mdOnce      sync.Once
}

// NewTemplateGenerator creates a generator.
func NewTemplateGenerator(opts ...GeneratorOption) *TemplateGenerator {
	g := &TemplateGenerator{
		funcs:       FuncMap(),
		buttonStyle: DefaultButtonStyle,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// OnInit loads the layout and the initial partial set.
func (g *TemplateGenerator) OnInit(ctx context.Context) error {
	if _, err := g.loadLayout(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	if _, err := g.syncPartials(ctx); err != nil {
		return fmt.Errorf("%w: partials: %w", ErrConfiguration, err)
	}
	return nil
}

// Generate implements Generator.
func (g *TemplateGenerator) Generate(ctx context.Context, from, subject, body string, vars map[string]any) (*Generated, error) {
	set, err := g.syncPartials(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: partials: %v", ErrRenderFailed, err)
	}

	renderedFrom, err := g.renderText("from", from, vars)
	if err != nil {
		return nil, err
	}
	renderedSubject, err := g.renderText("subject", subject, vars)
	if err != nil {
		return nil, err
	}

	content, err := g.renderBody(set, body, vars)
	if err != nil {
		return nil, err
	}

	html, err := g.applyLayout(content, renderedSubject, vars)
	if err != nil {
		return nil, err
	}

	return &Generated{
		From:    strings.TrimSpace(renderedFrom),
		Subject: strings.TrimSpace(renderedSubject),
		HTML:    html,
		Text:    PlainText(html),
	}, nil
}

func (g *TemplateGenerator) renderText(name, tmpl string, vars map[string]any) (string, error) {
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}
	t, err := texttemplate.New(name).Funcs(g.funcs).Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("%w: parse %s: %v", ErrRenderFailed, name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("%w: execute %s: %v", ErrRenderFailed, name, err)
	}
	// text/template prints absent map keys as "<no value>"; html/template
	// bodies print nothing, and so do sender and subject.
	return strings.ReplaceAll(buf.String(), noValue, ""), nil
}

const noValue = "<no value>"

func (g *TemplateGenerator) renderBody(set *partialSet, body string, vars map[string]any) (string, error) {
	var buf bytes.Buffer

	if g.format == FormatMarkdown {
		t, err := set.text.Clone()
		if err != nil {
			return "", fmt.Errorf("%w: clone partials: %v", ErrRenderFailed, err)
		}
		if _, err := t.New("body").Parse(body); err != nil {
			return "", fmt.Errorf("%w: parse body: %v", ErrRenderFailed, err)
		}
		if err := t.ExecuteTemplate(&buf, "body", vars); err != nil {
			return "", fmt.Errorf("%w: execute body: %v", ErrRenderFailed, err)
		}
		var html bytes.Buffer
		if err := g.markdown().Convert(buf.Bytes(), &html); err != nil {
			return "", fmt.Errorf("%w: convert markdown: %v", ErrRenderFailed, err)
		}
		return html.String(), nil
	}

	t, err := set.html.Clone()
	if err != nil {
		return "", fmt.Errorf("%w: clone partials: %v", ErrRenderFailed, err)
	}
	if _, err := t.New("body").Parse(body); err != nil {
		return "", fmt.Errorf("%w: parse body: %v", ErrRenderFailed, err)
	}
	if err := t.ExecuteTemplate(&buf, "body", vars); err != nil {
		return "", fmt.Errorf("%w: execute body: %v", ErrRenderFailed, err)
	}
	return buf.String(), nil
}

func (g *TemplateGenerator) applyLayout(content, subject string, vars map[string]any) (string, error) {
	layout, err := g.loadLayout()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	if layout == nil {
		return content, nil
	}

	var buf bytes.Buffer
	data := map[string]any{
		"Content": htmltemplate.HTML(content),
		"Subject": subject,
		"Vars":    vars,
	}
	if err := layout.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: execute layout: %v", ErrRenderFailed, err)
	}
	return buf.String(), nil
}

func (g *TemplateGenerator) loadLayout() (*htmltemplate.Template, error) {
	if g.layoutName == "" {
		return nil, nil
	}
	if l := g.layout.Load(); l != nil {
		return l, nil
	}
	if g.layoutFS == nil {
		return nil, fmt.Errorf("%w: %s: no filesystem", ErrLayoutNotFound, g.layoutName)
	}
	content, err := fs.ReadFile(g.layoutFS, g.layoutName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLayoutNotFound, g.layoutName, err)
	}
	l, err := htmltemplate.New(g.layoutName).Funcs(g.funcs).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parse layout %s: %v", g.layoutName, err)
	}
	g.layout.Store(l)
	return l, nil
}

// syncPartials returns the parsed set for the partials currently visible.
// An unchanged set is reused; a changed one is parsed once and swapped in.
func (g *TemplateGenerator) syncPartials(ctx context.Context) (*partialSet, error) {
	var partials []Partial
	if g.partials != nil {
		var err error
		if partials, err = g.partials.Partials(ctx); err != nil {
			return nil, err
		}
	}

	fp := fingerprint(partials)
	if cur := g.current.Load(); cur != nil && cur.fingerprint == fp {
		return cur, nil
	}

	v, err, _ := g.group.Do(fp, func() (any, error) {
		set, err := g.parsePartials(fp, partials)
		if err != nil {
			return nil, err
		}
		g.current.Store(set)
		return set, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*partialSet), nil
}

func (g *TemplateGenerator) parsePartials(fp string, partials []Partial) (*partialSet, error) {
	html := htmltemplate.New("partials").Funcs(g.funcs)
	text := texttemplate.New("partials").Funcs(g.funcs)
	for _, p := range partials {
		if _, err := html.New(p.Name).Parse(p.Body); err != nil {
			return nil, fmt.Errorf("parse partial %q: %w", p.Name, err)
		}
		if _, err := text.New(p.Name).Parse(p.Body); err != nil {
			return nil, fmt.Errorf("parse partial %q: %w", p.Name, err)
		}
	}
	return &partialSet{html: html, text: text, fingerprint: fp}, nil
}

func (g *TemplateGenerator) markdown() goldmark.Markdown {
	g.mdOnce.Do(func() {
		g.md = goldmark.New(
			goldmark.WithExtensions(extension.GFM, NewButtonExtension(g.buttonStyle)),
		)
	})
	return g.md
}

func fingerprint(partials []Partial) string {
	sorted := slices.Clone(partials)
	slices.SortFunc(sorted, func(a, b Partial) int { return strings.Compare(a.Name, b.Name) })

	h := sha256.New()
	for _, p := range sorted {
		h.Write([]byte(p.Name))
		h.Write([]byte{0})
		h.Write([]byte(p.Body))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
