package templatestore

import (
	"cmp"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/dmitrymomot/courier/pkg/mailer"
)

// PartialsDir is the directory holding partials in a template filesystem.
const PartialsDir = "partials"

var templateExtensions = []string{".html", ".md", ".tmpl"}

// LoadFS reads templates and partials from fsys into a new Memory store.
//
// Layout:
//
//	order-confirmation.html        name "order-confirmation"
//	order-confirmation.de.html     German translation
//	b2b/order-confirmation.html    channel "b2b"
//	partials/header.html           partial "header"
//
// YAML frontmatter may override the derived values:
//
//	---
//	name: order-confirmation
//	language: en
//	channel: default
//	status: active
//	kind: header   # partials only
//	---
func LoadFS(fsys fs.FS, opts ...Option) (*Memory, error) {
	m := NewMemory(opts...)

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !slices.Contains(templateExtensions, path.Ext(p)) {
			return nil
		}

		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		tmpl, err := mailer.ParseTemplate(content)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}

		dir, file := path.Split(p)
		segments := strings.Split(strings.Trim(dir, "/"), "/")
		isPartial := slices.Contains(segments, PartialsDir)

		var channel string
		if len(segments) > 0 && segments[0] != "" && segments[0] != PartialsDir {
			channel = segments[0]
		}

		stem := strings.TrimSuffix(file, path.Ext(file))
		name, lang, _ := strings.Cut(stem, ".")

		name = cmp.Or(tmpl.String("name"), name)
		lang = cmp.Or(tmpl.String("language"), lang)
		channel = cmp.Or(tmpl.String("channel"), channel)
		status := Status(tmpl.String("status"))

		if isPartial {
			err = m.PutPartial(Partial{
				Name:     name,
				Channel:  channel,
				Language: lang,
				Body:     tmpl.Body,
				Kind:     PartialKind(tmpl.String("kind")),
				Status:   status,
			})
		} else {
			err = m.PutTemplate(Template{
				Name:     name,
				Channel:  channel,
				Language: lang,
				Body:     tmpl.Body,
				Status:   status,
			})
		}
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("templatestore: load: %w", err)
	}
	return m, nil
}
