package commerce

import (
	"embed"
	"io/fs"

	"github.com/dmitrymomot/courier/pkg/templatestore"
)

//go:embed templates
var templates embed.FS

// TemplateFS returns the default templates and partials in the
// templatestore.LoadFS layout.
func TemplateFS() fs.FS {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// Templates loads the default templates into a memory store.
func Templates(opts ...templatestore.Option) (*templatestore.Memory, error) {
	return templatestore.LoadFS(TemplateFS(), opts...)
}
