package templatestore_test

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/courier/pkg/mailer"
	"github.com/dmitrymomot/courier/pkg/notify"
	"github.com/dmitrymomot/courier/pkg/templatestore"
)

func TestLoadFS(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"welcome.html":        {Data: []byte("<p>Welcome</p>")},
		"welcome.de.html":     {Data: []byte("<p>Willkommen</p>")},
		"b2b/welcome.md":      {Data: []byte("Welcome, partner")},
		"legacy.html":         {Data: []byte("---\nstatus: inactive\n---\nold")},
		"renamed.html":        {Data: []byte("---\nname: order-shipped\nlanguage: fr\n---\n<p>Expédiée</p>")},
		"partials/header.html": {Data: []byte("---\nkind: header\n---\n<header>Shop</header>")},
		"b2b/partials/footer.html": {Data: []byte("<footer>Partner</footer>")},
		"README.txt":          {Data: []byte("ignored")},
	}

	store, err := templatestore.LoadFS(fsys)
	require.NoError(t, err)

	ctx := context.Background()
	body, err := store.Template(ctx, templatestore.Ref{Name: "welcome", Language: "de-DE"})
	require.NoError(t, err)
	assert.Equal(t, "<p>Willkommen</p>", body)

	body, err = store.Template(ctx, templatestore.Ref{Name: "welcome", Channel: "b2b"})
	require.NoError(t, err)
	assert.Equal(t, "Welcome, partner", body)

	body, err = store.Template(ctx, templatestore.Ref{Name: "order-shipped", Language: "en"})
	require.NoError(t, err, "the only translation is served when nothing matches")
	assert.Equal(t, "<p>Expédiée</p>", body)

	_, err = store.Template(ctx, templatestore.Ref{Name: "legacy"})
	require.ErrorIs(t, err, templatestore.ErrNotFound)

	_, err = store.Template(ctx, templatestore.Ref{Name: "README"})
	require.ErrorIs(t, err, templatestore.ErrNotFound)

	partials, err := store.Partials(notify.WithRequestContext(ctx, notify.RequestContext{Channel: "b2b"}))
	require.NoError(t, err)
	assert.Equal(t, []mailer.Partial{
		{Name: "footer", Body: "<footer>Partner</footer>"},
		{Name: "header", Body: "<header>Shop</header>"},
	}, partials)

	partials, err = store.Partials(ctx)
	require.NoError(t, err)
	assert.Equal(t, []mailer.Partial{{Name: "header", Body: "<header>Shop</header>"}}, partials)
}

func TestLoadFS_Errors(t *testing.T) {
	t.Parallel()

	_, err := templatestore.LoadFS(fstest.MapFS{
		"broken.html": {Data: []byte("---\nname: broken\n")},
	})
	require.ErrorIs(t, err, mailer.ErrInvalidFrontmatter)

	_, err = templatestore.LoadFS(fstest.MapFS{
		"partials/aside.html": {Data: []byte("---\nkind: sidebar\n---\n<aside/>")},
	})
	require.ErrorIs(t, err, templatestore.ErrInvalidKind)

	_, err = templatestore.LoadFS(fstest.MapFS{
		"welcome.html": {Data: []byte("---\nstatus: archived\n---\nhi")},
	})
	require.ErrorIs(t, err, templatestore.ErrInvalidStatus)
}
