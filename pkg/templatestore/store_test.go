package templatestore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/courier/pkg/mailer"
	"github.com/dmitrymomot/courier/pkg/notify"
	"github.com/dmitrymomot/courier/pkg/templatestore"
)

func seededMemory(t *testing.T) *templatestore.Memory {
	t.Helper()

	m := templatestore.NewMemory()
	for _, tpl := range []templatestore.Template{
		{Name: "order-confirmation", Language: "en", Body: "default en"},
		{Name: "order-confirmation", Language: "de", Body: "default de"},
		{Name: "order-confirmation", Language: "pt-BR", Body: "default pt-BR"},
		{Name: "order-confirmation", Channel: "b2b", Language: "en", Body: "b2b en"},
		{Name: "order-shipped", Language: "en", Body: "shipped", Status: templatestore.StatusInactive},
	} {
		require.NoError(t, m.PutTemplate(tpl))
	}
	return m
}

func TestMemory_Template(t *testing.T) {
	t.Parallel()

	m := seededMemory(t)

	tests := []struct {
		name string
		ref  templatestore.Ref
		want string
	}{
		{"exact language", templatestore.Ref{Name: "order-confirmation", Language: "de"}, "default de"},
		{"regional variant", templatestore.Ref{Name: "order-confirmation", Language: "de-AT"}, "default de"},
		{"region specific", templatestore.Ref{Name: "order-confirmation", Language: "pt-BR"}, "default pt-BR"},
		{"unknown language falls back", templatestore.Ref{Name: "order-confirmation", Language: "ja"}, "default en"},
		{"no language", templatestore.Ref{Name: "order-confirmation"}, "default en"},
		{"channel specific", templatestore.Ref{Name: "order-confirmation", Channel: "b2b", Language: "de"}, "b2b en"},
		{"unknown channel uses default", templatestore.Ref{Name: "order-confirmation", Channel: "retail", Language: "de"}, "default de"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := m.Template(context.Background(), tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMemory_TemplateNotFound(t *testing.T) {
	t.Parallel()

	m := seededMemory(t)

	_, err := m.Template(context.Background(), templatestore.Ref{Name: "missing"})
	require.ErrorIs(t, err, templatestore.ErrNotFound)

	_, err = m.Template(context.Background(), templatestore.Ref{Name: "order-shipped", Language: "en"})
	require.ErrorIs(t, err, templatestore.ErrNotFound, "inactive templates are not served")
}

func TestMemory_PutReplacesAndValidates(t *testing.T) {
	t.Parallel()

	m := templatestore.NewMemory(templatestore.WithFallbackLanguage("de"))
	require.NoError(t, m.PutTemplate(templatestore.Template{Name: "welcome", Language: "en", Body: "v1"}))
	require.NoError(t, m.PutTemplate(templatestore.Template{Name: "welcome", Language: "en", Body: "v2"}))
	require.NoError(t, m.PutTemplate(templatestore.Template{Name: "welcome", Language: "de", Body: "hallo"}))

	got, err := m.Template(context.Background(), templatestore.Ref{Name: "welcome", Language: "en"})
	require.NoError(t, err)
	assert.Equal(t, "v2", got)

	got, err = m.Template(context.Background(), templatestore.Ref{Name: "welcome", Language: "fr"})
	require.NoError(t, err)
	assert.Equal(t, "hallo", got)

	require.ErrorIs(t, m.PutTemplate(templatestore.Template{Name: "x", Status: "archived"}), templatestore.ErrInvalidStatus)
	require.ErrorIs(t, m.PutPartial(templatestore.Partial{Name: "x", Kind: "sidebar"}), templatestore.ErrInvalidKind)
}

func TestMemory_PartialsScopedByRequestContext(t *testing.T) {
	t.Parallel()

	m := templatestore.NewMemory()
	for _, p := range []templatestore.Partial{
		{Name: "header", Kind: templatestore.PartialHeader, Language: "en", Body: "Hello"},
		{Name: "header", Kind: templatestore.PartialHeader, Language: "de", Body: "Hallo"},
		{Name: "footer", Kind: templatestore.PartialFooter, Language: "en", Body: "Bye"},
		{Name: "footer", Kind: templatestore.PartialFooter, Channel: "b2b", Language: "en", Body: "B2B bye"},
		{Name: "legacy", Language: "en", Body: "old", Status: templatestore.StatusDeleted},
	} {
		require.NoError(t, m.PutPartial(p))
	}

	ctx := notify.WithRequestContext(context.Background(), notify.RequestContext{Channel: "b2b", LanguageCode: "de"})
	got, err := m.Partials(ctx)
	require.NoError(t, err)
	assert.Equal(t, []mailer.Partial{
		{Name: "footer", Body: "B2B bye"},
		{Name: "header", Body: "Hallo"},
	}, got)

	got, err = m.Partials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []mailer.Partial{
		{Name: "footer", Body: "Bye"},
		{Name: "header", Body: "Hello"},
	}, got)
}

func TestRefFor(t *testing.T) {
	t.Parallel()

	ctx := notify.WithRequestContext(context.Background(), notify.RequestContext{Channel: "b2b", LanguageCode: "de"})
	assert.Equal(t, templatestore.Ref{Name: "welcome", Channel: "b2b", Language: "de"}, templatestore.RefFor(ctx, "welcome"))
	assert.Equal(t, templatestore.Ref{Name: "welcome"}, templatestore.RefFor(context.Background(), "welcome"))
}
