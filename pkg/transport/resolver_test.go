package transport_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/courier/pkg/mailer/file"
	"github.com/dmitrymomot/courier/pkg/mailer/smtp"
	"github.com/dmitrymomot/courier/pkg/transport"
)

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

func TestResolver_Static(t *testing.T) {
	t.Parallel()

	cfg := transport.SMTP{Config: smtp.Config{Host: "smtp.example.com", Port: 587}}
	got, err := transport.NewResolver(transport.Static(cfg)).Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestResolver_DynamicReceivesContext(t *testing.T) {
	t.Parallel()

	type key struct{}
	src := transport.Dynamic(func(ctx context.Context) (transport.Config, error) {
		if ctx.Value(key{}) == "b2b" {
			return transport.None{}, nil
		}
		return transport.File{Config: file.Config{OutputPath: "/tmp/mail"}}, nil
	})
	r := transport.NewResolver(src)

	got, err := r.Resolve(context.WithValue(context.Background(), key{}, "b2b"))
	require.NoError(t, err)
	assert.Equal(t, transport.KindNone, got.Kind())

	got, err = r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, transport.KindFile, got.Kind())
}

func TestResolver_DynamicError(t *testing.T) {
	t.Parallel()

	boom := errors.New("lookup failed")
	r := transport.NewResolver(transport.Dynamic(func(context.Context) (transport.Config, error) {
		return nil, boom
	}))

	_, err := r.Resolve(context.Background())
	require.ErrorIs(t, err, transport.ErrInvalidConfig)
	require.ErrorIs(t, err, boom)
}

func TestResolver_NoSource(t *testing.T) {
	t.Parallel()

	_, err := transport.NewResolver(nil).Resolve(context.Background())
	require.ErrorIs(t, err, transport.ErrNoTransport)

	got, err := transport.NewResolver(nil, transport.WithDevMode("./var/mail")).Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, transport.File{Config: file.Config{OutputPath: "./var/mail"}}, got)
}

func TestResolver_DevModeOverridesAndWarns(t *testing.T) {
	t.Parallel()

	log, buf := bufferLogger()
	r := transport.NewResolver(
		transport.Static(transport.SMTP{Config: smtp.Config{Host: "smtp.example.com", Port: 587}}),
		transport.WithDevMode("/tmp/dev-mail"),
		transport.WithLogger(log),
	)
	assert.True(t, r.DevMode())

	got, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, transport.File{Config: file.Config{OutputPath: "/tmp/dev-mail"}}, got)
	assert.Contains(t, buf.String(), "transport replaced by file transport")
	assert.Contains(t, buf.String(), "transport=smtp")
}

func TestResolver_DevModeFileBaseDoesNotWarn(t *testing.T) {
	t.Parallel()

	log, buf := bufferLogger()
	r := transport.NewResolver(
		transport.Static(transport.File{Config: file.Config{OutputPath: "/elsewhere", Raw: true}}),
		transport.WithDevMode("/tmp/dev-mail"),
		transport.WithLogger(log),
	)

	got, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, transport.File{Config: file.Config{OutputPath: "/tmp/dev-mail"}}, got)
	assert.Empty(t, buf.String())
}
