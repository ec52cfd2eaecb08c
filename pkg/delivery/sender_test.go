package delivery_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/courier/pkg/delivery"
	"github.com/dmitrymomot/courier/pkg/mailer"
	"github.com/dmitrymomot/courier/pkg/mailer/file"
	"github.com/dmitrymomot/courier/pkg/mailer/resend"
	"github.com/dmitrymomot/courier/pkg/transport"
)

func testEmail() *mailer.Email {
	return &mailer.Email{
		From:    "shop@example.com",
		To:      []string{"alice@example.com"},
		Subject: "Order confirmation",
		HTML:    "<p>Thanks</p>",
	}
}

func TestSender_Testing_CallsBackOnce(t *testing.T) {
	t.Parallel()

	var calls int
	var got *mailer.Email
	cfg := transport.Testing{OnSend: func(_ context.Context, email *mailer.Email) error {
		calls++
		got = email
		return nil
	}}

	email := testEmail()
	require.NoError(t, delivery.New().Send(context.Background(), email, cfg))
	assert.Equal(t, 1, calls)
	assert.Same(t, email, got)
}

func TestSender_Testing_PropagatesError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	cfg := transport.Testing{OnSend: func(context.Context, *mailer.Email) error { return boom }}
	require.ErrorIs(t, delivery.New().Send(context.Background(), testEmail(), cfg), boom)

	require.ErrorIs(t, delivery.New().Send(context.Background(), testEmail(), transport.Testing{}), delivery.ErrNoCallback)
}

func TestSender_None(t *testing.T) {
	t.Parallel()

	require.NoError(t, delivery.New().Send(context.Background(), testEmail(), transport.None{}))
}

func TestSender_File(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "mail")
	err := delivery.New().Send(context.Background(), testEmail(), transport.File{Config: file.Config{OutputPath: dir}})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, file.ExtJSON, filepath.Ext(entries[0].Name()))
}

func TestSender_Unsupported(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, delivery.New().Send(context.Background(), testEmail(), nil), delivery.ErrUnsupportedTransport)
}

func TestSender_CachesAPIClients(t *testing.T) {
	t.Parallel()

	mt := httpmock.NewMockTransport()
	mt.RegisterResponder(http.MethodPost, "https://api.resend.com/emails",
		httpmock.NewStringResponder(http.StatusOK, `{"id":"msg_1"}`))

	s := delivery.New(delivery.WithHTTPClient(&http.Client{Transport: mt}))
	first := transport.Resend{Config: resend.Config{APIKey: "re_one"}}
	second := transport.Resend{Config: resend.Config{APIKey: "re_two"}}

	require.NoError(t, s.Send(context.Background(), testEmail(), first))
	require.NoError(t, s.Send(context.Background(), testEmail(), first))
	assert.Equal(t, 1, s.CachedClients())

	require.NoError(t, s.Send(context.Background(), testEmail(), second))
	assert.Equal(t, 2, s.CachedClients())
	assert.Equal(t, 3, mt.GetTotalCallCount())
}
