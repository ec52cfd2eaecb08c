package mailgun

import (
	"context"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/courier/pkg/mailer"
)

const messagesURL = `=~/mg\.example\.com/messages$`

func TestSender_Send(t *testing.T) {
	t.Parallel()

	transport := httpmock.NewMockTransport()
	var subject, to, html string
	transport.RegisterResponder(http.MethodPost, messagesURL, func(req *http.Request) (*http.Response, error) {
		if err := req.ParseMultipartForm(1 << 20); err != nil {
			return nil, err
		}
		subject = req.FormValue("subject")
		to = req.FormValue("to")
		html = req.FormValue("html")
		return httpmock.NewStringResponse(http.StatusOK, `{"id":"<1@mg.example.com>","message":"Queued. Thank you."}`), nil
	})

	s := NewWithHTTPClient(Config{Domain: "mg.example.com", APIKey: "key", From: "shop@mg.example.com"}, &http.Client{Transport: transport})
	err := s.Send(context.Background(), &mailer.Email{
		To:          []string{"alice@example.com"},
		Subject:     "Partially shipped",
		HTML:        "<p>Part of your order is on its way</p>",
		Text:        "Part of your order is on its way",
		Attachments: []mailer.Attachment{{Filename: "invoice.pdf", Content: []byte("%PDF")}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Partially shipped", subject)
	assert.Equal(t, "alice@example.com", to)
	assert.Contains(t, html, "on its way")
	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestSender_Send_Failure(t *testing.T) {
	t.Parallel()

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodPost, messagesURL,
		httpmock.NewStringResponder(http.StatusUnauthorized, `{"message":"Invalid private key"}`))

	s := NewWithHTTPClient(Config{Domain: "mg.example.com", APIKey: "bad"}, &http.Client{Transport: transport})
	err := s.Send(context.Background(), &mailer.Email{From: "a@mg.example.com", To: []string{"b@example.com"}, Subject: "s", Text: "t"})
	require.ErrorIs(t, err, mailer.ErrSendFailed)
}

func TestSender_Send_InvalidEmail(t *testing.T) {
	t.Parallel()

	transport := httpmock.NewMockTransport()
	s := NewWithHTTPClient(Config{Domain: "mg.example.com", APIKey: "key"}, &http.Client{Transport: transport})

	require.ErrorIs(t, s.Send(context.Background(), &mailer.Email{Subject: "s", Text: "t"}), mailer.ErrNoRecipient)
	assert.Zero(t, transport.GetTotalCallCount())
}
