package resend

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/resend/resend-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/courier/pkg/mailer"
)

func TestSender_Send(t *testing.T) {
	t.Parallel()

	transport := httpmock.NewMockTransport()
	hc := &http.Client{Transport: transport}

	var body map[string]any
	transport.RegisterResponder(http.MethodPost, "https://api.resend.com/emails",
		func(req *http.Request) (*http.Response, error) {
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				return nil, err
			}
			return httpmock.NewStringResponse(http.StatusOK, `{"id":"msg_1"}`), nil
		})

	s := NewWithHTTPClient(Config{APIKey: "re_test", SenderEmail: "shop@example.com", SenderName: "Shop"}, hc)
	err := s.Send(context.Background(), &mailer.Email{
		To:      []string{"alice@example.com"},
		Subject: "Hi",
		HTML:    "<p>Hi</p>",
		Tags:    mailer.SimpleTags("order-confirmation"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Shop <shop@example.com>", body["from"])
	assert.Equal(t, "Hi", body["subject"])
	assert.Equal(t, []any{map[string]any{"name": "order-confirmation", "value": "true"}}, body["tags"])
	assert.Equal(t, 1, transport.GetTotalCallCount())

	err = s.Send(context.Background(), &mailer.Email{Subject: "Hi", HTML: "<p>Hi</p>"})
	require.ErrorIs(t, err, mailer.ErrNoRecipient)
	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestTags(t *testing.T) {
	t.Parallel()

	got := tags(mailer.Tags{"order-shipped": struct{}{}, "shop id": 42, "carrier": "UPS/Ground"})
	assert.Equal(t, []resend.Tag{
		{Name: "carrier", Value: "UPS_Ground"},
		{Name: "order-shipped", Value: "true"},
		{Name: "shop_id", Value: "42"},
	}, got)
	assert.Nil(t, tags(nil))
}

func TestTagValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "true", tagValue(struct{}{}))
	assert.Equal(t, "true", tagValue(nil))
	assert.Equal(t, "x", tagValue("x"))
	assert.Equal(t, "false", tagValue(false))
	assert.Equal(t, "42", tagValue(42))
}

func TestConfig_DefaultFrom(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Config{}.DefaultFrom())
	assert.Equal(t, "a@example.com", Config{SenderEmail: "a@example.com"}.DefaultFrom())
}
