package transport_test

import (
	"context"
	"testing"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/courier/pkg/mailer"
	"github.com/dmitrymomot/courier/pkg/mailer/file"
	"github.com/dmitrymomot/courier/pkg/mailer/resend"
	"github.com/dmitrymomot/courier/pkg/mailer/ses"
	"github.com/dmitrymomot/courier/pkg/mailer/smtp"
	"github.com/dmitrymomot/courier/pkg/transport"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cfg     transport.Config
		name    string
		wantErr bool
	}{
		{name: "nil", cfg: nil, wantErr: true},
		{name: "none", cfg: transport.None{}},
		{name: "smtp", cfg: transport.SMTP{Config: smtp.Config{Host: "smtp.example.com", Port: 587}}},
		{name: "smtp without host", cfg: transport.SMTP{Config: smtp.Config{Port: 587}}, wantErr: true},
		{name: "smtp bad port", cfg: transport.SMTP{Config: smtp.Config{Host: "localhost", Port: 70000}}, wantErr: true},
		{name: "smtp oauth2 incomplete", cfg: transport.SMTP{Config: smtp.Config{Host: "localhost", Port: 587, OAuth2: &smtp.OAuth2Config{ClientID: "id"}}}, wantErr: true},
		{name: "file", cfg: transport.File{Config: file.Config{OutputPath: "./var/mail"}}},
		{name: "file without path", cfg: transport.File{}, wantErr: true},
		{name: "ses", cfg: transport.SES{Config: ses.Config{Region: "eu-west-1"}}},
		{name: "ses half credentials", cfg: transport.SES{Config: ses.Config{Region: "eu-west-1", AccessKeyID: "AKIA"}}, wantErr: true},
		{name: "resend without key", cfg: transport.Resend{Config: resend.Config{}}, wantErr: true},
		{name: "testing", cfg: transport.Testing{OnSend: func(context.Context, *mailer.Email) error { return nil }}},
		{name: "testing without callback", cfg: transport.Testing{}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := transport.Validate(tt.cfg)
			if tt.wantErr {
				require.ErrorIs(t, err, transport.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestEnvConfig_Build(t *testing.T) {
	t.Parallel()

	parse := func(t *testing.T, vars map[string]string) transport.EnvConfig {
		t.Helper()
		var cfg transport.EnvConfig
		require.NoError(t, env.ParseWithOptions(&cfg, env.Options{Environment: vars}))
		return cfg
	}

	t.Run("defaults to none", func(t *testing.T) {
		t.Parallel()
		cfg, err := parse(t, map[string]string{}).Build()
		require.NoError(t, err)
		assert.Equal(t, transport.KindNone, cfg.Kind())
	})

	t.Run("smtp", func(t *testing.T) {
		t.Parallel()
		cfg, err := parse(t, map[string]string{
			"MAIL_TRANSPORT": "smtp",
			"SMTP_HOST":      "smtp.example.com",
			"SMTP_USERNAME":  "user",
			"SMTP_PORT":      "465",
		}).Build()
		require.NoError(t, err)

		s, ok := cfg.(transport.SMTP)
		require.True(t, ok)
		assert.Equal(t, "smtp.example.com", s.Host)
		assert.Equal(t, 465, s.Port)
		assert.Nil(t, s.OAuth2)
	})

	t.Run("file", func(t *testing.T) {
		t.Parallel()
		cfg, err := parse(t, map[string]string{"MAIL_TRANSPORT": "file", "FILE_RAW": "true"}).Build()
		require.NoError(t, err)
		assert.Equal(t, transport.File{Config: file.Config{OutputPath: "./var/mail", Raw: true}}, cfg)
	})

	t.Run("missing provider settings", func(t *testing.T) {
		t.Parallel()
		_, err := parse(t, map[string]string{"MAIL_TRANSPORT": "postmark"}).Build()
		require.ErrorIs(t, err, transport.ErrInvalidConfig)
	})

	t.Run("unknown kind", func(t *testing.T) {
		t.Parallel()
		_, err := parse(t, map[string]string{"MAIL_TRANSPORT": "pigeon"}).Build()
		require.ErrorIs(t, err, transport.ErrUnknownKind)
	})

	t.Run("testing cannot come from env", func(t *testing.T) {
		t.Parallel()
		_, err := parse(t, map[string]string{"MAIL_TRANSPORT": "testing"}).Build()
		require.ErrorIs(t, err, transport.ErrUnknownKind)
	})
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, transport.Kind(""), transport.KindOf(nil))
	assert.Equal(t, transport.KindSES, transport.KindOf(transport.SES{}))
}
