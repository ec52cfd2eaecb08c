package smtp

import "time"

// Config holds SMTP server configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	OAuth2      *OAuth2Config `envPrefix:"OAUTH2_"`
	Host        string        `env:"HOST" validate:"required,hostname|ip"`
	Username    string        `env:"USERNAME"`
	Password    string        `env:"PASSWORD"`
	From        string        `env:"FROM"`
	Port        int           `env:"PORT" envDefault:"587" validate:"required,min=1,max=65535"`
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"30s"`
	Logging     bool          `env:"LOGGING"`
	InsecureTLS bool          `env:"INSECURE_TLS"`
}

// OAuth2Config enables XOAUTH2 authentication with tokens obtained through
// the client credentials flow.
type OAuth2Config struct {
	ClientID     string   `env:"CLIENT_ID" validate:"required"`
	ClientSecret string   `env:"CLIENT_SECRET" validate:"required"`
	TokenURL     string   `env:"TOKEN_URL" validate:"required,url"`
	Scopes       []string `env:"SCOPES"`
}
