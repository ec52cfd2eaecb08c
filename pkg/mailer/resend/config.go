package resend

// Config holds Resend email provider configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	APIKey      string `env:"API_KEY" validate:"required"`
	SenderEmail string `env:"FROM_EMAIL" validate:"omitempty,email"`
	SenderName  string `env:"FROM_NAME"`
}

// DefaultFrom returns the configured sender in RFC 5322 form.
func (c Config) DefaultFrom() string {
	if c.SenderEmail == "" {
		return ""
	}
	if c.SenderName == "" {
		return c.SenderEmail
	}
	return c.SenderName + " <" + c.SenderEmail + ">"
}
