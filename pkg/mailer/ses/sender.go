package ses

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/smithy-go"

	"github.com/dmitrymomot/courier/pkg/mailer"
)

// ErrRejected is returned when SES refuses the message itself.
// Sending it again will not help.
var ErrRejected = errors.New("ses: message rejected")

// Config holds Amazon SES configuration.
// Static credentials are optional; without them the default AWS chain is used.
type Config struct {
	Region           string `env:"REGION" validate:"required"`
	AccessKeyID      string `env:"ACCESS_KEY_ID" validate:"required_with=SecretAccessKey"`
	SecretAccessKey  string `env:"SECRET_ACCESS_KEY" validate:"required_with=AccessKeyID"`
	SessionToken     string `env:"SESSION_TOKEN"`
	Endpoint         string `env:"ENDPOINT" validate:"omitempty,url"`
	ConfigurationSet string `env:"CONFIGURATION_SET"`
	From             string `env:"FROM"`
}

// API is the subset of the SES v2 client used by Sender.
type API interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Sender implements mailer.Sender using the SES v2 SendEmail API with raw MIME content.
type Sender struct {
	client API
	config Config
}

// New creates a sender with a client built from the AWS default configuration.
func New(ctx context.Context, cfg Config) (*Sender, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: ses: load aws config: %v", mailer.ErrConfiguration, err)
	}

	client := sesv2.NewFromConfig(awsCfg, func(o *sesv2.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewWithClient(cfg, client), nil
}

// NewWithClient creates a sender around an existing SES client.
func NewWithClient(cfg Config, client API) *Sender {
	return &Sender{client: client, config: cfg}
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	if email.From == "" && s.config.From != "" {
		cp := *email
		cp.From = s.config.From
		email = &cp
	}

	raw, err := mailer.RawMessage(email)
	if err != nil {
		return err
	}

	input := &sesv2.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses:  email.To,
			CcAddresses:  email.CC,
			BccAddresses: email.BCC,
		},
		Content: &types.EmailContent{
			Raw: &types.RawMessage{Data: raw},
		},
	}
	if email.From != "" {
		input.FromEmailAddress = aws.String(email.From)
	}
	if s.config.ConfigurationSet != "" {
		input.ConfigurationSetName = aws.String(s.config.ConfigurationSet)
	}
	for name, value := range email.Tags {
		input.EmailTags = append(input.EmailTags, types.MessageTag{
			Name:  aws.String(name),
			Value: aws.String(tagValue(value)),
		})
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return wrapError(err)
	}
	return nil
}

// wrapError classifies SES API errors.
func wrapError(err error) error {
	var rejected *types.MessageRejected
	if errors.As(err, &rejected) {
		return fmt.Errorf("%w: %w: %v", mailer.ErrSendFailed, ErrRejected, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "MailFromDomainNotVerifiedException", "AccountSuspendedException", "SendingPausedException":
			return fmt.Errorf("%w: %w: %v", mailer.ErrSendFailed, ErrRejected, err)
		}
		return fmt.Errorf("%w: ses %s: %w", mailer.ErrSendFailed, apiErr.ErrorCode(), err)
	}

	return fmt.Errorf("%w: ses: %w", mailer.ErrSendFailed, err)
}

// tagValue renders a tag value. SES requires a non-empty value.
func tagValue(v any) string {
	switch val := v.(type) {
	case nil, struct{}:
		return "true"
	case string:
		if val == "" {
			return "true"
		}
		return val
	default:
		return fmt.Sprint(val)
	}
}
