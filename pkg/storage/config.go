package storage

import "time"

// Config configures a Fetcher.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	// S3 enables s3://bucket/key locations.
	S3 S3Config `envPrefix:"S3_"`

	// LocalRoot confines local paths to this directory. Empty allows any path.
	LocalRoot string `env:"LOCAL_ROOT"`

	// MaxSize is the maximum size of a fetched file in bytes (default: 25MB).
	MaxSize int64 `env:"MAX_SIZE" envDefault:"26214400"`

	// HTTPTimeout bounds http(s) downloads (default: 30s).
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
}

// S3Config holds S3-compatible storage credentials.
// Without an access key the fetcher refuses s3:// locations.
type S3Config struct {
	// AccessKey is the AWS access key ID.
	AccessKey string `env:"ACCESS_KEY"`

	// SecretKey is the AWS secret access key.
	SecretKey string `env:"SECRET_KEY"`

	// Endpoint is the custom S3 endpoint URL (optional, for MinIO or other S3-compatible services).
	Endpoint string `env:"ENDPOINT"`

	// Region is the AWS region (default: us-east-1).
	Region string `env:"REGION" envDefault:"us-east-1"`

	// PathStyle enables path-style URLs (required for MinIO).
	PathStyle bool `env:"PATH_STYLE"`
}

// Default configuration values.
const (
	DefaultRegion      = "us-east-1"
	DefaultMaxSize     = 25 << 20 // 25MB
	DefaultHTTPTimeout = 30 * time.Second
)

// applyDefaults fills in default values for empty config fields.
func (c *Config) applyDefaults() {
	if c.S3.Region == "" {
		c.S3.Region = DefaultRegion
	}
	if c.MaxSize == 0 {
		c.MaxSize = DefaultMaxSize
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = DefaultHTTPTimeout
	}
}

// validate checks that the configuration is usable.
func (c *Config) validate() error {
	if c.MaxSize < 0 {
		return ErrInvalidConfig
	}
	if (c.S3.AccessKey == "") != (c.S3.SecretKey == "") {
		return ErrInvalidConfig
	}
	return nil
}
