// Package config loads environment configuration into structs tagged for
// github.com/caarlos0/env/v11, reading a .env file through
// github.com/joho/godotenv on first use.
//
//	var cfg courier.Config
//	config.MustLoad(&cfg)
//
// Values are cached per type. Use Reload after changing the environment, and
// LoadEnv to load explicit env files (the CLI's --env-file flag).
package config
