package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/courier/pkg/config"
)

type fileConfig struct {
	Name string `env:"CONFIG_TEST_NAME"`
	Port int    `env:"CONFIG_TEST_PORT" envDefault:"25"`
}

type requiredConfig struct {
	Value string `env:"CONFIG_TEST_REQUIRED,required,notEmpty"`
}

type cachedConfig struct {
	Value string `env:"CONFIG_TEST_CACHED"`
}

// Tests in this file mutate the process environment and must not run in parallel.

func TestLoad_NilPointer(t *testing.T) {
	var cfg *fileConfig
	require.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("CONFIG_TEST_NAME", "")
	t.Setenv("CONFIG_TEST_PORT", "")

	require.NoError(t, config.LoadEnv("testdata/.env.test"))

	var cfg fileConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "from file", cfg.Name)
	assert.Equal(t, 2525, cfg.Port)

	require.ErrorIs(t, config.LoadEnv("testdata/missing.env"), config.ErrLoadEnvFile)
}

func TestLoad_RequiredIsNotCachedOnFailure(t *testing.T) {
	config.ResetCache()

	var cfg requiredConfig
	require.ErrorIs(t, config.Load(&cfg), config.ErrParsingConfig)

	t.Setenv("CONFIG_TEST_REQUIRED", "set")
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "set", cfg.Value)
}

func TestLoad_CachedUntilReload(t *testing.T) {
	config.ResetCache()
	t.Setenv("CONFIG_TEST_CACHED", "first")

	var cfg cachedConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "first", cfg.Value)

	t.Setenv("CONFIG_TEST_CACHED", "second")
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "first", cfg.Value)

	require.NoError(t, config.Reload(&cfg))
	assert.Equal(t, "second", cfg.Value)
}

func TestMustLoad_Panics(t *testing.T) {
	config.ResetCache()
	t.Setenv("CONFIG_TEST_REQUIRED", "")

	assert.Panics(t, func() {
		var cfg requiredConfig
		config.MustLoad(&cfg)
	})
}
