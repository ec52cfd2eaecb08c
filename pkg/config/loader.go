package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	cacheMu sync.Mutex
	cache   = make(map[reflect.Type]any)

	dotenvOnce sync.Once
)

// Load parses environment variables into v using env struct tags.
//
// The first call loads ./.env when present; variables already set in the
// process win over the file. Each config type is parsed once and served from
// a cache afterwards. Failed parses are not cached.
//
// Example:
//
//	var cfg courier.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})

	key := reflect.TypeFor[T]()

	cacheMu.Lock()
	defer cacheMu.Unlock()

	if cached, ok := cache[key]; ok {
		*v = cached.(T)
		return nil
	}

	var parsed T
	if err := env.Parse(&parsed); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	cache[key] = parsed
	*v = parsed
	return nil
}

// MustLoad is Load that panics on failure.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}

// Reload drops the cached value of T and parses it again.
func Reload[T any](v *T) error {
	cacheMu.Lock()
	delete(cache, reflect.TypeFor[T]())
	cacheMu.Unlock()
	return Load(v)
}

// LoadEnv loads env files in order; later files override earlier ones and the
// process environment. The cache is cleared so the next Load sees the values.
func LoadEnv(paths ...string) error {
	dotenvOnce.Do(func() {})
	if err := godotenv.Overload(paths...); err != nil {
		return errors.Join(ErrLoadEnvFile, err)
	}
	ResetCache()
	return nil
}

// ResetCache clears every cached config.
func ResetCache() {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	clear(cache)
}
