package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrParsingConfig is returned when environment variables cannot be parsed
// into the configuration struct.
var ErrParsingConfig = errors.New("failed to parse configuration")

var (
	dotenvOnce sync.Once
	cache      sync.Map // reflect.Type -> T
)

// Load fills cfg from environment variables, loading a .env file on first use.
// The result is cached per type: later calls for the same type return the
// first loaded value.
func Load[T any](cfg *T) error {
	dotenvOnce.Do(func() {
		// A missing .env file is normal outside local development.
		_ = godotenv.Load()
	})

	key := reflect.TypeFor[T]()
	if v, ok := cache.Load(key); ok {
		*cfg = v.(T)
		return nil
	}

	var loaded T
	if err := env.Parse(&loaded); err != nil {
		return fmt.Errorf("%w: %w", ErrParsingConfig, err)
	}

	v, _ := cache.LoadOrStore(key, loaded)
	*cfg = v.(T)
	return nil
}

// MustLoad is like Load but panics on error. Useful during startup.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
