// Package config loads typed configuration structs from environment
// variables, with an optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrNilPointer is returned when Load receives a nil target.
	ErrNilPointer = errors.New("config: nil pointer passed to Load")
	// ErrParsingConfig wraps env parsing failures.
	ErrParsingConfig = errors.New("config: failed to parse environment")
)

var defaultEnvLoaded sync.Once

// Load populates cfg from environment variables using `env` struct tags.
// The first call loads the default .env file if one exists; a missing file
// is not an error.
func Load[T any](cfg *T) error {
	defaultEnvLoaded.Do(func() {
		_ = godotenv.Load()
	})

	if cfg == nil {
		return ErrNilPointer
	}

	if err := env.Parse(cfg); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad works like Load but panics on failure. Intended for configuration
// the application cannot start without.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}
