package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// New reads configuration from environment variables and unmarshals them into
// a struct of type T. Each binary declares its own T composed of the groups it needs.
func New[T any]() (T, error) {
	return NewWithEnvironment[T](nil)
}

// NewWithEnvironment is New with an explicit environment instead of the process
// one. A nil environment means the process environment.
func NewWithEnvironment[T any](environment map[string]string) (T, error) {
	var cfg T
	opts := env.Options{Environment: environment}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}
