// Package config reads binary configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Validator is implemented by config structs with rules the env tags
// cannot express.
type Validator interface {
	Validate() error
}

// Load reads a T from the environment. When *T is a Validator it is
// validated as well.
func Load[T any]() (T, error) {
	cfg, err := env.ParseAs[T]()
	if err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if v, ok := any(&cfg).(Validator); ok {
		if err := v.Validate(); err != nil {
			return cfg, fmt.Errorf("invalid config: %w", err)
		}
	}
	return cfg, nil
}
