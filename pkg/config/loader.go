// Package config parses service configuration from the environment.
//
// Structs declare their surface with `env` tags; defaults live in
// `envDefault` and list values split on `envSeparator`. The storefront's
// own Config in internal/config is the canonical consumer: it maps
// UPSTREAM_BASE_URL, REDIS_ADDR, KAFKA_BROKERS and friends onto typed
// fields and layers its invariant checks on top of this parse step.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load populates cfg from environment variables according to its `env` tags.
// cfg must be a pointer to a struct.
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
