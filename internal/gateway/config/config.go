// Package config holds the gateway daemon's running configuration, built
// from validated Options via the same two-step pattern used elsewhere in
// this codebase.
package config

import (
	"github.com/kiosk404/hivegate/internal/gateway/options"
)

// Config is the running configuration of the gateway daemon.
type Config struct {
	*options.Options
}

// CreateConfigFromOptions wraps already-validated Options into a Config.
func CreateConfigFromOptions(opts *options.Options) (*Config, error) {
	return &Config{opts}, nil
}
