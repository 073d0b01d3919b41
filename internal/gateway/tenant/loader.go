package tenant

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces every ${NAME} occurrence with os.Getenv(NAME), per
// §6.1. A reference to an unset variable expands to the empty string,
// matching shell-style interpolation rather than failing the load.
func expandEnv(raw []byte) []byte {
	return envVarPattern.ReplaceAllFunc(raw, func(match []byte) []byte {
		name := envVarPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(name)))
	})
}

// parseDocument decodes a configuration document (YAML, per §6.1) after
// expanding ${NAME} environment references.
func parseDocument(raw []byte) (*document, error) {
	expanded := expandEnv(raw)
	var doc document
	if err := yaml.Unmarshal(expanded, &doc); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	return &doc, nil
}

// LoadFile reads path and loads it into the registry as generation 1.
func (r *Registry) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read configuration %s: %w", path, err)
	}
	return r.Load(context.Background(), raw)
}

// ReloadFile re-reads path and atomically swaps generations.
func (r *Registry) ReloadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read configuration %s: %w", path, err)
	}
	return r.Reload(context.Background(), raw)
}
