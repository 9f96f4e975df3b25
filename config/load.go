package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML config file, expands environment variables, and
// merges it over Default. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("cannot read config file %q: %w", path, err)
	}

	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader([]byte(ExpandEnv(string(data)))))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// ExpandEnv replaces ${VAR} and ${VAR:-default} with environment values.
// Unset variables without a default expand to the empty string.
func ExpandEnv(input string) string {
	return os.Expand(input, func(name string) string {
		name, def, hasDefault := strings.Cut(name, ":-")
		if value, ok := os.LookupEnv(name); ok && value != "" {
			return value
		}
		if hasDefault {
			return def
		}
		return ""
	})
}
