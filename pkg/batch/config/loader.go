package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ripline/ripline/pkg/batch/support/configbinder"
	"github.com/ripline/ripline/pkg/batch/support/logger"
)

// envPlaceholder matches ${VAR} and ${VAR:default}.
var envPlaceholder = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::([^}]*))?\}`)

// Load parses YAML configuration, expanding ${ENV:default} placeholders
// against the process environment. A .env file next to the binary is
// loaded first when present. Settings absent from the document keep
// their defaults.
func Load(data []byte) (*Config, error) {
	if err := godotenv.Load(); err == nil {
		logger.Debugf("Loaded environment from .env file.")
	}

	expanded := envPlaceholder.ReplaceAllStringFunc(string(data), func(m string) string {
		groups := envPlaceholder.FindStringSubmatch(m)
		if v, ok := os.LookupEnv(groups[1]); ok {
			return v
		}
		return groups[2]
	})

	properties := make(map[string]interface{})
	if err := yaml.Unmarshal([]byte(expanded), &properties); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := NewDefaultConfig()
	if err := configbinder.BindProperties(properties, cfg); err != nil {
		return nil, fmt.Errorf("failed to bind configuration: %w", err)
	}
	return cfg, nil
}

// LoadFile reads and parses the configuration file at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file '%s': %w", path, err)
	}
	return Load(data)
}
