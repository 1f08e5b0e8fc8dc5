// Package config loads client configuration from ~/.courseterm/config.yaml
// with environment variable expansion, falling back to env vars and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"courseterm/internal/tokenstore"
)

// DefaultBaseURL points at the hosted CourseWork Lite deployment.
const DefaultBaseURL = "https://coursework-lite.onrender.com"

type Config struct {
	// BaseURL is the root of the CourseWork Lite API.
	BaseURL string `yaml:"baseURL"`
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.BaseURL, validation.Required, is.URL),
	)
}

// Load resolves configuration in precedence order:
// COURSETERM_BASE_URL env var > config.yaml > built-in default.
// A local .env file is read first so development overrides need no shell setup.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{BaseURL: DefaultBaseURL}

	path, err := Path()
	if err != nil {
		return Config{}, err
	}
	b, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read config file %s: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(b))), &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if v := strings.TrimSpace(os.Getenv("COURSETERM_BASE_URL")); v != "" {
		cfg.BaseURL = v
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func Path() (string, error) {
	dir, err := tokenstore.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}
