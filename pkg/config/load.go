package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultDotEnv is read when LoadOptions.DotEnv is nil.
const DefaultDotEnv = ".env"

// Overrides are command-line values. Zero values are not applied.
type Overrides struct {
	Host            string
	Port            int
	Secret          string
	LogDir          string
	LogLevel        string
	DefaultAPIKey   string
	AlternateAPIKey string
	Headed          bool
}

// LoadOptions selects the configuration sources.
type LoadOptions struct {
	// File is an optional YAML configuration file.
	File string

	// DotEnv lists .env files; earlier files win. Missing files are skipped.
	// Nil reads DefaultDotEnv; an empty slice reads nothing.
	DotEnv []string

	// Environ replaces os.Environ() when non-nil.
	Environ []string

	Overrides Overrides
}

// Load builds and validates a Config. Precedence, highest first: overrides,
// process environment, .env files, YAML file, defaults.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	if opts.File != "" {
		if err := loadFile(opts.File, cfg); err != nil {
			return nil, err
		}
	}

	environ, err := environment(opts)
	if err != nil {
		return nil, err
	}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	opts.Overrides.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadFile loads configuration from a YAML file
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// environment merges the .env files under the process environment without
// touching the process environment itself.
func environment(opts LoadOptions) (map[string]string, error) {
	files := opts.DotEnv
	if files == nil {
		files = []string{DefaultDotEnv}
	}

	merged := make(map[string]string)
	for _, f := range files {
		vals, err := godotenv.Read(f)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
		for k, v := range vals {
			if _, ok := merged[k]; !ok {
				merged[k] = v
			}
		}
	}

	environ := opts.Environ
	if environ == nil {
		environ = os.Environ()
	}
	for k, v := range env.ToMap(environ) {
		merged[k] = v
	}
	return merged, nil
}

func (o Overrides) apply(cfg *Config) {
	if o.Host != "" {
		cfg.Server.Host = o.Host
	}
	if o.Port != 0 {
		cfg.Server.Port = o.Port
	}
	if o.Secret != "" {
		cfg.Server.Secret = o.Secret
	}
	if o.LogDir != "" {
		cfg.Log.Dir = o.LogDir
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	if o.DefaultAPIKey != "" {
		cfg.Providers.Default.APIKey = o.DefaultAPIKey
	}
	if o.AlternateAPIKey != "" {
		cfg.Providers.Alternate.APIKey = o.AlternateAPIKey
	}
	if o.Headed {
		cfg.Browser.Headless = false
	}
}
