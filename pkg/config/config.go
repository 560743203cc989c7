// Package config holds the server configuration.
//
// A Config is assembled once at startup from, in increasing precedence:
// built-in defaults, an optional YAML file, a .env file, the process
// environment and command-line overrides. It is never modified afterwards;
// components receive the values they need when they are constructed.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/gobwas/glob"
	"go.uber.org/zap/zapcore"
)

// Default values
const (
	DefaultPort              = 4000
	DefaultSecretHeader      = "x-api-secret"
	DefaultMaxBodyBytes      = 50 << 20
	DefaultShutdownTimeout   = 15 * time.Second
	DefaultNavigationTimeout = 60 * time.Second
	DefaultViewportWidth     = 1280
	DefaultViewportHeight    = 720
	DefaultEnvironment       = "development"
	DefaultLogLevel          = "info"

	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultGeminiModel   = "gemini-flash-latest"
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-4o"
)

// Config is the complete server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	Browser   BrowserConfig   `yaml:"browser"`
	Scrape    ScrapeConfig    `yaml:"scrape"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig configures the HTTP server and access control.
type ServerConfig struct {
	Host string `yaml:"host" env:"HOST"`
	Port int    `yaml:"port" env:"PORT"`

	// Secret enables access control when non-empty.
	Secret       string `yaml:"secret" env:"API_SECRET"`
	SecretHeader string `yaml:"secret_header" env:"API_SECRET_HEADER"`

	MaxBodyBytes    int64         `yaml:"max_body_bytes" env:"MAX_BODY_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`

	// Environment is "production" for release mode; anything else is development.
	Environment string `yaml:"environment" env:"GO_ENV"`

	// CORSOrigins lists allowed browser origins. Empty allows any origin.
	CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS"`
}

// ProvidersConfig holds one entry per model backend.
type ProvidersConfig struct {
	Default   ProviderConfig `yaml:"default" envPrefix:"GEMINI_"`
	Alternate ProviderConfig `yaml:"alternate" envPrefix:"OPENAI_"`
}

// ProviderConfig configures a single backend.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key" env:"API_KEY"`
	Model   string `yaml:"model" env:"MODEL"`
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
}

// BrowserConfig configures the headless renderer.
type BrowserConfig struct {
	Headless          bool          `yaml:"headless" env:"BROWSER_HEADLESS"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout" env:"BROWSER_NAVIGATION_TIMEOUT"`
	ViewportWidth     int           `yaml:"viewport_width" env:"BROWSER_VIEWPORT_WIDTH"`
	ViewportHeight    int           `yaml:"viewport_height" env:"BROWSER_VIEWPORT_HEIGHT"`

	// SkipInstall assumes the driver and chromium are already installed.
	SkipInstall bool `yaml:"skip_install" env:"BROWSER_SKIP_INSTALL"`
}

// ScrapeConfig restricts which pages may be rendered.
type ScrapeConfig struct {
	AllowedHosts []string `yaml:"allowed_hosts" env:"SCRAPE_ALLOWED_HOSTS"`
	DeniedHosts  []string `yaml:"denied_hosts" env:"SCRAPE_DENIED_HOSTS"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Dir receives server.log. Empty logs to the console only.
	Dir   string `yaml:"dir" env:"LOG_DIR"`
	Level string `yaml:"level" env:"LOG_LEVEL"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            DefaultPort,
			SecretHeader:    DefaultSecretHeader,
			MaxBodyBytes:    DefaultMaxBodyBytes,
			ShutdownTimeout: DefaultShutdownTimeout,
			Environment:     DefaultEnvironment,
		},
		Providers: ProvidersConfig{
			Default: ProviderConfig{
				Model:   DefaultGeminiModel,
				BaseURL: DefaultGeminiBaseURL,
			},
			Alternate: ProviderConfig{
				Model:   DefaultOpenAIModel,
				BaseURL: DefaultOpenAIBaseURL,
			},
		},
		Browser: BrowserConfig{
			Headless:          true,
			NavigationTimeout: DefaultNavigationTimeout,
			ViewportWidth:     DefaultViewportWidth,
			ViewportHeight:    DefaultViewportHeight,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// IsProduction reports whether the server runs in production mode.
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

// AccessControlEnabled reports whether requests must be authorized.
func (c *ServerConfig) AccessControlEnabled() bool {
	return c.Secret != ""
}

// Validate checks the configuration for values no component can work with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.SecretHeader == "" {
		return fmt.Errorf("secret header name cannot be empty")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive")
	}

	if c.Browser.NavigationTimeout <= 0 {
		return fmt.Errorf("navigation_timeout must be positive")
	}
	if c.Browser.ViewportWidth < 0 || c.Browser.ViewportHeight < 0 {
		return fmt.Errorf("viewport dimensions cannot be negative")
	}

	for _, p := range append(append([]string(nil), c.Scrape.AllowedHosts...), c.Scrape.DeniedHosts...) {
		if _, err := glob.Compile(p, '.'); err != nil {
			return fmt.Errorf("invalid host pattern '%s': %w", p, err)
		}
	}

	if c.Providers.Default.Model == "" || c.Providers.Alternate.Model == "" {
		return fmt.Errorf("provider model cannot be empty")
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s (must be 'debug', 'info', 'warn' or 'error')", c.Log.Level)
	}

	return nil
}
