// Package config loads runtime configuration for the proxy.
//
// Values are layered: built-in defaults, then an optional YAML file named by
// CONFIG_PATH, then environment variables. .env and .env.local are read first
// but never override variables already set by the runtime.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultUpstreamURL is the Google Books volumes endpoint.
const DefaultUpstreamURL = "https://www.googleapis.com/books/v1/volumes"

// ConfigPathEnvVar names the optional YAML config file.
const ConfigPathEnvVar = "CONFIG_PATH"

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Upstream UpstreamConfig `koanf:"upstream"`
	Logging  LoggingConfig  `koanf:"logging"`
}

type ServerConfig struct {
	Addr               string        `koanf:"addr" validate:"required"`
	ShutdownTimeout    time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	CORSAllowedOrigins string        `koanf:"cors_allowed_origins"`
	RateLimitRPS       float64       `koanf:"rate_limit_rps" validate:"gte=0"`
	RateLimitBurst     int           `koanf:"rate_limit_burst" validate:"gte=0"`
	EnableHSTS         bool          `koanf:"enable_hsts"`
}

type UpstreamConfig struct {
	BaseURL string `koanf:"base_url" validate:"required,url"`
	// APIKey is the server-held credential used when a request carries none.
	APIKey                  string        `koanf:"api_key"`
	Timeout                 time.Duration `koanf:"timeout" validate:"gte=0"`
	BreakerEnabled          bool          `koanf:"breaker_enabled"`
	BreakerFailureThreshold uint32        `koanf:"breaker_failure_threshold" validate:"gt=0"`
	BreakerOpenTimeout      time.Duration `koanf:"breaker_open_timeout" validate:"gt=0"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error disabled off"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// AllowedOrigins splits the comma separated origin list.
func (c ServerConfig) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:               ":4000",
			ShutdownTimeout:    10 * time.Second,
			CORSAllowedOrigins: "*",
			RateLimitRPS:       10,
			RateLimitBurst:     20,
		},
		Upstream: UpstreamConfig{
			BaseURL:                 DefaultUpstreamURL,
			BreakerEnabled:          true,
			BreakerFailureThreshold: 5,
			BreakerOpenTimeout:      30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

var envKeys = map[string]string{
	"APP_ADDR":                  "server.addr",
	"SHUTDOWN_TIMEOUT":          "server.shutdown_timeout",
	"CORS_ALLOWED_ORIGINS":      "server.cors_allowed_origins",
	"RATE_LIMIT_RPS":            "server.rate_limit_rps",
	"RATE_LIMIT_BURST":          "server.rate_limit_burst",
	"ENABLE_HSTS":               "server.enable_hsts",
	"UPSTREAM_BASE_URL":         "upstream.base_url",
	"UPSTREAM_API_KEY":          "upstream.api_key",
	"UPSTREAM_TIMEOUT":          "upstream.timeout",
	"BREAKER_ENABLED":           "upstream.breaker_enabled",
	"BREAKER_FAILURE_THRESHOLD": "upstream.breaker_failure_threshold",
	"BREAKER_OPEN_TIMEOUT":      "upstream.breaker_open_timeout",
	"LOG_LEVEL":                 "logging.level",
	"LOG_FORMAT":                "logging.format",
}

// envKey maps a known environment variable to its koanf path. Unknown
// variables map to "" and are skipped.
func envKey(name string) string {
	return envKeys[name]
}

// LoadEnvFiles reads .env and .env.local without overriding the environment.
func LoadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// Load builds the configuration from defaults, file and environment.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
