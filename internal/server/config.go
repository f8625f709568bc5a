// Package server provides configuration helpers that define runtime defaults,
// validation, and rate-limiting parameters for the chat relay.
package server

import (
	"strings"
	"sync"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

// RateLimitConfig defines the parameters for per-connection event rate limiting.
type RateLimitConfig struct {
	Burst          int
	RefillInterval time.Duration
}

// Config holds the server configuration settings including security controls.
type Config struct {
	Port            string
	AllowedOrigins  []string
	MaxMessageSize  int64
	RateLimit       RateLimitConfig
	LogLevel        string
	ShutdownTimeout time.Duration
}

// environment mirrors Config as it is read from the process environment.
type environment struct {
	Port                    string        `env:"SERVER_PORT,default=:8080"`
	AllowedOrigins          string        `env:"ALLOWED_ORIGINS,default=http://localhost:8080"`
	MaxMessageSize          int64         `env:"MAX_MESSAGE_SIZE,default=4096"`
	RateLimitBurst          int           `env:"RATE_LIMIT_BURST,default=5"`
	RateLimitRefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL,default=1s"`
	LogLevel                string        `env:"LOG_LEVEL,default=INFO"`
	ShutdownTimeout         time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

var (
	configMu        sync.RWMutex
	activeConfig    Config
	allowedOrigins  map[string]struct{}
	allowAllOrigins bool
)

func init() {
	SetConfig(nil)
}

func defaultConfig() Config {
	return Config{
		Port: ":8080",
		AllowedOrigins: []string{
			"http://localhost:8080",
		},
		MaxMessageSize: 4096,
		RateLimit: RateLimitConfig{
			Burst:          5,
			RefillInterval: time.Second,
		},
		LogLevel:        "INFO",
		ShutdownTimeout: 10 * time.Second,
	}
}

func sanitizeConfig(cfg Config) Config {
	defaults := defaultConfig()

	if cfg.Port == "" {
		cfg.Port = defaults.Port
	}

	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = defaults.MaxMessageSize
	}

	if cfg.RateLimit.Burst <= 0 {
		cfg.RateLimit.Burst = defaults.RateLimit.Burst
	}

	if cfg.RateLimit.RefillInterval <= 0 {
		cfg.RateLimit.RefillInterval = defaults.RateLimit.RefillInterval
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}

	normalizedOrigins, allowAll := normalizeOrigins(cfg.AllowedOrigins)
	cfg.AllowedOrigins = normalizedOrigins

	configMu.Lock()
	defer configMu.Unlock()

	activeConfig = cfg
	allowAllOrigins = allowAll
	allowedOrigins = make(map[string]struct{}, len(normalizedOrigins))
	for _, origin := range normalizedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	return cfg
}

// SetConfig applies the provided configuration. Passing nil resets to defaults.
func SetConfig(cfg *Config) {
	if cfg == nil {
		sanitizeConfig(defaultConfig())
		return
	}

	sanitized := *cfg
	sanitized.AllowedOrigins = append([]string(nil), cfg.AllowedOrigins...)
	sanitizeConfig(sanitized)
}

func currentConfig() Config {
	configMu.RLock()
	defer configMu.RUnlock()

	cfg := activeConfig
	cfg.AllowedOrigins = append([]string(nil), cfg.AllowedOrigins...)
	return cfg
}

// NewConfig creates a Config instance populated with default values for all settings.
func NewConfig() *Config {
	cfg := defaultConfig()
	return &cfg
}

// NewConfigFromEnv creates a Config from environment variables, after loading
// an optional .env file from the working directory. Unset variables fall
// back to defaults; malformed ones are reported as an error.
func NewConfigFromEnv() (*Config, error) {
	_ = godotenv.Load()

	var e environment
	if _, err := env.UnmarshalFromEnviron(&e); err != nil {
		return nil, err
	}

	return &Config{
		Port:           e.Port,
		AllowedOrigins: parseOrigins(e.AllowedOrigins),
		MaxMessageSize: e.MaxMessageSize,
		RateLimit: RateLimitConfig{
			Burst:          e.RateLimitBurst,
			RefillInterval: e.RateLimitRefillInterval,
		},
		LogLevel:        e.LogLevel,
		ShutdownTimeout: e.ShutdownTimeout,
	}, nil
}

func parseOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
