// Package config loads environment-driven configuration for the server.
package config

import (
	"fmt"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Logging   LoggingConfig
	Checkout  CheckoutConfig
	Highlight HighlightConfig
	HTTP      HTTPConfig
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host      string `env:"HOST,default=0.0.0.0"`
	Port      int    `env:"PORT,default=3000"`
	StaticDir string `env:"STATIC_DIR,default="`
}

// DatabaseConfig controls the relational store. An empty DSN selects the
// in-memory store.
type DatabaseConfig struct {
	Driver          string `env:"DATABASE_DRIVER,default=postgres"`
	DSN             string `env:"DATABASE_URL,default="`
	MaxOpenConns    int    `env:"DATABASE_MAX_OPEN_CONNS,default=10"`
	MaxIdleConns    int    `env:"DATABASE_MAX_IDLE_CONNS,default=5"`
	ConnMaxLifetime int    `env:"DATABASE_CONN_MAX_LIFETIME_SECONDS,default=300"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level      string `env:"LOG_LEVEL,default=info"`
	Format     string `env:"LOG_FORMAT,default=text"`
	Output     string `env:"LOG_OUTPUT,default=stdout"`
	FilePrefix string `env:"LOG_FILE_PREFIX,default=blackpeopleeats"`
}

// CheckoutConfig configures the payment-session provider. Without a secret
// key the checkout service returns a mock session URL.
type CheckoutConfig struct {
	StripeSecretKey string `env:"STRIPE_SECRET_KEY,default="`
	StripeEndpoint  string `env:"STRIPE_API_URL,default=https://api.stripe.com"`
	AppURL          string `env:"APP_URL,default=http://localhost:3000"`
}

// HighlightConfig configures the generative-content provider. Without an API
// key the highlights service serves only the static fallback table.
type HighlightConfig struct {
	GeminiAPIKey   string `env:"GEMINI_API_KEY,default="`
	GeminiEndpoint string `env:"GEMINI_API_URL,default=https://generativelanguage.googleapis.com"`
	Model          string `env:"GEMINI_MODEL,default=gemini-2.5-flash"`
	TimeoutSeconds int    `env:"GEMINI_TIMEOUT_SECONDS,default=15"`
}

// HTTPConfig configures cross-cutting HTTP behavior.
type HTTPConfig struct {
	CORSOrigins       string `env:"CORS_ALLOWED_ORIGINS,default=*"`
	RateLimitPerSec   int    `env:"RATE_LIMIT_PER_SECOND,default=50"`
	RateLimitBurst    int    `env:"RATE_LIMIT_BURST,default=100"`
	RequestTimeoutSec int    `env:"REQUEST_TIMEOUT_SECONDS,default=30"`
}

// Load reads .env (if present) and decodes the configuration from the
// environment.
func Load() (*Config, error) {
	_ = godotenv.Load() // allow .env for local runs

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Server.Port)
	}
	if c.Database.DSN != "" && c.Database.Driver == "" {
		return fmt.Errorf("DATABASE_DRIVER required when DATABASE_URL is set")
	}
	return nil
}

// AllowedOrigins splits the configured CORS origin list.
func (c *HTTPConfig) AllowedOrigins() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
