package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:":8080"`
	Environment   string `env:"ENVIRONMENT" envDefault:"development"`
	Debug         bool   `env:"DEBUG" envDefault:"false"`

	// Storage configuration
	AWSRegion     string `env:"AWS_REGION" envDefault:"eu-west-1"`
	NamePrefix    string `env:"NAME_PREFIX" envDefault:"ahkneemay"`
	UseMockStores bool   `env:"USE_MOCK_STORES" envDefault:"false"`

	// Images
	CDNBaseURL      string        `env:"CDN_BASE_URL"`
	SignedImageURLs bool          `env:"SIGNED_IMAGE_URLS" envDefault:"false"`
	SignedURLTTL    time.Duration `env:"SIGNED_URL_TTL" envDefault:"15m"`
	MaxUploadBytes  int64         `env:"MAX_UPLOAD_BYTES" envDefault:"5242880"`

	// Quick info
	RedisURL          string        `env:"REDIS_URL"`
	QuickInfoURL      string        `env:"QUICKINFO_URL" envDefault:"http://services.tvrage.com/tools/quickinfo.php"`
	QuickInfoCacheTTL time.Duration `env:"QUICKINFO_CACHE_TTL" envDefault:"1h"`
	QuickInfoTimeout  time.Duration `env:"QUICKINFO_TIMEOUT" envDefault:"5s"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Authentication
	JWTSecret     string        `env:"JWT_SECRET"`
	JWTIssuer     string        `env:"JWT_ISSUER" envDefault:"ahkneemay"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	BcryptCost    int           `env:"BCRYPT_COST" envDefault:"10"`
	AuthRateLimit int           `env:"AUTH_RATE_LIMIT" envDefault:"10"`
	SecureCookie  bool          `env:"SECURE_COOKIE" envDefault:"false"`

	// Feature flags
	EnableMetrics bool     `env:"ENABLE_METRICS" envDefault:"false"`
	EnableTracing bool     `env:"ENABLE_TRACING" envDefault:"false"`
	EnableCORS    bool     `env:"ENABLE_CORS" envDefault:"true"`
	CORSOrigins   []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	return parse(env.Options{})
}

// LoadFromMap loads configuration from vars instead of the process
// environment
func LoadFromMap(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.NamePrefix == "" {
		return fmt.Errorf("NAME_PREFIX is required")
	}
	if c.AWSRegion == "" {
		return fmt.Errorf("AWS_REGION is required")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}

	if c.IsProduction() {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.UseMockStores {
			return fmt.Errorf("USE_MOCK_STORES cannot be enabled in production")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
