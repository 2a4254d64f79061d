package config

import (
	"fmt"
	"log"

	"github.com/ilyakaznacheev/cleanenv"
)

// Run modes
const (
	ModeAll    = "all"    // HTTP server with an embedded worker
	ModeServer = "server" // HTTP server only
	ModeWorker = "worker" // background worker only
)

const devSessionSecret = "dev-secret-change-in-production-use-openssl-rand-hex-32"

// Config holds application configuration loaded from environment variables
type Config struct {
	Env  string `env:"ENV" env-default:"development"`
	Port string `env:"PORT" env-default:"8080"`
	Mode string `env:"MODE" env-default:"all"`

	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleCallbackURL  string `env:"GOOGLE_CALLBACK_URL" env-default:"http://localhost:8080/auth/google/callback"`
	SessionSecret      string `env:"SESSION_SECRET"`
	EncryptionKey      string `env:"ENCRYPTION_KEY"`

	LogLevel  string `env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `env:"LOG_FORMAT" env-default:"text"`

	PageSize int `env:"PAGE_SIZE" env-default:"10"`

	ModerationWebhookURL string `env:"MODERATION_WEBHOOK_URL"`
	WebhookSecret        string `env:"WEBHOOK_SECRET"`
	WebhookStubMode      bool   `env:"WEBHOOK_STUB_MODE" env-default:"true"`
	DigestSchedule       string `env:"DIGEST_SCHEDULE" env-default:"0 8 * * *"`
	DigestTimezone       string `env:"DIGEST_TIMEZONE" env-default:"Asia/Jakarta"`

	AdminEmail  string `env:"ADMIN_EMAIL"`
	SeedDevData bool   `env:"SEED_DEV_DATA" env-default:"false"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	// Warn if using default session secret (insecure for production)
	if cfg.SessionSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("SESSION_SECRET is required in production")
		}
		cfg.SessionSecret = devSessionSecret
		log.Println("WARNING: Using default SESSION_SECRET. Generate a secure secret with: openssl rand -hex 32")
	}

	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("PAGE_SIZE must be positive, got %d", cfg.PageSize)
	}

	switch cfg.Mode {
	case ModeAll, ModeServer, ModeWorker:
	default:
		return nil, fmt.Errorf("unknown MODE %q (want %s, %s or %s)", cfg.Mode, ModeAll, ModeServer, ModeWorker)
	}

	if cfg.Mode == ModeWorker && cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required in worker mode")
	}

	return &cfg, nil
}

// IsProduction reports whether the app runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// WorkerEnabled reports whether background jobs can run in this process.
func (c *Config) WorkerEnabled() bool {
	return c.RedisURL != "" && c.Mode != ModeServer
}

// ServerEnabled reports whether this process serves HTTP.
func (c *Config) ServerEnabled() bool {
	return c.Mode != ModeWorker
}
