// Package config loads service settings from the environment.
package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DefaultSheetURL is the published CSV export of the daily metrics sheet.
const DefaultSheetURL = "https://docs.google.com/spreadsheets/d/1X5lAcD0uJVtmbEdPjnP6XlesS3pzsmd_/export?format=csv&gid=608001025"

// Config holds every runtime setting.
type Config struct {
	Addr            string        `envconfig:"HTTP_ADDR" default:":8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`

	SheetURL     string        `envconfig:"SHEET_CSV_URL"`
	SheetTimeout time.Duration `envconfig:"SHEET_TIMEOUT" default:"10s"`
	WindowDays   int           `envconfig:"WINDOW_DAYS" default:"30"`
	WindowAnchor string        `envconfig:"WINDOW_ANCHOR" default:"latest"`
	StrictSource bool          `envconfig:"STRICT_SOURCE" default:"false"`

	UpstreamURL      string        `envconfig:"UPSTREAM_API_URL" default:"http://localhost:3001"`
	UpstreamRPS      float64       `envconfig:"UPSTREAM_RPS" default:"5"`
	ActivityCacheTTL time.Duration `envconfig:"ACTIVITY_CACHE_TTL" default:"24h"`

	RedisAddr   string `envconfig:"REDIS_ADDR"`
	DatabaseDSN string `envconfig:"DATABASE_DSN"`

	JWTSecret   string `envconfig:"JWT_SECRET" default:"dev-secret"`
	JWTAudience string `envconfig:"JWT_AUDIENCE"`
}

// Load reads optional .env files, then the process environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env", ".env.local"}
	}
	for _, f := range envFiles {
		// Missing files are fine.
		_ = godotenv.Load(f)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SheetURL == "" {
		cfg.SheetURL = DefaultSheetURL
	}
	return &cfg, nil
}
