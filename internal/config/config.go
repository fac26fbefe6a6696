package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port           string        `env:"PORT" envDefault:"8080"`
	DBPath         string        `env:"DB_PATH" envDefault:"sentencedash.db"`
	TimeoutSeconds int           `env:"TIMEOUT_SECONDS" envDefault:"60"`
	SweepInterval  time.Duration `env:"SWEEP_INTERVAL" envDefault:"30s"`
	CodeMin        int           `env:"CODE_MIN" envDefault:"1000"`
	CodeMax        int           `env:"CODE_MAX" envDefault:"9999"`
	AuditBuffer    int           `env:"AUDIT_BUFFER" envDefault:"64"`
	AllowOrigins   []string      `env:"ALLOW_ORIGINS" envDefault:"*"`
}

// Load parses configuration from environment variables.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if c.TimeoutSeconds <= 0 {
		return Config{}, fmt.Errorf("TIMEOUT_SECONDS must be positive, got %d", c.TimeoutSeconds)
	}
	if c.CodeMin > c.CodeMax {
		return Config{}, fmt.Errorf("CODE_MIN %d exceeds CODE_MAX %d", c.CodeMin, c.CodeMax)
	}
	return c, nil
}

// Timeout is the session idle window as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
