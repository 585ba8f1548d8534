package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config carries every externally tunable setting of the client core.
type Config struct {
	APIURL      string        `env:"WORKCITY_API_URL, default=http://localhost:3001/api"`
	Env         string        `env:"ENV,              default=development"`
	LogLevel    string        `env:"LOG_LEVEL,        default=info"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT,     default=10s"`

	// SessionPath is where the file-backed session slot lives. Empty means
	// <user config dir>/workcity/session.json.
	SessionPath string `env:"WORKCITY_SESSION_PATH"`

	// DemoSecret signs locally synthesized demo tokens. It never guards
	// anything server-side.
	DemoSecret string `env:"WORKCITY_DEMO_SECRET, default=workcity-demo"`

	Redis RedisConfig
	Mock  MockConfig
}

// RedisConfig selects the optional Redis-backed session slot. When Addr is
// empty the file slot is used.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

// MockConfig tunes the local mock API used for demos and integration tests.
type MockConfig struct {
	Port      string `env:"MOCK_PORT,       default=3001"`
	JWTSecret string `env:"MOCK_JWT_SECRET, default=mock-secret"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// DemoEnabled reports whether the demo login bypass may be taken. It is
// hard-disabled in production so the synthetic identity cannot ship live.
func (c *Config) DemoEnabled() bool {
	return c.Env != "production"
}
