package config

import (
	"fmt"
	"github.com/caarlos0/env/v11"
	"time"
)

type Env string

const (
	EnvProd Env = "prod"
	EnvDev  Env = "dev"
)

func (e Env) IsValid() bool {
	switch e {
	case EnvProd, EnvDev:
		return true
	}
	return false
}

type Config struct {
	APIServerHost     string        `env:"API_SERVER_HOST"`
	APIServerPort     string        `env:"API_SERVER_PORT" envDefault:"8080"`
	WSPath            string        `env:"WS_PATH" envDefault:"/socket"`
	AllowedOrigins    []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	SendBufferSize    int           `env:"SEND_BUFFER_SIZE" envDefault:"16"`
	RedisHost         string        `env:"REDIS_HOST"`
	RedisPort         string        `env:"REDIS_PORT" envDefault:"6379"`
	RedisRelayChannel string        `env:"REDIS_RELAY_CHANNEL" envDefault:"presence:relay"`
	PresenceTTL       time.Duration `env:"PRESENCE_TTL" envDefault:"30m"`
	Env               Env           `env:"ENV" envDefault:"prod"`
}

// RedisEnabled reports whether the presence directory and relay channel should run.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

func New() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.Env.IsValid() {
		return nil, fmt.Errorf("invalid env variable (must be 'prod' or 'dev')")
	}
	if cfg.SendBufferSize <= 0 {
		return nil, fmt.Errorf("invalid send buffer size: %d", cfg.SendBufferSize)
	}
	if cfg.PresenceTTL <= 0 {
		return nil, fmt.Errorf("invalid presence ttl: %s", cfg.PresenceTTL)
	}
	return &cfg, nil
}
