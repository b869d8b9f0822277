package config

import (
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	req := require.New(t)

	cfg, err := New()

	req.NoError(err)
	req.Equal("8080", cfg.APIServerPort)
	req.Equal("/socket", cfg.WSPath)
	req.Equal([]string{"*"}, cfg.AllowedOrigins)
	req.Equal(16, cfg.SendBufferSize)
	req.Equal(30*time.Minute, cfg.PresenceTTL)
	req.Equal(EnvProd, cfg.Env)
	req.False(cfg.RedisEnabled())
}

func TestNew_From_Environment(t *testing.T) {
	req := require.New(t)
	t.Setenv("ENV", "dev")
	t.Setenv("ALLOWED_ORIGINS", "example.com,*.example.org")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("PRESENCE_TTL", "5m")

	cfg, err := New()

	req.NoError(err)
	req.Equal(EnvDev, cfg.Env)
	req.Equal([]string{"example.com", "*.example.org"}, cfg.AllowedOrigins)
	req.True(cfg.RedisEnabled())
	req.Equal("6379", cfg.RedisPort)
	req.Equal(5*time.Minute, cfg.PresenceTTL)
}

func TestNew_Invalid(t *testing.T) {
	cases := []struct{ key, value string }{
		{"ENV", "staging"},
		{"SEND_BUFFER_SIZE", "0"},
		{"SEND_BUFFER_SIZE", "lots"},
		{"PRESENCE_TTL", "-1s"},
	}
	for _, tc := range cases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := New()
			require.Error(t, err)
		})
	}
}
