package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"DATABASE_DSN": "postgres://localhost/waitlist",
	}))
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, "postgres", cfg.DatabaseDriver)
	require.True(t, cfg.AutoMigrate)
	require.Equal(t, 5*time.Second, cfg.StoreTimeout)
	require.Equal(t, 5, cfg.LeaderboardSize)
	require.Equal(t, 30*time.Second, cfg.StatsCacheTTL)
	require.Equal(t, "none", cfg.EventsDriver)
	require.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	require.Empty(t, cfg.RedisAddr)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"DATABASE_DRIVER":      "memory",
		"LEADERBOARD_SIZE":     "10",
		"STORE_TIMEOUT":        "250ms",
		"EVENTS_DRIVER":        "kafka",
		"KAFKA_BROKERS":        "k1:9092,k2:9092",
		"CORS_ALLOWED_ORIGINS": "https://a.example,https://b.example",
	}))
	require.NoError(t, err)

	require.Equal(t, "memory", cfg.DatabaseDriver)
	require.Equal(t, 10, cfg.LeaderboardSize)
	require.Equal(t, 250*time.Millisecond, cfg.StoreTimeout)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	cases := map[string]map[string]string{
		"missing dsn":      {"DATABASE_DRIVER": "sqlite"},
		"unknown driver":   {"DATABASE_DRIVER": "oracle"},
		"unknown events":   {"DATABASE_DRIVER": "memory", "EVENTS_DRIVER": "smoke-signals"},
		"zero leaderboard": {"DATABASE_DRIVER": "memory", "LEADERBOARD_SIZE": "0"},
		"negative timeout": {"DATABASE_DRIVER": "memory", "STORE_TIMEOUT": "-1s"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadWith(context.Background(), envconfig.MapLookuper(env))
			require.Error(t, err)
		})
	}
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	_, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"DATABASE_DRIVER":  "memory",
		"LEADERBOARD_SIZE": "lots",
	}))
	require.Error(t, err)
}
