package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	require.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
	require.Equal(t, DriverMemory, cfg.LedgerDriver)
	require.Equal(t, ":memory:", cfg.DatabaseFile)
	require.Equal(t, 24*time.Hour, cfg.InviteRetention)
	require.Equal(t, 64, cfg.SendBuffer)
	require.EqualValues(t, 4096, cfg.MaxFrameBytes)
	require.Equal(t, 3001, cfg.Port)
	require.Equal(t, 10*time.Minute, cfg.HousekeepingInterval)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("LOBBY_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("LOBBY_LEDGER_DRIVER", "SQLite")
	t.Setenv("LOBBY_DATABASE_FILE", "/data/ledger.db")
	t.Setenv("LOBBY_INVITE_RETENTION", "90")
	t.Setenv("LOBBY_FRAMES_PER_SECOND", "5")
	t.Setenv("LOBBY_FRAME_BURST", "7")
	t.Setenv("PORT", "not-a-number")
	t.Setenv("RATELIMIT_UPGRADE_BURST", "3")

	cfg := LoadConfig()

	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	require.Equal(t, DriverSQLite, cfg.LedgerDriver)
	require.Equal(t, "/data/ledger.db", cfg.DatabaseFile)
	require.Equal(t, 90*time.Minute, cfg.InviteRetention)
	require.Equal(t, 3001, cfg.Port)
	require.Equal(t, 3, cfg.RateLimits.Upgrade.Burst)

	fl := cfg.FrameLimit()
	require.Equal(t, 5, fl.RequestsPerWindow)
	require.Equal(t, time.Second, fl.Window)
	require.Equal(t, 7, fl.Burst)
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"unknown driver", func(c *Config) { c.LedgerDriver = "postgres" }, "LOBBY_LEDGER_DRIVER"},
		{"sqlite without file", func(c *Config) { c.LedgerDriver = DriverSQLite; c.DatabaseFile = "" }, "LOBBY_DATABASE_FILE"},
		{"zero retention", func(c *Config) { c.InviteRetention = 0 }, "LOBBY_INVITE_RETENTION"},
		{"zero send buffer", func(c *Config) { c.SendBuffer = 0 }, "LOBBY_SEND_BUFFER"},
		{"zero frame size", func(c *Config) { c.MaxFrameBytes = 0 }, "LOBBY_MAX_FRAME_BYTES"},
		{"zero burst", func(c *Config) { c.FrameBurst = 0 }, "LOBBY_FRAME_BURST"},
		{"port out of range", func(c *Config) { c.Port = 70000 }, "PORT"},
		{"bad rate limit", func(c *Config) { c.RateLimits.API.Window = 0 }, "RATELIMIT_API"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
