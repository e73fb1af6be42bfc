package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/breakroom/pkg/httpx"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

// Ledger drivers accepted by LOBBY_LEDGER_DRIVER.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

type Config struct {
	AllowedOrigins  []string      // WebSocket origins allowed to connect; "*" allows any (default: http://localhost:5173)
	LedgerDriver    string        // Invitation ledger driver (memory, sqlite) (default: memory)
	DatabaseFile    string        // SQLite database, sqlite driver only (default: :memory:)
	InviteRetention time.Duration // How long resolved invites are kept (default: 24h)

	SendBuffer      int   // Per-connection outbound queue length (default: 64)
	MaxFrameBytes   int64 // Largest accepted inbound frame (default: 4096)
	FramesPerSecond int   // Per-connection inbound frame rate (default: 20)
	FrameBurst      int   // Per-connection inbound burst (default: 40)

	RateLimits httpx.RateLimits // Per-route HTTP limits, see httpx.RateLimitsFromEnv

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 3001)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Invite sweep interval (default: 10m)
}

// LoadConfig reads the environment, after loading ./.env if one exists.
// Variables already set in the environment win over the file.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		AllowedOrigins:  splitList(getEnvOrDefault("LOBBY_ALLOWED_ORIGINS", "http://localhost:5173")),
		LedgerDriver:    strings.ToLower(getEnvOrDefault("LOBBY_LEDGER_DRIVER", DriverMemory)),
		DatabaseFile:    getEnvOrDefault("LOBBY_DATABASE_FILE", ":memory:"),
		InviteRetention: getEnvDurationOrDefault("LOBBY_INVITE_RETENTION", 24*time.Hour),

		SendBuffer:      getEnvIntOrDefault("LOBBY_SEND_BUFFER", 64),
		MaxFrameBytes:   int64(getEnvIntOrDefault("LOBBY_MAX_FRAME_BYTES", 4096)),
		FramesPerSecond: getEnvIntOrDefault("LOBBY_FRAMES_PER_SECOND", 20),
		FrameBurst:      getEnvIntOrDefault("LOBBY_FRAME_BURST", 40),

		RateLimits: httpx.RateLimitsFromEnv(),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 3001),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 10*time.Minute),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if c.LedgerDriver != DriverMemory && c.LedgerDriver != DriverSQLite {
		errs = append(errs, fmt.Errorf("LOBBY_LEDGER_DRIVER: unknown driver %q", c.LedgerDriver))
	}
	if c.LedgerDriver == DriverSQLite && c.DatabaseFile == "" {
		errs = append(errs, errors.New("LOBBY_DATABASE_FILE: required for the sqlite driver"))
	}
	if c.InviteRetention <= 0 {
		errs = append(errs, errors.New("LOBBY_INVITE_RETENTION: must be positive"))
	}
	if c.SendBuffer <= 0 {
		errs = append(errs, errors.New("LOBBY_SEND_BUFFER: must be positive"))
	}
	if c.MaxFrameBytes <= 0 {
		errs = append(errs, errors.New("LOBBY_MAX_FRAME_BYTES: must be positive"))
	}
	if c.FramesPerSecond <= 0 || c.FrameBurst <= 0 {
		errs = append(errs, errors.New("LOBBY_FRAMES_PER_SECOND and LOBBY_FRAME_BURST: must be positive"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT: %d out of range", c.Port))
	}
	if c.ShutdownGracePeriod <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_GRACE_PERIOD: must be positive"))
	}
	if c.HousekeepingInterval <= 0 {
		errs = append(errs, errors.New("HOUSEKEEPING_INTERVAL: must be positive"))
	}
	for name, rl := range map[string]httpx.RateLimitConfig{
		"UPGRADE": c.RateLimits.Upgrade,
		"API":     c.RateLimits.API,
		"PROBE":   c.RateLimits.Probe,
	} {
		if err := rl.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("RATELIMIT_%s: %w", name, err))
		}
	}

	return errors.Join(errs...)
}

// FrameLimit is the per-connection inbound frame budget.
func (c Config) FrameLimit() httpx.RateLimitConfig {
	return httpx.RateLimitConfig{
		RequestsPerWindow: c.FramesPerSecond,
		Window:            time.Second,
		Burst:             c.FrameBurst,
	}
}

func splitList(value string) []string {
	return lo.FilterMap(strings.Split(value, ","), func(item string, _ int) (string, bool) {
		item = strings.TrimSpace(item)
		return item, item != ""
	})
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
