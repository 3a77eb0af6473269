package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Secret    string // Required: HMAC signing secret for tokens
	Algorithm string // Optional: signing algorithm (HS256, HS384, HS512) (default: HS256)

	AccessTTL  time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTTL time.Duration // Optional: refresh token lifetime (default: 168h)
	Leeway     time.Duration // Optional: clock skew tolerance when validating (default: 0)

	TokenLocations []string // Optional: where tokens are read from (header, cookie) (default: header)
	CookieSecure   bool     // Optional: set Secure on token cookies (default: false, turn on behind TLS)

	BlocklistEnabled bool          // Optional: keep the revocation ledger (default: true)
	BlocklistScope   string        // Optional: which token types it covers (all, refresh) (default: all)
	BlocklistBackend string        // Optional: ledger backend (memory, sqlite) (default: sqlite)
	BlocklistGrace   time.Duration // Optional: extra store TTL past token expiry (default: 15m)

	DatabaseFile         string        // Optional: path to SQLite database file (default: ./turnstile.db)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired-record sweep interval (default: 1h)

	BootstrapUsername string // Optional: initial user created when the store is empty (default: admin)
	BootstrapPassword string // Optional: initial user's password; bootstrap is skipped when empty
}

func LoadConfig() Config {
	cfg := Config{
		Secret:    os.Getenv("TURNSTILE_SECRET"),
		Algorithm: getEnvOrDefault("TURNSTILE_ALGORITHM", "HS256"),

		AccessTTL:  getEnvDurationOrDefault("TURNSTILE_ACCESS_TTL", 15*time.Minute),
		RefreshTTL: getEnvDurationOrDefault("TURNSTILE_REFRESH_TTL", 7*24*time.Hour),
		Leeway:     getEnvDurationOrDefault("TURNSTILE_LEEWAY", 0),

		TokenLocations: splitList(getEnvOrDefault("TURNSTILE_TOKEN_LOCATIONS", "header")),
		CookieSecure:   getEnvBoolOrDefault("TURNSTILE_COOKIE_SECURE", false),

		BlocklistEnabled: getEnvBoolOrDefault("TURNSTILE_BLOCKLIST_ENABLED", true),
		BlocklistScope:   getEnvOrDefault("TURNSTILE_BLOCKLIST_SCOPE", "all"),
		BlocklistBackend: getEnvOrDefault("TURNSTILE_BLOCKLIST_BACKEND", "sqlite"),
		BlocklistGrace:   getEnvDurationOrDefault("TURNSTILE_BLOCKLIST_GRACE", 15*time.Minute),

		DatabaseFile:         getEnvOrDefault("TURNSTILE_DATABASE_FILE", "turnstile.db"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),

		BootstrapUsername: getEnvOrDefault("TURNSTILE_BOOTSTRAP_USERNAME", "admin"),
		BootstrapPassword: os.Getenv("TURNSTILE_BOOTSTRAP_PASSWORD"),
	}

	return cfg
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
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

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
