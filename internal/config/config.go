package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Port            string
	UpstreamTimeout time.Duration
	LogLevel        string

	// Upstream base URLs
	CartURL    string
	PaymentURL string

	// Roles allowed to hold a cart
	CartRoles []string

	// CORS
	CORSAllowOrigins []string

	// Sessions + event sequences. Empty DSN keeps sessions in memory.
	DatabaseDSN   string
	RunMigrations bool
	SessionTTL    time.Duration
	CookieSecure  bool

	// Snapshot cache. Empty address disables it.
	RedisAddr        string
	RedisPassword    string
	SnapshotCacheTTL time.Duration

	// Domain events. Empty URL disables publishing.
	RabbitURL string
}

func Load() Config {
	cfg := Config{
		Port:            getenv("PORT", "8080"),
		UpstreamTimeout: parseDuration(getenv("UPSTREAM_TIMEOUT", "10s"), 10*time.Second),
		LogLevel:        getenv("LOG_LEVEL", "info"),

		CartURL:    getenv("CART_URL", "http://arwoh-api:8080/api/"),
		PaymentURL: getenv("PAYMENT_URL", "http://arwoh-api:8080/api/"),

		CartRoles: splitCSV(getenv("CART_ROLES", "Customer"), "Customer"),

		CORSAllowOrigins: splitCSV(getenv("CORS_ALLOW_ORIGINS", "*"), "*"),

		DatabaseDSN:   os.Getenv("DATABASE_DSN"),
		RunMigrations: parseBool(getenv("RUN_MIGRATIONS", "true"), true),
		SessionTTL:    parseDuration(getenv("SESSION_TTL", "168h"), 7*24*time.Hour),
		CookieSecure:  parseBool(getenv("COOKIE_SECURE", "false"), false),

		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		SnapshotCacheTTL: parseDuration(getenv("SNAPSHOT_CACHE_TTL", "30m"), 30*time.Minute),

		RabbitURL: os.Getenv("RABBITMQ_URL"),
	}

	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func splitCSV(v, def string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{def}
	}
	return out
}

func parseDuration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func parseBool(v string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	default:
		return def
	}
}
