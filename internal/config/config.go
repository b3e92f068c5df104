package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// placeholderURL is the value the starter template ships with; treating it
// as unconfigured keeps a copy-pasted .env from pointing at nothing.
const placeholderURL = "your_supabase_url_here"

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// CORS (the marketing site and dashboard run in a browser)
	AllowedOrigins []string

	// Supabase
	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseServiceKey string

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Cache
	ProfileCacheTTL time.Duration

	// Auth
	AuthInitTimeout time.Duration // bounded wait for AuthStore.Init
	SessionSecret   string        // signs mock-mode session tokens

	// Mock-mode local state (stands in for the browser's localStorage)
	StatePath string

	// Observability
	OTLPEndpoint string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),

		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseAnonKey:    getEnv("SUPABASE_ANON_KEY", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 50),

		ProfileCacheTTL: getEnvDuration("PROFILE_CACHE_TTL", 5*time.Minute),

		AuthInitTimeout: getEnvDuration("AUTH_INIT_TIMEOUT", 3*time.Second),
		SessionSecret:   getEnv("SESSION_SECRET", "zenthra-default-dev-secret-change-me"),

		StatePath: getEnv("STATE_PATH", ".zenthra-state.json"),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}
}

// MockMode reports whether the process runs against the mock backend.
// The decision is static: made once at composition time, never re-evaluated.
func (c *Config) MockMode() bool {
	return c.SupabaseURL == "" || c.SupabaseAnonKey == "" || c.SupabaseURL == placeholderURL
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
