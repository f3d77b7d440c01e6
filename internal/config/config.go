package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Document store (Firestore REST)
	FirestoreBaseURL string
	FirestoreProject string
	FirestoreToken   string

	// Identity provider (Identity Toolkit REST)
	IdentityBaseURL  string
	IdentityTokenURL string
	IdentityAPIKey   string
	IdentityCertsURL string
	CertCacheTTL     time.Duration

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Cache
	CacheTTL time.Duration

	// Live updates
	WatchInterval time.Duration

	// Observability
	OTLPEndpoint string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		FirestoreBaseURL: getEnv("FIRESTORE_BASE_URL", "https://firestore.googleapis.com/v1"),
		FirestoreProject: getEnv("FIRESTORE_PROJECT_ID", ""),
		FirestoreToken:   getEnv("FIRESTORE_ACCESS_TOKEN", ""),

		IdentityBaseURL:  getEnv("IDENTITY_BASE_URL", "https://identitytoolkit.googleapis.com/v1"),
		IdentityTokenURL: getEnv("IDENTITY_TOKEN_URL", "https://securetoken.googleapis.com/v1"),
		IdentityAPIKey:   getEnv("IDENTITY_API_KEY", ""),
		IdentityCertsURL: getEnv("IDENTITY_CERTS_URL", "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"),
		CertCacheTTL:     getEnvDuration("CERT_CACHE_TTL", 1*time.Hour),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 50),

		CacheTTL: getEnvDuration("CACHE_TTL", 5*time.Minute),

		WatchInterval: getEnvDuration("WATCH_INTERVAL", 5*time.Second),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}
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
