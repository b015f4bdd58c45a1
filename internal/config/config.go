package config

import (
	"os"
	"strconv"
	"time"
)

// Sign-in-after-signup policies for the provisioning flow.
const (
	SignInBestEffort = "best-effort" // log the failure, keep provisioning
	SignInFailFast   = "fail-fast"   // abort provisioning on sign-in failure
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Cache (latest-evaluations feed)
	CacheTTL time.Duration

	// Observability
	OTLPEndpoint string

	// Supabase
	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseServiceKey string
	SupabaseJWTSecret  string

	// Storage
	EvaluationBucket string

	// Provisioning policy knobs
	SignInPolicy         string        // best-effort | fail-fast
	RollbackOnFailure    bool          // delete the identity when a fatal step fails after signup
	SessionReadyTimeout  time.Duration // readiness poll ceiling
	SessionReadyInterval time.Duration // readiness poll step
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	signInPolicy := getEnv("PROVISIONING_SIGNIN_POLICY", SignInBestEffort)
	if signInPolicy != SignInFailFast {
		signInPolicy = SignInBestEffort
	}

	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 50),

		CacheTTL: getEnvDuration("CACHE_TTL", 30*time.Second),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseAnonKey:    getEnv("SUPABASE_ANON_KEY", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		SupabaseJWTSecret:  getEnv("SUPABASE_JWT_SECRET", ""),

		EvaluationBucket: getEnv("EVALUATION_BUCKET", "evaluation-photos"),

		SignInPolicy:         signInPolicy,
		RollbackOnFailure:    getEnv("PROVISIONING_ROLLBACK", "false") == "true",
		SessionReadyTimeout:  getEnvDuration("PROVISIONING_READY_TIMEOUT", 2*time.Second),
		SessionReadyInterval: getEnvDuration("PROVISIONING_READY_INTERVAL", 100*time.Millisecond),
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
