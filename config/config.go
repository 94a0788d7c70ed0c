// Package config provides configuration management for the reconciliation service.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the complete application configuration.
type Config struct {
	Server        ServerConfig
	Auth          AuthConfig
	Database      DatabaseConfig
	Reconcile     ReconcileConfig
	Collaborators CollaboratorsConfig
	Tracing       TracingConfig
	Log           LogConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port       string
	RateLimit  int
	RateWindow time.Duration
	// RateLimiter selects the limiter: "window" (fixed window) or "bucket" (token bucket).
	RateLimiter      string
	RequestTimeout   time.Duration
	ShutdownTimeout  time.Duration
	BatchConcurrency int
	CORSOrigins      []string
}

// AuthConfig holds API key authentication configuration.
type AuthConfig struct {
	Enabled bool
	// APIKeys maps each key to the client it identifies.
	APIKeys map[string]string
}

// DatabaseConfig holds MongoDB and catalog configuration.
type DatabaseConfig struct {
	URI          string
	DatabaseName string
	Enabled      bool
	// MaxPoolSize and ConnectTimeout tune the client; zero keeps driver defaults.
	MaxPoolSize    uint64
	ConnectTimeout time.Duration
	// CatalogSeedFile is a JSON catalog loaded at startup.
	CatalogSeedFile string
	// CircuitBreaker configuration
	CircuitBreakerFailureThreshold int
	CircuitBreakerSuccessThreshold int
	CircuitBreakerTimeout          time.Duration
	Retry                          RetryConfig
}

// ReconcileConfig tunes package selection.
type ReconcileConfig struct {
	// Strategy is "matcher" or "optimizer".
	Strategy             string
	MinimizeCount        bool
	MinimizeWaste        bool
	AllowOverfill        bool
	MaxOverfillPercent   float64
	MaxCountPerCandidate int
}

// RetryConfig bounds retries of one collaborator class.
type RetryConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	AttemptTimeout  time.Duration
}

// CollaboratorConfig locates one HTTP collaborator. An empty URL disables it.
type CollaboratorConfig struct {
	URL    string
	APIKey string
	Retry  RetryConfig
}

// CollaboratorsConfig holds the optional external collaborators.
type CollaboratorsConfig struct {
	DoseParser     CollaboratorConfig
	Advisor        CollaboratorConfig
	AdvisorTimeout time.Duration
}

// TracingConfig holds OpenTelemetry configuration.
type TracingConfig struct {
	Enabled      bool
	ServiceName  string
	Environment  string
	OTLPEndpoint string
	SampleRate   float64
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Pretty bool
}

// Load creates a Config from environment variables.
func Load() Config {
	return Config{
		Server: ServerConfig{
			Port:             getEnv("PORT", "8080"),
			RateLimit:        getEnvInt("RATE_LIMIT", 100),
			RateWindow:       getEnvDuration("RATE_WINDOW", time.Minute),
			RateLimiter:      getEnv("RATE_LIMITER", "window"),
			RequestTimeout:   getEnvDuration("REQUEST_TIMEOUT", 60*time.Second),
			ShutdownTimeout:  getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
			BatchConcurrency: getEnvInt("BATCH_CONCURRENCY", 4),
			CORSOrigins:      parseList(os.Getenv("CORS_ORIGINS")),
		},
		Auth: AuthConfig{
			Enabled: getEnvBool("AUTH_ENABLED", false),
			APIKeys: parseAPIKeys(os.Getenv("API_KEYS")),
		},
		Database: DatabaseConfig{
			URI:                            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			DatabaseName:                   getEnv("MONGODB_DATABASE", "smart_scrip"),
			Enabled:                        getEnvBool("MONGODB_ENABLED", false),
			MaxPoolSize:                    uint64(max(getEnvInt("MONGODB_MAX_POOL_SIZE", 50), 0)),
			ConnectTimeout:                 getEnvDuration("MONGODB_CONNECT_TIMEOUT", 10*time.Second),
			CatalogSeedFile:                getEnv("CATALOG_SEED_FILE", ""),
			CircuitBreakerFailureThreshold: getEnvInt("CIRCUIT_BREAKER_FAILURE_THRESHOLD", 5),
			CircuitBreakerSuccessThreshold: getEnvInt("CIRCUIT_BREAKER_SUCCESS_THRESHOLD", 2),
			CircuitBreakerTimeout:          getEnvDuration("CIRCUIT_BREAKER_TIMEOUT", 30*time.Second),
			Retry:                          loadRetry("CATALOG", 3, 5*time.Second),
		},
		Reconcile: ReconcileConfig{
			Strategy:             getEnv("SELECTION_STRATEGY", "matcher"),
			MinimizeCount:        getEnvBool("OPTIMIZER_MINIMIZE_COUNT", true),
			MinimizeWaste:        getEnvBool("OPTIMIZER_MINIMIZE_WASTE", true),
			AllowOverfill:        getEnvBool("OPTIMIZER_ALLOW_OVERFILL", true),
			MaxOverfillPercent:   getEnvFloat("OPTIMIZER_MAX_OVERFILL_PERCENT", 20),
			MaxCountPerCandidate: getEnvInt("OPTIMIZER_MAX_COUNT_PER_CANDIDATE", 10),
		},
		Collaborators: CollaboratorsConfig{
			DoseParser: CollaboratorConfig{
				URL:    getEnv("DOSE_PARSER_URL", ""),
				APIKey: getEnv("DOSE_PARSER_API_KEY", ""),
				Retry:  loadRetry("DOSE_PARSER", 3, 30*time.Second),
			},
			Advisor: CollaboratorConfig{
				URL:    getEnv("ADVISOR_URL", ""),
				APIKey: getEnv("ADVISOR_API_KEY", ""),
				Retry:  loadRetry("ADVISOR", 1, 20*time.Second),
			},
			AdvisorTimeout: getEnvDuration("ADVISOR_TIMEOUT", 20*time.Second),
		},
		Tracing: TracingConfig{
			Enabled:      getEnvBool("TRACING_ENABLED", false),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "smart-scrip"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			SampleRate:   getEnvFloat("TRACING_SAMPLE_RATE", 1.0),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnvBool("LOG_PRETTY", false),
		},
	}
}

// loadRetry reads <PREFIX>_RETRY_* variables.
func loadRetry(prefix string, attempts int, attemptTimeout time.Duration) RetryConfig {
	return RetryConfig{
		MaxAttempts:     getEnvInt(prefix+"_RETRY_MAX_ATTEMPTS", attempts),
		InitialInterval: getEnvDuration(prefix+"_RETRY_INITIAL_INTERVAL", 200*time.Millisecond),
		MaxInterval:     getEnvDuration(prefix+"_RETRY_MAX_INTERVAL", 5*time.Second),
		AttemptTimeout:  getEnvDuration(prefix+"_RETRY_ATTEMPT_TIMEOUT", attemptTimeout),
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

// parseAPIKeys parses "key:client,key2:client2". A key without a client
// name is identified by a short prefix of itself.
func parseAPIKeys(s string) map[string]string {
	if s == "" {
		return nil
	}
	entries := strings.Split(s, ",")
	result := make(map[string]string, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		key, client, found := strings.Cut(e, ":")
		key = strings.TrimSpace(key)
		client = strings.TrimSpace(client)
		if key == "" {
			continue
		}
		if !found || client == "" {
			client = "key-" + key[:min(4, len(key))]
		}
		result[key] = client
	}
	return result
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			result = append(result, v)
		}
	}
	return result
}
