package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Redis      RedisConfig
	OpenSearch OpenSearchConfig
	Database   DatabaseConfig
	Sentry     SentryConfig
	HotPool    HotPoolConfig
	Ledger     LedgerConfig
	Ingest     IngestConfig
	Publish    PublishConfig
	RateLimit  RateLimitConfig
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Port               string
	GinMode            string
	Environment        string
	CORSAllowedOrigins string
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// OpenSearchConfig holds OpenSearch connection configuration.
type OpenSearchConfig struct {
	URL                string
	Username           string
	Password           string
	InsecureSkipVerify bool
}

// DatabaseConfig holds the Postgres connection used for the behavior audit log.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// SentryConfig holds Sentry error tracking configuration.
type SentryConfig struct {
	DSN              string
	Environment      string
	Release          string
	TracesSampleRate float64
	Enabled          bool
}

// HotPoolConfig controls the hot-pool loader's query shape and admission rule.
type HotPoolConfig struct {
	// Sizes for the four hot queries: all-tags, india, bollywood, series.
	AllSize       int
	IndiaSize     int
	BollywoodSize int
	SeriesSize    int

	HotAdmissionFloor int64 // discard candidates below this hot value when building the pool
	TagMatchMinScore  float64
	TagMatchHotFloor  int64 // discard tag-match candidates at or below this hot value
}

// LedgerConfig controls the per-device recommendation ledger.
type LedgerConfig struct {
	DeviceTTLSeconds   int   // TTL applied to a device's ledger key when a read reseeds it from the hot pool
	ServedHalfCap      int   // max entries kept in the served (score <= 0) half after a merge
	PendingHalfCap     int   // max entries kept in the pending (score > 0) half after a merge
	V1ShardPrefixChars string
}

// IngestConfig controls behavior ingestion debouncing.
type IngestConfig struct {
	DebounceTTLSeconds int
	WorkerCount        int
}

// PublishConfig controls publish-id resolution batching.
type PublishConfig struct {
	BatchSize            int
	EnrichVersionCeiling int // client version at/above which recommend responses get publish ids
}

// RateLimitConfig holds per-endpoint rate limits (requests per minute).
type RateLimitConfig struct {
	GuessLikeLimit int
	RecommendLimit int
	BehaviorLimit  int
	WhitelistIPs   string
}

// Load loads configuration from environment variables, falling back to a
// .env file in the working directory when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		redisDB = 0
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			GinMode:            getEnv("GIN_MODE", "debug"),
			Environment:        getEnv("ENVIRONMENT", "development"),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		OpenSearch: OpenSearchConfig{
			URL:                getEnv("OPENSEARCH_URL", "http://localhost:9200"),
			Username:           getEnv("OPENSEARCH_USERNAME", ""),
			Password:           getEnv("OPENSEARCH_PASSWORD", ""),
			InsecureSkipVerify: getEnv("OPENSEARCH_INSECURE_SKIP_VERIFY", "true") == "true",
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "recommend"),
			Password: getEnv("DB_PASSWORD", "CHANGEME_SECURE_PASSWORD_HERE"),
			Name:     getEnv("DB_NAME", "recommend_db"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Sentry: SentryConfig{
			DSN:              getEnv("SENTRY_DSN", ""),
			Environment:      getEnv("SENTRY_ENVIRONMENT", "development"),
			Release:          getEnv("SENTRY_RELEASE", ""),
			TracesSampleRate: getEnvFloat("SENTRY_TRACES_SAMPLE_RATE", 1.0),
			Enabled:          getEnv("SENTRY_ENABLED", "false") == "true",
		},
		HotPool: HotPoolConfig{
			AllSize:           getEnvInt("HOT_POOL_ALL_SIZE", 700),
			IndiaSize:         getEnvInt("HOT_POOL_INDIA_SIZE", 200),
			BollywoodSize:     getEnvInt("HOT_POOL_BOLLYWOOD_SIZE", 500),
			SeriesSize:        getEnvInt("HOT_POOL_SERIES_SIZE", 200),
			HotAdmissionFloor: getEnvInt64("HOT_POOL_ADMISSION_FLOOR", 20_000_000),
			TagMatchMinScore:  getEnvFloat("HOT_POOL_TAG_MATCH_MIN_SCORE", 20.0),
			TagMatchHotFloor:  getEnvInt64("HOT_POOL_TAG_MATCH_HOT_FLOOR", 100_000),
		},
		Ledger: LedgerConfig{
			DeviceTTLSeconds:   getEnvInt("LEDGER_DEVICE_TTL_SECONDS", 2_592_000),
			ServedHalfCap:      getEnvInt("LEDGER_SERVED_HALF_CAP", 500),
			PendingHalfCap:     getEnvInt("LEDGER_PENDING_HALF_CAP", 500),
			V1ShardPrefixChars: getEnv("LEDGER_V1_SHARD_PREFIX_CHARS", "01234567"),
		},
		Ingest: IngestConfig{
			DebounceTTLSeconds: getEnvInt("INGEST_DEBOUNCE_TTL_SECONDS", 300),
			WorkerCount:        getEnvInt("INGEST_WORKER_COUNT", 4),
		},
		Publish: PublishConfig{
			BatchSize:            getEnvInt("PUBLISH_BATCH_SIZE", 100),
			EnrichVersionCeiling: getEnvInt("PUBLISH_ENRICH_VERSION_CEILING", 11300),
		},
		RateLimit: RateLimitConfig{
			GuessLikeLimit: getEnvInt("RATE_LIMIT_GUESS_LIKE", 120),
			RecommendLimit: getEnvInt("RATE_LIMIT_RECOMMEND", 120),
			BehaviorLimit:  getEnvInt("RATE_LIMIT_BEHAVIOR", 300),
			WhitelistIPs:   getEnv("RATE_LIMIT_WHITELIST_IPS", ""),
		},
	}

	return cfg, nil
}

// GetDatabaseURL returns a PostgreSQL connection string.
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
		c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}
