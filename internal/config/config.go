package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	HTTPAddr           string
	CORSAllowedOrigins []string

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBPath            string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int
	DBMigrate         bool

	Redis     RedisConfig
	RateLimit RateLimitConfig
	Scheduler SchedulerConfig

	PortfolioMetrics PortfolioMetricsConfig

	LeaseSettingsFile string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (c RedisConfig) Enabled() bool {
	return strings.TrimSpace(c.Addr) != ""
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	Burst             int
}

type SchedulerConfig struct {
	Enabled             bool
	RunIntervalSeconds  int64
	InvoiceJobEnabled   bool
	StatusSyncEnabled   bool
	JobTimeoutSeconds   int64
	LockTTLSeconds      int64
	InvoiceBatchSize    int
	StatusSyncBatchSize int
}

type PortfolioMetricsConfig struct {
	Enabled         bool
	Exporter        string
	Endpoint        string
	AuthToken       string
	IntervalSeconds int64
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:            getenv("APP_SERVICE", "leasing"),
		AppVersion:         getenv("APP_VERSION", "0.1.0"),
		Environment:        getenv("ENVIRONMENT", "development"),
		HTTPAddr:           getenv("HTTP_ADDR", ":8080"),
		CORSAllowedOrigins: parseList(getenv("CORS_ALLOWED_ORIGINS", "")),
		OTLPEndpoint:       getenv("OTLP_ENDPOINT", "localhost:4317"),
		DBType:             getenv("DATABASE_TYPE", "postgres"),
		DBHost:             getenv("DATABASE_HOST", "localhost"),
		DBPort:             getenv("DATABASE_PORT", "5432"),
		DBName:             getenv("DATABASE_NAME", "leasing"),
		DBUser:             getenv("DATABASE_USER", "postgres"),
		DBPassword:         getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:          getenv("DATABASE_SSLMODE", "disable"),
		DBPath:             getenv("DATABASE_PATH", ""),
		DBMaxIdleConn:      int(getenvInt64("DATABASE_MAX_IDLE_CONN", 5)),
		DBMaxOpenConn:      int(getenvInt64("DATABASE_MAX_OPEN_CONN", 20)),
		DBConnMaxLifetime:  int(getenvInt64("DATABASE_CONN_MAX_LIFETIME", 1800)),
		DBConnMaxIdleTime:  int(getenvInt64("DATABASE_CONN_MAX_IDLE_TIME", 300)),
		DBMigrate:          getenvBool("DATABASE_MIGRATE", true),
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			Password: strings.TrimSpace(getenv("REDIS_PASSWORD", "")),
			DB:       int(getenvInt64("REDIS_DB", 0)),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getenvBool("RATE_LIMIT_ENABLED", true),
			RequestsPerSecond: getenvFloat("RATE_LIMIT_RPS", 20),
			Burst:             int(getenvInt64("RATE_LIMIT_BURST", 40)),
		},
		Scheduler: SchedulerConfig{
			Enabled:             getenvBool("SCHEDULER_ENABLED", true),
			RunIntervalSeconds:  getenvInt64("SCHEDULER_RUN_INTERVAL_SECONDS", 3600),
			InvoiceJobEnabled:   getenvBool("SCHEDULER_INVOICE_JOB_ENABLED", true),
			StatusSyncEnabled:   getenvBool("SCHEDULER_STATUS_SYNC_ENABLED", true),
			JobTimeoutSeconds:   getenvInt64("SCHEDULER_JOB_TIMEOUT_SECONDS", 120),
			LockTTLSeconds:      getenvInt64("SCHEDULER_LOCK_TTL_SECONDS", 300),
			InvoiceBatchSize:    int(getenvInt64("SCHEDULER_INVOICE_BATCH_SIZE", 200)),
			StatusSyncBatchSize: int(getenvInt64("SCHEDULER_STATUS_SYNC_BATCH_SIZE", 500)),
		},
		PortfolioMetrics: PortfolioMetricsConfig{
			Enabled:         getenvBool("PORTFOLIO_METRICS_ENABLED", false),
			Exporter:        strings.ToLower(getenv("PORTFOLIO_METRICS_EXPORTER", "")),
			Endpoint:        strings.TrimSpace(getenv("PORTFOLIO_METRICS_ENDPOINT", "")),
			AuthToken:       strings.TrimSpace(getenv("PORTFOLIO_METRICS_AUTH_TOKEN", "")),
			IntervalSeconds: getenvInt64("PORTFOLIO_METRICS_INTERVAL_SECONDS", 900),
		},
		LeaseSettingsFile: strings.TrimSpace(getenv("LEASE_SETTINGS_FILE", "")),
	}
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func parseList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
