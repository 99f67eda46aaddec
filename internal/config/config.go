package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Storage      StorageConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	Ticket       TicketConfig
	SLA          SLAConfig
	Broker       BrokerConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// StorageConfig selects the repository backend.
type StorageConfig struct {
	Driver       string
	DemoPassword string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	PoolSize    int
	DialTimeout time.Duration
	OpTimeout   time.Duration
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level  string
	Format string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// NotificationConfig holds mail and push transport settings.
type NotificationConfig struct {
	EmailFrom        string
	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPassword     string
	PushWebhookURL   string
	RetryAttempts    int
	BreakerThreshold int
	WorkerPoolSize   int
	SendConcurrency  int
	TaskTimeout      time.Duration
}

// TicketConfig holds ticket lifecycle parameters.
type TicketConfig struct {
	NumberPrefix        string
	Timezone            string
	DefaultSLADays      int
	DefaultPriorityCode string
	SpecificityKeywords []string
	NumberMaxAttempts   int
}

// SLAConfig drives the periodic due-date scans.
type SLAConfig struct {
	Enabled             bool
	WarningWindow       time.Duration
	WarningScanInterval time.Duration
	OverdueScanInterval time.Duration
	SuppressRepeats     bool
	WarningSuppressTTL  time.Duration
	OverdueSuppressTTL  time.Duration
}

// BrokerConfig configures the optional integration event publisher.
type BrokerConfig struct {
	AMQPURL  string
	Exchange string
}

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// DefaultSpecificityKeywords are the bank-proprietary channel and counterparty terms that make a
// policy description more specific than a generic one.
var DefaultSpecificityKeywords = []string{"BNI", "WONDR", "AGEN46", "BANK LAIN", "ANTAR BANK"}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	driver := strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverPostgres))
	if driver != StorageDriverPostgres && driver != StorageDriverMemory {
		return nil, fmt.Errorf("invalid STORAGE_DRIVER: %s", driver)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "complaint-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Storage: StorageConfig{
			Driver:       driver,
			DemoPassword: getEnv("DEMO_PASSWORD", "password123"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:        getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:    os.Getenv("REDIS_PASSWORD"),
			DB:          redisDB,
			PoolSize:    getEnvAsInt("REDIS_POOL_SIZE", 10),
			DialTimeout: getEnvAsDuration("REDIS_DIAL_TIMEOUT", 3*time.Second),
			OpTimeout:   getEnvAsDuration("REDIS_OP_TIMEOUT", time.Second),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "json")),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Notification: NotificationConfig{
			EmailFrom:        getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			SMTPHost:         os.Getenv("NOTIFY_SMTP_HOST"),
			SMTPPort:         getEnvAsInt("NOTIFY_SMTP_PORT", 587),
			SMTPUser:         os.Getenv("NOTIFY_SMTP_USER"),
			SMTPPassword:     os.Getenv("NOTIFY_SMTP_PASSWORD"),
			PushWebhookURL:   getEnv("NOTIFY_PUSH_WEBHOOK_URL", ""),
			RetryAttempts:    getEnvAsInt("NOTIFY_RETRY_ATTEMPTS", 3),
			BreakerThreshold: getEnvAsInt("NOTIFY_BREAKER_THRESHOLD", 5),
			WorkerPoolSize:   getEnvAsInt("NOTIFY_WORKER_POOL_SIZE", 16),
			SendConcurrency:  getEnvAsInt("NOTIFY_SEND_CONCURRENCY", 8),
			TaskTimeout:      getEnvAsDuration("NOTIFY_TASK_TIMEOUT", 2*time.Minute),
		},
		Ticket: TicketConfig{
			NumberPrefix:        getEnv("TICKET_NUMBER_PREFIX", "TCK"),
			Timezone:            getEnv("TICKET_TIMEZONE", "Asia/Jakarta"),
			DefaultSLADays:      getEnvAsInt("TICKET_DEFAULT_SLA_DAYS", 1),
			DefaultPriorityCode: getEnv("TICKET_DEFAULT_PRIORITY", "REGULAR"),
			SpecificityKeywords: getEnvAsList("POLICY_SPECIFICITY_KEYWORDS", DefaultSpecificityKeywords),
			NumberMaxAttempts:   getEnvAsInt("TICKET_NUMBER_MAX_ATTEMPTS", 3),
		},
		SLA: SLAConfig{
			Enabled:             getEnvAsBool("SLA_MONITOR_ENABLED", true),
			WarningWindow:       getEnvAsDuration("SLA_WARNING_WINDOW", time.Hour),
			WarningScanInterval: getEnvAsDuration("SLA_WARNING_SCAN_INTERVAL", time.Hour),
			OverdueScanInterval: getEnvAsDuration("SLA_OVERDUE_SCAN_INTERVAL", 15*time.Minute),
			SuppressRepeats:     getEnvAsBool("SLA_SUPPRESS_REPEATS", true),
			WarningSuppressTTL:  getEnvAsDuration("SLA_WARNING_SUPPRESS_TTL", 2*time.Hour),
			OverdueSuppressTTL:  getEnvAsDuration("SLA_OVERDUE_SUPPRESS_TTL", 6*time.Hour),
		},
		Broker: BrokerConfig{
			AMQPURL:  os.Getenv("AMQP_URL"),
			Exchange: getEnv("AMQP_EXCHANGE", "complaint.events"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Location resolves the ticket timezone, falling back to UTC.
func (t TicketConfig) Location() *time.Location {
	loc, err := time.LoadLocation(t.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(val)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
