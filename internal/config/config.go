package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Queue drivers supported by the notification queue transport.
const (
	QueueDriverRedis = "redis"
	QueueDriverKafka = "kafka"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Orders       OrdersConfig
	Notification NotificationConfig
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

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines credential hashing parameters.
type AuthConfig struct {
	BcryptCost int
}

// OrdersConfig tunes the order query path.
type OrdersConfig struct {
	LookupConcurrency int
}

// NotificationConfig holds the transport settings. Every field except the
// SMTP credentials and the queue driver must be present at start-up.
type NotificationConfig struct {
	Region        string `envconfig:"NOTIFY_REGION" required:"true"`
	QueueDriver   string `envconfig:"NOTIFY_QUEUE_DRIVER" default:"redis"`
	QueueURL      string `envconfig:"NOTIFY_QUEUE_URL" required:"true"`
	QueueName     string `envconfig:"NOTIFY_QUEUE_NAME" required:"true"`
	GCPProjectID  string `envconfig:"NOTIFY_GCP_PROJECT_ID" required:"true"`
	CustomerTopic string `envconfig:"NOTIFY_CUSTOMER_TOPIC" required:"true"`
	EmailFrom     string `envconfig:"NOTIFY_EMAIL_FROM" required:"true"`
	SMTPAddr      string `envconfig:"NOTIFY_SMTP_ADDR" required:"true"`
	SMTPUsername  string `envconfig:"NOTIFY_SMTP_USERNAME"`
	SMTPPassword  string `envconfig:"NOTIFY_SMTP_PASSWORD"`
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var notification NotificationConfig
	if err := envconfig.Process("", &notification); err != nil {
		return nil, fmt.Errorf("notification config: %w", err)
	}
	if err := notification.Validate(); err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "order-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: LoadAuth(),
		Orders: OrdersConfig{
			LookupConcurrency: getEnvAsInt("ORDER_LIST_LOOKUP_CONCURRENCY", 8),
		},
		Notification: notification,
	}

	return cfg, nil
}

// LoadAuth reads only the credential settings, for tools that never touch the transports.
func LoadAuth() AuthConfig {
	_ = godotenv.Load()
	return AuthConfig{BcryptCost: getEnvAsInt("AUTH_BCRYPT_COST", 10)}
}

// Validate checks values envconfig cannot express.
func (n NotificationConfig) Validate() error {
	switch n.QueueDriver {
	case QueueDriverRedis, QueueDriverKafka:
	default:
		return fmt.Errorf("invalid NOTIFY_QUEUE_DRIVER %q", n.QueueDriver)
	}
	if n.QueueDriver == QueueDriverKafka && len(n.QueueBrokers()) == 0 {
		return fmt.Errorf("NOTIFY_QUEUE_URL must list at least one kafka broker")
	}
	return nil
}

// QueueBrokers splits the queue URL into kafka broker addresses.
func (n NotificationConfig) QueueBrokers() []string {
	parts := strings.Split(n.QueueURL, ",")
	brokers := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			brokers = append(brokers, trimmed)
		}
	}
	return brokers
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
