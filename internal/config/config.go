package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix используется для переменных окружения вида ORDERSYNC_SERVER_HTTP_ADDR.
const EnvPrefix = "ORDERSYNC"

// Драйверы хранилища.
const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
)

// Config объединяет настройки сервера и CLI.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	Outbox  OutboxConfig  `mapstructure:"outbox"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Log     LogConfig     `mapstructure:"log"`
	Client  ClientConfig  `mapstructure:"client"`
}

type ServerConfig struct {
	HTTPAddr        string          `mapstructure:"http_addr"`
	MetricsAddr     string          `mapstructure:"metrics_addr"`
	// Пустой GRPCAddr отключает gRPC health listener.
	GRPCAddr        string          `mapstructure:"grpc_addr"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Rate    float64 `mapstructure:"rate"`
	Burst   int     `mapstructure:"burst"`
}

type StorageConfig struct {
	Driver      string `mapstructure:"driver"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// KafkaConfig: пустой Brokers отключает публикацию событий.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

type OutboxConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BatchSize    int           `mapstructure:"batch_size"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	RetryDelay   time.Duration `mapstructure:"retry_delay"`
}

type AuthConfig struct {
	// Users: логин -> пароль.
	Users           map[string]string `mapstructure:"users"`
	TokenTTL        time.Duration     `mapstructure:"token_ttl"`
	CleanupInterval time.Duration     `mapstructure:"cleanup_interval"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ClientConfig используется orderctl.
type ClientConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load читает значения по умолчанию, затем YAML-файл (если есть), затем окружение.
// Пустой path ищет ordersync.yaml в текущем каталоге и ./config.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("ordersync")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Kafka.Brokers = splitList(cfg.Kafka.Brokers)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет согласованность настроек.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if c.Storage.PostgresDSN == "" {
			return errors.New("storage.postgres_dsn is required for postgres driver")
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}
	if c.Client.Timeout < 0 {
		return errors.New("client.timeout must not be negative")
	}
	return nil
}

// KafkaEnabled сообщает, заданы ли брокеры.
func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}

// splitList убирает пустые элементы: ORDERSYNC_KAFKA_BROKERS="a, b," даёт [a b].
func splitList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("server.metrics_addr", ":9090")
	v.SetDefault("server.grpc_addr", "")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.rate_limit.enabled", false)
	v.SetDefault("server.rate_limit.rate", 50)
	v.SetDefault("server.rate_limit.burst", 100)

	v.SetDefault("storage.driver", StorageDriverMemory)
	v.SetDefault("storage.postgres_dsn", "")
	v.SetDefault("storage.auto_migrate", true)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "ordersync.order.events")
	v.SetDefault("kafka.group_id", "orderctl-watch")

	v.SetDefault("outbox.poll_interval", "1s")
	v.SetDefault("outbox.batch_size", 100)
	v.SetDefault("outbox.max_attempts", 3)
	v.SetDefault("outbox.retry_delay", "50ms")

	v.SetDefault("auth.users", map[string]string{"admin": "admin"})
	v.SetDefault("auth.token_ttl", "12h")
	v.SetDefault("auth.cleanup_interval", "10m")

	v.SetDefault("log.level", "info")

	v.SetDefault("client.base_url", "http://localhost:8080")
	v.SetDefault("client.token", "")
	v.SetDefault("client.timeout", "0s")
}
