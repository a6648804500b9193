// Package config provides application configuration management using Viper.
// Configuration is loaded from YAML files and environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Lock      LockConfig      `mapstructure:"lock"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Refresh   RefreshConfig   `mapstructure:"refresh"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name            string        `mapstructure:"name"`
	Env             string        `mapstructure:"env"` // development, staging, production
	Port            int           `mapstructure:"port"`
	Debug           bool          `mapstructure:"debug"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	Name          string        `mapstructure:"name"`
	User          string        `mapstructure:"user"`
	Password      string        `mapstructure:"password"`
	SSLMode       string        `mapstructure:"ssl_mode"`
	MaxOpenConns  int           `mapstructure:"max_open_conns"`
	MaxIdleConns  int           `mapstructure:"max_idle_conns"`
	MaxLifetime   time.Duration `mapstructure:"max_lifetime"`
	SlowThreshold time.Duration `mapstructure:"slow_threshold"`
	AutoMigrate   bool          `mapstructure:"auto_migrate"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns host:port.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Lock backends.
const (
	LockBackendScript  = "script"
	LockBackendRedlock = "redlock"
)

// LockConfig holds distributed lock settings.
type LockConfig struct {
	Backend      string        `mapstructure:"backend"` // script, redlock
	Lease        time.Duration `mapstructure:"lease"`
	MaxWait      time.Duration `mapstructure:"max_wait"`
	BaseDelay    time.Duration `mapstructure:"base_delay"`
	MaxDelay     time.Duration `mapstructure:"max_delay"`
	RedlockAddrs []string      `mapstructure:"redlock_addrs"`
}

// Cache backends.
const (
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
)

// CacheConfig holds read-through cache settings.
type CacheConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Backend    string        `mapstructure:"backend"` // redis, memory
	KeyPrefix  string        `mapstructure:"key_prefix"`
	ArticleTTL time.Duration `mapstructure:"article_ttl"`
	ClientTTL  time.Duration `mapstructure:"client_ttl"`
	MaxCost    int64         `mapstructure:"max_cost"`
	Breaker    BreakerConfig `mapstructure:"circuit_breaker"`
}

// Shared reports whether cached entries are visible to every instance.
// An in-process memory cache is per instance, so work that fills it
// must run on each instance rather than once per fleet.
func (c *CacheConfig) Shared() bool {
	return c.Backend != CacheBackendMemory
}

// BreakerConfig holds circuit breaker settings.
type BreakerConfig struct {
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
}

// RateLimitConfig holds fixed-window rate limit settings.
type RateLimitConfig struct {
	IPLimit     int64         `mapstructure:"ip_limit"`
	APIKeyLimit int64         `mapstructure:"api_key_limit"`
	Window      time.Duration `mapstructure:"window"`
}

// RefreshConfig holds background cache refresh settings.
type RefreshConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Interval  time.Duration `mapstructure:"interval"`
	OnStartup bool          `mapstructure:"on_startup"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// KafkaConfig holds event publishing settings.
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr, file path
}

// SentryConfig holds Sentry error tracking settings.
type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// Load reads configuration from file and environment variables.
// Priority: env vars > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found, continue with defaults + env vars
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.Lock.Backend {
	case LockBackendScript:
	case LockBackendRedlock:
		if len(c.Lock.RedlockAddrs) == 0 {
			return fmt.Errorf("lock.redlock_addrs is required for the redlock backend")
		}
	default:
		return fmt.Errorf("unknown lock.backend %q", c.Lock.Backend)
	}

	if c.Lock.Lease <= 0 {
		return fmt.Errorf("lock.lease must be positive")
	}

	if c.Cache.Enabled && c.Cache.Backend != CacheBackendRedis && c.Cache.Backend != CacheBackendMemory {
		return fmt.Errorf("unknown cache.backend %q", c.Cache.Backend)
	}

	if c.Refresh.Enabled {
		if c.Refresh.Interval <= 0 {
			return fmt.Errorf("refresh.interval must be positive when refresh is enabled")
		}
		if c.Refresh.Timeout <= 0 {
			return fmt.Errorf("refresh.timeout must be positive when refresh is enabled")
		}
	}

	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		return fmt.Errorf("kafka.brokers and kafka.topic are required when kafka is enabled")
	}

	return nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "booking-service")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.debug", true)
	v.SetDefault("app.shutdown_timeout", "10s")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "booking")
	v.SetDefault("database.user", "app")
	v.SetDefault("database.password", "secret")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_lifetime", "5m")
	v.SetDefault("database.slow_threshold", "200ms")
	v.SetDefault("database.auto_migrate", true)

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 50)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")

	// Lock defaults
	v.SetDefault("lock.backend", LockBackendScript)
	v.SetDefault("lock.lease", "5s")
	v.SetDefault("lock.max_wait", "3s")
	v.SetDefault("lock.base_delay", "100ms")
	v.SetDefault("lock.max_delay", "1s")
	v.SetDefault("lock.redlock_addrs", []string{})

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.backend", CacheBackendRedis)
	v.SetDefault("cache.key_prefix", "")
	v.SetDefault("cache.article_ttl", "5m")
	v.SetDefault("cache.client_ttl", "10m")
	v.SetDefault("cache.max_cost", 64<<20)
	v.SetDefault("cache.circuit_breaker.max_requests", 3)
	v.SetDefault("cache.circuit_breaker.interval", "60s")
	v.SetDefault("cache.circuit_breaker.timeout", "30s")
	v.SetDefault("cache.circuit_breaker.failure_ratio", 0.5)

	// Rate limit defaults
	v.SetDefault("rate_limit.ip_limit", 5)
	v.SetDefault("rate_limit.api_key_limit", 10)
	v.SetDefault("rate_limit.window", "1m")

	// Refresh defaults
	v.SetDefault("refresh.enabled", true)
	v.SetDefault("refresh.interval", "4m")
	v.SetDefault("refresh.on_startup", true)
	v.SetDefault("refresh.timeout", "30s")

	// Kafka defaults
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "reservations")
	v.SetDefault("kafka.max_attempts", 3)
	v.SetDefault("kafka.batch_timeout", "10ms")
	v.SetDefault("kafka.write_timeout", "5s")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stdout")

	// Sentry defaults
	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
	v.SetDefault("sentry.sample_rate", 1.0)
}
