package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Mail     MailConfig     `mapstructure:"mail"`
	App      AppConfig      `mapstructure:"app"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// CacheConfig selects and configures the cache backend
type CacheConfig struct {
	// Backend is "memory" or "redis"
	Backend       string `mapstructure:"backend"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
}

// MailConfig holds notification delivery configuration
type MailConfig struct {
	// Driver is "smtp" or "log"
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// AppConfig holds application-level settings
type AppConfig struct {
	// BaseURL is prepended to signed links sent in notifications
	BaseURL string `mapstructure:"base_url"`
	// Secret keys the HMAC link signer
	Secret string `mapstructure:"secret"`
	// LinkTTL bounds the validity of signed links
	LinkTTL time.Duration `mapstructure:"link_ttl"`
}

// WorkerConfig holds background worker configuration
type WorkerConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BatchSize    int           `mapstructure:"batch_size"`
	SendTimeout  time.Duration `mapstructure:"send_timeout"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	viper.SetDefault("database.path", "data/travel.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	viper.SetDefault("cache.backend", "memory")
	viper.SetDefault("cache.redis_addr", "localhost:6379")
	viper.SetDefault("cache.redis_db", 0)

	viper.SetDefault("mail.driver", "log")
	viper.SetDefault("mail.port", 587)
	viper.SetDefault("mail.from", "noreply@traveldesk.local")

	viper.SetDefault("app.base_url", "http://localhost:8080")
	viper.SetDefault("app.link_ttl", 48*time.Hour)

	viper.SetDefault("worker.poll_interval", 5*time.Second)
	viper.SetDefault("worker.batch_size", 20)
	viper.SetDefault("worker.send_timeout", 30*time.Second)

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	viper.BindEnv("app.secret", "APP_SECRET")
	viper.BindEnv("app.base_url", "APP_BASE_URL")
	viper.BindEnv("cache.redis_addr", "REDIS_ADDR")
	viper.BindEnv("cache.redis_password", "REDIS_PASSWORD")
	viper.BindEnv("mail.host", "SMTP_HOST")
	viper.BindEnv("mail.username", "SMTP_USERNAME")
	viper.BindEnv("mail.password", "SMTP_PASSWORD")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Secret == "" {
		return fmt.Errorf("app.secret is required")
	}
	if c.App.BaseURL == "" {
		return fmt.Errorf("app.base_url is required")
	}

	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.backend must be memory or redis, got %q", c.Cache.Backend)
	}

	switch c.Mail.Driver {
	case "log":
	case "smtp":
		if c.Mail.Host == "" {
			return fmt.Errorf("mail.host is required when mail.driver is smtp")
		}
	default:
		return fmt.Errorf("mail.driver must be smtp or log, got %q", c.Mail.Driver)
	}

	return nil
}
