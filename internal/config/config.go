package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

// APIConfig holds dashboard REST API configuration
type APIConfig struct {
	BaseURL              string `mapstructure:"base_url"`
	Timeout              int    `mapstructure:"timeout"` // Seconds
	MaxRequestsPerSecond int    `mapstructure:"max_requests_per_second"`
	UserAgent            string `mapstructure:"user_agent"`

	// Authentication
	Token string `mapstructure:"token"`
}

func (c APIConfig) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// GeminiConfig holds generative-text configuration
type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Password      string `mapstructure:"password"`
	Database      int    `mapstructure:"database"`
	SessionPrefix string `mapstructure:"session_prefix"`
	SessionTTL    int    `mapstructure:"session_ttl"` // Seconds, 0 keeps sessions forever
	ToastStream   string `mapstructure:"toast_stream"`
	ToastMaxLen   int64  `mapstructure:"toast_max_len"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds the draft store configuration
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name)
}

// LogConfig holds logrus settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// Load reads config.yaml (or the file at path) with DASHBOARD_* environment
// overrides. A missing config file is not an error; defaults and the
// environment are used instead.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.SetEnvPrefix("DASHBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url must be set")
	}
	if c.API.MaxRequestsPerSecond <= 0 {
		return fmt.Errorf("api.max_requests_per_second must be positive, got %d", c.API.MaxRequestsPerSecond)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative, got %d", c.API.Timeout)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "https://api.notesmarket.in/api")
	v.SetDefault("api.timeout", 30)
	v.SetDefault("api.max_requests_per_second", 10)
	v.SetDefault("api.user_agent", "notesmarket-dashboard/1.0")
	v.SetDefault("api.token", "")

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.0-flash-lite")
	v.SetDefault("gemini.base_url", "")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.session_prefix", "dashboard:session:")
	v.SetDefault("redis.session_ttl", 7*24*3600)
	v.SetDefault("redis.toast_stream", "dashboard:stream:toasts")
	v.SetDefault("redis.toast_max_len", 500)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "dashboard")
	v.SetDefault("database.user", "dashboard_user")
	v.SetDefault("database.password", "dashboard_pass")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
