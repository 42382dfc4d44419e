package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Redis          RedisConfig
	OTEL           OTELConfig
	Log            LogConfig
	Recommendation RecommendationConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Enabled  bool
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// LogConfig holds logger configuration
type LogConfig struct {
	Env   string
	Level string
}

// RecommendationConfig tunes the doctor recommendation pipeline.
type RecommendationConfig struct {
	// RulesPath points at a YAML symptom rule table. Empty uses the built-in table.
	RulesPath string

	// LookupTimeout bounds a single doctor lookup. Zero disables the bound.
	LookupTimeout time.Duration

	// BatchWindow enables batched lookups when positive.
	BatchWindow   time.Duration
	BatchCapacity int

	DepartmentCacheTTL time.Duration
	WarmInterval       time.Duration
}

// Load loads configuration from the environment and an optional .env file
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("ALLOWED_ORIGINS", "*")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "hospital")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_ENABLED", true)

	v.SetDefault("OTEL_SERVICE_NAME", "hospital-recommendation")
	v.SetDefault("OTEL_SERVICE_VERSION", "1.0.0")
	v.SetDefault("OTEL_ENDPOINT", "")
	v.SetDefault("OTEL_ENABLED", false)

	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("RECOMMENDATION_RULES_PATH", "")
	v.SetDefault("RECOMMENDATION_LOOKUP_TIMEOUT", "3s")
	v.SetDefault("RECOMMENDATION_BATCH_WINDOW", "0s")
	v.SetDefault("RECOMMENDATION_BATCH_CAPACITY", 50)
	v.SetDefault("RECOMMENDATION_CACHE_TTL", "2m")
	v.SetDefault("RECOMMENDATION_WARM_INTERVAL", "5m")

	// A missing .env file is not an error, an unreadable one is
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read .env: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           v.GetString("SERVER_HOST"),
			Port:           v.GetInt("SERVER_PORT"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetInt("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Database:     v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			Enabled:  v.GetBool("REDIS_ENABLED"),
		},
		OTEL: OTELConfig{
			ServiceName:    v.GetString("OTEL_SERVICE_NAME"),
			ServiceVersion: v.GetString("OTEL_SERVICE_VERSION"),
			Endpoint:       v.GetString("OTEL_ENDPOINT"),
			Enabled:        v.GetBool("OTEL_ENABLED"),
		},
		Log: LogConfig{
			Env:   v.GetString("ENV"),
			Level: v.GetString("LOG_LEVEL"),
		},
		Recommendation: RecommendationConfig{
			RulesPath:          v.GetString("RECOMMENDATION_RULES_PATH"),
			LookupTimeout:      v.GetDuration("RECOMMENDATION_LOOKUP_TIMEOUT"),
			BatchWindow:        v.GetDuration("RECOMMENDATION_BATCH_WINDOW"),
			BatchCapacity:      v.GetInt("RECOMMENDATION_BATCH_CAPACITY"),
			DepartmentCacheTTL: v.GetDuration("RECOMMENDATION_CACHE_TTL"),
			WarmInterval:       v.GetDuration("RECOMMENDATION_WARM_INTERVAL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid SERVER_PORT %d", c.Server.Port)
	}
	if c.Recommendation.LookupTimeout < 0 {
		return fmt.Errorf("RECOMMENDATION_LOOKUP_TIMEOUT must not be negative")
	}
	if c.Recommendation.BatchWindow > 0 && c.Recommendation.BatchCapacity <= 0 {
		return fmt.Errorf("RECOMMENDATION_BATCH_CAPACITY must be positive when batching is enabled")
	}
	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
