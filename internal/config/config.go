package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

const defaultSessionSecret = "change-me"

// Config holds application level configuration loaded from environment variables
// and an optional config.yaml.
type Config struct {
	ServerPort  string
	Env         string
	LogLevel    string
	SwaggerHost string

	DBDriver   string
	DBDSN      string
	DBLogLevel string
	ResetDB    bool

	RedisAddr string
	RedisDB   int
	RedisPass string

	SessionSecret string
	SessionTTL    time.Duration
	SessionCookie string
	BcryptCost    int

	DefaultImageURL       string
	DefaultHeaderImageURL string
}

// Load builds Config from environment with sensible defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DATABASE_URL", "user:password@tcp(localhost:3306)/warbler?charset=utf8mb4&parseTime=True&loc=UTC")
	v.SetDefault("DB_LOG_LEVEL", "warn")
	v.SetDefault("RESET_DB", false)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_SECRET", defaultSessionSecret)
	v.SetDefault("SESSION_TTL", "168h")
	v.SetDefault("SESSION_COOKIE", "warbler_session")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("DEFAULT_IMAGE_URL", "/static/images/default-pic.png")
	v.SetDefault("DEFAULT_HEADER_IMAGE_URL", "/static/images/warbler-hero.jpg")

	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		ServerPort:            v.GetString("SERVER_PORT"),
		Env:                   v.GetString("APP_ENV"),
		LogLevel:              v.GetString("LOG_LEVEL"),
		SwaggerHost:           v.GetString("SWAGGER_HOST"),
		DBDriver:              strings.ToLower(v.GetString("DB_DRIVER")),
		DBDSN:                 v.GetString("DATABASE_URL"),
		DBLogLevel:            v.GetString("DB_LOG_LEVEL"),
		ResetDB:               v.GetBool("RESET_DB"),
		RedisAddr:             v.GetString("REDIS_ADDR"),
		RedisDB:               v.GetInt("REDIS_DB"),
		RedisPass:             v.GetString("REDIS_PASSWORD"),
		SessionSecret:         v.GetString("SESSION_SECRET"),
		SessionTTL:            v.GetDuration("SESSION_TTL"),
		SessionCookie:         v.GetString("SESSION_COOKIE"),
		BcryptCost:            v.GetInt("BCRYPT_COST"),
		DefaultImageURL:       v.GetString("DEFAULT_IMAGE_URL"),
		DefaultHeaderImageURL: v.GetString("DEFAULT_HEADER_IMAGE_URL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// IsProduction reports whether strict settings apply.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate ensures that required configuration values are present.
func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return errors.New("SERVER_PORT is required")
	}
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER %q is not one of mysql, postgres, sqlite", c.DBDriver)
	}
	if c.DBDSN == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	if c.IsProduction() {
		if c.SessionSecret == defaultSessionSecret {
			return errors.New("SESSION_SECRET must be changed from the default value in production")
		}
		if len(c.SessionSecret) < 32 {
			return errors.New("SESSION_SECRET must be at least 32 characters in production")
		}
	}
	return nil
}
