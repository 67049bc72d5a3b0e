package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds runtime settings read from the environment (and .env through godotenv).
type Config struct {
	Port   string `mapstructure:"PORT"`
	Env    string `mapstructure:"APP_ENV"`
	LogLvl string `mapstructure:"LOG_LEVEL"`

	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	DBHost        string `mapstructure:"DB_HOST"`
	DBUser        string `mapstructure:"DB_USER"`
	DBPassword    string `mapstructure:"DB_PASSWORD"`
	DBName        string `mapstructure:"DB_NAME"`
	DBPort        string `mapstructure:"DB_PORT"`
	DBAutoMigrate bool   `mapstructure:"DB_AUTO_MIGRATE"`

	TokenSecret        string        `mapstructure:"TOKEN_SECRET"`
	SessionTTL         time.Duration `mapstructure:"SESSION_TTL"`
	SessionRenewWindow time.Duration `mapstructure:"SESSION_RENEW_WINDOW"`
	SessionReuseWindow time.Duration `mapstructure:"SESSION_REUSE_WINDOW"`

	LoginRateLimit string `mapstructure:"LOGIN_RATE_LIMIT"`
	RedisURL       string `mapstructure:"REDIS_URL"`

	LowStockThreshold int `mapstructure:"LOW_STOCK_THRESHOLD"`
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

// DSN prefers DATABASE_URL and falls back to the discrete DB_* variables.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Asia/Jakarta",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

var defaults = map[string]any{
	"PORT":                 "3000",
	"APP_ENV":              "development",
	"LOG_LEVEL":            "info",
	"DATABASE_URL":         "",
	"DB_HOST":              "localhost",
	"DB_USER":              "postgres",
	"DB_PASSWORD":          "",
	"DB_NAME":              "agusplastik",
	"DB_PORT":              "5432",
	"DB_AUTO_MIGRATE":      true,
	"TOKEN_SECRET":         "change-me-in-production",
	"SESSION_TTL":          7 * 24 * time.Hour,
	"SESSION_RENEW_WINDOW": 12 * time.Hour,
	"SESSION_REUSE_WINDOW": 30 * time.Minute,
	"LOGIN_RATE_LIMIT":     "10-M",
	"REDIS_URL":            "",
	"LOW_STOCK_THRESHOLD":  10,
}

// Load reads configuration from the process environment.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.IsProduction() && cfg.TokenSecret == defaults["TOKEN_SECRET"] {
		return nil, fmt.Errorf("config: TOKEN_SECRET must be set in production")
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("config: SESSION_TTL must be positive")
	}
	return cfg, nil
}
