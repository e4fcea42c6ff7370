// Package config loads application configuration from the environment, an
// optional .env file and an optional config.yml.
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration values.
type Config struct {
	Env              string        `mapstructure:"APP_ENV"`
	AppPort          string        `mapstructure:"APP_PORT"`
	DBDriver         string        `mapstructure:"DB_DRIVER"`
	DatabaseDSN      string        `mapstructure:"DATABASE_DSN"`
	JWTSecret        string        `mapstructure:"JWT_SECRET"`
	TokenDuration    time.Duration `mapstructure:"TOKEN_DURATION"`
	RememberDuration time.Duration `mapstructure:"REMEMBER_DURATION"`
	StaticDir        string        `mapstructure:"STATIC_DIR"`
	AvatarSize       int           `mapstructure:"AVATAR_SIZE"`
	Locale           string        `mapstructure:"APP_LOCALE"`
	RabbitMQURL      string        `mapstructure:"RABBITMQ_URL"`
	RedisURL         string        `mapstructure:"REDIS_URL"`
	SeedDemo         bool          `mapstructure:"SEED_DEMO"`
	SiteTitle        string        `mapstructure:"SITE_TITLE"`
	SiteName         string        `mapstructure:"SITE_NAME"`
}

// IsProduction reports whether cookies should be marked Secure.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration with a fresh viper instance.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AutomaticEnv()
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return FromViper(v)
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "blog.db")
	v.SetDefault("JWT_SECRET", "change-me-in-production")
	v.SetDefault("TOKEN_DURATION", "24h")
	v.SetDefault("REMEMBER_DURATION", "720h")
	v.SetDefault("STATIC_DIR", "./static")
	v.SetDefault("AVATAR_SIZE", 125)
	v.SetDefault("APP_LOCALE", "en")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("SEED_DEMO", false)
	v.SetDefault("SITE_TITLE", "PNU")
	v.SetDefault("SITE_NAME", "Прикладна математика")
}

// FromViper unmarshals and checks the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	switch cfg.DBDriver {
	case "sqlite", "postgres", "mysql":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.IsProduction() && cfg.JWTSecret == "change-me-in-production" {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}
	return &cfg, nil
}
