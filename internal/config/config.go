// Package config loads runtime configuration from the environment, with an
// optional racha.yml file for development overrides.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	// DatabaseURL is the PostgreSQL connection string.
	DatabaseURL string `mapstructure:"database_url"`

	// BindAddr is the HTTP listen address.
	BindAddr string `mapstructure:"bind_addr"`

	// SessionBackend selects the session store: memory, database, redis.
	SessionBackend string `mapstructure:"session_backend"`

	// SessionMaxAge is the session TTL in seconds.
	SessionMaxAge int `mapstructure:"session_max_age"`

	// CookieSecure requires HTTPS for the session cookie. Disable for
	// local development only.
	CookieSecure bool `mapstructure:"cookie_secure"`

	// RedisAddr is the Redis address, used when SessionBackend is redis.
	RedisAddr string `mapstructure:"redis_addr"`

	// RedisPassword is the Redis password, if any.
	RedisPassword string `mapstructure:"redis_password"`
}

// Load reads configuration from environment variables and, when present, a
// racha.yml file in the working directory. Environment wins.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("database_url", "postgres://localhost/racha?sslmode=disable")
	v.SetDefault("bind_addr", "127.0.0.1:3000")
	v.SetDefault("session_backend", "database")
	v.SetDefault("session_max_age", 86400*30)
	v.SetDefault("cookie_secure", true)
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_password", "")

	v.SetConfigName("racha")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file: environment and defaults only.
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func validate(cfg *Config) error {
	switch cfg.SessionBackend {
	case "memory", "database", "redis":
	default:
		return fmt.Errorf("invalid session_backend %q: want memory, database, or redis", cfg.SessionBackend)
	}
	if cfg.SessionMaxAge <= 0 {
		return fmt.Errorf("session_max_age must be positive, got %d", cfg.SessionMaxAge)
	}
	return nil
}
