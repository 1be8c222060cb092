package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for all environment variables read by Load,
// e.g. HANZIDECK_SERVER_PORT overrides server.port.
const envPrefix = "HANZIDECK"

// Load reads configuration from environment variables and, when present,
// a config.yaml file in the working directory. Environment variables
// take precedence over values from the config file. Returns a populated
// Config struct or an error if loading or validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars and defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers defaults for every setting that has a sensible
// one. Database URL and catalog path default to empty so viper binds
// their environment variables; validation rejects them when left unset.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 15)

	v.SetDefault("database.url", "")
	v.SetDefault("catalog.path", "")

	v.SetDefault("queue.batch_size", 10)
	v.SetDefault("queue.flush_delay_millis", 2000)
	v.SetDefault("queue.flush_timeout_millis", 10000)
	v.SetDefault("queue.retry_delay_millis", 5000)
	v.SetDefault("queue.max_flush_attempts", 5)
	v.SetDefault("queue.due_count_ttl_seconds", 45)
	v.SetDefault("queue.due_count_refresh_seconds", 30)
}
