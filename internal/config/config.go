package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Catalog  CatalogConfig  `mapstructure:"catalog" validate:"required"`
	Queue    QueueConfig    `mapstructure:"queue" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// ShutdownTimeoutSeconds bounds graceful shutdown, including the
	// final queue drain.
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// CatalogConfig locates the static card content.
type CatalogConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// QueueConfig tunes the review write queue and the due-count cache.
type QueueConfig struct {
	BatchSize              int `mapstructure:"batch_size" validate:"gt=0"`
	FlushDelayMillis       int `mapstructure:"flush_delay_millis" validate:"gt=0"`
	FlushTimeoutMillis     int `mapstructure:"flush_timeout_millis" validate:"gt=0"`
	RetryDelayMillis       int `mapstructure:"retry_delay_millis" validate:"gt=0"`
	MaxFlushAttempts       int `mapstructure:"max_flush_attempts" validate:"gt=0"`
	DueCountTTLSeconds     int `mapstructure:"due_count_ttl_seconds" validate:"gte=0"`
	DueCountRefreshSeconds int `mapstructure:"due_count_refresh_seconds" validate:"gte=0"`
}
