package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Log        LogConfig        `mapstructure:"log" validate:"required"`
	Dispatcher DispatcherConfig `mapstructure:"dispatcher" validate:"required"`
	Dictionary DictionaryConfig `mapstructure:"dictionary" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// DispatcherConfig sizes the background worker pool and its queue.
type DispatcherConfig struct {
	Workers   int `mapstructure:"workers" validate:"required,gt=0,lte=256"`
	QueueSize int `mapstructure:"queue_size" validate:"required,gt=0"`
	// ShutdownTimeout bounds how long Close waits for in-flight tasks
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// DictionaryConfig controls where dictionaries are found and which one is
// loaded at startup.
type DictionaryConfig struct {
	// SearchPath is used when GetAvailableDictionaries is called with an empty path
	SearchPath string `mapstructure:"search_path" validate:"required"`
	// Language is loaded at startup when set
	Language string `mapstructure:"language" validate:"omitempty,bcp47_language_tag"`
}

// MetricsConfig contains Prometheus export settings.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace" validate:"required_if=Enabled true"`
}
