package bootstrap

import (
	"github.com/taller/photovault/common/config"
	"github.com/taller/photovault/common/logger"
)

// Option configures the bootstrap process
type Option func(*options)

type options struct {
	skipDB         bool
	skipMigrations bool
	skipTelemetry  bool
	customLogger   *logger.Logger
	customConfig   *config.Config
}

// WithoutDB skips database initialization
func WithoutDB() Option {
	return func(o *options) {
		o.skipDB = true
	}
}

// WithoutMigrations connects to the database without applying migrations
func WithoutMigrations() Option {
	return func(o *options) {
		o.skipMigrations = true
	}
}

// WithoutTelemetry skips telemetry initialization
func WithoutTelemetry() Option {
	return func(o *options) {
		o.skipTelemetry = true
	}
}

// WithCustomLogger uses a custom logger instead of creating one
func WithCustomLogger(log *logger.Logger) Option {
	return func(o *options) {
		o.customLogger = log
	}
}

// WithCustomConfig uses a custom config instead of loading from env
func WithCustomConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.customConfig = cfg
	}
}

func defaultOptions() *options {
	return &options{}
}
