package config

import "time"

// EngineConfig holds worker loop tuning.
type EngineConfig struct {
	// How long Get blocks before the worker re-checks deferred events
	EmptyTimeout time.Duration `mapstructure:"empty_timeout" validate:"required"`

	// Pause after each successful handler, paces outgoing requests
	Pace time.Duration `mapstructure:"pace"`

	// Startup command file; blank lines and #-comments are skipped
	AutorunPath string `mapstructure:"autorun_path"`
}
