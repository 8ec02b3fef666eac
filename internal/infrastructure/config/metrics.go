package config

// MetricsConfig holds the Prometheus exposition settings.
type MetricsConfig struct {
	// Enable the /metrics HTTP endpoint
	Enabled bool `mapstructure:"enabled"`

	// Listen address for the metrics server
	Address string `mapstructure:"address"`
}
