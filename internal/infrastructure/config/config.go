package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the main configuration struct combining all sub-configs.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// configKeys lists every key an HM_-prefixed environment variable can
// override (dots become underscores: api.token -> HM_API_TOKEN).
var configKeys = []string{
	"api.base_url",
	"api.token",
	"api.timeout",
	"api.rate_limit.requests",
	"api.rate_limit.burst",
	"api.retry.max_attempts",
	"api.retry.backoff_base",
	"database.type",
	"database.url",
	"database.host",
	"database.port",
	"database.user",
	"database.password",
	"database.name",
	"database.sslmode",
	"database.path",
	"database.pool.max_open",
	"database.pool.max_idle",
	"database.pool.max_lifetime",
	"engine.empty_timeout",
	"engine.pace",
	"engine.autorun_path",
	"metrics.enabled",
	"metrics.address",
	"logging.level",
	"logging.format",
	"logging.output",
	"logging.file_path",
	"logging.include_caller",
}

// LoadConfig loads configuration with priority:
// 1. Environment variables (highest)
// 2. Config file (config.yaml)
// 3. Defaults (lowest)
func LoadConfig(configPath string) (*Config, error) {
	// Load .env if present; a missing file is fine.
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/helmsman")
	}

	v.SetEnvPrefix("HM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees env values for keys viper already knows about,
	// so every overridable key is bound explicitly.
	for _, key := range configKeys {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine; env vars and defaults carry it.
	}

	// TOKEN and DATABASE_URL are honored without the HM_ prefix so the
	// usual .env conventions keep working.
	if token := os.Getenv("TOKEN"); token != "" {
		v.Set("api.token", token)
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		v.Set("database.url", dbURL)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	SetDefaults(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// MustLoadConfig loads configuration and panics on error (main wiring).
func MustLoadConfig(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}
