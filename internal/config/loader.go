package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable override
const EnvPrefix = "NBA_PROPS"

// DefaultConfigPath is used when no path is given
const DefaultConfigPath = "config/config.yaml"

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// readExpanded reads the file at path, expands ${VAR} placeholders and feeds
// the result to v.
func readExpanded(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	expanded := os.ExpandEnv(string(data))
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	v := newViper()
	if err := readExpanded(v, configPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional fields.
// A missing file is not an error: defaults and environment variables apply.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	if err := readExpanded(v, configPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "nba-props")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.output_dir", "output")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "nba")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.min_connections", 1)

	v.SetDefault("stats_api.base_url", "https://stats.nba.com/stats")
	v.SetDefault("stats_api.season_type", "Regular Season")
	v.SetDefault("stats_api.timeout_seconds", 30)
	v.SetDefault("stats_api.requests_per_second", 0.5)
	v.SetDefault("stats_api.retry_attempts", 5)

	v.SetDefault("evaluation.last_n_games", 25)
	v.SetDefault("evaluation.min_ev", 0.0)
	v.SetDefault("evaluation.top_n", 36)
	v.SetDefault("evaluation.on_scoring_error", "halt")

	v.SetDefault("parlay.min_legs", 2)
	v.SetDefault("parlay.max_legs", 3)
	v.SetDefault("parlay.max_permeation_rate", 0.25)
	v.SetDefault("parlay.player_permeation_rate", 0.35)
	v.SetDefault("parlay.stake", 5.0)
	v.SetDefault("parlay.ev_mode", "sum")
	v.SetDefault("parlay.max_propositions", 40)
	v.SetDefault("parlay.max_combinations", 250000)
	v.SetDefault("parlay.conflicts", []map[string]string{{"a": "points", "b": "fgm"}})

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl_seconds", 600)
	v.SetDefault("cache.cleanup_interval_seconds", 1200)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.stream", "nba_props:parlays")
	v.SetDefault("redis.max_length", 10000)

	v.SetDefault("schedule.rebuild", "0 0 15 * * *")
	v.SetDefault("schedule.format", "hardrock")

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 30)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// ReloadFromEnv reloads the configuration from the file named by
// NBA_PROPS_CONFIG_PATH, if set.
func ReloadFromEnv(cfg *Config) error {
	if envPath := os.Getenv(EnvPrefix + "_CONFIG_PATH"); envPath != "" {
		newCfg, err := LoadWithDefaults(envPath)
		if err != nil {
			return err
		}
		*cfg = *newCfg
	}
	return nil
}
