// Package config provides configuration management for the prop pipeline.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	StatsAPI   StatsAPIConfig   `mapstructure:"stats_api" validate:"required"`
	Evaluation EvaluationConfig `mapstructure:"evaluation" validate:"required"`
	Parlay     ParlayConfig     `mapstructure:"parlay" validate:"required"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
	Server     ServerConfig     `mapstructure:"server"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
	OutputDir   string `mapstructure:"output_dir"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MinConnections int    `mapstructure:"min_connections" validate:"gte=0"`
}

// StatsAPIConfig represents the player game log HTTP API
type StatsAPIConfig struct {
	BaseURL           string            `mapstructure:"base_url" validate:"required,url"`
	APIKey            string            `mapstructure:"api_key"`
	Season            string            `mapstructure:"season"`
	SeasonType        string            `mapstructure:"season_type" validate:"omitempty,oneof='Regular Season' Playoffs 'Pre Season'"`
	TimeoutSeconds    int               `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RequestsPerSecond float64           `mapstructure:"requests_per_second" validate:"required,gt=0"`
	RetryAttempts     int               `mapstructure:"retry_attempts" validate:"gte=0"`
	PlayerIDs         map[string]string `mapstructure:"player_ids"`
}

// EvaluationConfig controls proposition scoring and filtering
type EvaluationConfig struct {
	LastNGames      int      `mapstructure:"last_n_games" validate:"required,gt=0"`
	MinEV           float64  `mapstructure:"min_ev" validate:"gte=0"`
	TopN            int      `mapstructure:"top_n" validate:"gte=0"`
	ExcludedPlayers []string `mapstructure:"excluded_players"`
	ExcludedStats   []string `mapstructure:"excluded_stats"`
	OnScoringError  string   `mapstructure:"on_scoring_error" validate:"required,scoringpolicy"`
	// PlayerAliases maps feed spellings to roster names; keys are matched
	// case-insensitively
	PlayerAliases map[string]string `mapstructure:"player_aliases"`
}

// ParlayConfig controls combination generation and portfolio selection
type ParlayConfig struct {
	MinLegs              int            `mapstructure:"min_legs" validate:"required,gte=1"`
	MaxLegs              int            `mapstructure:"max_legs" validate:"required,gte=1"`
	MaxPermeationRate    float64        `mapstructure:"max_permeation_rate" validate:"required,gt=0,lte=1"`
	PlayerPermeationRate float64        `mapstructure:"player_permeation_rate" validate:"required,gt=0,lte=1"`
	Stake                float64        `mapstructure:"stake" validate:"required,gt=0"`
	EVMode               string         `mapstructure:"ev_mode" validate:"required,evmode"`
	MaxPropositions      int            `mapstructure:"max_propositions" validate:"required,gt=0,lte=64"`
	MaxCombinations      int            `mapstructure:"max_combinations" validate:"required,gt=0,lte=10000000"`
	PruneBelowMinEV      bool           `mapstructure:"prune_below_min_ev"`
	MinCombinedEV        float64        `mapstructure:"min_combined_ev"`
	Workers              int            `mapstructure:"workers" validate:"gte=0"`
	Conflicts            []ConflictPair `mapstructure:"conflicts" validate:"dive"`
}

// ConflictPair names two statistics that may not share a parlay for one player
type ConflictPair struct {
	A string `mapstructure:"a" validate:"required"`
	B string `mapstructure:"b" validate:"required"`
}

// CacheConfig represents the in-memory history cache
type CacheConfig struct {
	Enabled                bool `mapstructure:"enabled"`
	TTLSeconds             int  `mapstructure:"ttl_seconds" validate:"gte=0"`
	CleanupIntervalSeconds int  `mapstructure:"cleanup_interval_seconds" validate:"gte=0"`
}

// RedisConfig represents the stream the selected portfolio is published to
type RedisConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Addr      string `mapstructure:"addr" validate:"required_if=Enabled true"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db" validate:"gte=0"`
	Stream    string `mapstructure:"stream" validate:"required_if=Enabled true"`
	MaxLength int64  `mapstructure:"max_length" validate:"gte=0"`
}

// ScheduleConfig represents the scheduled rebuild
type ScheduleConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Rebuild  string `mapstructure:"rebuild" validate:"omitempty,cronspec"`
	FeedPath string `mapstructure:"feed_path" validate:"required_if=Enabled true"`
	Format   string `mapstructure:"format" validate:"omitempty,oneof=hardrock csv"`
	// Sync refreshes the listed players' game logs ahead of the rebuild
	Sync        string   `mapstructure:"sync" validate:"omitempty,cronspec"`
	SyncPlayers []string `mapstructure:"sync_players"`
}

// ServerConfig represents the HTTP API
type ServerConfig struct {
	Address             string   `mapstructure:"address"`
	ReadTimeoutSeconds  int      `mapstructure:"read_timeout_seconds" validate:"gte=0"`
	WriteTimeoutSeconds int      `mapstructure:"write_timeout_seconds" validate:"gte=0"`
	AllowedOrigins      []string `mapstructure:"allowed_origins"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// CacheTTL returns the history cache expiry
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// CacheCleanupInterval returns the history cache purge interval
func (c *Config) CacheCleanupInterval() time.Duration {
	return time.Duration(c.Cache.CleanupIntervalSeconds) * time.Second
}

// StatsAPITimeout returns the per-request timeout for the stats API
func (c *Config) StatsAPITimeout() time.Duration {
	return time.Duration(c.StatsAPI.TimeoutSeconds) * time.Second
}
