package config

import (
	"strings"
	"testing"
)

const (
	validConfigPath              = "testdata/valid_config.yaml"
	expansionConfigPath          = "testdata/expansion_config.yaml"
	nonexistentConfigPath        = "testdata/nonexistent_config.yaml"
	expectedNoErrorLoadingConfig = "expected no error loading config, got %v"
	expectedNoErrorMsg           = "expected no error, got %v"
	appName                      = "nba-props"
	developmentEnv               = "development"
	postgresPrefix               = "postgres://"
	testDBPassword               = "TEST_DB_PASSWORD"
	testMissingVar               = "TEST_MISSING_VAR"
	expandedSecretValue          = "expanded_secret_value"
)

func loadValid(t *testing.T) *Config {
	t.Helper()
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}
	return cfg
}

// TestLoadConfigSuccess tests loading a valid configuration file
func TestLoadConfigSuccess(t *testing.T) {
	cfg := loadValid(t)

	if cfg.App.Name != appName {
		t.Errorf("expected app name '%s', got '%s'", appName, cfg.App.Name)
	}
	if cfg.App.Environment != developmentEnv {
		t.Errorf("expected environment '%s', got '%s'", developmentEnv, cfg.App.Environment)
	}
	if cfg.Parlay.MinLegs != 2 || cfg.Parlay.MaxLegs != 3 {
		t.Errorf("expected legs 2..3, got %d..%d", cfg.Parlay.MinLegs, cfg.Parlay.MaxLegs)
	}
	if cfg.StatsAPI.SeasonType != "Regular Season" {
		t.Errorf("expected season type 'Regular Season', got '%s'", cfg.StatsAPI.SeasonType)
	}
	if len(cfg.Parlay.Conflicts) != 1 || cfg.Parlay.Conflicts[0].A != "points" || cfg.Parlay.Conflicts[0].B != "fgm" {
		t.Errorf("expected one points/fgm conflict, got %+v", cfg.Parlay.Conflicts)
	}
	if cfg.StatsAPI.PlayerIDs["jalen brunson"] != "1628973" {
		t.Errorf("expected player id mapping, got %+v", cfg.StatsAPI.PlayerIDs)
	}
	if len(cfg.Evaluation.ExcludedPlayers) != 1 {
		t.Errorf("expected one excluded player, got %v", cfg.Evaluation.ExcludedPlayers)
	}
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(nonexistentConfigPath)
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

// TestLoadConfigEnvironmentVariables tests environment variable override
func TestLoadConfigEnvironmentVariables(t *testing.T) {
	t.Setenv("NBA_PROPS_APP_NAME", "test-app")
	t.Setenv("NBA_PROPS_PARLAY_MAX_LEGS", "4")

	cfg := loadValid(t)

	if cfg.App.Name != "test-app" {
		t.Errorf("expected app name 'test-app' from environment, got '%s'", cfg.App.Name)
	}
	if cfg.Parlay.MaxLegs != 4 {
		t.Errorf("expected max legs 4 from environment, got %d", cfg.Parlay.MaxLegs)
	}
}

// TestLoadWithDefaults tests that a missing file falls back to defaults
func TestLoadWithDefaults(t *testing.T) {
	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.Evaluation.LastNGames != 25 {
		t.Errorf("expected last_n_games 25, got %d", cfg.Evaluation.LastNGames)
	}
	if cfg.Evaluation.TopN != 36 {
		t.Errorf("expected top_n 36, got %d", cfg.Evaluation.TopN)
	}
	if cfg.Parlay.EVMode != "sum" {
		t.Errorf("expected ev_mode sum, got %s", cfg.Parlay.EVMode)
	}
	if cfg.Parlay.MaxCombinations != 250000 {
		t.Errorf("expected max_combinations 250000, got %d", cfg.Parlay.MaxCombinations)
	}
	if len(cfg.Parlay.Conflicts) != 1 || cfg.Parlay.Conflicts[0].A != "points" {
		t.Errorf("expected default points/fgm conflict, got %+v", cfg.Parlay.Conflicts)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

// TestValidateSuccess tests validation of a valid configuration
func TestValidateSuccess(t *testing.T) {
	cfg := loadValid(t)

	if err := Validate(cfg); err != nil {
		t.Fatalf("expected no validation error, got %v", err)
	}
}

// TestValidateFailures tests the custom and cross-field rules
func TestValidateFailures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"invalid environment", func(c *Config) { c.App.Environment = "invalid" }, "Environment"},
		{"invalid log level", func(c *Config) { c.App.LogLevel = "trace" }, "LogLevel"},
		{"invalid ev mode", func(c *Config) { c.Parlay.EVMode = "median" }, "EVMode"},
		{"invalid scoring policy", func(c *Config) { c.Evaluation.OnScoringError = "ignore" }, "OnScoringError"},
		{"invalid cron", func(c *Config) { c.Schedule.Rebuild = "every day" }, "Rebuild"},
		{"permeation above one", func(c *Config) { c.Parlay.MaxPermeationRate = 1.5 }, "MaxPermeationRate"},
		{"zero stake", func(c *Config) { c.Parlay.Stake = 0 }, "Stake"},
		{"negative min ev", func(c *Config) { c.Evaluation.MinEV = -0.1 }, "MinEV"},
		{"too many propositions", func(c *Config) { c.Parlay.MaxPropositions = 200 }, "MaxPropositions"},
		{"combination guard too high", func(c *Config) { c.Parlay.MaxCombinations = 1 << 40 }, "MaxCombinations"},
		{"legs inverted", func(c *Config) { c.Parlay.MinLegs = 4 }, "min_legs"},
		{"self conflict", func(c *Config) { c.Parlay.Conflicts = []ConflictPair{{A: "points", B: "Points"}} }, "with itself"},
		{"production without ssl", func(c *Config) { c.App.Environment = "production" }, "SSL"},
		{"redis enabled without stream", func(c *Config) {
			c.Redis.Enabled = true
			c.Redis.Stream = ""
		}, "Stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadValid(t)
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

// TestGetDatabaseDSN tests DSN generation
func TestGetDatabaseDSN(t *testing.T) {
	cfg := loadValid(t)

	dsn := cfg.GetDatabaseDSN()
	if !strings.HasPrefix(dsn, postgresPrefix) {
		t.Errorf("expected DSN to start with '%s', got '%s'", postgresPrefix, dsn)
	}
	if !strings.HasSuffix(dsn, "sslmode=disable") {
		t.Errorf("expected DSN to carry ssl mode, got '%s'", dsn)
	}
}

// TestEnvironmentChecks tests the environment helpers
func TestEnvironmentChecks(t *testing.T) {
	cfg := &Config{App: AppConfig{Environment: "staging"}}

	if !cfg.IsStaging() {
		t.Error("expected IsStaging() to return true")
	}
	if cfg.IsDevelopment() || cfg.IsProduction() {
		t.Error("expected only IsStaging() to return true")
	}
}

// TestOverlaySecrets tests that only non-empty secrets replace configuration
func TestOverlaySecrets(t *testing.T) {
	cfg := loadValid(t)
	overlaySecretsOnConfig(cfg, &SecretsOverlay{RedisPassword: "redis-secret", StatsAPIKey: "key"})

	if cfg.Database.Password != "postgres" {
		t.Errorf("expected database password untouched, got '%s'", cfg.Database.Password)
	}
	if cfg.Redis.Password != "redis-secret" {
		t.Errorf("expected redis password from secrets, got '%s'", cfg.Redis.Password)
	}
	if cfg.StatsAPI.APIKey != "key" {
		t.Errorf("expected stats api key from secrets, got '%s'", cfg.StatsAPI.APIKey)
	}
}

// TestLoadConfigEnvironmentVariableExpansion tests environment variable expansion in config file
func TestLoadConfigEnvironmentVariableExpansion(t *testing.T) {
	t.Setenv(testDBPassword, expandedSecretValue)

	cfg, err := Load(expansionConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config with expansion, got %v", err)
	}

	if cfg.Database.Password != expandedSecretValue {
		t.Errorf("expected password '%s' from environment expansion, got '%s'", expandedSecretValue, cfg.Database.Password)
	}
	// os.ExpandEnv replaces unset variables with the empty string
	if cfg.Redis.Password != "" {
		t.Errorf("expected empty redis password for unset %s, got %q", testMissingVar, cfg.Redis.Password)
	}
}
