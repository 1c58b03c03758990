package pipeline

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rustam-sa/nba-01/internal/config"
	"github.com/rustam-sa/nba-01/internal/evaluator"
	"github.com/rustam-sa/nba-01/internal/parlay"
)

// ScoringPolicy decides what a run does when a skeleton cannot be scored
type ScoringPolicy string

const (
	// PolicyHalt aborts the run on the first scoring failure
	PolicyHalt ScoringPolicy = "halt"
	// PolicyExclude drops failed skeletons and reports them in Result.Excluded
	PolicyExclude ScoringPolicy = "exclude"
)

// FilterConfig controls which scored propositions enter generation
type FilterConfig struct {
	MinEV           float64
	ExcludedPlayers []string
	ExcludedStats   []string
	TopN            int
}

// Config is the per-run snapshot of every stage's settings
type Config struct {
	LastNGames     int
	OnScoringError ScoringPolicy
	Filter         FilterConfig
	Generator      parlay.GeneratorConfig
	Selector       parlay.SelectorConfig
}

// DefaultConfig mirrors the configuration defaults
func DefaultConfig() Config {
	return Config{
		LastNGames:     evaluator.DefaultLastNGames,
		OnScoringError: PolicyHalt,
		Filter:         FilterConfig{TopN: 36},
		Generator: parlay.GeneratorConfig{
			MinLegs:         2,
			MaxLegs:         3,
			EVMode:          parlay.EVModeSum,
			Stake:           decimal.NewFromInt(5),
			MaxPropositions: parlay.DefaultMaxPropositions,
			MaxCombinations: parlay.DefaultMaxCombinations,
		},
		Selector: parlay.SelectorConfig{
			MinLegs:              2,
			MaxLegs:              3,
			MaxPermeationRate:    0.25,
			PlayerPermeationRate: 0.35,
			Conflicts:            parlay.DefaultConflictTable(),
		},
	}
}

// FromConfig builds a run configuration from the application configuration
func FromConfig(cfg *config.Config) Config {
	pairs := make([]parlay.StatPair, 0, len(cfg.Parlay.Conflicts))
	for _, c := range cfg.Parlay.Conflicts {
		pairs = append(pairs, parlay.StatPair{A: strings.ToLower(c.A), B: strings.ToLower(c.B)})
	}

	return Config{
		LastNGames:     cfg.Evaluation.LastNGames,
		OnScoringError: ScoringPolicy(cfg.Evaluation.OnScoringError),
		Filter: FilterConfig{
			MinEV:           cfg.Evaluation.MinEV,
			ExcludedPlayers: cfg.Evaluation.ExcludedPlayers,
			ExcludedStats:   cfg.Evaluation.ExcludedStats,
			TopN:            cfg.Evaluation.TopN,
		},
		Generator: parlay.GeneratorConfig{
			MinLegs:         cfg.Parlay.MinLegs,
			MaxLegs:         cfg.Parlay.MaxLegs,
			EVMode:          parlay.EVMode(cfg.Parlay.EVMode),
			Stake:           decimal.NewFromFloat(cfg.Parlay.Stake),
			MaxPropositions: cfg.Parlay.MaxPropositions,
			MaxCombinations: cfg.Parlay.MaxCombinations,
			PruneBelowMinEV: cfg.Parlay.PruneBelowMinEV,
			MinCombinedEV:   cfg.Parlay.MinCombinedEV,
			Workers:         cfg.Parlay.Workers,
		},
		Selector: parlay.SelectorConfig{
			MinLegs:              cfg.Parlay.MinLegs,
			MaxLegs:              cfg.Parlay.MaxLegs,
			MaxPermeationRate:    cfg.Parlay.MaxPermeationRate,
			PlayerPermeationRate: cfg.Parlay.PlayerPermeationRate,
			Conflicts:            parlay.NewConflictTable(pairs...),
		},
	}
}
