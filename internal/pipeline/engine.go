// Package pipeline runs the proposition workflow end to end: score the
// skeletons, filter the scored table, enumerate and rank combinations and
// select an exposure-capped portfolio.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rustam-sa/nba-01/internal/evaluator"
	"github.com/rustam-sa/nba-01/internal/history"
	"github.com/rustam-sa/nba-01/internal/logger"
	"github.com/rustam-sa/nba-01/internal/metrics"
	"github.com/rustam-sa/nba-01/internal/models"
	"github.com/rustam-sa/nba-01/internal/parlay"
)

// Result is the outcome of one run
type Result = models.Run

// RunContext carries the state of one run through every stage. It is owned
// by the caller and never shared between runs.
type RunContext struct {
	RunID     uuid.UUID
	StartedAt time.Time
	Logger    *logger.PipelineLogger
	Config    Config
}

// Engine wires a history source into the pipeline stages
type Engine struct {
	source history.Source
	logger *logrus.Logger
	config Config
}

// NewEngine creates an engine that scores against source
func NewEngine(source history.Source, cfg Config, log *logrus.Logger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{source: source, logger: log, config: cfg}
}

// Config returns the configuration new runs start from
func (e *Engine) Config() Config {
	return e.config
}

// NewRunContext starts a run with a fresh identifier and a copy of cfg
func (e *Engine) NewRunContext(cfg Config) *RunContext {
	id := uuid.New()
	return &RunContext{
		RunID:     id,
		StartedAt: time.Now().UTC(),
		Logger:    logger.NewPipelineLogger(e.logger).WithRun(id.String()),
		Config:    cfg,
	}
}

// Score evaluates skeletons and applies the scoring policy. The returned
// table is unfiltered and in input order.
func (e *Engine) Score(ctx context.Context, rc *RunContext, skeletons []models.PropSkeleton) ([]models.Proposition, []models.Exclusion, error) {
	if err := CheckDuplicates(skeletons); err != nil {
		return nil, nil, err
	}

	eval := evaluator.New(e.source, rc.Config.LastNGames, e.logger)
	scored, failures, err := eval.EvaluateAll(ctx, skeletons)
	if err != nil {
		return nil, nil, err
	}
	metrics.RecordEvaluations(len(scored), len(failures))

	if len(failures) == 0 {
		return scored, nil, nil
	}

	if rc.Config.OnScoringError != PolicyExclude {
		f := failures[0]
		return nil, nil, fmt.Errorf("scoring %s: %w", f.Skeleton.Key(), f.Err)
	}

	excluded := make([]models.Exclusion, 0, len(failures))
	for _, f := range failures {
		rc.Logger.LogExclusion(f.Skeleton.Player, f.Skeleton.Stat, string(f.Skeleton.Side), f.Err)
		excluded = append(excluded, models.Exclusion{Skeleton: f.Skeleton, Reason: f.Err.Error()})
	}
	return scored, excluded, nil
}

// Run executes every stage for one set of skeletons. On an empty portfolio
// the partially filled result is returned along with ErrEmptyPortfolio.
func (e *Engine) Run(ctx context.Context, rc *RunContext, skeletons []models.PropSkeleton) (*Result, error) {
	result := &Result{
		ID:        rc.RunID,
		StartedAt: rc.StartedAt,
		EVMode:    string(evMode(rc.Config.Generator.EVMode)),
		MinLegs:   rc.Config.Generator.MinLegs,
		MaxLegs:   rc.Config.Generator.MaxLegs,
	}

	err := e.run(ctx, rc, skeletons, result)
	result.CompletedAt = time.Now().UTC()

	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusFailure
		rc.Logger.WithError(err).Error("Pipeline run failed")
	}
	metrics.RecordPipelineRun(status, result.Duration().Seconds())
	return result, err
}

func (e *Engine) run(ctx context.Context, rc *RunContext, skeletons []models.PropSkeleton, result *Result) error {
	scored, excluded, err := e.Score(ctx, rc, skeletons)
	if err != nil {
		return err
	}
	result.Scored = scored
	result.Excluded = excluded

	props := Filter(scored, rc.Config.Filter)
	result.Propositions = props

	profitable := 0
	for i := range scored {
		if scored[i].Profitable() {
			profitable++
		}
	}
	metrics.UpdateProfitablePropositions(profitable)
	rc.Logger.LogEvaluation(len(skeletons), len(scored), len(excluded), profitable)

	if len(props) == 0 {
		return fmt.Errorf("%w: no proposition passed the filter", models.ErrEmptyPortfolio)
	}

	genCfg := rc.Config.Generator
	combos, err := parlay.Generate(ctx, props, genCfg)
	if err != nil {
		return fmt.Errorf("generating combinations: %w", err)
	}
	result.Combinations = combos
	result.CombinationCount = len(combos)
	metrics.RecordCombinations(len(combos))
	rc.Logger.LogGeneration(len(props), genCfg.MinLegs, genCfg.MaxLegs, len(combos), result.EVMode)

	portfolio, err := parlay.Select(props, parlay.Rank(combos), rc.Config.Selector)
	if portfolio != nil {
		result.Portfolio = portfolio
		metrics.RecordRejections(portfolio.Rejections)
		metrics.UpdatePortfolioSize(portfolio.Size())
		rc.Logger.LogSelection(portfolio.TargetSize, portfolio.Size(), portfolio.Rejections)
	}
	if err != nil {
		if errors.Is(err, models.ErrEmptyPortfolio) {
			return err
		}
		return fmt.Errorf("selecting portfolio: %w", err)
	}

	rc.Logger.LogRunCompleted(len(props), len(combos), portfolio.Size(), time.Since(rc.StartedAt))
	return nil
}

func evMode(m parlay.EVMode) parlay.EVMode {
	if m == "" {
		return parlay.EVModeSum
	}
	return m
}
