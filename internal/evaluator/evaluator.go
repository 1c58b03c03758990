// Package evaluator scores individual propositions against a player's history.
package evaluator

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/rustam-sa/nba-01/internal/history"
	"github.com/rustam-sa/nba-01/internal/models"
	"github.com/rustam-sa/nba-01/internal/odds"
	"github.com/rustam-sa/nba-01/internal/probability"
)

// UnitStake is the stake propositions are ranked with
const UnitStake = 1.0

// DefaultLastNGames is the history window used when none is configured
const DefaultLastNGames = 25

// ExpectedValue returns the expected net result of a bet: the
// probability-weighted profit minus the probability-weighted lost stake.
func ExpectedValue(probability, decimalOdds, stake float64) float64 {
	winProfit := (decimalOdds - 1.0) * stake
	return probability*winProfit - (1.0-probability)*stake
}

// ModelProbability returns the model probability for the side of a proposition
func ModelProbability(side models.BetSide, samples []float64, threshold float64) (float64, error) {
	switch side {
	case models.BetSideOver:
		return probability.POver(samples, threshold)
	case models.BetSideUnder:
		return probability.PUnder(samples, threshold)
	default:
		return 0, fmt.Errorf("%w: %q (use 'over' or 'under')", models.ErrUnknownBetSide, side)
	}
}

// Evaluate scores one proposition skeleton against its historical sample
func Evaluate(skel models.PropSkeleton, samples []float64) (models.Proposition, error) {
	prob, err := ModelProbability(skel.Side, samples, skel.Threshold)
	if err != nil {
		return models.Proposition{}, fmt.Errorf("%s: %w", skel.Key(), err)
	}

	decimal, err := odds.AmericanToDecimal(skel.AmericanOdds)
	if err != nil {
		return models.Proposition{}, fmt.Errorf("%s: %w", skel.Key(), err)
	}

	house, err := odds.ImpliedProbability(decimal)
	if err != nil {
		return models.Proposition{}, fmt.Errorf("%s: %w", skel.Key(), err)
	}

	return models.Proposition{
		Player:           skel.Player,
		Team:             skel.Team,
		Stat:             skel.Stat,
		Side:             skel.Side,
		Threshold:        skel.Threshold,
		AmericanOdds:     skel.AmericanOdds,
		DecimalOdds:      decimal,
		Probability:      prob,
		HouseProbability: house,
		ExpectedValue:    ExpectedValue(prob, decimal, UnitStake),
		SampleSize:       len(samples),
	}, nil
}

// Failure records a skeleton that could not be scored
type Failure struct {
	Skeleton models.PropSkeleton
	Err      error
}

// Evaluator scores skeletons by pulling each player's recent history
type Evaluator struct {
	source     history.Source
	validate   *validator.Validate
	lastNGames int
	logger     *logrus.Entry
}

// New creates an evaluator reading at most lastNGames observations per proposition
func New(source history.Source, lastNGames int, logger *logrus.Logger) *Evaluator {
	if lastNGames <= 0 {
		lastNGames = DefaultLastNGames
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Evaluator{
		source:     source,
		validate:   validator.New(),
		lastNGames: lastNGames,
		logger:     logger.WithField("component", "evaluator"),
	}
}

// EvaluateOne fetches history for one skeleton and scores it
func (e *Evaluator) EvaluateOne(ctx context.Context, skel models.PropSkeleton) (models.Proposition, error) {
	if err := e.validate.Struct(skel); err != nil {
		return models.Proposition{}, fmt.Errorf("invalid proposition %s: %w", skel.Key(), err)
	}
	if !skel.Side.Valid() {
		return models.Proposition{}, fmt.Errorf("%s: %w: %q", skel.Key(), models.ErrUnknownBetSide, skel.Side)
	}

	samples, err := e.source.Samples(ctx, skel.Player, skel.Stat, e.lastNGames)
	if err != nil {
		return models.Proposition{}, fmt.Errorf("history for %s: %w", skel.Key(), err)
	}

	return Evaluate(skel, samples)
}

// EvaluateAll scores every skeleton. Scoring failures are collected rather
// than returned so the caller can decide between halting and excluding; the
// returned error is reserved for cancellation.
func (e *Evaluator) EvaluateAll(ctx context.Context, skeletons []models.PropSkeleton) ([]models.Proposition, []Failure, error) {
	props := make([]models.Proposition, 0, len(skeletons))
	var failures []Failure

	for _, skel := range skeletons {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		prop, err := e.EvaluateOne(ctx, skel)
		if err != nil {
			failures = append(failures, Failure{Skeleton: skel, Err: err})
			continue
		}

		e.logger.WithFields(logrus.Fields{
			"player":     prop.Player,
			"stat":       prop.Stat,
			"side":       prop.Side,
			"threshold":  prop.Threshold,
			"odds":       prop.AmericanOdds,
			"prob":       prop.Probability,
			"house_prob": prop.HouseProbability,
			"ev":         prop.ExpectedValue,
		}).Debug("Proposition scored")
		props = append(props, prop)
	}

	return props, failures, nil
}
