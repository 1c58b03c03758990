package evaluator

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustam-sa/nba-01/internal/history"
	"github.com/rustam-sa/nba-01/internal/models"
	"github.com/rustam-sa/nba-01/internal/probability"
)

func TestExpectedValue(t *testing.T) {
	// Fair coin at even money breaks even
	assert.InDelta(t, 0.0, ExpectedValue(0.5, 2.0, 1), 1e-12)
	// 60% at +150: 0.6*1.5 - 0.4 = 0.5
	assert.InDelta(t, 0.5, ExpectedValue(0.6, 2.5, 1), 1e-12)
	// Loss-aware: a certain loss costs the full stake
	assert.InDelta(t, -5.0, ExpectedValue(0, 3.0, 5), 1e-12)
}

func TestEvaluateOver(t *testing.T) {
	samples := []float64{28, 31, 25, 22, 30}
	skel := models.PropSkeleton{
		Player: "Jalen Brunson", Team: "Knicks", Stat: models.StatPoints,
		Side: models.BetSideOver, Threshold: 25.5, AmericanOdds: -115,
	}

	prop, err := Evaluate(skel, samples)
	require.NoError(t, err)

	want, err := probability.POver(samples, 25.5)
	require.NoError(t, err)
	assert.Equal(t, want, prop.Probability)
	assert.InDelta(t, 1+100.0/115.0, prop.DecimalOdds, 1e-12)
	assert.Equal(t, 1/prop.DecimalOdds, prop.HouseProbability)
	assert.InDelta(t, ExpectedValue(want, prop.DecimalOdds, 1), prop.ExpectedValue, 1e-12)
	assert.Equal(t, 5, prop.SampleSize)
	assert.Equal(t, "Knicks", prop.Team)
}

func TestEvaluateSidesAreComplementary(t *testing.T) {
	samples := []float64{6, 9, 7, 4}
	over, err := Evaluate(models.PropSkeleton{Player: "A", Stat: models.StatAssists, Side: models.BetSideOver, Threshold: 6.5, AmericanOdds: 110}, samples)
	require.NoError(t, err)
	under, err := Evaluate(models.PropSkeleton{Player: "A", Stat: models.StatAssists, Side: models.BetSideUnder, Threshold: 6.5, AmericanOdds: -140}, samples)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, over.Probability+under.Probability, 1e-12)
}

func TestEvaluateErrors(t *testing.T) {
	base := models.PropSkeleton{Player: "A", Stat: models.StatPoints, Side: models.BetSideOver, Threshold: 10.5, AmericanOdds: 100}

	bad := base
	bad.Side = "sideways"
	_, err := Evaluate(bad, []float64{10})
	assert.ErrorIs(t, err, models.ErrUnknownBetSide)

	bad = base
	bad.AmericanOdds = 0
	_, err = Evaluate(bad, []float64{10})
	assert.ErrorIs(t, err, models.ErrInvalidOdds)

	_, err = Evaluate(base, nil)
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}

func TestEvaluateAllCollectsFailures(t *testing.T) {
	src := history.NewMemorySource()
	src.Put("Mikal Bridges", models.StatFG3M, []float64{2, 3, 1, 4})
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	ev := New(src, 25, logger)

	skeletons := []models.PropSkeleton{
		{Player: "Mikal Bridges", Stat: models.StatFG3M, Side: models.BetSideOver, Threshold: 1.5, AmericanOdds: -150},
		{Player: "Nobody", Stat: models.StatPoints, Side: models.BetSideOver, Threshold: 9.5, AmericanOdds: 100},
		{Player: "Mikal Bridges", Stat: models.StatFG3M, Side: "both", Threshold: 1.5, AmericanOdds: -150},
	}

	props, failures, err := ev.EvaluateAll(context.Background(), skeletons)
	require.NoError(t, err)
	require.Len(t, props, 1)
	require.Len(t, failures, 2)
	assert.ErrorIs(t, failures[0].Err, models.ErrInsufficientData)
	assert.ErrorIs(t, failures[1].Err, models.ErrUnknownBetSide)
}

func TestEvaluateAllHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := New(history.NewMemorySource(), 0, nil).EvaluateAll(ctx, []models.PropSkeleton{{Player: "A", Stat: "points", Side: "over"}})
	assert.ErrorIs(t, err, context.Canceled)
}
