package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustam-sa/nba-01/internal/models"
)

func sampleRun() *models.Run {
	props := []models.Proposition{
		{Player: "Jalen Brunson", Team: "Knicks", Stat: models.StatPoints, Side: models.BetSideOver, Threshold: 27.5, AmericanOdds: -115, Probability: 0.55, ExpectedValue: 0.03, HouseProbability: 0.53},
		{Player: "Josh Hart", Team: "Knicks", Stat: models.StatRebounds, Side: models.BetSideUnder, Threshold: 9.5, AmericanOdds: 120, Probability: 0.5, ExpectedValue: 0.1, HouseProbability: 0.45},
	}
	combo := models.Combination{Legs: []int{0, 1}, CombinedProbability: 0.275, CombinedEV: 0.13, ToWin: decimal.RequireFromString("18.91")}
	return &models.Run{
		StartedAt:    time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC),
		Propositions: props,
		Combinations: []models.Combination{combo},
		Portfolio:    &models.Portfolio{Parlays: []models.Parlay{{Combination: combo, ParlayID: 1, Rank: 1}}},
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "props_2024-03-09.csv", FileName(PropsPrefix, time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC)))
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, models.PropositionTable(sampleRun().Propositions)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, models.PropositionColumns, records[0])
	assert.Equal(t, "Jalen Brunson", records[1][0])
	assert.Equal(t, "-115", records[1][4])
	assert.Equal(t, "under", records[2][5])
}

func TestWriteRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	paths, err := WriteRun(dir, sampleRun())
	require.NoError(t, err)
	require.Len(t, paths, 3)
	assert.Equal(t, filepath.Join(dir, "props_2024-03-09.csv"), paths[0])
	assert.Equal(t, filepath.Join(dir, "combinations_2024-03-09.csv"), paths[1])
	assert.Equal(t, filepath.Join(dir, "parlays_2024-03-09.csv"), paths[2])

	f, err := os.Open(paths[2])
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "PARLAY_ID", records[0][0])
	assert.Equal(t, "1", records[1][0])
	assert.Contains(t, records[1][1], "Jalen Brunson points over 27.5 (-115) | Josh Hart")
	assert.Equal(t, "18.91", records[1][5])
}
