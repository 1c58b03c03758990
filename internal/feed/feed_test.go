package feed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustam-sa/nba-01/internal/models"
)

func testRoster() *Roster {
	r := NewRoster()
	r.AddTeam("Knicks")
	r.AddTeam("Celtics")
	r.AddPlayer("Jalen Brunson", "Knicks")
	r.AddPlayer("Josh Hart", "Knicks")
	r.AddPlayer("Jayson Tatum", "Celtics")
	r.AddPlayer("Jrue Holiday", "")
	return r
}

const hardRockFeed = `Copied
PointsSGP
Knicks
Jalen Brunson
O 27.5
-115
U 27.5
-105
Josh Hart
Over 9.5
+120
Under 9.5
-150
Celtics
Jayson Tatum
O 26.5
-110
U 26.5
-110
ReboundsSGP
Jrue Holiday
O 4.5
+105
U 4.5
-135
`

func TestParseHardRock(t *testing.T) {
	lines, err := ParseHardRock(strings.NewReader(hardRockFeed), testRoster())
	require.NoError(t, err)
	require.Len(t, lines, 4)

	assert.Equal(t, Line{
		Player: "Jalen Brunson", Team: "Knicks", Stat: models.StatPoints,
		OverThreshold: 27.5, OverOdds: -115, UnderThreshold: 27.5, UnderOdds: -105,
	}, lines[0])
	assert.Equal(t, 120, lines[1].OverOdds)
	assert.Equal(t, 9.5, lines[1].UnderThreshold)
	assert.Equal(t, "Celtics", lines[2].Team)

	// team carries over from the stream, not the roster
	assert.Equal(t, models.StatRebounds, lines[3].Stat)
	assert.Equal(t, "Celtics", lines[3].Team)
}

func TestParseHardRockErrors(t *testing.T) {
	tests := []struct {
		name string
		feed string
	}{
		{"player before category", "header\nKnicks\nJalen Brunson\nO 1.5\n-110\nU 1.5\n-110\n"},
		{"bad odds", "header\nPointsSGP\nKnicks\nJalen Brunson\nO 27.5\nEVEN\nU 27.5\n-105\n"},
		{"missing threshold", "header\nPointsSGP\nKnicks\nJalen Brunson\nO 27\n-110\nU 27.5\n-105\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHardRock(strings.NewReader(tt.feed), testRoster())
			assert.Error(t, err)
		})
	}
}

func TestParseHardRockUsesRosterTeamWhenStreamHasNone(t *testing.T) {
	feed := "header\nAssistsSGP\nJosh Hart\nO 4.5\n-120\nU 4.5\n-110\n"
	lines, err := ParseHardRock(strings.NewReader(feed), testRoster())
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Knicks", lines[0].Team)
	assert.Equal(t, models.StatAssists, lines[0].Stat)
}

func TestParseCSV(t *testing.T) {
	feed := `player,team,stat,over_threshold,over_odds,under_threshold,under_odds
Jalen Brunson,Knicks,Points,27.5,-115,27.5,-105
Jayson Tatum,Celtics,fg3m,2.5,+130,2.5,-160
`
	lines, err := ParseCSV(strings.NewReader(feed))
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, models.StatPoints, lines[0].Stat)
	assert.Equal(t, 130, lines[1].OverOdds)
	assert.Equal(t, -160, lines[1].UnderOdds)
}

func TestParseCSVErrors(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("player,team,stat\nA,B,points\n"))
	assert.Error(t, err)

	_, err = ParseCSV(strings.NewReader("player,team,stat,over_threshold,over_odds,under_threshold,under_odds\nA,B,points,x,-110,1.5,-110\n"))
	assert.Error(t, err)

	_, err = ParseCSV(strings.NewReader("player,team,stat,over_threshold,over_odds,under_threshold,under_odds\nA,B,points,1.5,0,1.5,-110\n"))
	assert.ErrorIs(t, err, models.ErrInvalidOdds)
}

func TestSkeletonsExpandBothSides(t *testing.T) {
	lines := []Line{{Player: "A", Team: "T", Stat: models.StatPoints, OverThreshold: 10.5, OverOdds: -110, UnderThreshold: 10.5, UnderOdds: -110}}
	skels := Skeletons(lines)
	require.Len(t, skels, 2)
	assert.Equal(t, models.BetSideOver, skels[0].Side)
	assert.Equal(t, models.BetSideUnder, skels[1].Side)
	assert.Equal(t, 10.5, skels[1].Threshold)
}

func TestExtractThreshold(t *testing.T) {
	tests := []struct {
		cell string
		want float64
		ok   bool
	}{
		{"O 24.5", 24.5, true},
		{"Under 0.5", 0.5, true},
		{"24", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, err := ExtractThreshold(tt.cell)
		if !tt.ok {
			assert.Error(t, err, tt.cell)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseRejectsUnknownFormat(t *testing.T) {
	_, err := Parse(strings.NewReader(""), "xlsx", nil)
	assert.Error(t, err)

	_, err = Parse(strings.NewReader(""), FormatHardRock, nil)
	assert.Error(t, err)
}
