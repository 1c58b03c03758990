// Package feed turns sportsbook prop listings into proposition skeletons.
package feed

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rustam-sa/nba-01/internal/models"
)

// Format names a supported feed layout
type Format string

const (
	// FormatHardRock is the single-column sportsbook copy: category labels,
	// team nicknames and player names followed by their four line cells.
	FormatHardRock Format = "hardrock"
	// FormatCSV is one line per row with explicit columns
	FormatCSV Format = "csv"
)

// Line is one player statistic offered on both sides
type Line struct {
	Player         string
	Team           string
	Stat           string
	OverThreshold  float64
	OverOdds       int
	UnderThreshold float64
	UnderOdds      int
}

// Skeletons expands the line into its over and under propositions
func (l Line) Skeletons() []models.PropSkeleton {
	return []models.PropSkeleton{
		{Player: l.Player, Team: l.Team, Stat: l.Stat, Side: models.BetSideOver, Threshold: l.OverThreshold, AmericanOdds: l.OverOdds},
		{Player: l.Player, Team: l.Team, Stat: l.Stat, Side: models.BetSideUnder, Threshold: l.UnderThreshold, AmericanOdds: l.UnderOdds},
	}
}

// Skeletons expands every line, preserving feed order
func Skeletons(lines []Line) []models.PropSkeleton {
	out := make([]models.PropSkeleton, 0, 2*len(lines))
	for _, l := range lines {
		out = append(out, l.Skeletons()...)
	}
	return out
}

// Parse reads lines of the given format. The roster is only consulted for
// the HardRock format.
func Parse(r io.Reader, format Format, roster *Roster) ([]Line, error) {
	switch format {
	case FormatHardRock, "":
		if roster == nil {
			return nil, fmt.Errorf("hardrock feed requires a roster")
		}
		return ParseHardRock(r, roster)
	case FormatCSV:
		return ParseCSV(r)
	default:
		return nil, fmt.Errorf("unknown feed format %q", format)
	}
}

// LoadFile opens path and parses it
func LoadFile(path string, format Format, roster *Roster) ([]Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open feed: %w", err)
	}
	defer f.Close()

	lines, err := Parse(f, format, roster)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lines, nil
}

// Roster knows which names are players and which are team nicknames
type Roster struct {
	players map[string]string // name -> team nickname, possibly empty
	teams   map[string]struct{}
}

// NewRoster creates an empty roster
func NewRoster() *Roster {
	return &Roster{players: map[string]string{}, teams: map[string]struct{}{}}
}

// AddTeam registers a team nickname
func (r *Roster) AddTeam(nickname string) {
	r.teams[strings.TrimSpace(nickname)] = struct{}{}
}

// AddPlayer registers a player and, when known, their team
func (r *Roster) AddPlayer(name, team string) {
	r.players[strings.TrimSpace(name)] = strings.TrimSpace(team)
	if team != "" {
		r.AddTeam(team)
	}
}

// IsTeam reports whether cell is a known team nickname
func (r *Roster) IsTeam(cell string) bool {
	_, ok := r.teams[cell]
	return ok
}

// Player reports whether cell is a known player and returns their team
func (r *Roster) Player(cell string) (string, bool) {
	team, ok := r.players[cell]
	return team, ok
}

// Len returns the number of known players
func (r *Roster) Len() int {
	return len(r.players)
}
