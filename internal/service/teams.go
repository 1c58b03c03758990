package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rustam-sa/nba-01/internal/models"
)

// TeamUpserter stores teams keyed by nickname
type TeamUpserter interface {
	Upsert(ctx context.Context, team *models.Team) error
}

// NBATeams returns the league's thirty franchises. Nicknames match the team
// cells of the sportsbook feed.
func NBATeams() []models.Team {
	return []models.Team{
		{ExternalID: 1610612737, Abbreviation: "ATL", City: "Atlanta", Nickname: "Hawks"},
		{ExternalID: 1610612738, Abbreviation: "BOS", City: "Boston", Nickname: "Celtics"},
		{ExternalID: 1610612751, Abbreviation: "BKN", City: "Brooklyn", Nickname: "Nets"},
		{ExternalID: 1610612766, Abbreviation: "CHA", City: "Charlotte", Nickname: "Hornets"},
		{ExternalID: 1610612741, Abbreviation: "CHI", City: "Chicago", Nickname: "Bulls"},
		{ExternalID: 1610612739, Abbreviation: "CLE", City: "Cleveland", Nickname: "Cavaliers"},
		{ExternalID: 1610612742, Abbreviation: "DAL", City: "Dallas", Nickname: "Mavericks"},
		{ExternalID: 1610612743, Abbreviation: "DEN", City: "Denver", Nickname: "Nuggets"},
		{ExternalID: 1610612765, Abbreviation: "DET", City: "Detroit", Nickname: "Pistons"},
		{ExternalID: 1610612744, Abbreviation: "GSW", City: "Golden State", Nickname: "Warriors"},
		{ExternalID: 1610612745, Abbreviation: "HOU", City: "Houston", Nickname: "Rockets"},
		{ExternalID: 1610612754, Abbreviation: "IND", City: "Indiana", Nickname: "Pacers"},
		{ExternalID: 1610612746, Abbreviation: "LAC", City: "LA", Nickname: "Clippers"},
		{ExternalID: 1610612747, Abbreviation: "LAL", City: "Los Angeles", Nickname: "Lakers"},
		{ExternalID: 1610612763, Abbreviation: "MEM", City: "Memphis", Nickname: "Grizzlies"},
		{ExternalID: 1610612748, Abbreviation: "MIA", City: "Miami", Nickname: "Heat"},
		{ExternalID: 1610612749, Abbreviation: "MIL", City: "Milwaukee", Nickname: "Bucks"},
		{ExternalID: 1610612750, Abbreviation: "MIN", City: "Minnesota", Nickname: "Timberwolves"},
		{ExternalID: 1610612740, Abbreviation: "NOP", City: "New Orleans", Nickname: "Pelicans"},
		{ExternalID: 1610612752, Abbreviation: "NYK", City: "New York", Nickname: "Knicks"},
		{ExternalID: 1610612760, Abbreviation: "OKC", City: "Oklahoma City", Nickname: "Thunder"},
		{ExternalID: 1610612753, Abbreviation: "ORL", City: "Orlando", Nickname: "Magic"},
		{ExternalID: 1610612755, Abbreviation: "PHI", City: "Philadelphia", Nickname: "76ers"},
		{ExternalID: 1610612756, Abbreviation: "PHX", City: "Phoenix", Nickname: "Suns"},
		{ExternalID: 1610612757, Abbreviation: "POR", City: "Portland", Nickname: "Trail Blazers"},
		{ExternalID: 1610612758, Abbreviation: "SAC", City: "Sacramento", Nickname: "Kings"},
		{ExternalID: 1610612759, Abbreviation: "SAS", City: "San Antonio", Nickname: "Spurs"},
		{ExternalID: 1610612761, Abbreviation: "TOR", City: "Toronto", Nickname: "Raptors"},
		{ExternalID: 1610612762, Abbreviation: "UTA", City: "Utah", Nickname: "Jazz"},
		{ExternalID: 1610612764, Abbreviation: "WAS", City: "Washington", Nickname: "Wizards"},
	}
}

// SeedTeams upserts every NBA team and returns how many were written
func SeedTeams(ctx context.Context, store TeamUpserter, logger *logrus.Logger) (int, error) {
	seeded := 0
	for _, team := range NBATeams() {
		if err := ctx.Err(); err != nil {
			return seeded, err
		}
		team.FullName = team.City + " " + team.Nickname
		if err := store.Upsert(ctx, &team); err != nil {
			return seeded, fmt.Errorf("seeding %s: %w", team.Nickname, err)
		}
		seeded++
	}
	if logger != nil {
		logger.WithField("teams", seeded).Info("Teams seeded")
	}
	return seeded, nil
}
