package models

import (
	"fmt"
	"time"
)

// Team represents an NBA franchise
type Team struct {
	ID           int64  `db:"id" json:"id"`
	ExternalID   int64  `db:"external_id" json:"external_id"`
	Nickname     string `db:"nickname" json:"nickname"`
	City         string `db:"city" json:"city"`
	FullName     string `db:"full_name" json:"full_name"`
	Abbreviation string `db:"abbreviation" json:"abbreviation"`
}

// Player represents a rostered player
type Player struct {
	ID         int64  `db:"id" json:"id"`
	ExternalID int64  `db:"external_id" json:"external_id"`
	Name       string `db:"name" json:"name"`
	Position   string `db:"position" json:"position"`
	TeamID     *int64 `db:"team_id" json:"team_id"`
}

// GameLog is one player's traditional box score line for one game
type GameLog struct {
	PlayerExternalID int64     `db:"player_external_id" json:"player_external_id"`
	GameExternalID   string    `db:"game_external_id" json:"game_external_id"`
	GameDate         time.Time `db:"game_date" json:"game_date"`
	Matchup          string    `db:"matchup" json:"matchup"`
	Minutes          float64   `db:"minutes" json:"minutes"`
	Points           int       `db:"points" json:"points"`
	Rebounds         int       `db:"rebounds" json:"rebounds"`
	Assists          int       `db:"assists" json:"assists"`
	Steals           int       `db:"steals" json:"steals"`
	Blocks           int       `db:"blocks" json:"blocks"`
	Turnovers        int       `db:"turnovers" json:"turnovers"`
	FGM              int       `db:"fgm" json:"fgm"`
	FGA              int       `db:"fga" json:"fga"`
	FG3M             int       `db:"fg3m" json:"fg3m"`
	FG3A             int       `db:"fg3a" json:"fg3a"`
	FTM              int       `db:"ftm" json:"ftm"`
	FTA              int       `db:"fta" json:"fta"`
}

// Value returns the observation for the named statistic
func (g *GameLog) Value(stat string) (float64, error) {
	switch stat {
	case StatPoints:
		return float64(g.Points), nil
	case StatRebounds:
		return float64(g.Rebounds), nil
	case StatAssists:
		return float64(g.Assists), nil
	case StatSteals:
		return float64(g.Steals), nil
	case StatBlocks:
		return float64(g.Blocks), nil
	case StatTurnovers:
		return float64(g.Turnovers), nil
	case StatFGM:
		return float64(g.FGM), nil
	case StatFGA:
		return float64(g.FGA), nil
	case StatFG3M:
		return float64(g.FG3M), nil
	case StatFG3A:
		return float64(g.FG3A), nil
	case StatFTM:
		return float64(g.FTM), nil
	case StatFTA:
		return float64(g.FTA), nil
	}
	return 0, fmt.Errorf("unsupported statistic %q", stat)
}
