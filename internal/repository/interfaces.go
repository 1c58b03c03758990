package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/rustam-sa/nba-01/internal/models"
)

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	Upsert(ctx context.Context, team *models.Team) error
	List(ctx context.Context) ([]*models.Team, error)
}

// PlayerRepository defines the interface for player data access
type PlayerRepository interface {
	Upsert(ctx context.Context, player *models.Player) error
	GetByName(ctx context.Context, name string) (*models.Player, error)
	ExternalID(ctx context.Context, name string) (int64, error)
	ListWithTeams(ctx context.Context) ([]RosterEntry, error)
}

// GameLogRepository defines the interface for box score data access. It
// doubles as a history source for the evaluator.
type GameLogRepository interface {
	Samples(ctx context.Context, player, stat string, limit int) ([]float64, error)
	UpsertGameLogs(ctx context.Context, player *models.Player, logs []*models.GameLog) (int, error)
}

// RunRepository defines the interface for persisted pipeline runs
type RunRepository interface {
	Save(ctx context.Context, run *models.Run) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Run, error)
	Latest(ctx context.Context) (*models.Run, error)
}

// RosterEntry pairs a player name with the nickname of their team
type RosterEntry struct {
	Player string `db:"player"`
	Team   string `db:"team"`
}
