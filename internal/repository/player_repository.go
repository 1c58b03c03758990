package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rustam-sa/nba-01/internal/database"
	"github.com/rustam-sa/nba-01/internal/models"
)

// PostgresPlayerRepository implements PlayerRepository for PostgreSQL
type PostgresPlayerRepository struct {
	db *database.DB
}

// NewPostgresPlayerRepository creates a new player repository
func NewPostgresPlayerRepository(db *database.DB) PlayerRepository {
	return &PostgresPlayerRepository{db: db}
}

const upsertPlayerQuery = `
	INSERT INTO players (external_id, name, position, team_id)
	VALUES (NULLIF($1::bigint, 0), $2, $3, $4)
	ON CONFLICT (name) DO UPDATE SET
		external_id = COALESCE(EXCLUDED.external_id, players.external_id),
		position    = CASE WHEN EXCLUDED.position = '' THEN players.position ELSE EXCLUDED.position END,
		team_id     = COALESCE(EXCLUDED.team_id, players.team_id)
	RETURNING id
`

// Upsert inserts a player or refreshes it by name, filling in player.ID
func (r *PostgresPlayerRepository) Upsert(ctx context.Context, player *models.Player) error {
	err := r.db.GetPool().QueryRow(ctx, upsertPlayerQuery,
		player.ExternalID, player.Name, player.Position, player.TeamID,
	).Scan(&player.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert player: %w", err)
	}
	return nil
}

// GetByName retrieves a player by name, case-insensitively
func (r *PostgresPlayerRepository) GetByName(ctx context.Context, name string) (*models.Player, error) {
	query := `
		SELECT id, COALESCE(external_id, 0), name, position, team_id
		FROM players WHERE lower(name) = lower($1)
	`

	player := &models.Player{}
	err := r.db.GetPool().QueryRow(ctx, query, name).Scan(
		&player.ID, &player.ExternalID, &player.Name, &player.Position, &player.TeamID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return player, nil
}

// ExternalID returns the stats API identifier of the named player
func (r *PostgresPlayerRepository) ExternalID(ctx context.Context, name string) (int64, error) {
	player, err := r.GetByName(ctx, name)
	if err != nil {
		return 0, err
	}
	if player.ExternalID == 0 {
		return 0, fmt.Errorf("%w: player %s has no external id", models.ErrNotFound, name)
	}
	return player.ExternalID, nil
}

// ListWithTeams returns every player that has a team, for roster building
func (r *PostgresPlayerRepository) ListWithTeams(ctx context.Context) ([]RosterEntry, error) {
	query := `
		SELECT p.name AS player, t.nickname AS team
		FROM players p JOIN teams t ON t.id = p.team_id
		ORDER BY t.nickname, p.name
	`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster: %w", err)
	}
	defer rows.Close()

	entries, err := pgx.CollectRows(rows, pgx.RowToStructByName[RosterEntry])
	if err != nil {
		return nil, fmt.Errorf("failed to scan roster: %w", err)
	}
	return entries, nil
}
