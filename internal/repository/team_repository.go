package repository

import (
	"context"
	"fmt"

	"github.com/rustam-sa/nba-01/internal/database"
	"github.com/rustam-sa/nba-01/internal/models"
)

// PostgresTeamRepository implements TeamRepository for PostgreSQL
type PostgresTeamRepository struct {
	db *database.DB
}

// NewPostgresTeamRepository creates a new team repository
func NewPostgresTeamRepository(db *database.DB) TeamRepository {
	return &PostgresTeamRepository{db: db}
}

// Upsert inserts a team or refreshes it by nickname, filling in team.ID
func (r *PostgresTeamRepository) Upsert(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (external_id, abbreviation, nickname, city, full_name)
		VALUES (NULLIF($1::bigint, 0), $2, $3, $4, $5)
		ON CONFLICT (nickname) DO UPDATE SET
			external_id  = COALESCE(EXCLUDED.external_id, teams.external_id),
			abbreviation = EXCLUDED.abbreviation,
			city         = EXCLUDED.city,
			full_name    = EXCLUDED.full_name
		RETURNING id
	`

	err := r.db.GetPool().QueryRow(ctx, query,
		team.ExternalID, team.Abbreviation, team.Nickname, team.City, team.FullName,
	).Scan(&team.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert team: %w", err)
	}
	return nil
}

// List returns every team ordered by nickname
func (r *PostgresTeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	query := `
		SELECT id, COALESCE(external_id, 0), abbreviation, nickname, city, full_name
		FROM teams ORDER BY nickname
	`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		team := &models.Team{}
		if err := rows.Scan(&team.ID, &team.ExternalID, &team.Abbreviation, &team.Nickname, &team.City, &team.FullName); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}
