package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rustam-sa/nba-01/internal/database"
	"github.com/rustam-sa/nba-01/internal/models"
)

// statColumns whitelists the game_stats columns a statistic may be read from
var statColumns = map[string]string{
	models.StatPoints:    "points",
	models.StatRebounds:  "rebounds",
	models.StatAssists:   "assists",
	models.StatSteals:    "steals",
	models.StatBlocks:    "blocks",
	models.StatTurnovers: "turnovers",
	models.StatFGM:       "fgm",
	models.StatFGA:       "fga",
	models.StatFG3M:      "fg3m",
	models.StatFG3A:      "fg3a",
	models.StatFTM:       "ftm",
	models.StatFTA:       "fta",
}

// StatColumn returns the game_stats column holding stat
func StatColumn(stat string) (string, error) {
	col, ok := statColumns[stat]
	if !ok {
		return "", fmt.Errorf("unsupported statistic %q", stat)
	}
	return col, nil
}

// limitArg maps a non-positive limit to NULL, which Postgres reads as no limit
func limitArg(limit int) *int {
	if limit <= 0 {
		return nil
	}
	return &limit
}

// PostgresGameLogRepository implements GameLogRepository for PostgreSQL
type PostgresGameLogRepository struct {
	db *database.DB
}

// NewPostgresGameLogRepository creates a new game log repository
func NewPostgresGameLogRepository(db *database.DB) GameLogRepository {
	return &PostgresGameLogRepository{db: db}
}

// Samples returns the player's most recent observations of stat, newest first
func (r *PostgresGameLogRepository) Samples(ctx context.Context, player, stat string, limit int) ([]float64, error) {
	col, err := StatColumn(stat)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT gs.%s
		FROM game_stats gs
		JOIN players p ON p.id = gs.player_id
		JOIN games g ON g.id = gs.game_id
		WHERE lower(p.name) = lower($1)
		ORDER BY g.game_date DESC, g.external_id DESC
		LIMIT $2
	`, col)

	rows, err := r.db.GetPool().Query(ctx, query, player, limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	samples, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (float64, error) {
		var v int
		err := row.Scan(&v)
		return float64(v), err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan samples: %w", err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no game logs for %s", models.ErrInsufficientData, player)
	}
	return samples, nil
}

// UpsertGameLogs stores a player's box score lines in one transaction and
// returns the number of lines written. player.ID is filled in.
func (r *PostgresGameLogRepository) UpsertGameLogs(ctx context.Context, player *models.Player, logs []*models.GameLog) (int, error) {
	written := 0
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, upsertPlayerQuery,
			player.ExternalID, player.Name, player.Position, player.TeamID,
		).Scan(&player.ID)
		if err != nil {
			return fmt.Errorf("failed to upsert player: %w", err)
		}

		for _, l := range logs {
			var gameID int64
			err := tx.QueryRow(ctx, `
				INSERT INTO games (external_id, game_date, matchup)
				VALUES ($1, $2, $3)
				ON CONFLICT (external_id) DO UPDATE SET game_date = EXCLUDED.game_date
				RETURNING id
			`, l.GameExternalID, l.GameDate, l.Matchup).Scan(&gameID)
			if err != nil {
				return fmt.Errorf("failed to upsert game %s: %w", l.GameExternalID, err)
			}

			_, err = tx.Exec(ctx, `
				INSERT INTO game_stats (player_id, game_id, minutes, points, rebounds, assists, steals,
				                        blocks, turnovers, fgm, fga, fg3m, fg3a, ftm, fta)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
				ON CONFLICT (player_id, game_id) DO UPDATE SET
					minutes = EXCLUDED.minutes, points = EXCLUDED.points, rebounds = EXCLUDED.rebounds,
					assists = EXCLUDED.assists, steals = EXCLUDED.steals, blocks = EXCLUDED.blocks,
					turnovers = EXCLUDED.turnovers, fgm = EXCLUDED.fgm, fga = EXCLUDED.fga,
					fg3m = EXCLUDED.fg3m, fg3a = EXCLUDED.fg3a, ftm = EXCLUDED.ftm, fta = EXCLUDED.fta
			`, player.ID, gameID, l.Minutes, l.Points, l.Rebounds, l.Assists, l.Steals,
				l.Blocks, l.Turnovers, l.FGM, l.FGA, l.FG3M, l.FG3A, l.FTM, l.FTA)
			if err != nil {
				return fmt.Errorf("failed to upsert stats for game %s: %w", l.GameExternalID, err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}
