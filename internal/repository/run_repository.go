package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rustam-sa/nba-01/internal/database"
	"github.com/rustam-sa/nba-01/internal/models"
)

var propositionColumns = []string{
	"run_id", "position", "player", "team", "stat", "side", "threshold", "american_odds",
	"decimal_odds", "probability", "house_probability", "expected_value", "sample_size",
}

var parlayColumns = []string{
	"run_id", "parlay_id", "rank", "legs", "combined_probability", "combined_house_probability",
	"combined_odds", "combined_ev", "sum_ev", "exact_ev", "diversity", "to_win",
}

// PostgresRunRepository implements RunRepository for PostgreSQL
type PostgresRunRepository struct {
	db *database.DB
}

// NewPostgresRunRepository creates a new run repository
func NewPostgresRunRepository(db *database.DB) RunRepository {
	return &PostgresRunRepository{db: db}
}

// Save persists a run with its proposition table and selected parlays in one
// transaction. The full combination list is not stored.
func (r *PostgresRunRepository) Save(ctx context.Context, run *models.Run) error {
	portfolio := run.Portfolio
	if portfolio == nil {
		portfolio = &models.Portfolio{}
	}
	rejections := portfolio.Rejections
	if rejections == nil {
		rejections = map[string]int{}
	}

	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO pipeline_runs (id, started_at, completed_at, ev_mode, min_legs, max_legs,
			                           propositions, combinations, target_size, proposition_cap,
			                           player_cap, portfolio_size, rejections)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`, run.ID, run.StartedAt, run.CompletedAt, run.EVMode, run.MinLegs, run.MaxLegs,
			len(run.Propositions), run.CombinationCount, portfolio.TargetSize, portfolio.PropositionCap,
			portfolio.PlayerCap, portfolio.Size(), rejections)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		propRows := make([][]interface{}, len(run.Propositions))
		for i, p := range run.Propositions {
			propRows[i] = []interface{}{
				run.ID, i, p.Player, p.Team, p.Stat, string(p.Side), p.Threshold, p.AmericanOdds,
				p.DecimalOdds, p.Probability, p.HouseProbability, p.ExpectedValue, p.SampleSize,
			}
		}
		if err := copyRows(ctx, tx, "scored_propositions", propositionColumns, propRows); err != nil {
			return err
		}

		parlayRows := make([][]interface{}, len(portfolio.Parlays))
		for i, p := range portfolio.Parlays {
			parlayRows[i] = []interface{}{
				run.ID, p.ParlayID, p.Rank, p.Legs, p.CombinedProbability, p.CombinedHouseProbability,
				p.CombinedOdds, p.CombinedEV, p.SumEV, p.ExactEV, p.Diversity, p.ToWin.InexactFloat64(),
			}
		}
		return copyRows(ctx, tx, "selected_parlays", parlayColumns, parlayRows)
	})
}

func copyRows(ctx context.Context, tx pgx.Tx, table string, columns []string, rows [][]interface{}) error {
	if len(rows) == 0 {
		return nil
	}
	count, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to batch insert %s: %w", table, err)
	}
	if count != int64(len(rows)) {
		return fmt.Errorf("inserted %d rows into %s, expected %d", count, table, len(rows))
	}
	return nil
}

const selectRunQuery = `
	SELECT id, started_at, completed_at, ev_mode, min_legs, max_legs, combinations,
	       target_size, proposition_cap, player_cap, rejections
	FROM pipeline_runs
`

// GetByID loads a run with its propositions and parlays
func (r *PostgresRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Run, error) {
	return r.load(ctx, selectRunQuery+" WHERE id = $1", id)
}

// Latest loads the most recently started run
func (r *PostgresRunRepository) Latest(ctx context.Context) (*models.Run, error) {
	return r.load(ctx, selectRunQuery+" ORDER BY started_at DESC LIMIT 1")
}

func (r *PostgresRunRepository) load(ctx context.Context, query string, args ...interface{}) (*models.Run, error) {
	run := &models.Run{Portfolio: &models.Portfolio{}}
	err := r.db.GetPool().QueryRow(ctx, query, args...).Scan(
		&run.ID, &run.StartedAt, &run.CompletedAt, &run.EVMode, &run.MinLegs, &run.MaxLegs,
		&run.CombinationCount, &run.Portfolio.TargetSize, &run.Portfolio.PropositionCap,
		&run.Portfolio.PlayerCap, &run.Portfolio.Rejections,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if run.Propositions, err = r.propositions(ctx, run.ID); err != nil {
		return nil, err
	}
	if run.Portfolio.Parlays, err = r.parlays(ctx, run.ID); err != nil {
		return nil, err
	}
	return run, nil
}

func (r *PostgresRunRepository) propositions(ctx context.Context, runID uuid.UUID) ([]models.Proposition, error) {
	rows, err := r.db.GetPool().Query(ctx, `
		SELECT player, team, stat, side, threshold, american_odds, decimal_odds,
		       probability, house_probability, expected_value, sample_size
		FROM scored_propositions WHERE run_id = $1 ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query propositions: %w", err)
	}
	defer rows.Close()

	var props []models.Proposition
	for rows.Next() {
		var p models.Proposition
		err := rows.Scan(&p.Player, &p.Team, &p.Stat, &p.Side, &p.Threshold, &p.AmericanOdds,
			&p.DecimalOdds, &p.Probability, &p.HouseProbability, &p.ExpectedValue, &p.SampleSize)
		if err != nil {
			return nil, fmt.Errorf("failed to scan proposition: %w", err)
		}
		props = append(props, p)
	}
	return props, rows.Err()
}

func (r *PostgresRunRepository) parlays(ctx context.Context, runID uuid.UUID) ([]models.Parlay, error) {
	rows, err := r.db.GetPool().Query(ctx, `
		SELECT parlay_id, rank, legs, combined_probability, combined_house_probability,
		       combined_odds, combined_ev, sum_ev, exact_ev, diversity, to_win
		FROM selected_parlays WHERE run_id = $1 ORDER BY parlay_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query parlays: %w", err)
	}
	defer rows.Close()

	var parlays []models.Parlay
	for rows.Next() {
		var p models.Parlay
		err := rows.Scan(&p.ParlayID, &p.Rank, &p.Legs, &p.CombinedProbability, &p.CombinedHouseProbability,
			&p.CombinedOdds, &p.CombinedEV, &p.SumEV, &p.ExactEV, &p.Diversity, &p.ToWin)
		if err != nil {
			return nil, fmt.Errorf("failed to scan parlay: %w", err)
		}
		parlays = append(parlays, p)
	}
	return parlays, rows.Err()
}
