package database

import (
	"context"
	"fmt"
)

// schemaStatements are applied in order by EnsureSchema
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS teams (
		id           SERIAL PRIMARY KEY,
		external_id  BIGINT UNIQUE,
		abbreviation TEXT NOT NULL,
		nickname     TEXT NOT NULL UNIQUE,
		city         TEXT NOT NULL DEFAULT '',
		full_name    TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS players (
		id          SERIAL PRIMARY KEY,
		external_id BIGINT UNIQUE,
		name        TEXT NOT NULL UNIQUE,
		position    TEXT NOT NULL DEFAULT '',
		team_id     INTEGER REFERENCES teams(id)
	)`,
	`CREATE TABLE IF NOT EXISTS games (
		id          SERIAL PRIMARY KEY,
		external_id TEXT NOT NULL UNIQUE,
		game_date   DATE NOT NULL,
		matchup     TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS game_stats (
		player_id INTEGER NOT NULL REFERENCES players(id),
		game_id   INTEGER NOT NULL REFERENCES games(id),
		minutes   DOUBLE PRECISION NOT NULL DEFAULT 0,
		points    INTEGER NOT NULL DEFAULT 0,
		rebounds  INTEGER NOT NULL DEFAULT 0,
		assists   INTEGER NOT NULL DEFAULT 0,
		steals    INTEGER NOT NULL DEFAULT 0,
		blocks    INTEGER NOT NULL DEFAULT 0,
		turnovers INTEGER NOT NULL DEFAULT 0,
		fgm       INTEGER NOT NULL DEFAULT 0,
		fga       INTEGER NOT NULL DEFAULT 0,
		fg3m      INTEGER NOT NULL DEFAULT 0,
		fg3a      INTEGER NOT NULL DEFAULT 0,
		ftm       INTEGER NOT NULL DEFAULT 0,
		fta       INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (player_id, game_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_game_stats_player ON game_stats (player_id)`,
	`CREATE TABLE IF NOT EXISTS pipeline_runs (
		id               UUID PRIMARY KEY,
		started_at       TIMESTAMPTZ NOT NULL,
		completed_at     TIMESTAMPTZ NOT NULL,
		ev_mode          TEXT NOT NULL,
		min_legs         INTEGER NOT NULL,
		max_legs         INTEGER NOT NULL,
		propositions     INTEGER NOT NULL,
		combinations     INTEGER NOT NULL,
		target_size      INTEGER NOT NULL,
		proposition_cap  DOUBLE PRECISION NOT NULL,
		player_cap       DOUBLE PRECISION NOT NULL,
		portfolio_size   INTEGER NOT NULL,
		rejections       JSONB NOT NULL DEFAULT '{}'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pipeline_runs_started ON pipeline_runs (started_at DESC)`,
	`CREATE TABLE IF NOT EXISTS scored_propositions (
		run_id            UUID NOT NULL REFERENCES pipeline_runs(id) ON DELETE CASCADE,
		position          INTEGER NOT NULL,
		player            TEXT NOT NULL,
		team              TEXT NOT NULL,
		stat              TEXT NOT NULL,
		side              TEXT NOT NULL,
		threshold         DOUBLE PRECISION NOT NULL,
		american_odds     INTEGER NOT NULL,
		decimal_odds      DOUBLE PRECISION NOT NULL,
		probability       DOUBLE PRECISION NOT NULL,
		house_probability DOUBLE PRECISION NOT NULL,
		expected_value    DOUBLE PRECISION NOT NULL,
		sample_size       INTEGER NOT NULL,
		PRIMARY KEY (run_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS selected_parlays (
		run_id                     UUID NOT NULL REFERENCES pipeline_runs(id) ON DELETE CASCADE,
		parlay_id                  INTEGER NOT NULL,
		rank                       INTEGER NOT NULL,
		legs                       INTEGER[] NOT NULL,
		combined_probability       DOUBLE PRECISION NOT NULL,
		combined_house_probability DOUBLE PRECISION NOT NULL,
		combined_odds              DOUBLE PRECISION NOT NULL,
		combined_ev                DOUBLE PRECISION NOT NULL,
		sum_ev                     DOUBLE PRECISION NOT NULL,
		exact_ev                   DOUBLE PRECISION NOT NULL,
		diversity                  INTEGER NOT NULL,
		to_win                     NUMERIC(14, 2) NOT NULL,
		PRIMARY KEY (run_id, parlay_id)
	)`,
}

// EnsureSchema creates any missing tables and indexes
func (db *DB) EnsureSchema(ctx context.Context) error {
	for i, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i, err)
		}
	}
	return nil
}
