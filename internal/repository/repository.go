// Package repository provides Postgres-backed data access.
package repository

import (
	"fmt"

	"github.com/rustam-sa/nba-01/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Team    TeamRepository
	Player  PlayerRepository
	GameLog GameLogRepository
	Run     RunRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Team:    NewPostgresTeamRepository(db),
		Player:  NewPostgresPlayerRepository(db),
		GameLog: NewPostgresGameLogRepository(db),
		Run:     NewPostgresRunRepository(db),
	}, nil
}
