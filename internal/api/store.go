package api

import (
	"context"
	"sync"

	"github.com/rustam-sa/nba-01/internal/models"
)

// RunLoader loads the most recently persisted run
type RunLoader interface {
	Latest(ctx context.Context) (*models.Run, error)
}

// RunStore keeps the latest completed run in memory and falls back to a
// loader when nothing has been recorded since start-up.
type RunStore struct {
	mu     sync.RWMutex
	latest *models.Run
	loader RunLoader
}

// NewRunStore creates a store. loader may be nil.
func NewRunStore(loader RunLoader) *RunStore {
	return &RunStore{loader: loader}
}

// Record replaces the latest run
func (s *RunStore) Record(run *models.Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = run
}

// Latest returns the latest run or models.ErrNotFound
func (s *RunStore) Latest(ctx context.Context) (*models.Run, error) {
	s.mu.RLock()
	run := s.latest
	s.mu.RUnlock()

	if run != nil {
		return run, nil
	}
	if s.loader == nil {
		return nil, models.ErrNotFound
	}

	run, err := s.loader.Latest(ctx)
	if err != nil {
		return nil, err
	}
	s.Record(run)
	return run, nil
}
