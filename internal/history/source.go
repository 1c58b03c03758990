// Package history supplies per-player statistic samples to the evaluator.
package history

import (
	"context"
	"fmt"
	"sync"

	"github.com/rustam-sa/nba-01/internal/models"
)

// Source returns the most recent observations of one statistic for one
// player, newest first. limit <= 0 means every available observation.
type Source interface {
	Samples(ctx context.Context, player, stat string, limit int) ([]float64, error)
}

// MemorySource is an in-process Source backed by preloaded samples
type MemorySource struct {
	mu      sync.RWMutex
	samples map[string][]float64
}

// NewMemorySource creates an empty memory source
func NewMemorySource() *MemorySource {
	return &MemorySource{samples: make(map[string][]float64)}
}

func memoryKey(player, stat string) string {
	return player + "\x00" + stat
}

// Put stores samples for a player statistic, newest first
func (m *MemorySource) Put(player, stat string, samples []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]float64, len(samples))
	copy(cp, samples)
	m.samples[memoryKey(player, stat)] = cp
}

// Samples implements Source
func (m *MemorySource) Samples(ctx context.Context, player, stat string, limit int) ([]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.samples[memoryKey(player, stat)]
	if !ok {
		return nil, fmt.Errorf("%w: no samples for %s %s", models.ErrInsufficientData, player, stat)
	}
	if limit > 0 && len(s) > limit {
		s = s[:limit]
	}
	out := make([]float64, len(s))
	copy(out, s)
	return out, nil
}

// FromGameLogs extracts one statistic from game logs already ordered newest first
func FromGameLogs(logs []*models.GameLog, stat string, limit int) ([]float64, error) {
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	out := make([]float64, 0, len(logs))
	for _, l := range logs {
		v, err := l.Value(stat)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
