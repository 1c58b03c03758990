package service

import (
	"fmt"
	"sync"
	"time"
)

// SyncMetrics tracks statistics about one game log sync
type SyncMetrics struct {
	mu               sync.RWMutex
	StartTime        time.Time
	Duration         time.Duration
	TotalPlayers     int
	SyncedPlayers    int
	GameLogs         int
	ValidationErrors int
	Errors           int
}

// NewSyncMetrics creates a new metrics tracker
func NewSyncMetrics() *SyncMetrics {
	return &SyncMetrics{StartTime: time.Now()}
}

// Reset resets all metrics
func (m *SyncMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StartTime = time.Now()
	m.Duration = 0
	m.TotalPlayers = 0
	m.SyncedPlayers = 0
	m.GameLogs = 0
	m.ValidationErrors = 0
	m.Errors = 0
}

// RecordPlayer records a player whose logs were stored
func (m *SyncMetrics) RecordPlayer(gameLogs int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SyncedPlayers++
	m.GameLogs += gameLogs
}

// RecordError increments error count
func (m *SyncMetrics) RecordError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors++
}

// RecordValidationError increments validation error count
func (m *SyncMetrics) RecordValidationError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ValidationErrors++
}

// String returns a formatted string representation of metrics
func (m *SyncMetrics) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	successRate := float64(0)
	if m.TotalPlayers > 0 {
		successRate = float64(m.SyncedPlayers) / float64(m.TotalPlayers) * 100
	}

	return fmt.Sprintf(
		"SyncMetrics{Players=%d, Synced=%d (%.1f%%), GameLogs=%d, ValidationErrors=%d, Errors=%d, Duration=%v}",
		m.TotalPlayers,
		m.SyncedPlayers,
		successRate,
		m.GameLogs,
		m.ValidationErrors,
		m.Errors,
		m.Duration,
	)
}
