package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rustam-sa/nba-01/internal/models"
)

// GameLogFetcher pulls one player's game log from an upstream stats API
type GameLogFetcher interface {
	FetchPlayerGameLogs(ctx context.Context, player string) (int64, []*models.GameLog, error)
}

// GameLogStore persists a player's game log
type GameLogStore interface {
	UpsertGameLogs(ctx context.Context, player *models.Player, logs []*models.GameLog) (int, error)
}

// SyncService copies game logs from the stats API into the database
type SyncService struct {
	fetcher   GameLogFetcher
	store     GameLogStore
	validator *DataValidator
	metrics   *SyncMetrics
	logger    *logrus.Entry
}

// NewSyncService creates a new sync service
func NewSyncService(fetcher GameLogFetcher, store GameLogStore, validator *DataValidator, logger *logrus.Logger) *SyncService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if validator == nil {
		validator = NewDataValidator(logger)
	}
	return &SyncService{
		fetcher:   fetcher,
		store:     store,
		validator: validator,
		metrics:   NewSyncMetrics(),
		logger:    logger.WithField("component", "sync"),
	}
}

// SyncPlayers fetches and stores every named player's game log. A failing
// player does not stop the others; the joined errors are returned.
func (s *SyncService) SyncPlayers(ctx context.Context, players []string) (*SyncMetrics, error) {
	s.metrics.Reset()
	start := time.Now()
	s.metrics.TotalPlayers = len(players)

	var errs []error
	for _, name := range players {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := s.syncPlayer(ctx, name); err != nil {
			s.metrics.RecordError()
			s.logger.WithError(err).WithField("player", name).Error("Player sync failed")
			errs = append(errs, err)
		}
	}

	s.metrics.Duration = time.Since(start)
	s.logger.WithField("summary", s.metrics.String()).Info("Game log sync complete")
	return s.metrics, errors.Join(errs...)
}

func (s *SyncService) syncPlayer(ctx context.Context, name string) error {
	externalID, logs, err := s.fetcher.FetchPlayerGameLogs(ctx, name)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", name, err)
	}

	valid := make([]*models.GameLog, 0, len(logs))
	for _, l := range logs {
		if problems := s.validator.ValidateGameLog(l); len(problems) > 0 {
			s.metrics.RecordValidationError()
			s.logger.WithFields(logrus.Fields{
				"player": name,
				"game":   l.GameExternalID,
				"errors": problems,
			}).Warn("Game log rejected")
			continue
		}
		valid = append(valid, l)
	}

	player := &models.Player{Name: name, ExternalID: externalID}
	stored, err := s.store.UpsertGameLogs(ctx, player, valid)
	if err != nil {
		return fmt.Errorf("storing %s: %w", name, err)
	}

	s.metrics.RecordPlayer(stored)
	s.logger.WithFields(logrus.Fields{
		"player":    name,
		"game_logs": stored,
	}).Info("Player synced")
	return nil
}

// GetMetrics returns the metrics of the last sync
func (s *SyncService) GetMetrics() *SyncMetrics {
	return s.metrics
}
