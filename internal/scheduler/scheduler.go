// Package scheduler runs the game log sync and portfolio rebuild on cron
// schedules.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/rustam-sa/nba-01/internal/config"
	"github.com/rustam-sa/nba-01/internal/service"
)

// Builder runs one portfolio build
type Builder interface {
	Build(ctx context.Context, opts service.BuildOptions) (*service.BuildReport, error)
}

// Syncer refreshes player game logs
type Syncer interface {
	SyncPlayers(ctx context.Context, players []string) (*service.SyncMetrics, error)
}

// Scheduler manages scheduled jobs
type Scheduler struct {
	cron            *cron.Cron
	logger          *logrus.Entry
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	jobTimeout      time.Duration
	gracefulTimeout time.Duration
}

// NewScheduler creates a scheduler parsing six-field (seconds first) specs
func NewScheduler(logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithParser(config.CronParser),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		logger:          logger.WithField("component", "scheduler"),
		jobIDs:          make([]cron.EntryID, 0),
		jobTimeout:      30 * time.Minute,
		gracefulTimeout: 30 * time.Second,
	}
}

func (s *Scheduler) add(spec, name string, job func(ctx context.Context)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()
		job(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to add %s job: %w", name, err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{"job": name, "spec": spec}).Info("Job scheduled")
	return nil
}

// ScheduleRebuild runs a full build of opts on the cron schedule
func (s *Scheduler) ScheduleRebuild(spec string, builder Builder, opts service.BuildOptions) error {
	return s.add(spec, "rebuild", func(ctx context.Context) {
		log := s.logger.WithField("job", "rebuild")
		log.WithField("feed", opts.FeedPath).Info("Starting scheduled rebuild")

		report, err := builder.Build(ctx, opts)
		if err != nil {
			log.WithError(err).Error("Scheduled rebuild failed")
			return
		}
		log.WithFields(logrus.Fields{
			"run_id":  report.Run.ID.String(),
			"parlays": report.Run.Portfolio.Size(),
		}).Info("Scheduled rebuild completed")
	})
}

// ScheduleSync refreshes the given players' game logs on the cron schedule
func (s *Scheduler) ScheduleSync(spec string, syncer Syncer, players []string) error {
	if len(players) == 0 {
		return fmt.Errorf("sync job needs at least one player")
	}
	return s.add(spec, "sync", func(ctx context.Context) {
		log := s.logger.WithField("job", "sync")
		metrics, err := syncer.SyncPlayers(ctx, players)
		if err != nil {
			log.WithError(err).Error("Scheduled sync finished with errors")
		}
		if metrics != nil {
			log.WithField("summary", metrics.String()).Info("Scheduled sync completed")
		}
	})
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")
	return nil
}

// Stop stops the scheduler, waiting up to the graceful timeout for running jobs
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.isRunning = false
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-time.After(s.gracefulTimeout):
		return fmt.Errorf("scheduler stop timed out after %v", s.gracefulTimeout)
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() && (nextRun.IsZero() || entry.Next.Before(nextRun)) {
			nextRun = entry.Next
		}
	}
	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		if entry := s.cron.Entry(jobID); entry.Valid() {
			entries = append(entries, entry)
		}
	}
	return entries
}
