package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rustam-sa/nba-01/internal/export"
	"github.com/rustam-sa/nba-01/internal/feed"
	"github.com/rustam-sa/nba-01/internal/models"
	"github.com/rustam-sa/nba-01/internal/pipeline"
	"github.com/rustam-sa/nba-01/internal/repository"
)

// RosterLoader lists players with their team nicknames
type RosterLoader interface {
	ListWithTeams(ctx context.Context) ([]repository.RosterEntry, error)
}

// TeamLister lists stored teams
type TeamLister interface {
	List(ctx context.Context) ([]*models.Team, error)
}

// RunSaver persists completed runs
type RunSaver interface {
	Save(ctx context.Context, run *models.Run) error
}

// RunPublisher pushes a run's parlays downstream
type RunPublisher interface {
	PublishRun(ctx context.Context, run *models.Run) (int, error)
}

// RunRecorder receives every completed run, e.g. the API's latest-run store
type RunRecorder interface {
	Record(run *models.Run)
}

// BuildOptions names the feed a build reads and where its tables go
type BuildOptions struct {
	FeedPath  string
	Format    feed.Format
	OutputDir string
}

// BuildReport summarizes one build
type BuildReport struct {
	Run          *models.Run
	Lines        int
	DroppedLines int
	Files        []string
	Published    int
}

// BuildService runs the full workflow for one feed file. Every
// collaborator except the engine is optional.
type BuildService struct {
	Engine     *pipeline.Engine
	Roster     RosterLoader
	Teams      TeamLister
	Runs       RunSaver
	Publisher  RunPublisher
	Recorder   RunRecorder
	Validator  *DataValidator
	Normalizer *DataNormalizer
	Logger     *logrus.Logger
}

// LoadRoster builds a feed roster from stored players and, when teams is
// set, every stored team including those without synced players.
func LoadRoster(ctx context.Context, loader RosterLoader, teams TeamLister) (*feed.Roster, error) {
	entries, err := loader.ListWithTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading roster: %w", err)
	}
	roster := feed.NewRoster()
	for _, e := range entries {
		roster.AddPlayer(e.Player, e.Team)
	}

	if teams == nil {
		return roster, nil
	}
	stored, err := teams.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading teams: %w", err)
	}
	for _, t := range stored {
		roster.AddTeam(t.Nickname)
	}
	return roster, nil
}

func (s *BuildService) logger() *logrus.Entry {
	log := s.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return log.WithField("component", "build")
}

// LoadSkeletons reads, normalizes and validates a feed file
func (s *BuildService) LoadSkeletons(ctx context.Context, opts BuildOptions) ([]models.PropSkeleton, int, int, error) {
	var roster *feed.Roster
	if opts.Format != feed.FormatCSV {
		if s.Roster == nil {
			return nil, 0, 0, fmt.Errorf("%s feed needs a roster source", opts.Format)
		}
		var err error
		if roster, err = LoadRoster(ctx, s.Roster, s.Teams); err != nil {
			return nil, 0, 0, err
		}
	}

	lines, err := feed.LoadFile(opts.FeedPath, opts.Format, roster)
	if err != nil {
		return nil, 0, 0, err
	}

	if s.Normalizer != nil {
		lines = s.Normalizer.NormalizeLines(lines)
	}
	validator := s.Validator
	if validator == nil {
		validator = NewDataValidator(s.Logger)
	}
	kept, dropped := validator.FilterLines(lines)

	return feed.Skeletons(kept), len(lines), dropped, nil
}

// Build loads the feed, runs the pipeline and hands the result to the
// configured sinks. Sink failures after a successful run are logged and
// joined into the returned error; the report is always returned.
func (s *BuildService) Build(ctx context.Context, opts BuildOptions) (*BuildReport, error) {
	log := s.logger().WithField("feed", opts.FeedPath)

	skeletons, total, dropped, err := s.LoadSkeletons(ctx, opts)
	if err != nil {
		return nil, err
	}
	report := &BuildReport{Lines: total, DroppedLines: dropped}
	log.WithFields(logrus.Fields{
		"lines":     total,
		"dropped":   dropped,
		"skeletons": len(skeletons),
	}).Info("Feed loaded")

	rc := s.Engine.NewRunContext(s.Engine.Config())
	run, err := s.Engine.Run(ctx, rc, skeletons)
	report.Run = run
	if err != nil {
		return report, err
	}

	var sinkErrs []error
	if opts.OutputDir != "" {
		files, err := export.WriteRun(opts.OutputDir, run)
		report.Files = files
		if err != nil {
			sinkErrs = append(sinkErrs, fmt.Errorf("exporting tables: %w", err))
		}
	}
	if s.Runs != nil {
		if err := s.Runs.Save(ctx, run); err != nil {
			sinkErrs = append(sinkErrs, fmt.Errorf("saving run: %w", err))
		}
	}
	if s.Publisher != nil {
		n, err := s.Publisher.PublishRun(ctx, run)
		report.Published = n
		if err != nil {
			sinkErrs = append(sinkErrs, fmt.Errorf("publishing run: %w", err))
		}
	}
	if s.Recorder != nil {
		s.Recorder.Record(run)
	}

	for _, e := range sinkErrs {
		log.WithError(e).Error("Build sink failed")
	}
	return report, errors.Join(sinkErrs...)
}
