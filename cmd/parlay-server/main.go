// Package main runs the parlay API server with its scheduled rebuilds.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rustam-sa/nba-01/internal/api"
	"github.com/rustam-sa/nba-01/internal/app"
	"github.com/rustam-sa/nba-01/internal/config"
	"github.com/rustam-sa/nba-01/internal/feed"
	"github.com/rustam-sa/nba-01/internal/metrics"
	"github.com/rustam-sa/nba-01/internal/pipeline"
	"github.com/rustam-sa/nba-01/internal/scheduler"
	"github.com/rustam-sa/nba-01/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "parlay-server",
	Short:         "Serve the latest parlay portfolio and rebuild it on a schedule",
	Version:       fmt.Sprintf("%s (%s)", Version, GitCommit),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	defaultPath := os.Getenv("NBA_PROPS_CONFIG_PATH")
	if defaultPath == "" {
		defaultPath = config.DefaultConfigPath
	}
	rootCmd.Flags().StringVarP(&configFile, "config", "c", defaultPath, "Path to configuration file")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// invalidatingSyncer drops cached history once new game logs are stored
type invalidatingSyncer struct {
	svc  *service.SyncService
	deps *app.Deps
}

func (s invalidatingSyncer) SyncPlayers(ctx context.Context, players []string) (*service.SyncMetrics, error) {
	m, err := s.svc.SyncPlayers(ctx, players)
	s.deps.InvalidateHistory()
	return m, err
}

func run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := app.LoadConfig(ctx, configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	deps, err := app.Open(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer deps.Close()
	log := deps.Logger

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	store := api.NewRunStore(deps.Repos.Run)
	server := api.NewServer(api.Options{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Server:      cfg.Server,
		Metrics:     cfg.Metrics,
		Pipeline:    pipeline.FromConfig(cfg),
		Store:       store,
		DB:          deps.DB,
		Logger:      log,
	})

	source, err := deps.HistorySource(app.HistoryDB)
	if err != nil {
		return err
	}
	builder, err := deps.BuildService(ctx, source, store)
	if err != nil {
		return err
	}

	sched := scheduler.NewScheduler(log)
	jobs := 0
	if cfg.Schedule.Sync != "" && len(cfg.Schedule.SyncPlayers) > 0 {
		syncSvc, err := deps.SyncService()
		if err != nil {
			return err
		}
		if err := sched.ScheduleSync(cfg.Schedule.Sync, invalidatingSyncer{svc: syncSvc, deps: deps}, cfg.Schedule.SyncPlayers); err != nil {
			return err
		}
		jobs++
	}
	if cfg.Schedule.Enabled {
		opts := service.BuildOptions{
			FeedPath:  cfg.Schedule.FeedPath,
			Format:    feed.Format(cfg.Schedule.Format),
			OutputDir: cfg.App.OutputDir,
		}
		if err := sched.ScheduleRebuild(cfg.Schedule.Rebuild, builder, opts); err != nil {
			return err
		}
		jobs++
	}
	if jobs > 0 {
		if err := sched.Start(); err != nil {
			return err
		}
		defer func() {
			if err := sched.Stop(); err != nil {
				log.WithError(err).Warn("Scheduler did not stop cleanly")
			}
		}()
	}

	if err := server.Start(ctx); err != nil {
		return err
	}
	server.SetReady(true)
	log.WithFields(logrus.Fields{
		"address":  cfg.Server.Address,
		"jobs":     jobs,
		"next_run": sched.GetNextRun(),
		"version":  Version,
		"ev_mode":  cfg.Parlay.EVMode,
		"legs":     fmt.Sprintf("%d-%d", cfg.Parlay.MinLegs, cfg.Parlay.MaxLegs),
	}).Info("parlay-server ready")

	<-ctx.Done()
	server.SetReady(false)
	log.Info("Shutting down")
	if err := server.Shutdown(); err != nil {
		log.WithError(err).Warn("API server did not shut down cleanly")
	}
	return nil
}
