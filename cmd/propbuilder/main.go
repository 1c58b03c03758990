// Package main provides the propbuilder command: score a sportsbook feed,
// build the parlay portfolio and sync player game logs.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rustam-sa/nba-01/internal/app"
	"github.com/rustam-sa/nba-01/internal/config"
	"github.com/rustam-sa/nba-01/internal/export"
	"github.com/rustam-sa/nba-01/internal/feed"
	"github.com/rustam-sa/nba-01/internal/models"
	"github.com/rustam-sa/nba-01/internal/pipeline"
	"github.com/rustam-sa/nba-01/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile  string
	feedPath    string
	feedFormat  string
	historyMode string
	outputDir   string
	players     []string
)

var rootCmd = &cobra.Command{
	Use:           "propbuilder",
	Short:         "Build +EV NBA player prop parlays",
	Long:          `Scores player propositions against recent game logs and assembles an exposure-capped parlay portfolio.`,
	Version:       fmt.Sprintf("%s (%s)", Version, GitCommit),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Run the full pipeline on a feed and export, persist and publish the result",
	RunE:  runBuild,
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score a feed and print the proposition table",
	RunE:  runEvaluate,
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch player game logs from the stats API into the database",
	RunE:  runSync,
}

var seedTeamsCmd = &cobra.Command{
	Use:   "seed-teams",
	Short: "Store the league's teams so feed team cells resolve",
	RunE:  runSeedTeams,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.DefaultConfigPath, "Path to configuration file")

	for _, cmd := range []*cobra.Command{buildCmd, evaluateCmd} {
		cmd.Flags().StringVarP(&feedPath, "feed", "f", "", "Path to the prop feed (defaults to schedule.feed_path)")
		cmd.Flags().StringVar(&feedFormat, "format", "", "Feed format: hardrock or csv (defaults to schedule.format)")
		cmd.Flags().StringVar(&historyMode, "history", app.HistoryDB, "History source: db or api")
	}
	buildCmd.Flags().StringVarP(&outputDir, "out", "o", "", "Directory for exported tables (defaults to app.output_dir)")
	syncCmd.Flags().StringSliceVarP(&players, "player", "p", nil, "Player to sync, repeatable (defaults to schedule.sync_players)")

	rootCmd.AddCommand(buildCmd, evaluateCmd, syncCmd, seedTeamsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func feedOptions(cfg *config.Config) (service.BuildOptions, error) {
	opts := service.BuildOptions{
		FeedPath:  feedPath,
		Format:    feed.Format(feedFormat),
		OutputDir: outputDir,
	}
	if opts.FeedPath == "" {
		opts.FeedPath = cfg.Schedule.FeedPath
	}
	if opts.FeedPath == "" {
		return opts, fmt.Errorf("no feed given: pass --feed or set schedule.feed_path")
	}
	if opts.Format == "" {
		opts.Format = feed.Format(cfg.Schedule.Format)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = cfg.App.OutputDir
	}
	return opts, nil
}

// needsDB reports whether the chosen history source or feed format reads
// from Postgres
func needsDB(opts service.BuildOptions) bool {
	return historyMode != app.HistoryAPI || opts.Format != feed.FormatCSV
}

func setup(ctx context.Context, withDB func(*config.Config) (bool, error)) (*app.Deps, error) {
	cfg, err := app.LoadConfig(ctx, configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	useDB, err := withDB(cfg)
	if err != nil {
		return nil, err
	}
	deps, err := app.Open(ctx, cfg, useDB)
	if err != nil {
		return nil, err
	}
	deps.Logger.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
	}).Debug("propbuilder starting")
	return deps, nil
}

// feedSetup resolves the feed options and opens what they need
func feedSetup(ctx context.Context) (*app.Deps, service.BuildOptions, error) {
	var opts service.BuildOptions
	deps, err := setup(ctx, func(cfg *config.Config) (bool, error) {
		var err error
		opts, err = feedOptions(cfg)
		return needsDB(opts), err
	})
	return deps, opts, err
}

func runBuild(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	deps, opts, err := feedSetup(ctx)
	if err != nil {
		return err
	}
	defer deps.Close()

	source, err := deps.HistorySource(historyMode)
	if err != nil {
		return err
	}
	svc, err := deps.BuildService(ctx, source, nil)
	if err != nil {
		return err
	}

	report, err := svc.Build(ctx, opts)
	if report != nil && report.Run != nil {
		printReport(cmd, report)
	}
	return err
}

func printReport(cmd *cobra.Command, report *service.BuildReport) {
	out := cmd.OutOrStdout()
	run := report.Run

	fmt.Fprintf(out, "Run %s\n", run.ID)
	fmt.Fprintf(out, "Feed lines: %d (%d rejected)\n", report.Lines, report.DroppedLines)
	fmt.Fprintf(out, "Propositions: %d scored, %d kept, %d excluded\n", len(run.Scored), len(run.Propositions), len(run.Excluded))
	fmt.Fprintf(out, "Combinations: %d (ev mode %s)\n", run.CombinationCount, run.EVMode)
	if run.Portfolio != nil {
		fmt.Fprintf(out, "Parlays: %d of target %d\n\n", run.Portfolio.Size(), run.Portfolio.TargetSize)
		if err := export.WriteTable(out, models.ParlayTable(run.Propositions, run.Portfolio)); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "failed to print parlays: %v\n", err)
		}
	}
	for _, f := range report.Files {
		fmt.Fprintf(out, "Wrote %s\n", f)
	}
	if report.Published > 0 {
		fmt.Fprintf(out, "Published %d parlays\n", report.Published)
	}
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	deps, opts, err := feedSetup(ctx)
	if err != nil {
		return err
	}
	defer deps.Close()

	source, err := deps.HistorySource(historyMode)
	if err != nil {
		return err
	}
	svc, err := deps.BuildService(ctx, source, nil)
	if err != nil {
		return err
	}

	skeletons, _, dropped, err := svc.LoadSkeletons(ctx, opts)
	if err != nil {
		return err
	}

	engine := svc.Engine
	scored, excluded, err := engine.Score(ctx, engine.NewRunContext(engine.Config()), skeletons)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := export.WriteTable(out, models.PropositionTable(pipeline.Filter(scored, engine.Config().Filter))); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d scored, %d excluded, %d feed lines rejected\n", len(scored), len(excluded), dropped)
	return nil
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	deps, err := setup(ctx, func(*config.Config) (bool, error) { return true, nil })
	if err != nil {
		return err
	}
	defer deps.Close()

	names := players
	if len(names) == 0 {
		names = deps.Config.Schedule.SyncPlayers
	}
	if len(names) == 0 {
		return errors.New("no players given: pass --player or set schedule.sync_players")
	}

	svc, err := deps.SyncService()
	if err != nil {
		return err
	}
	metrics, err := svc.SyncPlayers(ctx, names)
	if metrics != nil {
		fmt.Fprintln(cmd.OutOrStdout(), metrics.String())
	}
	return err
}

func runSeedTeams(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	deps, err := setup(ctx, func(*config.Config) (bool, error) { return true, nil })
	if err != nil {
		return err
	}
	defer deps.Close()

	n, err := service.SeedTeams(ctx, deps.Repos.Team, deps.Logger)
	fmt.Fprintf(cmd.OutOrStdout(), "%d teams stored\n", n)
	return err
}
