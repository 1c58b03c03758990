// Package app wires configuration, storage and adapters into the services
// the commands run.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/rustam-sa/nba-01/internal/config"
	"github.com/rustam-sa/nba-01/internal/database"
	"github.com/rustam-sa/nba-01/internal/datasource"
	"github.com/rustam-sa/nba-01/internal/history"
	"github.com/rustam-sa/nba-01/internal/logger"
	"github.com/rustam-sa/nba-01/internal/pipeline"
	"github.com/rustam-sa/nba-01/internal/publisher"
	"github.com/rustam-sa/nba-01/internal/repository"
	"github.com/rustam-sa/nba-01/internal/service"
)

// History source modes
const (
	HistoryDB  = "db"
	HistoryAPI = "api"
)

// LoadConfig loads, overlays secrets onto and validates the configuration.
// Secrets come from AWS Secrets Manager when AWS_SECRETS_ENABLED is true.
func LoadConfig(ctx context.Context, path string) (*config.Config, error) {
	cfg, err := config.LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return nil, fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(ctx, cfg, region, secretName); err != nil {
			return nil, fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Deps holds the long-lived resources of one process
type Deps struct {
	Config *config.Config
	Logger *logrus.Logger
	DB     *database.DB
	Repos  *repository.Repositories
	Redis  *redis.Client

	http  *datasource.RateLimitedHTTPClient
	cache *history.CachedSource
}

// Open builds the logger and, when withDB is set, connects to Postgres
func Open(ctx context.Context, cfg *config.Config, withDB bool) (*Deps, error) {
	d := &Deps{
		Config: cfg,
		Logger: logger.New(cfg.App.LogLevel, cfg.App.Environment, os.Stderr),
	}

	if withDB {
		db, err := database.Initialize(ctx, cfg, d.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		repos, err := repository.NewRepositories(db)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize repositories: %w", err)
		}
		d.DB, d.Repos = db, repos
	}
	return d, nil
}

// Close releases every opened resource
func (d *Deps) Close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.WithError(err).Warn("Failed to close redis client")
		}
	}
	if d.http != nil {
		_ = d.http.Close()
	}
	if d.DB != nil {
		d.DB.Close()
	}
}

// StatsClient returns a client for the stats API. Player IDs come from the
// configuration first and from stored players second.
func (d *Deps) StatsClient() *datasource.StatsClient {
	api := d.Config.StatsAPI
	if d.http == nil {
		httpCfg := datasource.DefaultHTTPClientConfig()
		httpCfg.Timeout = d.Config.StatsAPITimeout()
		if api.RequestsPerSecond > 0 {
			httpCfg.RateLimit = api.RequestsPerSecond
		}
		if api.RetryAttempts > 0 {
			httpCfg.MaxRetries = api.RetryAttempts
		}
		d.http = datasource.NewRateLimitedHTTPClient(httpCfg, d.Logger)
	}

	resolvers := datasource.ResolverChain{datasource.StaticPlayerIDs(api.PlayerIDs)}
	if d.Repos != nil {
		resolvers = append(resolvers, d.Repos.Player)
	}

	return datasource.NewStatsClient(d.http, datasource.StatsClientConfig{
		BaseURL:    api.BaseURL,
		APIKey:     api.APIKey,
		Season:     api.Season,
		SeasonType: api.SeasonType,
	}, resolvers, d.Logger)
}

// HistorySource returns the sample source for mode, cached when enabled
func (d *Deps) HistorySource(mode string) (history.Source, error) {
	var source history.Source
	switch mode {
	case HistoryDB, "":
		if d.Repos == nil {
			return nil, fmt.Errorf("database history requires a database connection")
		}
		source = d.Repos.GameLog
	case HistoryAPI:
		source = d.StatsClient()
	default:
		return nil, fmt.Errorf("unknown history source %q (use %q or %q)", mode, HistoryDB, HistoryAPI)
	}

	if !d.Config.Cache.Enabled {
		return source, nil
	}
	d.cache = history.NewCachedSource(source, d.Config.CacheTTL(), d.Config.CacheCleanupInterval())
	return d.cache, nil
}

// InvalidateHistory drops cached samples, e.g. after a sync
func (d *Deps) InvalidateHistory() {
	if d.cache != nil {
		d.cache.Invalidate()
	}
}

// Publisher connects to Redis and returns a stream publisher, or nil when
// publishing is disabled.
func (d *Deps) Publisher(ctx context.Context) (*publisher.StreamPublisher, error) {
	cfg := d.Config.Redis
	if !cfg.Enabled {
		return nil, nil
	}
	if d.Redis == nil {
		client, err := publisher.NewRedisClient(ctx, &cfg)
		if err != nil {
			return nil, err
		}
		d.Redis = client
	}
	return publisher.NewStreamPublisher(d.Redis, cfg.Stream, cfg.MaxLength, d.Logger), nil
}

// BuildService wires a build over source with every configured sink.
// recorder may be nil.
func (d *Deps) BuildService(ctx context.Context, source history.Source, recorder service.RunRecorder) (*service.BuildService, error) {
	svc := &service.BuildService{
		Engine:     pipeline.NewEngine(source, pipeline.FromConfig(d.Config), d.Logger),
		Validator:  service.NewDataValidator(d.Logger),
		Normalizer: service.NewDataNormalizer(d.Config.Evaluation.PlayerAliases),
		Logger:     d.Logger,
	}
	if recorder != nil {
		svc.Recorder = recorder
	}
	if d.Repos != nil {
		svc.Roster = d.Repos.Player
		svc.Teams = d.Repos.Team
		svc.Runs = d.Repos.Run
	}

	pub, err := d.Publisher(ctx)
	if err != nil {
		return nil, err
	}
	if pub != nil {
		svc.Publisher = pub
	}
	return svc, nil
}

// SyncService wires the stats API into the game log repository
func (d *Deps) SyncService() (*service.SyncService, error) {
	if d.Repos == nil {
		return nil, fmt.Errorf("sync requires a database connection")
	}
	return service.NewSyncService(d.StatsClient(), d.Repos.GameLog, service.NewDataValidator(d.Logger), d.Logger), nil
}
