package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustam-sa/nba-01/internal/feed"
	"github.com/rustam-sa/nba-01/internal/history"
	"github.com/rustam-sa/nba-01/internal/models"
	"github.com/rustam-sa/nba-01/internal/pipeline"
	"github.com/rustam-sa/nba-01/internal/repository"
)

func TestValidateLine(t *testing.T) {
	v := NewDataValidator(nil)
	valid := feed.Line{Player: "Jalen Brunson", Stat: models.StatPoints, OverThreshold: 27.5, OverOdds: -115, UnderThreshold: 27.5, UnderOdds: 100}

	tests := []struct {
		name       string
		mutate     func(l *feed.Line)
		shouldHave string
	}{
		{name: "valid", mutate: func(l *feed.Line) {}},
		{name: "missing player", mutate: func(l *feed.Line) { l.Player = " " }, shouldHave: "player is required"},
		{name: "unknown stat", mutate: func(l *feed.Line) { l.Stat = "dunks" }, shouldHave: "unknown statistic"},
		{name: "negative threshold", mutate: func(l *feed.Line) { l.UnderThreshold = -1 }, shouldHave: "negative"},
		{name: "odds inside the dead zone", mutate: func(l *feed.Line) { l.OverOdds = 50 }, shouldHave: "over odds 50"},
		{name: "zero odds", mutate: func(l *feed.Line) { l.UnderOdds = 0 }, shouldHave: "under odds 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := valid
			tt.mutate(&line)
			errs := v.ValidateLine(line)
			if tt.shouldHave == "" {
				assert.Empty(t, errs)
				return
			}
			require.NotEmpty(t, errs)
			assert.Contains(t, errs[0], tt.shouldHave)
		})
	}
}

func TestValidateGameLog(t *testing.T) {
	v := NewDataValidator(nil)
	good := &models.GameLog{GameExternalID: "0022300001", GameDate: time.Now(), Points: 30, FGM: 11, FGA: 20, FG3M: 3, FG3A: 8, FTM: 5, FTA: 6}
	assert.Empty(t, v.ValidateGameLog(good))

	bad := *good
	bad.FGM = 25
	bad.Rebounds = -1
	bad.GameExternalID = ""
	errs := v.ValidateGameLog(&bad)
	assert.Len(t, errs, 3)
}

func TestNormalizeLine(t *testing.T) {
	n := NewDataNormalizer(map[string]string{"jalen  brunson jr": "Jalen Brunson"})
	line := n.NormalizeLine(feed.Line{Player: "  Jalen   Brunson Jr ", Team: " Knicks", Stat: " Points "})

	assert.Equal(t, "Jalen Brunson", line.Player)
	assert.Equal(t, "Knicks", line.Team)
	assert.Equal(t, models.StatPoints, line.Stat)
}

type fakeFetcher struct {
	logs map[string][]*models.GameLog
}

func (f *fakeFetcher) FetchPlayerGameLogs(ctx context.Context, player string) (int64, []*models.GameLog, error) {
	logs, ok := f.logs[player]
	if !ok {
		return 0, nil, models.ErrNotFound
	}
	return int64(len(player)), logs, nil
}

type fakeGameLogStore struct {
	stored map[string]int
}

func (s *fakeGameLogStore) UpsertGameLogs(ctx context.Context, player *models.Player, logs []*models.GameLog) (int, error) {
	s.stored[player.Name] = len(logs)
	return len(logs), nil
}

func TestSyncPlayers(t *testing.T) {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	fetcher := &fakeFetcher{logs: map[string][]*models.GameLog{
		"Jalen Brunson": {
			{GameExternalID: "g1", GameDate: day, Points: 30, FGM: 10, FGA: 20},
			{GameExternalID: "g2", GameDate: day, Points: 28, FGM: 30, FGA: 20},
		},
	}}
	store := &fakeGameLogStore{stored: map[string]int{}}
	log, _ := logtest.NewNullLogger()
	svc := NewSyncService(fetcher, store, nil, log)

	metrics, err := svc.SyncPlayers(context.Background(), []string{"Jalen Brunson", "Nobody"})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.Equal(t, 1, store.stored["Jalen Brunson"])
	assert.Equal(t, 2, metrics.TotalPlayers)
	assert.Equal(t, 1, metrics.SyncedPlayers)
	assert.Equal(t, 1, metrics.GameLogs)
	assert.Equal(t, 1, metrics.ValidationErrors)
	assert.Equal(t, 1, metrics.Errors)
	assert.Contains(t, metrics.String(), "Synced=1 (50.0%)")
}

type recordingSaver struct{ runs []*models.Run }

func (s *recordingSaver) Save(ctx context.Context, run *models.Run) error {
	s.runs = append(s.runs, run)
	return nil
}

type recordingPublisher struct {
	err   error
	calls int
}

func (p *recordingPublisher) PublishRun(ctx context.Context, run *models.Run) (int, error) {
	p.calls++
	if p.err != nil {
		return 0, p.err
	}
	return run.Portfolio.Size(), nil
}

type recordingRecorder struct{ latest *models.Run }

func (r *recordingRecorder) Record(run *models.Run) { r.latest = run }

type staticRoster []repository.RosterEntry

func (s staticRoster) ListWithTeams(ctx context.Context) ([]repository.RosterEntry, error) {
	return s, nil
}

const csvFeed = `player,team,stat,over_threshold,over_odds,under_threshold,under_odds
A,Knicks,points,10.5,-110,10.5,+150
C,Celtics,points,10.5,+120,10.5,-200
Z,Celtics,dunks,1.5,+100,1.5,-120
`

func writeFeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feed.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newBuildService(t *testing.T) (*BuildService, *recordingSaver, *recordingPublisher, *recordingRecorder) {
	t.Helper()
	src := history.NewMemorySource()
	src.Put("A", models.StatPoints, []float64{0, 0, 0})
	src.Put("C", models.StatPoints, []float64{0, 0, 0})

	log, _ := logtest.NewNullLogger()
	saver, pub, rec := &recordingSaver{}, &recordingPublisher{}, &recordingRecorder{}
	return &BuildService{
		Engine:    pipeline.NewEngine(src, pipeline.DefaultConfig(), log),
		Runs:      saver,
		Publisher: pub,
		Recorder:  rec,
		Logger:    log,
	}, saver, pub, rec
}

func TestBuild(t *testing.T) {
	svc, saver, pub, rec := newBuildService(t)
	out := t.TempDir()

	report, err := svc.Build(context.Background(), BuildOptions{FeedPath: writeFeed(t, csvFeed), Format: feed.FormatCSV, OutputDir: out})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Lines)
	assert.Equal(t, 1, report.DroppedLines)
	require.NotNil(t, report.Run)
	assert.Len(t, report.Run.Scored, 4)
	assert.Len(t, report.Run.Propositions, 2)
	require.Equal(t, 1, report.Run.Portfolio.Size())
	assert.InDelta(t, 2.0, report.Run.Portfolio.Parlays[0].CombinedEV, 1e-9)

	assert.Len(t, report.Files, 3)
	for _, f := range report.Files {
		assert.FileExists(t, f)
	}
	assert.Len(t, saver.runs, 1)
	assert.Equal(t, 1, pub.calls)
	assert.Equal(t, 1, report.Published)
	assert.Same(t, report.Run, rec.latest)
}

func TestBuildReportsSinkFailures(t *testing.T) {
	svc, saver, pub, rec := newBuildService(t)
	pub.err = errors.New("redis down")

	report, err := svc.Build(context.Background(), BuildOptions{FeedPath: writeFeed(t, csvFeed), Format: feed.FormatCSV})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
	require.NotNil(t, report)
	assert.Len(t, saver.runs, 1)
	assert.NotNil(t, rec.latest)
	assert.Empty(t, report.Files)
}

func TestBuildHardRockNeedsRoster(t *testing.T) {
	svc, _, _, _ := newBuildService(t)
	_, err := svc.Build(context.Background(), BuildOptions{FeedPath: writeFeed(t, "Copied\n"), Format: feed.FormatHardRock})
	assert.Error(t, err)
}

type staticTeams []*models.Team

func (s staticTeams) List(ctx context.Context) ([]*models.Team, error) {
	return s, nil
}

type teamStore struct {
	teams  []models.Team
	failOn string
}

func (s *teamStore) Upsert(ctx context.Context, team *models.Team) error {
	if team.Nickname == s.failOn {
		return errors.New("constraint violation")
	}
	team.ID = int64(len(s.teams) + 1)
	s.teams = append(s.teams, *team)
	return nil
}

func TestLoadRosterAddsStoredTeams(t *testing.T) {
	roster, err := LoadRoster(context.Background(),
		staticRoster{{Player: "Jalen Brunson", Team: "Knicks"}},
		staticTeams{{Nickname: "Knicks"}, {Nickname: "Trail Blazers"}},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, roster.Len())
	assert.True(t, roster.IsTeam("Trail Blazers"))
}

func TestSeedTeams(t *testing.T) {
	store := &teamStore{}
	n, err := SeedTeams(context.Background(), store, nil)
	require.NoError(t, err)
	assert.Equal(t, 30, n)
	assert.Equal(t, "New York Knicks", store.teams[19].FullName)

	nicknames := map[string]bool{}
	for _, team := range store.teams {
		assert.False(t, nicknames[team.Nickname], "duplicate %s", team.Nickname)
		nicknames[team.Nickname] = true
	}

	n, err = SeedTeams(context.Background(), &teamStore{failOn: "Bulls"}, nil)
	assert.Error(t, err)
	assert.Equal(t, 4, n)
}

func TestLoadRoster(t *testing.T) {
	roster, err := LoadRoster(context.Background(), staticRoster{
		{Player: "Jalen Brunson", Team: "Knicks"},
		{Player: "Jayson Tatum", Team: "Celtics"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, roster.Len())
	assert.True(t, roster.IsTeam("Celtics"))
	team, ok := roster.Player("Jalen Brunson")
	assert.True(t, ok)
	assert.Equal(t, "Knicks", team)
}
