package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustam-sa/nba-01/internal/app"
	"github.com/rustam-sa/nba-01/internal/config"
	"github.com/rustam-sa/nba-01/internal/feed"
	"github.com/rustam-sa/nba-01/internal/service"
)

func TestFeedOptionsFallsBackToConfig(t *testing.T) {
	feedPath, feedFormat, outputDir = "", "", ""
	cfg := &config.Config{
		App:      config.AppConfig{OutputDir: "./output"},
		Schedule: config.ScheduleConfig{FeedPath: "props.csv", Format: "csv"},
	}

	opts, err := feedOptions(cfg)
	require.NoError(t, err)
	assert.Equal(t, service.BuildOptions{FeedPath: "props.csv", Format: feed.FormatCSV, OutputDir: "./output"}, opts)

	feedPath, feedFormat = "today.txt", "hardrock"
	t.Cleanup(func() { feedPath, feedFormat = "", "" })
	opts, err = feedOptions(cfg)
	require.NoError(t, err)
	assert.Equal(t, "today.txt", opts.FeedPath)
	assert.Equal(t, feed.FormatHardRock, opts.Format)
}

func TestFeedOptionsRequiresFeed(t *testing.T) {
	feedPath = ""
	_, err := feedOptions(&config.Config{})
	assert.Error(t, err)
}

func TestNeedsDB(t *testing.T) {
	t.Cleanup(func() { historyMode = app.HistoryDB })

	historyMode = app.HistoryAPI
	assert.False(t, needsDB(service.BuildOptions{Format: feed.FormatCSV}))
	assert.True(t, needsDB(service.BuildOptions{Format: feed.FormatHardRock}))

	historyMode = app.HistoryDB
	assert.True(t, needsDB(service.BuildOptions{Format: feed.FormatCSV}))
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["build"])
	assert.True(t, names["evaluate"])
	assert.True(t, names["sync"])
	assert.True(t, names["seed-teams"])
}
