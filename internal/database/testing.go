package database

import (
	"context"
	"os"
	"testing"
	"time"
)

// TestDatabaseURLEnv names the variable that enables database-backed tests
const TestDatabaseURLEnv = "NBA_PROPS_TEST_DATABASE_URL"

// SetupTestDB connects to the database named by NBA_PROPS_TEST_DATABASE_URL
// and applies the schema. The test is skipped when the variable is unset.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	url := os.Getenv(TestDatabaseURLEnv)
	if url == "" {
		t.Skipf("%s not set; skipping database test", TestDatabaseURLEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := NewDBFromURL(ctx, url, 4, 0)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(db.Close)
	return db
}

// TruncateAll empties every table between tests
func TruncateAll(t *testing.T, db *DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := db.pool.Exec(ctx, `TRUNCATE selected_parlays, scored_propositions, pipeline_runs, game_stats, games, players, teams RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}
