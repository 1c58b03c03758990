package database

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/rustam-sa/nba-01/internal/config"
)

// Initialize creates a database connection pool and applies the schema
func Initialize(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"host":     cfg.Database.Host,
		"database": cfg.Database.Name,
	}).Info("Database ready")

	return db, nil
}
