package audit

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/disease-predictor/internal/database"
	"github.com/disease-predictor/internal/domain"
)

// Open builds the audit store selected by configuration. The Postgres schema
// is migrated before the store is returned.
func Open(ctx context.Context, cfg *domain.Config, logger *logrus.Logger) (Store, error) {
	if !cfg.Audit.Enabled {
		logger.Info("Prediction audit trail disabled")
		return NopStore{}, nil
	}

	switch cfg.Audit.Driver {
	case domain.AuditDriverSQLite:
		store, err := NewSQLiteStore(cfg.Audit.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("opening SQLite audit store: %w", err)
		}
		logger.WithField("path", cfg.Audit.SQLitePath).Info("Using SQLite audit store")
		return store, nil

	case domain.AuditDriverPostgres:
		runner, err := database.NewMigrationRunner(database.URL(cfg.Database), cfg.Audit.MigrationsPath, logger)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := runner.Close(); err != nil {
				logger.WithError(err).Warn("Failed to close migration runner")
			}
		}()
		if err := runner.Up(ctx); err != nil {
			return nil, err
		}

		db, err := database.NewConnection(ctx, cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("opening Postgres audit store: %w", err)
		}
		return NewPostgresStore(db), nil

	default:
		return nil, fmt.Errorf("unsupported audit driver %q", cfg.Audit.Driver)
	}
}
