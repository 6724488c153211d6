// Package app assembles the prediction components from configuration. Both
// the HTTP server and the command line tool are built on it.
package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/disease-predictor/internal/audit"
	"github.com/disease-predictor/internal/cache"
	"github.com/disease-predictor/internal/domain"
	"github.com/disease-predictor/internal/model"
	"github.com/disease-predictor/internal/report"
	"github.com/disease-predictor/internal/service"
)

// App holds the long-lived prediction components
type App struct {
	Registry  *model.Registry
	Router    *service.Router
	Documents cache.DocumentCache
	Audit     audit.Store

	offerPolicy string
	renderer    domain.DocumentRenderer
	logger      *logrus.Logger
}

// Option is a functional option for App.
type Option func(*App) error

// WithAuditStore sets a custom audit store instead of the configured one.
func WithAuditStore(store audit.Store) Option {
	return func(a *App) error {
		a.Audit = store
		return nil
	}
}

// WithRenderer replaces the PDF renderer of the documented domains.
func WithRenderer(renderer domain.DocumentRenderer) Option {
	return func(a *App) error {
		a.renderer = renderer
		return nil
	}
}

// WithOfferPolicy overrides the configured document offer policy.
func WithOfferPolicy(policy string) Option {
	return func(a *App) error {
		if policy != domain.OfferNegativeOnly && policy != domain.OfferAlways {
			return fmt.Errorf("unknown offer policy %q", policy)
		}
		a.offerPolicy = policy
		return nil
	}
}

// New loads the models and opens the document cache and audit store. A model
// that fails to load leaves only its own domain unavailable.
func New(ctx context.Context, cfg *domain.Config, logger *logrus.Logger, opts ...Option) (*App, error) {
	a := &App{
		offerPolicy: cfg.Report.OfferPolicy,
		renderer:    report.NewPDFRenderer(),
		logger:      logger,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	a.Registry = model.NewRegistry(cfg.Models, logger)
	a.Router = service.NewRouter(a.Registry, a.renderer, a.offerPolicy, logger)

	documents, err := cache.New(cfg.Cache, cfg.Report.TTL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create document cache: %w", err)
	}
	a.Documents = documents

	if a.Audit == nil {
		store, err := audit.Open(ctx, cfg, logger)
		if err != nil {
			_ = a.Documents.Close()
			return nil, fmt.Errorf("failed to open audit store: %w", err)
		}
		a.Audit = store
	}

	return a, nil
}

// Close releases the cache and audit store
func (a *App) Close() error {
	if err := a.Documents.Close(); err != nil {
		a.logger.WithError(err).Error("Failed to close document cache")
	}
	if err := a.Audit.Close(); err != nil {
		a.logger.WithError(err).Error("Failed to close audit store")
		return err
	}
	return nil
}
