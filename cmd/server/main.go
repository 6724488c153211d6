package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/disease-predictor/internal/api"
	"github.com/disease-predictor/internal/app"
	"github.com/disease-predictor/internal/config"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager(os.Getenv("DISEASE_PREDICTOR_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load models, document cache and audit trail
	components, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize predictor")
	}
	defer components.Close()

	server := api.NewServer(configManager, api.Dependencies{
		Router:    components.Router,
		Registry:  components.Registry,
		Documents: components.Documents,
		Audit:     components.Audit,
		Logger:    logger,
	})

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	logger.WithFields(logrus.Fields{
		"host":         cfg.Server.Host,
		"port":         cfg.Server.Port,
		"offer_policy": cfg.Report.OfferPolicy,
		"environment":  cfg.Environment,
	}).Info("Starting disease prediction server")

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}
