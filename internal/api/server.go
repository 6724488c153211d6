package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/disease-predictor/internal/audit"
	"github.com/disease-predictor/internal/cache"
	"github.com/disease-predictor/internal/domain"
	"github.com/disease-predictor/internal/middleware"
	"github.com/disease-predictor/internal/model"
	"github.com/disease-predictor/internal/service"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 30 * time.Second
)

// Dependencies are the components the HTTP layer serves
type Dependencies struct {
	Router    *service.Router
	Registry  *model.Registry
	Documents cache.DocumentCache
	Audit     audit.Store
	Logger    *logrus.Logger
}

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	predictions   *service.Router
	registry      *model.Registry
	documents     cache.DocumentCache
	audit         audit.Store
	logger        *logrus.Logger
	router        *gin.Engine
	server        *http.Server
}

// NewServer creates a new HTTP server instance
func NewServer(configManager domain.ConfigManager, deps Dependencies) *Server {
	cfg := configManager.GetConfig()

	production := configManager.IsProduction()

	// Set Gin mode based on environment
	switch {
	case gin.Mode() == gin.TestMode:
	case !production && cfg.Logging.Level == "debug":
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	auditStore := deps.Audit
	if auditStore == nil {
		auditStore = audit.NopStore{}
	}

	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.SecurityHeaders(production))
	router.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins)))
	router.Use(middleware.LimitBodySize(maxBodyBytes))
	router.Use(middleware.RequestTimeout(cfg.Server.RequestTimeout))

	server := &Server{
		configManager: configManager,
		predictions:   deps.Router,
		registry:      deps.Registry,
		documents:     deps.Documents,
		audit:         auditStore,
		logger:        deps.Logger,
		router:        router,
	}

	// Setup routes
	server.setupRoutes()

	return server
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.CorrelationIDHeader},
		ExposeHeaders: []string{"Content-Disposition", middleware.CorrelationIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		c.AllowOrigins = nil
		c.AllowAllOrigins = true
	}
	return c
}

// Handler exposes the configured routes
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/domains", s.handleListDomains)
		v1.GET("/domains/:domain", s.handleGetDomain)
		v1.POST("/predict/:domain", s.handlePredict)
		v1.GET("/reports/:id", s.handleGetReport)
		v1.GET("/predictions", s.handleListPredictions)
		v1.GET("/predictions/:id", s.handleGetPrediction)
	}
}
