package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/weaverest/internal/api/http"
	"github.com/GriffinCanCode/weaverest/internal/api/middleware"
	"github.com/GriffinCanCode/weaverest/internal/infrastructure/config"
	"github.com/GriffinCanCode/weaverest/internal/infrastructure/logging"
	"github.com/GriffinCanCode/weaverest/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/weaverest/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/weaverest/internal/providers/filesystem"
)

// readHeaderTimeout bounds how long a client may take to send headers.
const readHeaderTimeout = 10 * time.Second

// Server wraps the HTTP listeners and their dependencies
type Server struct {
	router        *gin.Engine
	metricsRouter *gin.Engine
	httpServer    *http.Server
	metricsServer *http.Server
	logger        *logging.Logger
	config        *config.Config
	metrics       *monitoring.Metrics
	tracer        *tracing.Tracer
	fsConfig      *filesystem.ServerConfig
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	fsConfig, err := filesystem.NewServerConfig(cfg.Files.ServeDir, cfg.Files.Encoding, cfg.Files.MaxSize)
	if err != nil {
		logger.Close()
		return nil, err
	}

	logger.Info("Initializing weaverest server",
		zap.String("addr", cfg.Server.Address()),
		zap.String("serve_dir", fsConfig.Root),
		zap.String("encoding", fsConfig.Encoding),
		zap.Int64("max_size", fsConfig.MaxSize),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()

	tracer := tracing.New("weaverest", logger.Logger)

	validator, err := apihttp.NewValidator()
	if err != nil {
		tracer.Close()
		logger.Close()
		return nil, fmt.Errorf("failed to compile request schemas: %w", err)
	}

	executor := filesystem.NewExecutor(fsConfig).WithMetrics(metrics)
	handlers := apihttp.NewHandlers(
		executor,
		validator,
		apihttp.NewHandlerMetrics(metrics),
		tracer,
		logger.Logger,
	)

	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true

	// Add middleware
	router.Use(middleware.Recovery(logger.Logger))
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.RequestLogger(logger.Logger))
	if cfg.CORS.Enabled {
		corsConfig := middleware.DefaultCORSConfig()
		corsConfig.AllowOrigins = cfg.CORS.Origins
		router.Use(middleware.CORS(corsConfig))
	}
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
			zap.Bool("per_client", cfg.RateLimit.PerClient),
		)
		limit := middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}
		if cfg.RateLimit.PerClient {
			router.Use(middleware.RateLimit(limit))
		} else {
			router.Use(middleware.GlobalRateLimit(limit))
		}
	}
	router.Use(middleware.BodyLimit(cfg.Server.MaxBodySize))
	if cfg.Gzip.Enabled {
		router.Use(middleware.Gzip(cfg.Gzip.Level))
	}

	// Register routes
	router.NoMethod(handlers.MethodNotAllowed)
	handlers.Register(router)

	// Metrics endpoints live on their own listener so the whole URL space of
	// the main router maps to files.
	metricsRouter := gin.New()
	metricsRouter.Use(middleware.Recovery(logger.Logger))
	metricsRouter.GET("/metrics", gin.WrapH(metrics.Handler()))
	metricsRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, metrics.Health())
	})

	s := &Server{
		router:        router,
		metricsRouter: metricsRouter,
		logger:        logger,
		config:        cfg,
		metrics:       metrics,
		tracer:        tracer,
		fsConfig:      fsConfig,
	}
	s.httpServer = &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	if cfg.Server.MetricsAddr != "" {
		s.metricsServer = &http.Server{
			Addr:              cfg.Server.MetricsAddr,
			Handler:           metricsRouter,
			ReadHeaderTimeout: readHeaderTimeout,
		}
	}

	logger.Info("Server initialized successfully")
	return s, nil
}

func newLogger(cfg config.LogConfig) (*logging.Logger, error) {
	return logging.New(logging.Config{
		Level:       cfg.Level,
		Development: cfg.Development,
		OutputPaths: []string{"stderr"},
		File: logging.FileConfig{
			Path:       cfg.File,
			MaxSizeMB:  cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAgeDays: cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		},
	})
}

// Handler returns the file API handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// MetricsHandler returns the handler for /metrics and /health.
func (s *Server) MetricsHandler() http.Handler {
	return s.metricsRouter
}

// Logger returns the server logger.
func (s *Server) Logger() *logging.Logger {
	return s.logger
}

// Run starts the HTTP listeners and blocks until the main one stops.
func (s *Server) Run() error {
	if s.metricsServer != nil {
		go func() {
			s.logger.Info("Starting metrics server", zap.String("addr", s.metricsServer.Addr))
			if err := s.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("Metrics server failed", zap.Error(err))
			}
		}()
	}

	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.httpServer.Addr),
		zap.String("serve_dir", s.fsConfig.Root),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the listeners, then flushes traces and logs.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shut down HTTP server: %w", err))
	}
	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shut down metrics server: %w", err))
		}
	}

	s.tracer.Close()

	if err := errors.Join(errs...); err != nil {
		s.logger.Error("Shutdown incomplete", zap.Error(err))
		s.logger.Close()
		return err
	}
	s.logger.Info("Server stopped")
	s.logger.Close()
	return nil
}
