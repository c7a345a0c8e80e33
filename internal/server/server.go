package server

import (
	"context"
	"errors"
	nethttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/siphonelee/walavie/internal/api/middleware"
	"github.com/siphonelee/walavie/internal/events"
	"github.com/siphonelee/walavie/internal/http"
	"github.com/siphonelee/walavie/internal/infrastructure/config"
	"github.com/siphonelee/walavie/internal/infrastructure/logging"
	"github.com/siphonelee/walavie/internal/infrastructure/monitoring"
	"github.com/siphonelee/walavie/internal/store"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	cfg     *config.Config
	log     *zap.Logger
	store   *store.Store
	httpSrv *nethttp.Server
}

// New builds a fully wired server from configuration.
func New(cfg *config.Config) (*Server, error) {
	log, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return nil, err
	}

	st, err := store.Open(store.Config{
		Dir:        cfg.Storage.DataDir,
		SyncWrites: cfg.Storage.SyncWrites,
	}, log)
	if err != nil {
		return nil, err
	}

	metrics := monitoring.New()
	hub := events.NewHub(log, metrics)
	handlers := http.NewHandlers(st, hub, metrics, log)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(monitoring.Middleware(metrics))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	fs := router.Group("/fs", middleware.Authority())
	{
		fs.POST("/init", handlers.Initialize)
		fs.POST("/epoch", handlers.UpdateEpoch)
		fs.POST("/files", handlers.AddFile)
		fs.POST("/files/rename", handlers.RenameFile)
		fs.DELETE("/files", handlers.DeleteFile)
		fs.POST("/dirs", handlers.AddDir)
		fs.POST("/dirs/rename", handlers.RenameDir)
		fs.DELETE("/dirs", handlers.DeleteDir)
		fs.GET("/list", handlers.ListDir)
		fs.GET("/stat", handlers.Stat)
		fs.GET("/tree", handlers.Tree)
	}

	// Event stream for off-chain indexers.
	router.GET("/stream", hub.HandleConnection)

	return &Server{
		cfg: cfg,
		log: log,
		httpSrv: &nethttp.Server{
			Addr:    cfg.Server.Host + ":" + cfg.Server.Port,
			Handler: router,
		},
		store: st,
	}, nil
}

// Run starts serving and blocks until the listener closes.
func (s *Server) Run() error {
	s.log.Info("starting filesystem service", zap.String("addr", s.httpSrv.Addr))
	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, nethttp.ErrServerClosed) {
		return nil
	}
	return err
}

// Close drains in-flight requests and releases resources.
func (s *Server) Close(ctx context.Context) error {
	var errs []error
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, err)
	}
	s.log.Info("filesystem service stopped")
	return errors.Join(errs...)
}
