// Package api exposes content checks over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ppiankov/contentqc/internal/logging"
	"github.com/ppiankov/contentqc/internal/model"
	"github.com/ppiankov/contentqc/internal/pipeline"
)

const shutdownTimeout = 10 * time.Second

// Checker is the subset of pipeline.Checker the API serves
type Checker interface {
	ComprehensiveCheck(ctx context.Context, in pipeline.Input) model.QualityReport
	Improve(ctx context.Context, in pipeline.Input, report model.QualityReport) model.ImprovementResult
	Refine(ctx context.Context, in pipeline.Input, maxIterations int) model.RefinementResult
}

// Server is the HTTP API server
type Server struct {
	checker Checker
	cfg     model.APIConfig
	logger  *slog.Logger
	engine  *gin.Engine
}

// New creates a server and registers its routes
func New(checker Checker, cfg model.APIConfig, logger *slog.Logger) *Server {
	s := &Server{
		checker: checker,
		cfg:     cfg,
		logger:  logging.OrDiscard(logger).With("component", "api"),
		engine:  gin.New(),
	}
	s.attachRoutes()
	return s
}

// Handler returns the HTTP handler serving all routes
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) attachRoutes() {
	r := s.engine
	r.Use(gin.Recovery(), s.requestLogger(), s.bodyLimit())

	if len(s.cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(corsConfig(s.cfg.AllowedOrigins)))
	}

	r.GET("/healthz", s.health)

	v1 := r.Group("/v1")
	{
		v1.POST("/check", s.check)
		v1.POST("/improve", s.improve)
		v1.POST("/refine", s.refine)
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed", time.Since(start).Round(time.Millisecond),
			"client", c.ClientIP())
	}
}

func (s *Server) bodyLimit() gin.HandlerFunc {
	limit := s.cfg.MaxBodyBytes
	if limit <= 0 {
		limit = model.DefaultConfig().API.MaxBodyBytes
	}
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
