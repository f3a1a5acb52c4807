// Package api serves the cleaning operations over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"gocleanse/app"
	apperrors "gocleanse/internal/errors"
	"gocleanse/internal/logging"
	"gocleanse/internal/upload"
)

// DefaultPreviewRows is how many rows a cleaned table preview carries
const DefaultPreviewRows = 20

// Options configures the HTTP server
type Options struct {
	Addr            string
	MaxUploadBytes  int64
	ShutdownTimeout time.Duration
}

// Server exposes the cleaning service over a gin router
type Server struct {
	router  *gin.Engine
	service *app.CleaningService
	uploads *upload.LocalFileStorage
	options Options
	logger  *slog.Logger
}

// NewServer creates a server and registers its routes
func NewServer(service *app.CleaningService, uploads *upload.LocalFileStorage, options Options, logger *slog.Logger) *Server {
	s := &Server{
		router:  gin.New(),
		service: service,
		uploads: uploads,
		options: options,
		logger:  logging.WithComponent(logger, "api"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the underlying http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.requestLogger())
	if s.options.MaxUploadBytes > 0 {
		s.router.MaxMultipartMemory = s.options.MaxUploadBytes
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request handled",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	v1.POST("/profile", s.handleProfile)
	v1.POST("/clean", s.handleClean)
	v1.POST("/outliers", s.handleOutliers)
	v1.POST("/correlation", s.handleCorrelation)
	v1.GET("/sample-size", s.handleSampleSize)
	v1.GET("/artifacts/registry", s.handleRegistry)
	v1.GET("/artifacts/mapping", s.handleMapping)
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.options.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("server listening", "addr", s.options.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		timeout := s.options.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		s.logger.Info("shutting down server", "timeout", timeout)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return apperrors.Wrap(err, "server shutdown failed")
		}
		return nil
	})
	return g.Wait()
}

// respondError answers with the status and code mapped from err
func (s *Server) respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.FullPath(), "error", err)
	} else {
		s.logger.Warn("request rejected", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": apperrors.CodeOf(err)})
}
