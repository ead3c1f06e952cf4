// Package server exposes cover rendering over HTTP.
//
// Routes:
//
//	GET    /api/health     binary and version status
//	POST   /api/render     caption an uploaded still, returns the image
//	POST   /api/batch      run a folder batch, returns the report
//	POST   /api/fonts      upload a font for later renders
//	GET    /api/fonts      list uploaded fonts
//	DELETE /api/fonts/:id  forget an uploaded font
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xob0t/covergen/pkg/batch"
	"github.com/xob0t/covergen/pkg/config"
	"github.com/xob0t/covergen/pkg/fonts"
	"github.com/xob0t/covergen/pkg/logging"
)

const (
	maxUploadBytes  = 32 << 20
	shutdownTimeout = 5 * time.Second
)

// Server holds the state shared by the HTTP handlers.
type Server struct {
	cfg    config.Config
	coord  *batch.Coordinator
	fonts  *fontStore
	tmpDir string
	logger *slog.Logger
}

// New creates a server using cfg for render and batch defaults. Close
// removes uploaded fonts.
func New(cfg config.Config, coord *batch.Coordinator, logger *slog.Logger) (*Server, error) {
	if coord == nil {
		return nil, errors.New("server: nil coordinator")
	}
	if coord.Fonts == nil {
		coord.Fonts = fonts.NewCache()
	}
	tmpDir, err := os.MkdirTemp("", "covergen-serve-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	return &Server{
		cfg:    cfg,
		coord:  coord,
		fonts:  newFontStore(tmpDir),
		tmpDir: tmpDir,
		logger: logging.NewComponentLogger(logger, "server"),
	}, nil
}

// Close deletes uploaded fonts.
func (s *Server) Close() error {
	return os.RemoveAll(s.tmpDir)
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.MaxMultipartMemory = maxUploadBytes

	api := r.Group("/api")
	api.GET("/health", s.handleHealth)
	api.POST("/render", s.handleRender)
	api.POST("/batch", s.handleBatch)

	fontRoutes := api.Group("/fonts")
	fontRoutes.POST("", s.handleUploadFont)
	fontRoutes.GET("", s.handleListFonts)
	fontRoutes.DELETE("/:id", s.handleDeleteFont)
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("server shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("elapsed", time.Since(start)),
		)
	}
}
