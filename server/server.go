package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"github.com/chaos-io/cutout/config"
	"github.com/chaos-io/cutout/editor"
	"github.com/chaos-io/cutout/segment"
)

type Server struct {
	cfg       *config.Config
	store     *Store
	segmenter *segment.Segmenter
	editor    editor.ImageEditor
	cron      *cron.Cron
	engine    *gin.Engine
}

type Option func(*Server)

// WithEditor 配置远程图像编辑服务，不配置时 /edit 返回 501
func WithEditor(ed editor.ImageEditor) Option {
	return func(s *Server) { s.editor = ed }
}

func WithStore(st *Store) Option {
	return func(s *Server) { s.store = st }
}

func New(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:       cfg,
		store:     NewStore(),
		segmenter: segment.New(cfg.SegmentOptions()),
		cron:      cron.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	ttl := cfg.Server.SessionTTL
	if _, err := s.cron.AddFunc(cfg.Server.SweepSpec, func() {
		if n := s.store.Sweep(ttl); n > 0 {
			slog.Info("evicted idle sessions", "count", n, "remaining", s.store.Len())
		}
	}); err != nil {
		return nil, fmt.Errorf("sweep spec %q: %w", cfg.Server.SweepSpec, err)
	}

	s.engine = s.routes()
	return s, nil
}

func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) Store() *Store { return s.store }

// Run 监听直到 ctx 取消，然后优雅退出
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.cron.Start()
	defer s.Close()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) Close() {
	<-s.cron.Stop().Done()
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.MaxMultipartMemory = s.cfg.Server.MaxUploadMB << 20

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "sessions": s.store.Len()})
	})

	v1 := r.Group("/v1")
	v1.POST("/segment", s.handleSegment)

	sessions := v1.Group("/sessions")
	sessions.POST("", s.handleCreateSession)
	sessions.GET("/:id/image", s.handleImage)
	sessions.GET("/:id/export", s.handleExport)
	sessions.POST("/:id/erase", s.handleErase)
	sessions.POST("/:id/wand", s.handleWand)
	sessions.POST("/:id/polish", s.handlePolish)
	sessions.POST("/:id/undo", s.handleUndo)
	sessions.POST("/:id/redo", s.handleRedo)
	sessions.POST("/:id/edit", s.handleEdit)
	sessions.POST("/:id/render", s.handleRender)
	sessions.DELETE("/:id", s.handleDelete)

	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed", time.Since(start))
	}
}
