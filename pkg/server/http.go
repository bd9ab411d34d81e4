package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pexipmon/internal/app"
	"pexipmon/internal/job"
	"pexipmon/internal/mapping"
)

const shutdownTimeout = 10 * time.Second

// HTTPServer 封装 HTTP 服务运行所需的依赖。
type HTTPServer struct {
	Engine  *gin.Engine
	Logger  *zap.Logger
	Config  app.Config
	Service *app.Service
	Jobs    job.Group
	Mapping *mapping.Loader
}

// NewHTTPServer 构建 HTTPServer。
func NewHTTPServer(engine *gin.Engine, logger *zap.Logger, cfg app.Config, svc *app.Service, jobs job.Group, loader *mapping.Loader) *HTTPServer {
	return &HTTPServer{
		Engine:  engine,
		Logger:  logger,
		Config:  cfg,
		Service: svc,
		Jobs:    jobs,
		Mapping: loader,
	}
}

// Run 启动 HTTP 服务及相关后台任务，ctx 取消后优雅退出。
func (s *HTTPServer) Run(ctx context.Context) error {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	listen := strings.TrimSpace(s.Config.HTTP.Listen)
	if listen == "" {
		listen = ":8080"
	}

	if s.Mapping != nil && s.Config.Mapping.Watch {
		stopWatch, err := s.Mapping.Watch()
		if err != nil {
			logger.Warn("mapping watch disabled", zap.Error(err))
		} else {
			defer stopWatch()
		}
	}

	if s.Config.Sync.InitialRefresh && s.Service != nil {
		if _, err := s.Service.RefreshNow(ctx); err != nil {
			logger.Error("initial refresh failed", zap.Error(err))
		} else {
			logger.Info("initial refresh completed")
		}
	} else {
		logger.Info("initial refresh skipped by configuration")
	}

	stopJobs := s.Jobs.Start(ctx)
	defer stopJobs()

	srv := &http.Server{Addr: listen, Handler: s.Engine}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("listen", listen))
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
		logger.Info("http server stopping")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

// Shutdown 释放资源。
func (s *HTTPServer) Shutdown(ctx context.Context) {
	if s.Service != nil {
		if err := s.Service.Close(ctx); err != nil && s.Logger != nil {
			s.Logger.Warn("close app service failed", zap.Error(err))
		}
	}
	if s.Logger != nil {
		_ = s.Logger.Sync()
	}
}
