package job

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler 按 cron 表达式执行一个后台任务，上一次未结束时跳过本次触发。
type Scheduler struct {
	name     string
	cronExpr string
	logger   *zap.Logger
	cron     *cron.Cron
	fn       func(context.Context) error
	parent   context.Context
	mu       sync.Mutex
	running  bool
}

// NewScheduler 构建调度器。cronExpr 为空时 Start 不做任何事。
func NewScheduler(name, cronExpr string, fn func(context.Context) error, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		name:     name,
		cronExpr: strings.TrimSpace(cronExpr),
		logger:   logger.With(zap.String("job", name)),
		fn:       fn,
	}
}

// Name 返回任务名。
func (s *Scheduler) Name() string { return s.name }

// Enabled 判断是否配置了 cron 表达式。
func (s *Scheduler) Enabled() bool { return s != nil && s.cronExpr != "" }

// Start 启动调度器，返回用于停止任务的函数。
func (s *Scheduler) Start(parent context.Context) context.CancelFunc {
	if !s.Enabled() {
		return func() {}
	}
	s.parent = parent
	c := cron.New()
	id, err := c.AddFunc(s.cronExpr, s.RunOnce)
	if err != nil {
		s.logger.Error("failed to register cron job", zap.String("cron", s.cronExpr), zap.Error(err))
		return func() {}
	}
	s.cron = c
	c.Start()
	entry := c.Entry(id)
	s.logger.Info("job scheduler started", zap.String("cron", s.cronExpr), zap.Time("next", entry.Next))

	var once sync.Once
	stop := func() {
		once.Do(func() {
			ctx := s.cron.Stop()
			<-ctx.Done()
			s.logger.Info("job scheduler stopped")
		})
	}

	go func() {
		<-parent.Done()
		stop()
	}()

	return stop
}

// RunOnce 执行一次任务，供 cron 回调和测试使用。
func (s *Scheduler) RunOnce() {
	if s.fn == nil {
		s.logger.Warn("job function not configured")
		return
	}
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("previous run still in progress, skip current schedule")
		return
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	runCtx := context.Background()
	if s.parent != nil {
		select {
		case <-s.parent.Done():
			s.logger.Info("scheduler context cancelled, skip run")
			return
		default:
		}
		runCtx = s.parent
	}
	start := time.Now()
	err := s.fn(runCtx)
	elapsed := time.Since(start)
	if err != nil {
		s.logger.Error("scheduled run failed", zap.Duration("duration", elapsed), zap.Error(err))
		return
	}
	s.logger.Info("scheduled run completed", zap.Duration("duration", elapsed))
}

// Group 是一组一起启停的调度器。
type Group []*Scheduler

// Start 启动组内全部调度器，返回的函数停止全部调度器。
func (g Group) Start(parent context.Context) context.CancelFunc {
	stops := make([]context.CancelFunc, 0, len(g))
	for _, s := range g {
		stops = append(stops, s.Start(parent))
	}
	return func() {
		for _, stop := range stops {
			stop()
		}
	}
}
