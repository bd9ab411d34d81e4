package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"pexipmon/internal/aggregate"
	"pexipmon/internal/cache"
	"pexipmon/internal/command"
	"pexipmon/internal/domain"
	"pexipmon/internal/mail"
	"pexipmon/internal/mapping"
	"pexipmon/internal/metrics"
	"pexipmon/internal/pexip"
	"pexipmon/internal/report"
)

// Settings 是运行期可调整的报表设置。
type Settings struct {
	DaysBack           int  `json:"days_back"`
	DisplayConferences bool `json:"display_conferences"`
}

// Service 负责装配各个 Flow 并提供统一入口。刷新和命令串行执行。
type Service struct {
	cfg       Config
	client    pexip.Client
	cache     *cache.Store
	Refresh   *RefreshFlow
	Reports   *ReportFlow
	logger    *zap.Logger
	startedAt time.Time

	run sync.Mutex

	settingsMu sync.RWMutex
	settings   Settings

	last    atomic.Pointer[RefreshResult]
	closers []func(context.Context) error
}

// Deps 是构建 Service 需要的外部依赖，Mailer 和 Sink 可以为空。
type Deps struct {
	Client pexip.Client
	Mapper mapping.Mapper
	Mailer mail.Mailer
	Sink   TopologySink
	Logger *zap.Logger
}

// NewService 根据配置构建 Service。
func NewService(cfg Config, deps Deps) (*Service, error) {
	if deps.Client == nil {
		return nil, fmt.Errorf("必须提供 pexip client")
	}
	if deps.Mapper == nil {
		return nil, fmt.Errorf("必须提供 mapper")
	}
	if cfg.Report.DaysBack < 0 {
		return nil, fmt.Errorf("%w: report.days_back 不能为负数", ErrInvalidArgument)
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	store := cache.NewStore()

	var exporter *report.Exporter
	if deps.Mailer != nil {
		exporter = &report.Exporter{Mailer: deps.Mailer, TempDir: cfg.Report.TempDir, Logger: logger}
	}

	svc := &Service{
		cfg:    cfg,
		client: deps.Client,
		cache:  store,
		Refresh: &RefreshFlow{
			Client: deps.Client,
			Mapper: deps.Mapper,
			Cache:  store,
			Sink:   deps.Sink,
			Logger: logger,
		},
		Reports: &ReportFlow{
			Client:     deps.Client,
			Mapper:     deps.Mapper,
			Exporter:   exporter,
			Aggregator: &aggregate.Aggregator{Source: aggregate.ClientSource{Client: deps.Client}},
			Logger:     logger,
		},
		logger:    logger,
		startedAt: time.Now(),
		settings: Settings{
			DaysBack:           cfg.Report.DaysBack,
			DisplayConferences: cfg.Report.DisplayConferences,
		},
	}
	return svc, nil
}

// OnClose 注册关闭时执行的清理函数。
func (s *Service) OnClose(fn func(context.Context) error) {
	s.closers = append(s.closers, fn)
}

// Close 释放资源。
func (s *Service) Close(ctx context.Context) error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	_ = s.logger.Sync()
	return firstErr
}

// Settings 返回当前设置。
func (s *Service) Settings() Settings {
	s.settingsMu.RLock()
	defer s.settingsMu.RUnlock()
	return s.settings
}

// SetDisplayConferences 切换是否在节点下展示会议，下一次刷新生效。
func (s *Service) SetDisplayConferences(on bool) {
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()
	s.settings.DisplayConferences = on
}

// SetDaysBack 修改历史报表回溯天数，必须为非负数。
func (s *Service) SetDaysBack(ctx context.Context, days int) error {
	return s.Execute(ctx, command.SetDaysBack{Days: days})
}

func (s *Service) setDaysBack(days int) error {
	if days < 0 {
		return fmt.Errorf("%w: 回溯天数不能为负数: %d", ErrInvalidArgument, days)
	}
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()
	s.settings.DaysBack = days
	return nil
}

// MailEnabled 判断是否提供了 SMTP 配置。
func (s *Service) MailEnabled() bool {
	return s.Reports != nil && s.Reports.Exporter != nil
}

// Sync 执行一次完整刷新，供定时任务调用。
func (s *Service) Sync(ctx context.Context) error {
	_, err := s.RefreshNow(ctx)
	return err
}

// RefreshNow 执行一次刷新并返回结果。
func (s *Service) RefreshNow(ctx context.Context) (*RefreshResult, error) {
	s.run.Lock()
	defer s.run.Unlock()
	settings := s.Settings()
	res, err := s.Refresh.Run(ctx, RefreshOptions{
		DisplayConferences: settings.DisplayConferences,
		ExportControls:     s.MailEnabled(),
	})
	if err != nil {
		return nil, err
	}
	s.last.Store(res)
	return res, nil
}

// Last 返回最近一次成功刷新的结果，尚未刷新时为 nil。
func (s *Service) Last() *RefreshResult {
	return s.last.Load()
}

// Devices 返回最近一次刷新得到的节点，ids 非空时只返回对应 id 的节点。
func (s *Service) Devices(ids ...string) []domain.Entity {
	res := s.last.Load()
	if res == nil {
		return nil
	}
	if len(ids) == 0 {
		return res.Nodes
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[strings.TrimSpace(id)] = true
	}
	out := make([]domain.Entity, 0, len(ids))
	for _, n := range res.Nodes {
		if want[n.ID] {
			out = append(out, n)
		}
	}
	return out
}

// Control 解析控件名并执行命令。
func (s *Service) Control(ctx context.Context, property, value string) error {
	cmd, err := command.Parse(property, value)
	if err != nil {
		metrics.Commands.WithLabelValues("unknown", metrics.CommandResult(err)).Inc()
		return err
	}
	return s.Execute(ctx, cmd)
}

// Execute 执行一条命令。
func (s *Service) Execute(ctx context.Context, cmd command.Command) (err error) {
	s.run.Lock()
	defer s.run.Unlock()

	kind := commandKind(cmd)
	defer func() {
		metrics.Commands.WithLabelValues(kind, metrics.CommandResult(err)).Inc()
		if err != nil {
			s.logger.Warn("command failed", zap.String("command", kind), zap.String("property", cmd.Property()), zap.Error(err))
			return
		}
		s.logger.Info("command completed", zap.String("command", kind), zap.String("property", cmd.Property()))
	}()

	switch c := cmd.(type) {
	case command.DisconnectConference:
		return s.disconnect(ctx, domain.KindConference, c.Name, pexip.PathDisconnectConference, "conference_id")
	case command.DisconnectParticipant:
		return s.disconnect(ctx, domain.KindParticipant, c.Name, pexip.PathDisconnectParticipant, "participant_id")
	case command.ExportParticipants:
		if err := s.Reports.ready(); err != nil {
			return err
		}
		if _, err := s.cache.Lookup(domain.KindConference, c.Conference); err != nil {
			return err
		}
		return s.Reports.Participants(ctx, c.Conference)
	case command.ExportLicensing:
		return s.Reports.Licensing(ctx)
	case command.ExportHistorical:
		return s.Reports.Historical(ctx, s.Settings().DaysBack)
	case command.ExportAggregate:
		return s.Reports.Aggregate(ctx)
	case command.SetDaysBack:
		return s.setDaysBack(c.Days)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
}

func (s *Service) disconnect(ctx context.Context, kind, name, path, field string) error {
	id, err := s.cache.Lookup(kind, name)
	if err != nil {
		return err
	}
	if err := s.client.Command(ctx, path, map[string]string{field: id}); err != nil {
		return fmt.Errorf("断开 %s %s 失败: %w", kind, name, err)
	}
	return nil
}

func commandKind(cmd command.Command) string {
	switch cmd.(type) {
	case command.DisconnectConference:
		return "disconnect_conference"
	case command.DisconnectParticipant:
		return "disconnect_participant"
	case command.ExportParticipants:
		return "export_participants"
	case command.ExportLicensing:
		return "export_licensing"
	case command.ExportHistorical:
		return "export_historical"
	case command.ExportAggregate:
		return "export_aggregate"
	case command.SetDaysBack:
		return "set_days_back"
	default:
		return "unknown"
	}
}
