package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pexipmon/internal/cache"
	"pexipmon/internal/domain"
	"pexipmon/internal/join"
	"pexipmon/internal/mapping"
	"pexipmon/internal/metrics"
	"pexipmon/internal/pexip"
)

// TopologySink 接收每次成功刷新的结果。
type TopologySink interface {
	Write(ctx context.Context, runID string, at time.Time, topo domain.Topology) error
}

// RefreshOptions 控制一次刷新输出的内容。
type RefreshOptions struct {
	// DisplayConferences 为 true 时把会议挂到节点下。
	DisplayConferences bool
	// ExportControls 为 true 时为会议增加导出参会者按钮。
	ExportControls bool
}

// RefreshResult 是一次刷新的完整结果。
type RefreshResult struct {
	CycleID      string
	At           time.Time
	Nodes        []domain.Entity
	Conferences  []domain.Properties
	Participants []domain.Properties
}

// RefreshFlow 拉取节点、会议、分片和参会者，关联后整体替换名称缓存。
type RefreshFlow struct {
	Client pexip.Client
	Mapper mapping.Mapper
	Cache  *cache.Store
	Sink   TopologySink
	Logger *zap.Logger
	Now    func() time.Time
	NewID  func() string
}

// Run 执行一次刷新。任何一步失败都直接返回错误，缓存保持上一次的内容。
func (f *RefreshFlow) Run(ctx context.Context, opts RefreshOptions) (*RefreshResult, error) {
	if f == nil {
		return nil, fmt.Errorf("refresh flow 未初始化")
	}
	if f.Client == nil || f.Mapper == nil || f.Cache == nil {
		return nil, fmt.Errorf("refresh flow 依赖未注入完整")
	}
	logger := f.logger()
	start := time.Now()
	cycleID := f.newID()

	result, err := f.collect(ctx, opts)
	if err != nil {
		metrics.RefreshErrors.Inc()
		logger.Warn("refresh failed, keep previous cache", zap.String("cycle_id", cycleID), zap.Error(err))
		return nil, err
	}
	result.CycleID = cycleID
	result.At = f.now()

	builder := cache.NewBuilder()
	builder.PutAll(domain.KindConference, result.Conferences, domain.PropName, domain.PropID)
	builder.PutAll(domain.KindParticipant, result.Participants, domain.PropDisplayName, domain.PropID)
	f.Cache.Swap(builder.Build(cycleID, result.At))

	metrics.RefreshDuration.Observe(time.Since(start).Seconds())
	metrics.Devices.Set(float64(len(result.Nodes)))
	metrics.ActiveConferences.Set(float64(len(result.Conferences)))
	metrics.ActiveParticipants.Set(float64(len(result.Participants)))

	logger.Info("refresh completed",
		zap.String("cycle_id", cycleID),
		zap.Int("nodes", len(result.Nodes)),
		zap.Int("conferences", len(result.Conferences)),
		zap.Int("participants", len(result.Participants)),
		zap.Duration("duration", time.Since(start)))

	if f.Sink != nil {
		topo := domain.Topology{Nodes: result.Nodes, Conferences: result.Conferences, Participants: result.Participants}
		if err := f.Sink.Write(ctx, cycleID, result.At, topo); err != nil {
			logger.Warn("write topology failed", zap.String("cycle_id", cycleID), zap.Error(err))
		}
	}
	return result, nil
}

func (f *RefreshFlow) collect(ctx context.Context, opts RefreshOptions) (*RefreshResult, error) {
	confColl, err := f.Client.Fetch(ctx, pexip.PathConferenceStatus, nil)
	if err != nil {
		return nil, fmt.Errorf("拉取会议状态失败: %w", err)
	}
	shardColl, err := f.Client.Fetch(ctx, pexip.PathConferenceShard, nil)
	if err != nil {
		return nil, fmt.Errorf("拉取会议分片失败: %w", err)
	}
	conferences, err := join.Join(f.Mapper, confColl, shardColl, join.Spec{
		PrimaryProfile:   mapping.ProfileConferenceStatus,
		SecondaryProfile: mapping.ProfileConferenceShard,
		MatchField:       domain.PropID,
		IdentityField:    "id",
	})
	if err != nil {
		return nil, err
	}

	partColl, err := f.Client.Fetch(ctx, pexip.PathParticipantStatus, nil)
	if err != nil {
		return nil, fmt.Errorf("拉取参会者失败: %w", err)
	}
	participants, err := mapping.ApplyAll(f.Mapper, partColl, mapping.ProfileParticipant)
	if err != nil {
		return nil, err
	}

	nodeColl, err := f.Client.Fetch(ctx, pexip.PathNodeStatus, nil)
	if err != nil {
		return nil, fmt.Errorf("拉取节点状态失败: %w", err)
	}
	nodes, err := mapping.ApplyAll(f.Mapper, nodeColl, mapping.ProfileNodeStatus)
	if err != nil {
		return nil, err
	}
	cfgColl, err := f.Client.Fetch(ctx, pexip.PathNodeConfiguration, nil)
	if err != nil {
		return nil, fmt.Errorf("拉取节点配置失败: %w", err)
	}
	configs, err := mapping.ApplyAll(f.Mapper, cfgColl, mapping.ProfileNodeConfig)
	if err != nil {
		return nil, err
	}

	entities := join.NodeEntities(join.MergeNodeConfig(nodes, configs))
	if opts.DisplayConferences {
		entities = join.AttachConferences(entities, conferences, participants, join.AttachOptions{
			ExportParticipants: opts.ExportControls,
		})
	}
	return &RefreshResult{
		Nodes:        entities,
		Conferences:  conferences,
		Participants: participants,
	}, nil
}

func (f *RefreshFlow) logger() *zap.Logger {
	if f.Logger == nil {
		return zap.NewNop()
	}
	return f.Logger
}

func (f *RefreshFlow) now() time.Time {
	if f.Now == nil {
		return time.Now()
	}
	return f.Now()
}

func (f *RefreshFlow) newID() string {
	if f.NewID == nil {
		return uuid.NewString()
	}
	return f.NewID()
}
