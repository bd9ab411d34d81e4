package loader

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"pexipmon/internal/domain"
	"pexipmon/pkg/util"
)

// BuildRows 把一次刷新的结果转换成图数据：ConferencingNode、Conference 以及带参会人数的 HOSTS 关系。
// 节点上以 "Conference:" 开头的挂载属性不写入节点本身。
func BuildRows(runID string, at time.Time, topo domain.Topology) ([]domain.NodeRow, []domain.RelRow) {
	nodeRows := make([]domain.NodeRow, 0, len(topo.Nodes)+len(topo.Conferences))
	relRows := make([]domain.RelRow, 0, len(topo.Conferences))

	counts := make(map[string]int, len(topo.Conferences))
	for _, p := range topo.Participants {
		if name := p[domain.PropConference]; name != "" {
			counts[name]++
		}
	}

	byAddress := make(map[string]string, len(topo.Nodes))
	for _, node := range topo.Nodes {
		id := node.ID
		if id == "" {
			id = node.Name
		}
		if id == "" {
			continue
		}
		key := domain.MakeKey(domain.PrefixNode, id)
		props := make(map[string]any, len(node.Properties)+2)
		for k, v := range node.Properties {
			if strings.HasPrefix(k, domain.KindConference+":") {
				continue
			}
			props[k] = v
		}
		props["name"] = node.Name
		props["content_hash"] = util.HashMap(props)
		nodeRows = append(nodeRows, domain.NodeRow{
			Key:        key,
			Labels:     []string{domain.LabelConferencingNode},
			Properties: props,
			RunID:      runID,
			UpdatedAt:  at,
		})
		if addr, ok := node.Properties[domain.PropConfigAddress]; ok && addr != "" {
			byAddress[addr] = key
		}
	}

	for _, conf := range topo.Conferences {
		id := conf[domain.PropID]
		if id == "" {
			continue
		}
		key := domain.MakeKey(domain.PrefixConference, id)
		props := make(map[string]any, len(conf)+2)
		for k, v := range conf {
			props[k] = v
		}
		props[domain.PropParticipantsCount] = strconv.Itoa(counts[conf[domain.PropName]])
		props["content_hash"] = util.HashMap(props)
		nodeRows = append(nodeRows, domain.NodeRow{
			Key:        key,
			Labels:     []string{domain.LabelConference},
			Properties: props,
			RunID:      runID,
			UpdatedAt:  at,
		})
		if nodeKey, ok := byAddress[conf[domain.PropNodeAddress]]; ok {
			relRows = append(relRows, domain.RelRow{
				StartKey:   nodeKey,
				EndKey:     key,
				Type:       domain.RelHosts,
				Properties: map[string]any{"participants": counts[conf[domain.PropName]]},
				RunID:      runID,
			})
		}
	}
	return nodeRows, relRows
}

// Sink 在每次刷新成功后把拓扑同步到 Neo4j。
type Sink struct {
	Schema  *SchemaManager
	Nodes   *NodeUpserter
	Rels    *RelUpserter
	Cleaner *Cleaner
	Logger  *zap.Logger

	schemaOnce sync.Once
	schemaErr  error
}

// NewSink 基于同一个 Writer 组装 Sink。
func NewSink(writer Writer, batchSize int, logger *zap.Logger) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sink{
		Schema:  NewSchemaManager(writer),
		Nodes:   NewNodeUpserter(writer, batchSize),
		Rels:    NewRelUpserter(writer, batchSize),
		Cleaner: NewCleaner(writer),
		Logger:  logger,
	}
}

// Write 写入一次刷新的结果并清理上一轮残留。schema 只在第一次调用时初始化。
func (s *Sink) Write(ctx context.Context, runID string, at time.Time, topo domain.Topology) error {
	if s == nil {
		return nil
	}
	s.schemaOnce.Do(func() {
		s.schemaErr = s.Schema.Ensure(ctx)
	})
	if s.schemaErr != nil {
		return s.schemaErr
	}

	nodeRows, relRows := BuildRows(runID, at, topo)
	if err := s.Nodes.Upsert(ctx, nodeRows); err != nil {
		return fmt.Errorf("写入拓扑节点失败: %w", err)
	}
	if err := s.Rels.Upsert(ctx, relRows); err != nil {
		return fmt.Errorf("写入拓扑关系失败: %w", err)
	}
	if err := s.Cleaner.DeleteStale(ctx, runID); err != nil {
		return err
	}
	s.Logger.Info("topology written",
		zap.String("run_id", runID),
		zap.Int("nodes", len(nodeRows)),
		zap.Int("rels", len(relRows)))
	return nil
}
