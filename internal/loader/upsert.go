package loader

import (
	"context"
	"fmt"

	"pexipmon/internal/cypher"
	"pexipmon/internal/domain"
	"pexipmon/pkg/util"
)

const defaultBatchSize = 100

// group 是同一条 Cypher 语句下要写入的一组参数行。
type group struct {
	name  string
	query string
	rows  []map[string]any
}

// writeGroups 按组分批执行 MERGE，组的顺序即首次出现的顺序。
func writeGroups(ctx context.Context, writer Writer, batchSize int, kind string, groups []*group) error {
	for _, g := range groups {
		for _, chunk := range util.Batch(g.rows, batchSize) {
			if err := writer.RunWrite(ctx, g.query, map[string]any{"rows": chunk}); err != nil {
				return fmt.Errorf("写入%s失败 %s: %w", kind, g.name, err)
			}
		}
	}
	return nil
}

// grouper 按 key 收集参数行，并为每个新 key 渲染一次模板。
type grouper struct {
	template string
	index    map[string]*group
	order    []*group
}

func newGrouper(template string) *grouper {
	return &grouper{template: template, index: make(map[string]*group)}
}

func (g *grouper) add(key string, data map[string]string, row map[string]any) error {
	grp, ok := g.index[key]
	if !ok {
		query, err := cypher.Render(g.template, data)
		if err != nil {
			return err
		}
		grp = &group{name: key, query: query}
		g.index[key] = grp
		g.order = append(g.order, grp)
	}
	grp.rows = append(grp.rows, row)
	return nil
}

// NodeUpserter 按标签组合分组批量 MERGE 节点。
type NodeUpserter struct {
	writer    Writer
	batchSize int
}

// NewNodeUpserter 创建节点 upsert 器，batchSize 不大于 0 时取默认值。
func NewNodeUpserter(writer Writer, batchSize int) *NodeUpserter {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &NodeUpserter{writer: writer, batchSize: batchSize}
}

// Upsert 写入节点，已存在的节点合并属性并刷新 last_seen_run_id。
func (u *NodeUpserter) Upsert(ctx context.Context, rows []domain.NodeRow) error {
	g := newGrouper("upsert_nodes.cql")
	for _, row := range rows {
		err := g.add(domain.JoinLabels(row.Labels),
			map[string]string{"LabelPattern": domain.LabelPattern(row.Labels)},
			map[string]any{
				"pexip_key":  row.Key,
				"properties": row.Properties,
				"run_id":     row.RunID,
				"updated_at": row.UpdatedAt,
			})
		if err != nil {
			return err
		}
	}
	return writeGroups(ctx, u.writer, u.batchSize, "节点", g.order)
}

// RelUpserter 按关系类型分组批量 MERGE 关系。
type RelUpserter struct {
	writer    Writer
	batchSize int
}

func NewRelUpserter(writer Writer, batchSize int) *RelUpserter {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &RelUpserter{writer: writer, batchSize: batchSize}
}

func (u *RelUpserter) Upsert(ctx context.Context, rows []domain.RelRow) error {
	g := newGrouper("upsert_rels.cql")
	for _, row := range rows {
		err := g.add(row.Type,
			map[string]string{"RelType": ":" + row.Type},
			map[string]any{
				"start_key":  row.StartKey,
				"end_key":    row.EndKey,
				"properties": row.Properties,
				"run_id":     row.RunID,
			})
		if err != nil {
			return err
		}
	}
	return writeGroups(ctx, u.writer, u.batchSize, "关系", g.order)
}
