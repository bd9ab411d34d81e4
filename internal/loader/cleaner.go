package loader

import (
	"context"
	"fmt"

	"pexipmon/internal/cypher"
)

// Cleaner 删除本轮刷新没有再出现的节点和关系。
type Cleaner struct {
	writer Writer
}

func NewCleaner(writer Writer) *Cleaner {
	return &Cleaner{writer: writer}
}

// DeleteStale 删除 last_seen_run_id 不等于 runID 的拓扑数据。
func (c *Cleaner) DeleteStale(ctx context.Context, runID string) error {
	queries, err := cypher.Statements("delete_stale.cql")
	if err != nil {
		return err
	}
	for _, query := range queries {
		if err := c.writer.RunWrite(ctx, query, map[string]any{"run_id": runID}); err != nil {
			return fmt.Errorf("删除过期拓扑失败: %w", err)
		}
	}
	return nil
}
