package loader

import (
	"context"
	"fmt"

	"pexipmon/internal/cypher"
)

// SchemaManager 负责初始化约束和索引。
type SchemaManager struct {
	writer Writer
}

func NewSchemaManager(writer Writer) *SchemaManager {
	return &SchemaManager{writer: writer}
}

func (m *SchemaManager) Ensure(ctx context.Context) error {
	queries, err := cypher.Statements("init_schema.cql")
	if err != nil {
		return err
	}
	for _, query := range queries {
		if err := m.writer.RunRaw(ctx, query, nil); err != nil {
			return fmt.Errorf("执行 schema 语句失败: %w", err)
		}
	}
	return nil
}
