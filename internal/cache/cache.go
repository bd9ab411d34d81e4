package cache

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"pexipmon/internal/domain"
)

// ErrUnknownEntity 表示名称不在当前缓存中。
var ErrUnknownEntity = errors.New("未知的实体名称")

// Snapshot 是一次刷新得到的只读名称 -> id 映射。
type Snapshot struct {
	byKind  map[string]map[string]string
	BuiltAt time.Time
	CycleID string
}

// Lookup 按实体类型和展示名称查 id。
func (s *Snapshot) Lookup(kind, name string) (string, error) {
	if s != nil {
		if id, ok := s.byKind[kind][name]; ok && id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: %s %q", ErrUnknownEntity, kind, name)
}

// Len 返回某个实体类型的条目数。
func (s *Snapshot) Len(kind string) int {
	if s == nil {
		return 0
	}
	return len(s.byKind[kind])
}

// Builder 在刷新过程中收集条目，Build 后不可再修改。
type Builder struct {
	byKind map[string]map[string]string
}

// NewBuilder 创建空的 Builder。
func NewBuilder() *Builder {
	return &Builder{byKind: make(map[string]map[string]string)}
}

// Put 记录一个实体；名称为空的条目忽略，同名后写覆盖。
func (b *Builder) Put(kind, name, id string) {
	if name == "" {
		return
	}
	m, ok := b.byKind[kind]
	if !ok {
		m = make(map[string]string)
		b.byKind[kind] = m
	}
	m[name] = id
}

// PutAll 从属性集合中按 nameField/idField 批量记录。
func (b *Builder) PutAll(kind string, items []domain.Properties, nameField, idField string) {
	for _, p := range items {
		b.Put(kind, p[nameField], p[idField])
	}
}

// Build 生成快照。
func (b *Builder) Build(cycleID string, at time.Time) *Snapshot {
	s := &Snapshot{byKind: b.byKind, BuiltAt: at, CycleID: cycleID}
	b.byKind = nil
	return s
}

// Store 持有当前快照，整体原子替换，读者不会看到构建到一半的数据。
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore 创建空 Store（Idle 状态）。
func NewStore() *Store {
	return &Store{}
}

// Swap 用新快照替换旧快照。
func (s *Store) Swap(next *Snapshot) {
	s.current.Store(next)
}

// Current 返回当前快照，未刷新过时为 nil。
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Populated 判断是否完成过至少一次刷新。
func (s *Store) Populated() bool {
	return s.current.Load() != nil
}

// Lookup 在当前快照中查找。
func (s *Store) Lookup(kind, name string) (string, error) {
	return s.current.Load().Lookup(kind, name)
}
