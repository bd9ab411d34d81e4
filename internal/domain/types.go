package domain

import "time"

// Properties 是扁平化后的属性集合，key 唯一，值一律为字符串。
type Properties map[string]string

// Clone 返回一份浅拷贝，避免多个实体共享同一个 map。
func (p Properties) Clone() Properties {
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Control 表示设备上可操作的控件（按钮或数值输入）。
type Control struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Label string `json:"label,omitempty"`
	Value string `json:"value"`
}

const (
	ControlButton  = "Button"
	ControlNumeric = "Numeric"
)

// Entity 是合并后的实体：一个资源 id、一个展示名称，加上合并进来的属性。
type Entity struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Properties Properties `json:"properties"`
	Controls   []Control  `json:"controls,omitempty"`
}

// ReportWrapper 是一份具名报表，行之间 key 集合可以不同。
type ReportWrapper struct {
	Name string
	Rows []map[string]string
}

// NodeRow 是批量 upsert 的统一 DTO。
type NodeRow struct {
	Key        string         `json:"key"`
	Labels     []string       `json:"labels"`
	Properties map[string]any `json:"properties"`
	RunID      string         `json:"run_id"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// RelRow 代表一条关系需要的信息。
type RelRow struct {
	StartKey   string         `json:"start_key"`
	EndKey     string         `json:"end_key"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	RunID      string         `json:"run_id"`
}

// Topology 是一次刷新得到的节点、会议和参会者，供拓扑写入使用。
type Topology struct {
	Nodes        []Entity
	Conferences  []Properties
	Participants []Properties
}
