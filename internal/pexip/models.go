package pexip

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// 管理节点 REST 资源路径，相对于 /api/admin/。
const (
	PathNodeStatus            = "status/v1/worker_vm/"
	PathNodeConfiguration     = "configuration/v1/worker_vm/"
	PathConferenceStatus      = "status/v1/conference/"
	PathConferenceShard       = "status/v1/conference_shard/"
	PathParticipantStatus     = "status/v1/participant/"
	PathLicensing             = "status/v1/licensing/"
	PathConferenceHistory     = "history/v1/conference/"
	PathParticipantHistory    = "history/v1/participant/"
	PathDisconnectConference  = "command/v1/conference/disconnect/"
	PathDisconnectParticipant = "command/v1/participant/disconnect/"
)

// DefaultPageSize 与服务端默认上限保持一致。
const DefaultPageSize = 5000

// TimeLayout 是 history 接口 end_time 过滤参数使用的格式。
const TimeLayout = "2006-01-02T15:04:05"

// Record 是一条原始资源记录，数字保留为 json.Number。
type Record map[string]any

// Text 以字符串形式读取字段，缺失或为 null 时返回 false。
func (r Record) Text(field string) (string, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return "", false
	}
	return Stringify(v), true
}

// Stringify 把 JSON 值转成字符串；嵌套对象和数组按 JSON 编码。
func Stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case nil:
		return ""
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	}
}

// Meta 对应分页信封中的 meta 字段。
type Meta struct {
	Limit      int    `json:"limit"`
	Next       string `json:"next"`
	Offset     int    `json:"offset"`
	Previous   string `json:"previous"`
	TotalCount int    `json:"total_count"`
}

// Envelope 是分页资源的响应信封，数据列表位于 objects。
type Envelope struct {
	Meta    Meta     `json:"meta"`
	Objects []Record `json:"objects"`
}

// Collection 是一次拉取得到的完整资源集合（已跨页合并）。
type Collection struct {
	Objects []Record
	Total   int
}

// Len 返回记录数。
func (c Collection) Len() int {
	return len(c.Objects)
}

// Empty 判断集合是否为空。
func (c Collection) Empty() bool {
	return len(c.Objects) == 0
}

// HistoricalConference 是统计聚合需要的历史会议字段。
type HistoricalConference struct {
	Duration         int `json:"duration"`
	ParticipantCount int `json:"participant_count"`
}

// DecodeHistoricalConference 从原始记录中读取时长和参会人数，缺失字段按 0 处理。
func DecodeHistoricalConference(r Record) (HistoricalConference, error) {
	var out HistoricalConference
	var err error
	if out.Duration, err = intField(r, "duration"); err != nil {
		return out, err
	}
	if out.ParticipantCount, err = intField(r, "participant_count"); err != nil {
		return out, err
	}
	return out, nil
}

func intField(r Record, field string) (int, error) {
	raw, ok := r.Text(field)
	if !ok || raw == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("字段 %s 不是数字: %q", field, raw)
	}
	return int(f), nil
}
