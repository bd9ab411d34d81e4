package domain

import (
	"fmt"
	"sort"
	"strings"
)

const (
	LabelConferencingNode = "ConferencingNode"
	LabelConference       = "Conference"

	RelHosts = "HOSTS"
)

const (
	PrefixNode       = "NODE"
	PrefixConference = "CONF"
)

// 实体类型，用于命名空间前缀和名称缓存。
const (
	KindConference  = "Conference"
	KindParticipant = "Participant"
)

// MakeKey 统一生成图节点 key，带上前缀以避免不同实体冲突。
func MakeKey(prefix string, rawID any) string {
	return fmt.Sprintf("%s_%v", prefix, rawID)
}

// GroupKey 生成子实体属性名，如 "Conference:Weekly#Status"。
func GroupKey(kind, name, property string) string {
	return kind + ":" + name + "#" + property
}

// LabelPattern 根据标签集合拼成 Cypher 模板所需的字符串，如 ":A:B"。
func LabelPattern(labels []string) string {
	if len(labels) == 0 {
		return ""
	}
	sorted := append([]string(nil), labels...)
	sort.Strings(sorted)
	return ":" + strings.Join(sorted, ":")
}

// JoinLabels 简单拼接标签用于 map key（内部使用）。
func JoinLabels(labels []string) string {
	sorted := append([]string(nil), labels...)
	sort.Strings(sorted)
	return strings.Join(sorted, ":")
}

// 节点、会议、参会者实体的关键属性名。
const (
	PropNodeID            = "Status#ID"
	PropNodeName          = "Status#Name"
	PropConfigName        = "Configuration#Name"
	PropConfigAddress     = "Configuration#NodeAddress"
	PropID                = "ID"
	PropName              = "Name"
	PropDisplayName       = "DisplayName"
	PropConference        = "Conference"
	PropNodeAddress       = "NodeAddress"
	PropParticipantsCount = "ParticipantsCount"
)

// 子实体控件名后缀。
const (
	ActionDisconnect         = "Disconnect"
	ActionExportParticipants = "ExportParticipants"
)
