package mapping

import (
	_ "embed"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"pexipmon/internal/domain"
	"pexipmon/internal/pexip"
)

// Profile 是映射规则集合的名称。
type Profile string

const (
	ProfileNodeStatus         Profile = "NodeStatus"
	ProfileNodeConfig         Profile = "ConferencingNodesConfig"
	ProfileLicensing          Profile = "NodeLicensing"
	ProfileLicensingReport    Profile = "NodeLicensingReport"
	ProfileConferenceStatus   Profile = "ConferenceStatus"
	ProfileConferenceShard    Profile = "ConferenceShard"
	ProfileParticipant        Profile = "Participant"
	ProfileConferenceHistory  Profile = "ConferenceHistoricalReportStats"
	ProfileParticipantHistory Profile = "ParticipantHistoricalReportStats"
)

// KnownProfiles 列出全部合法的 profile。
var KnownProfiles = []Profile{
	ProfileNodeStatus,
	ProfileNodeConfig,
	ProfileLicensing,
	ProfileLicensingReport,
	ProfileConferenceStatus,
	ProfileConferenceShard,
	ProfileParticipant,
	ProfileConferenceHistory,
	ProfileParticipantHistory,
}

//go:embed model-mapping.yml
var defaultDocument []byte

// Mapper 把一条原始记录按 profile 转成扁平属性。
type Mapper interface {
	Apply(record pexip.Record, profile Profile) (domain.Properties, error)
}

// Rules 是一个 profile 下的属性名 -> 字段路径。
type Rules map[string]string

// Profiles 是完整的映射文档。
type Profiles map[Profile]Rules

type document struct {
	Profiles map[string]map[string]string `yaml:"profiles"`
}

// Parse 解析 YAML 映射文档，未知 profile 或空路径直接报错。
func Parse(data []byte) (Profiles, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("解析映射文档失败: %w", err)
	}
	known := make(map[Profile]bool, len(KnownProfiles))
	for _, p := range KnownProfiles {
		known[p] = true
	}
	out := make(Profiles, len(doc.Profiles))
	for name, rules := range doc.Profiles {
		profile := Profile(name)
		if !known[profile] {
			return nil, fmt.Errorf("未知的映射 profile: %s", name)
		}
		r := make(Rules, len(rules))
		for prop, path := range rules {
			if strings.TrimSpace(path) == "" {
				return nil, fmt.Errorf("profile %s 属性 %s 缺少字段路径", name, prop)
			}
			r[prop] = path
		}
		out[profile] = r
	}
	return out, nil
}

// Default 返回内置的映射文档。
func Default() Profiles {
	p, err := Parse(defaultDocument)
	if err != nil {
		panic(fmt.Errorf("内置映射文档无效: %w", err))
	}
	return p
}

// YAMLMapper 基于 Profiles 的 Mapper 实现，支持整体替换规则。
type YAMLMapper struct {
	profiles atomic.Pointer[Profiles]
}

// NewYAMLMapper 创建 Mapper。
func NewYAMLMapper(p Profiles) *YAMLMapper {
	m := &YAMLMapper{}
	m.Swap(p)
	return m
}

// Swap 原子替换映射规则。
func (m *YAMLMapper) Swap(p Profiles) {
	m.profiles.Store(&p)
}

// Apply 实现 Mapper。缺失或为 null 的字段不输出。
func (m *YAMLMapper) Apply(record pexip.Record, profile Profile) (domain.Properties, error) {
	current := m.profiles.Load()
	if current == nil {
		return nil, fmt.Errorf("映射规则未加载")
	}
	rules, ok := (*current)[profile]
	if !ok {
		return nil, fmt.Errorf("未知的映射 profile: %s", profile)
	}
	props := make(domain.Properties, len(rules))
	for prop, path := range rules {
		if v, ok := lookup(record, path); ok {
			props[prop] = pexip.Stringify(v)
		}
	}
	return props, nil
}

// ApplyAll 对集合中每条记录执行 Apply。
func ApplyAll(m Mapper, coll pexip.Collection, profile Profile) ([]domain.Properties, error) {
	out := make([]domain.Properties, 0, coll.Len())
	for _, rec := range coll.Objects {
		props, err := m.Apply(rec, profile)
		if err != nil {
			return nil, err
		}
		out = append(out, props)
	}
	return out, nil
}

// Names 返回 profile 中的属性名，已排序。
func (p Profiles) Names(profile Profile) []string {
	rules := p[profile]
	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookup(record pexip.Record, path string) (any, bool) {
	var current any = map[string]any(record)
	for _, seg := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			current = v
		case pexip.Record:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			current = v
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	if current == nil {
		return nil, false
	}
	return current, true
}
