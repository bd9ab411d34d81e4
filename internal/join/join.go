package join

import (
	"fmt"

	"pexipmon/internal/domain"
	"pexipmon/internal/mapping"
	"pexipmon/internal/pexip"
)

// Merge 把 src 的属性写入 dst，同名 key 以 src 为准。dst 为 nil 时新建。
func Merge(dst, src domain.Properties) domain.Properties {
	if dst == nil {
		dst = make(domain.Properties, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// Spec 描述一次主从集合关联。
type Spec struct {
	PrimaryProfile   mapping.Profile
	SecondaryProfile mapping.Profile
	// MatchField 是主记录映射后的属性名。
	MatchField string
	// IdentityField 是从记录原始字段名，取值与 MatchField 做精确比较。
	IdentityField string
}

type keyed struct {
	key   string
	ok    bool
	props domain.Properties
}

// Join 按 Spec 关联两个集合。每条主记录合并所有匹配的从记录（后者覆盖前者），
// 没有匹配的主记录原样输出。
func Join(m mapping.Mapper, primary, secondary pexip.Collection, rule Spec) ([]domain.Properties, error) {
	if m == nil {
		return nil, fmt.Errorf("未提供 mapper")
	}
	if rule.MatchField == "" || rule.IdentityField == "" {
		return nil, fmt.Errorf("关联字段不能为空")
	}

	others := make([]keyed, 0, secondary.Len())
	for i, rec := range secondary.Objects {
		props, err := m.Apply(rec, rule.SecondaryProfile)
		if err != nil {
			return nil, fmt.Errorf("映射第 %d 条 %s 记录失败: %w", i, rule.SecondaryProfile, err)
		}
		key, ok := rec.Text(rule.IdentityField)
		others = append(others, keyed{key: key, ok: ok, props: props})
	}

	out := make([]domain.Properties, 0, primary.Len())
	for i, rec := range primary.Objects {
		props, err := m.Apply(rec, rule.PrimaryProfile)
		if err != nil {
			return nil, fmt.Errorf("映射第 %d 条 %s 记录失败: %w", i, rule.PrimaryProfile, err)
		}
		mergeMatches(props, rule.MatchField, others)
		out = append(out, props)
	}
	return out, nil
}

// MergeOn 按属性精确相等关联两组已映射的属性，语义同 Join。
func MergeOn(primary, secondary []domain.Properties, primaryField, secondaryField string) []domain.Properties {
	others := make([]keyed, 0, len(secondary))
	for _, props := range secondary {
		key, ok := props[secondaryField]
		others = append(others, keyed{key: key, ok: ok, props: props})
	}
	out := make([]domain.Properties, 0, len(primary))
	for _, props := range primary {
		merged := props.Clone()
		mergeMatches(merged, primaryField, others)
		out = append(out, merged)
	}
	return out
}

// MergeNodeConfig 把节点配置并入节点状态，按 Status#Name == Configuration#Name 关联。
func MergeNodeConfig(nodes, configs []domain.Properties) []domain.Properties {
	return MergeOn(nodes, configs, domain.PropNodeName, domain.PropConfigName)
}

func mergeMatches(props domain.Properties, field string, others []keyed) {
	value, ok := props[field]
	if !ok {
		return
	}
	for _, other := range others {
		if other.ok && other.key == value {
			Merge(props, other.props)
		}
	}
}
