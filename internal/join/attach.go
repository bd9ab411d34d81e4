package join

import (
	"strconv"

	"pexipmon/internal/domain"
)

// AttachOptions 控制挂载会议时附带的控件。
type AttachOptions struct {
	// ExportParticipants 为 true 时为每个会议增加导出参会者按钮（需要邮件配置）。
	ExportParticipants bool
}

// NodeEntities 把合并后的节点属性转成实体，id 与名称取自节点状态。
func NodeEntities(nodes []domain.Properties) []domain.Entity {
	out := make([]domain.Entity, 0, len(nodes))
	for _, props := range nodes {
		out = append(out, domain.Entity{
			ID:         props[domain.PropNodeID],
			Name:       props[domain.PropNodeName],
			Properties: props.Clone(),
		})
	}
	return out
}

// AttachConferences 把会议挂到所属节点下：会议 NodeAddress 等于节点 Configuration#NodeAddress。
// 会议属性以 "Conference:<Name>#" 为前缀写入节点，并补充 ParticipantsCount 和控件。
func AttachConferences(nodes []domain.Entity, conferences, participants []domain.Properties, opts AttachOptions) []domain.Entity {
	counts := make(map[string]int, len(conferences))
	for _, p := range participants {
		if name, ok := p[domain.PropConference]; ok {
			counts[name]++
		}
	}

	out := make([]domain.Entity, 0, len(nodes))
	for _, node := range nodes {
		props := node.Properties.Clone()
		controls := append([]domain.Control(nil), node.Controls...)
		address, hasAddress := props[domain.PropConfigAddress]
		for _, conf := range conferences {
			if !hasAddress {
				break
			}
			if nodeAddr, ok := conf[domain.PropNodeAddress]; !ok || nodeAddr != address {
				continue
			}
			name := conf[domain.PropName]
			for k, v := range conf {
				props[domain.GroupKey(domain.KindConference, name, k)] = v
			}
			props[domain.GroupKey(domain.KindConference, name, domain.PropParticipantsCount)] = strconv.Itoa(counts[name])

			disconnect := domain.GroupKey(domain.KindConference, name, domain.ActionDisconnect)
			props[disconnect] = ""
			controls = append(controls, domain.Control{Name: disconnect, Type: domain.ControlButton, Label: "Disconnect"})
			if opts.ExportParticipants {
				export := domain.GroupKey(domain.KindConference, name, domain.ActionExportParticipants)
				props[export] = ""
				controls = append(controls, domain.Control{Name: export, Type: domain.ControlButton, Label: "Export"})
			}
		}
		node.Properties = props
		node.Controls = controls
		out = append(out, node)
	}
	return out
}
