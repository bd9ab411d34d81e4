package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pexipmon/internal/buildinfo"
	"pexipmon/internal/command"
	"pexipmon/internal/domain"
	"pexipmon/internal/mapping"
	"pexipmon/internal/pexip"
)

// dynamicSuffixes 是按时间变化的 licensing 计数，其余 licensing 字段作为静态统计。
var dynamicSuffixes = []string{
	"AudioCount", "AudioTotal",
	"GoogleMeetCount", "GoogleMeetTotal",
	"OneTouchJoinCount", "OneTouchJoinTotal",
	"PortCount", "PortTotal",
	"SchedulingCount", "SchedulingTotal",
	"SystemCount", "SystemTotal",
	"TeamsCount", "TeamsTotal",
	"VMRCount", "VMRTotal",
}

// IsDynamic 判断属性是否属于动态统计。
func IsDynamic(name string) bool {
	for _, suffix := range dynamicSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// Statistics 是管理节点自身的统计和控件。
type Statistics struct {
	Statistics        map[string]string `json:"statistics"`
	DynamicStatistics map[string]string `json:"dynamic_statistics,omitempty"`
	Controls          []domain.Control  `json:"controls,omitempty"`
}

// Statistics 汇总版本、运行时长、licensing 统计以及可用的导出控件。
// licensing 为空时跳过该部分。
func (s *Service) Statistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{
		Statistics: map[string]string{
			"AdapterVersion":   buildinfo.Version(),
			"AdapterBuildDate": buildinfo.BuildDate(),
			"AdapterUptime":    buildinfo.FormatUptime(time.Since(s.startedAt)),
		},
	}

	if s.MailEnabled() {
		for _, p := range []string{
			command.PropertyExportLicensing,
			command.PropertyExportHistorical,
			command.PropertyDaysBack,
			command.PropertyExportAggregate,
		} {
			stats.Statistics[p] = ""
		}
		stats.Controls = []domain.Control{
			{Name: command.PropertyDaysBack, Type: domain.ControlNumeric, Value: strconv.Itoa(s.Settings().DaysBack)},
			{Name: command.PropertyExportAggregate, Type: domain.ControlButton, Label: "Export"},
			{Name: command.PropertyExportHistorical, Type: domain.ControlButton, Label: "Export"},
			{Name: command.PropertyExportLicensing, Type: domain.ControlButton, Label: "Export"},
		}
	}

	coll, err := s.client.Fetch(ctx, pexip.PathLicensing, nil)
	if err != nil {
		return nil, fmt.Errorf("拉取 licensing 失败: %w", err)
	}
	if coll.Empty() {
		return stats, nil
	}
	props, err := s.Refresh.Mapper.Apply(coll.Objects[0], mapping.ProfileLicensing)
	if err != nil {
		return nil, err
	}
	stats.DynamicStatistics = make(map[string]string)
	for k, v := range props {
		if IsDynamic(k) {
			stats.DynamicStatistics[k] = v
		} else {
			stats.Statistics[k] = v
		}
	}
	return stats, nil
}
