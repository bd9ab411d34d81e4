package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"pexipmon/internal/domain"
)

var (
	// ErrUnknownCommand 表示控件名无法识别。
	ErrUnknownCommand = errors.New("未知的控制命令")
	// ErrInvalidArgument 表示命令参数不合法。
	ErrInvalidArgument = errors.New("命令参数不合法")
)

// 全局控件名。
const (
	PropertyExportLicensing  = "Export#LicensingReport"
	PropertyExportHistorical = "Export#HistoricalReport"
	PropertyDaysBack         = "Export#DaysBack"
	PropertyExportAggregate  = "Export#TotalStatistics"
)

// Command 是一条已解析的控制命令。
type Command interface {
	// Property 返回对应的控件名。
	Property() string
	isCommand()
}

type DisconnectConference struct{ Name string }

type DisconnectParticipant struct{ Name string }

type ExportParticipants struct{ Conference string }

type ExportLicensing struct{}

type ExportHistorical struct{}

type ExportAggregate struct{}

type SetDaysBack struct{ Days int }

func (c DisconnectConference) Property() string {
	return domain.GroupKey(domain.KindConference, c.Name, domain.ActionDisconnect)
}

func (c DisconnectParticipant) Property() string {
	return domain.GroupKey(domain.KindParticipant, c.Name, domain.ActionDisconnect)
}

func (c ExportParticipants) Property() string {
	return domain.GroupKey(domain.KindConference, c.Conference, domain.ActionExportParticipants)
}

func (ExportLicensing) Property() string  { return PropertyExportLicensing }
func (ExportHistorical) Property() string { return PropertyExportHistorical }
func (ExportAggregate) Property() string  { return PropertyExportAggregate }
func (SetDaysBack) Property() string      { return PropertyDaysBack }

func (DisconnectConference) isCommand()  {}
func (DisconnectParticipant) isCommand() {}
func (ExportParticipants) isCommand()    {}
func (ExportLicensing) isCommand()       {}
func (ExportHistorical) isCommand()      {}
func (ExportAggregate) isCommand()       {}
func (SetDaysBack) isCommand()           {}

// Parse 把控件名和取值解析成命令。
func Parse(property, value string) (Command, error) {
	switch property {
	case PropertyExportLicensing:
		return ExportLicensing{}, nil
	case PropertyExportHistorical:
		return ExportHistorical{}, nil
	case PropertyExportAggregate:
		return ExportAggregate{}, nil
	case PropertyDaysBack:
		days, err := ParseDays(value)
		if err != nil {
			return nil, err
		}
		return SetDaysBack{Days: days}, nil
	}

	kind, name, action, ok := splitGroup(property)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, property)
	}
	switch {
	case kind == domain.KindConference && action == domain.ActionDisconnect:
		return DisconnectConference{Name: name}, nil
	case kind == domain.KindConference && action == domain.ActionExportParticipants:
		return ExportParticipants{Conference: name}, nil
	case kind == domain.KindParticipant && action == domain.ActionDisconnect:
		return DisconnectParticipant{Name: name}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, property)
}

// ParseDays 解析报表回溯天数，必须是非负整数。
func ParseDays(value string) (int, error) {
	days, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: 回溯天数 %q 不是整数", ErrInvalidArgument, value)
	}
	if days < 0 {
		return 0, fmt.Errorf("%w: 回溯天数不能为负数: %d", ErrInvalidArgument, days)
	}
	return days, nil
}

// splitGroup 拆分 "<Kind>:<Name>#<Action>"。
func splitGroup(property string) (kind, name, action string, ok bool) {
	colon := strings.Index(property, ":")
	hash := strings.LastIndex(property, "#")
	if colon <= 0 || hash <= colon+1 || hash == len(property)-1 {
		return "", "", "", false
	}
	return property[:colon], property[colon+1 : hash], property[hash+1:], true
}
