package aggregate

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"pexipmon/internal/pexip"
)

// 统计结果的固定 key。
const (
	KeyConferencesDaily             = "ConferencesDaily"
	KeyConferencesDurationDaily     = "ConferencesDurationDaily"
	KeyParticipantsSumDaily         = "ParticipantsSumDaily"
	KeyAvgDurationDaily             = "AvgDurationDaily"
	KeyAvgParticipantsDaily         = "AvgParticipantsDaily"
	KeyConferencesMonthly           = "ConferencesMonthly"
	KeyConferencesPreviousMonth     = "ConferencesPreviousMonth"
	KeyConferencesMonthlyDiff       = "ConferencesMonthlyDiff"
	KeyDurationMonthly              = "DurationMonthly"
	KeyDurationPreviousMonth        = "DurationPreviousMonth"
	KeyDurationMonthlyDiff          = "DurationMonthlyDiff"
	KeyParticipantsMonthly          = "ParticipantsMonthly"
	KeyParticipantsPreviousMonth    = "ParticipantsPreviousMonth"
	KeyParticipantsMonthlyDiff      = "ParticipantsMonthlyDiff"
	KeyDurationAvgMonthly           = "DurationAvgMonthly"
	KeyDurationAvgPreviousMonth     = "DurationAvgPreviousMonth"
	KeyDurationAvgMonthlyDiff       = "DurationAvgMonthlyDiff"
	KeyParticipantsAvgMonthly       = "ParticipantsAvgMonthly"
	KeyParticipantsAvgPreviousMonth = "ParticipantsAvgPreviousMonth"
	KeyParticipantsAvgMonthlyDiff   = "ParticipantsAvgMonthlyDiff"
)

// Keys 按输出顺序列出全部统计 key。
var Keys = []string{
	KeyConferencesDaily,
	KeyConferencesDurationDaily,
	KeyParticipantsSumDaily,
	KeyAvgDurationDaily,
	KeyAvgParticipantsDaily,
	KeyConferencesMonthly,
	KeyConferencesPreviousMonth,
	KeyConferencesMonthlyDiff,
	KeyDurationMonthly,
	KeyDurationPreviousMonth,
	KeyDurationMonthlyDiff,
	KeyParticipantsMonthly,
	KeyParticipantsPreviousMonth,
	KeyParticipantsMonthlyDiff,
	KeyDurationAvgMonthly,
	KeyDurationAvgPreviousMonth,
	KeyDurationAvgMonthlyDiff,
	KeyParticipantsAvgMonthly,
	KeyParticipantsAvgPreviousMonth,
	KeyParticipantsAvgMonthlyDiff,
}

// SafeDivision 在任一操作数为 0 时返回 0，否则做截断整除。
func SafeDivision(total, div int) int {
	if div == 0 || total == 0 {
		return 0
	}
	return total / div
}

// Totals 是单个窗口的汇总。
type Totals struct {
	Conferences  int
	Duration     int
	Participants int
}

// AvgDuration 平均会议时长。
func (t Totals) AvgDuration() int {
	return SafeDivision(t.Duration, t.Conferences)
}

// AvgParticipants 平均参会人数。
func (t Totals) AvgParticipants() int {
	return SafeDivision(t.Participants, t.Conferences)
}

// Sum 汇总一组历史会议。
func Sum(conferences []pexip.HistoricalConference) Totals {
	t := Totals{Conferences: len(conferences)}
	for _, c := range conferences {
		t.Duration += c.Duration
		t.Participants += c.ParticipantCount
	}
	return t
}

// HistorySource 拉取指定窗口内结束的历史会议。
type HistorySource interface {
	ConferencesBetween(ctx context.Context, start, end time.Time) ([]pexip.HistoricalConference, error)
}

// ClientSource 用 pexip.Client 实现 HistorySource。
type ClientSource struct {
	Client pexip.Client
}

func (s ClientSource) ConferencesBetween(ctx context.Context, start, end time.Time) ([]pexip.HistoricalConference, error) {
	return pexip.FetchConferenceHistory(ctx, s.Client, start, end)
}

// Aggregator 依次统计三个窗口并输出固定 key 的结果。
type Aggregator struct {
	Source HistorySource
}

// Aggregate 拉取三个窗口的历史会议并计算计数、总和、平均值和环比差值。
func (a *Aggregator) Aggregate(ctx context.Context, w Windows) (map[string]string, error) {
	if a == nil || a.Source == nil {
		return nil, fmt.Errorf("aggregator 未初始化")
	}
	daily, err := a.totals(ctx, w.Daily)
	if err != nil {
		return nil, fmt.Errorf("统计当天会议失败: %w", err)
	}
	monthly, err := a.totals(ctx, w.Monthly)
	if err != nil {
		return nil, fmt.Errorf("统计本月会议失败: %w", err)
	}
	previous, err := a.totals(ctx, w.PreviousMonth)
	if err != nil {
		return nil, fmt.Errorf("统计上月会议失败: %w", err)
	}
	return Build(daily, monthly, previous), nil
}

func (a *Aggregator) totals(ctx context.Context, w Window) (Totals, error) {
	confs, err := a.Source.ConferencesBetween(ctx, w.Start, w.End)
	if err != nil {
		return Totals{}, err
	}
	return Sum(confs), nil
}

// Build 由三个窗口的汇总生成统计结果，所有 key 都会输出。
func Build(daily, monthly, previous Totals) map[string]string {
	values := map[string]int{
		KeyConferencesDaily:             daily.Conferences,
		KeyConferencesDurationDaily:     daily.Duration,
		KeyParticipantsSumDaily:         daily.Participants,
		KeyAvgDurationDaily:             daily.AvgDuration(),
		KeyAvgParticipantsDaily:         daily.AvgParticipants(),
		KeyConferencesMonthly:           monthly.Conferences,
		KeyConferencesPreviousMonth:     previous.Conferences,
		KeyConferencesMonthlyDiff:       monthly.Conferences - previous.Conferences,
		KeyDurationMonthly:              monthly.Duration,
		KeyDurationPreviousMonth:        previous.Duration,
		KeyDurationMonthlyDiff:          monthly.Duration - previous.Duration,
		KeyParticipantsMonthly:          monthly.Participants,
		KeyParticipantsPreviousMonth:    previous.Participants,
		KeyParticipantsMonthlyDiff:      monthly.Participants - previous.Participants,
		KeyDurationAvgMonthly:           monthly.AvgDuration(),
		KeyDurationAvgPreviousMonth:     previous.AvgDuration(),
		KeyDurationAvgMonthlyDiff:       monthly.AvgDuration() - previous.AvgDuration(),
		KeyParticipantsAvgMonthly:       monthly.AvgParticipants(),
		KeyParticipantsAvgPreviousMonth: previous.AvgParticipants(),
		KeyParticipantsAvgMonthlyDiff:   monthly.AvgParticipants() - previous.AvgParticipants(),
	}
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = strconv.Itoa(v)
	}
	return out
}
