package pexip

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// HistoryQuery 构造 history 接口按结束时间过滤的查询参数，区间为 [start, end)。
func HistoryQuery(start, end time.Time) url.Values {
	q := url.Values{}
	q.Set("end_time__gte", start.Format(TimeLayout))
	q.Set("end_time__lt", end.Format(TimeLayout))
	return q
}

// FetchConferenceHistory 拉取时间窗口内结束的历史会议。
func FetchConferenceHistory(ctx context.Context, client Client, start, end time.Time) ([]HistoricalConference, error) {
	coll, err := client.Fetch(ctx, PathConferenceHistory, HistoryQuery(start, end))
	if err != nil {
		return nil, err
	}
	out := make([]HistoricalConference, 0, coll.Len())
	for i, rec := range coll.Objects {
		conf, err := DecodeHistoricalConference(rec)
		if err != nil {
			return nil, fmt.Errorf("解析第 %d 条历史会议失败: %w", i, err)
		}
		out = append(out, conf)
	}
	return out, nil
}

// ParticipantsQuery 按会议名称过滤参会者。
func ParticipantsQuery(conference string) url.Values {
	q := url.Values{}
	q.Set("conference", conference)
	return q
}
