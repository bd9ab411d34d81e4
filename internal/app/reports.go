package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pexipmon/internal/aggregate"
	"pexipmon/internal/domain"
	"pexipmon/internal/mapping"
	"pexipmon/internal/metrics"
	"pexipmon/internal/pexip"
	"pexipmon/internal/report"
)

// 报表文件名。
const (
	ReportLicensing = "licensing_report"
	ReportAggregate = "avg_monthly"
)

// ReportFlow 生成并通过邮件发送各类报表。
type ReportFlow struct {
	Client     pexip.Client
	Mapper     mapping.Mapper
	Exporter   *report.Exporter
	Aggregator *aggregate.Aggregator
	Logger     *zap.Logger
	Now        func() time.Time
}

// Licensing 导出第一条 licensing 记录。
func (f *ReportFlow) Licensing(ctx context.Context) error {
	if err := f.ready(); err != nil {
		return err
	}
	coll, err := f.Client.Fetch(ctx, pexip.PathLicensing, nil)
	if err != nil {
		return fmt.Errorf("拉取 licensing 失败: %w", err)
	}
	if coll.Empty() {
		return fmt.Errorf("%w: licensing 数据为空，无法生成 licensing 报表", ErrEmptyData)
	}
	props, err := f.Mapper.Apply(coll.Objects[0], mapping.ProfileLicensingReport)
	if err != nil {
		return err
	}
	return f.send(ctx, ReportLicensing, report.RenderSingle(ReportLicensing, props))
}

// Historical 导出最近 daysBack 天内结束的会议和参会者。
func (f *ReportFlow) Historical(ctx context.Context, daysBack int) error {
	if daysBack < 0 {
		return fmt.Errorf("%w: 回溯天数不能为负数: %d", ErrInvalidArgument, daysBack)
	}
	if err := f.ready(); err != nil {
		return err
	}
	w := aggregate.Lookback(f.now(), daysBack)
	query := pexip.HistoryQuery(w.Start, w.End)

	confColl, err := f.Client.Fetch(ctx, pexip.PathConferenceHistory, query)
	if err != nil {
		return fmt.Errorf("拉取历史会议失败: %w", err)
	}
	partColl, err := f.Client.Fetch(ctx, pexip.PathParticipantHistory, query)
	if err != nil {
		return fmt.Errorf("拉取历史参会者失败: %w", err)
	}
	if confColl.Empty() && partColl.Empty() {
		return fmt.Errorf("%w: %s 至 %s 没有历史记录", ErrEmptyData, w.Start.Format(pexip.TimeLayout), w.End.Format(pexip.TimeLayout))
	}
	conferences, err := mapping.ApplyAll(f.Mapper, confColl, mapping.ProfileConferenceHistory)
	if err != nil {
		return err
	}
	participants, err := mapping.ApplyAll(f.Mapper, partColl, mapping.ProfileParticipantHistory)
	if err != nil {
		return err
	}

	from, to := w.Start.Format(pexip.TimeLayout), w.End.Format(pexip.TimeLayout)
	files := report.Render([]domain.ReportWrapper{
		{Name: report.SafeName(fmt.Sprintf("conferences_report_%s_%s", from, to)), Rows: rows(conferences)},
		{Name: report.SafeName(fmt.Sprintf("participants_report_%s_%s", from, to)), Rows: rows(participants)},
	})
	return f.send(ctx, "historical", files...)
}

// Aggregate 导出按日、本月、上月统计的使用情况。
func (f *ReportFlow) Aggregate(ctx context.Context) error {
	if err := f.ready(); err != nil {
		return err
	}
	if f.Aggregator == nil {
		return fmt.Errorf("aggregator 未注入")
	}
	data, err := f.Aggregator.Aggregate(ctx, aggregate.WindowsAt(f.now()))
	if err != nil {
		return err
	}
	return f.send(ctx, ReportAggregate, report.RenderSingle(ReportAggregate, data))
}

// Participants 导出某个会议当前的参会者。
func (f *ReportFlow) Participants(ctx context.Context, conference string) error {
	if err := f.ready(); err != nil {
		return err
	}
	coll, err := f.Client.Fetch(ctx, pexip.PathParticipantStatus, pexip.ParticipantsQuery(conference))
	if err != nil {
		return fmt.Errorf("拉取会议 %s 的参会者失败: %w", conference, err)
	}
	if coll.Empty() {
		return fmt.Errorf("%w: 会议 %s 没有参会者", ErrEmptyData, conference)
	}
	participants, err := mapping.ApplyAll(f.Mapper, coll, mapping.ProfileParticipant)
	if err != nil {
		return err
	}
	name := report.SafeName("participants_" + f.now().Format(pexip.TimeLayout))
	files := report.Render([]domain.ReportWrapper{{Name: name, Rows: rows(participants)}})
	return f.send(ctx, "participants", files...)
}

func (f *ReportFlow) ready() error {
	if f == nil || f.Client == nil || f.Mapper == nil {
		return fmt.Errorf("report flow 依赖未注入完整")
	}
	if f.Exporter == nil {
		return ErrMailDisabled
	}
	return f.Exporter.Validate()
}

func (f *ReportFlow) send(ctx context.Context, kind string, files ...report.File) error {
	if err := f.Exporter.Send(ctx, files); err != nil {
		return fmt.Errorf("发送 %s 报表失败: %w", kind, err)
	}
	metrics.ReportsSent.WithLabelValues(kind).Inc()
	if f.Logger != nil {
		f.Logger.Info("report sent", zap.String("report", kind), zap.Int("files", len(files)))
	}
	return nil
}

func (f *ReportFlow) now() time.Time {
	if f.Now == nil {
		return time.Now()
	}
	return f.Now()
}

func rows(items []domain.Properties) []map[string]string {
	out := make([]map[string]string, 0, len(items))
	for _, p := range items {
		out = append(out, map[string]string(p))
	}
	return out
}
