package ioc

import (
	"context"

	"go.uber.org/zap"

	"pexipmon/internal/app"
	"pexipmon/internal/command"
	"pexipmon/internal/job"
)

// InitJobs 构建定时任务：周期刷新，以及配置了 smtp 和 report.cron 时的汇总报表。
func InitJobs(cfg app.Config, svc *app.Service, logger *zap.Logger) job.Group {
	jobs := job.Group{job.NewScheduler("refresh", cfg.Sync.RefreshCron, svc.Sync, logger)}
	if svc.MailEnabled() && cfg.Report.Cron != "" {
		jobs = append(jobs, job.NewScheduler("aggregate_report", cfg.Report.Cron, func(ctx context.Context) error {
			return svc.Execute(ctx, command.ExportAggregate{})
		}, logger))
	}
	return jobs
}
