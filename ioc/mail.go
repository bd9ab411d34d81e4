package ioc

import (
	"go.uber.org/zap"

	"pexipmon/internal/app"
	"pexipmon/internal/mail"
)

// InitMailer 构建 SMTP 发送器，未配置 smtp 时返回 nil，导出命令会被拒绝。
func InitMailer(cfg app.Config, logger *zap.Logger) mail.Mailer {
	if !cfg.SMTP.Enabled() {
		logger.Info("smtp not configured, report export disabled")
		return nil
	}
	return mail.NewSMTPMailer(cfg.SMTP, logger)
}
