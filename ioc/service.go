package ioc

import (
	"go.uber.org/zap"

	"pexipmon/internal/app"
	"pexipmon/internal/mail"
	"pexipmon/internal/mapping"
	"pexipmon/internal/pexip"
)

// InitAppService 构建轮询与报表服务。
func InitAppService(cfg app.Config, client pexip.Client, mapper mapping.Mapper, mailer mail.Mailer, sink app.TopologySink, logger *zap.Logger) (*app.Service, error) {
	return app.NewService(cfg, app.Deps{
		Client: client,
		Mapper: mapper,
		Mailer: mailer,
		Sink:   sink,
		Logger: logger,
	})
}
