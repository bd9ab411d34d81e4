//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"pexipmon/ioc"
	"pexipmon/pkg/server"
)

func InitApp(ctx context.Context) (*server.HTTPServer, func(), error) {
	panic(wire.Build(
		ioc.InitConfig,
		ioc.InitLogger,
		ioc.InitPexipClient,
		ioc.InitMappingLoader,
		ioc.InitMapper,
		ioc.InitMailer,
		ioc.InitTopologySink,
		ioc.InitAppService,
		ioc.InitMetrics,
		ioc.InitDeviceHandler,
		ioc.InitGinEngine,
		ioc.InitJobs,
		server.NewHTTPServer,
	))
}
