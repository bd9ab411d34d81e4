package ioc

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"pexipmon/internal/app"
	"pexipmon/internal/router"
)

// InitDeviceHandler 构建设备 HTTP 处理器。
func InitDeviceHandler(svc *app.Service, logger *zap.Logger) *router.DeviceHandler {
	return router.NewDeviceHandler(svc, logger)
}

// InitGinEngine 构建 gin 引擎。
func InitGinEngine(handler *router.DeviceHandler, gatherer prometheus.Gatherer, logger *zap.Logger) *gin.Engine {
	return router.NewEngine(handler, gatherer, logger)
}
