package ioc

import (
	"go.uber.org/zap"

	"pexipmon/internal/app"
	"pexipmon/internal/mapping"
)

// InitMappingLoader 加载属性映射规则，未配置路径时使用内置规则。
func InitMappingLoader(cfg app.Config, logger *zap.Logger) (*mapping.Loader, error) {
	return mapping.NewLoader(cfg.Mapping.Path, logger)
}

// InitMapper 返回可热更新的 Mapper。
func InitMapper(loader *mapping.Loader) mapping.Mapper {
	return loader.Mapper()
}
