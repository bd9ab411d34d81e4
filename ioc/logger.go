package ioc

import (
	"go.uber.org/zap"

	"pexipmon/internal/app"
	"pexipmon/internal/logging"
)

// InitLogger 构建全局 logger。
func InitLogger(cfg app.Config) (*zap.Logger, error) {
	return logging.New(cfg.Log.Level)
}
