package ioc

import (
	"pexipmon/internal/app"
	"pexipmon/internal/pexip"
)

// InitPexipClient 构建管理节点 API 客户端。
func InitPexipClient(cfg app.Config) (pexip.Client, error) {
	return pexip.NewHTTPClient(cfg.HTTPClientConfig())
}
