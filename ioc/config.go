package ioc

import (
	"os"
	"strings"

	"pexipmon/internal/app"
)

const (
	defaultConfigPath = "configs/config.yaml"
	configPathEnv     = "PEXIPMON_CONFIG"
)

// InitConfig 读取应用配置，环境变量 PEXIPMON_CONFIG 可以覆盖默认路径。
func InitConfig() (app.Config, error) {
	path := defaultConfigPath
	if v := strings.TrimSpace(os.Getenv(configPathEnv)); v != "" {
		path = v
	}
	return app.LoadConfig(path)
}
