package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"pexipmon/internal/mail"
	"pexipmon/internal/pexip"
)

type HTTP struct {
	Listen string `yaml:"listen"`
}

type Log struct {
	Level string `yaml:"level"`
}

type Retry struct {
	Attempts       int `yaml:"attempts"`
	BackoffSeconds int `yaml:"backoff_seconds"`
}

type Pexip struct {
	BaseURL            string `yaml:"base_url"`
	Username           string `yaml:"username"`
	Password           string `yaml:"password"`
	PageSize           int    `yaml:"page_size"`
	TimeoutSeconds     int    `yaml:"timeout_seconds"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	Retry              Retry  `yaml:"retry"`
}

type Report struct {
	DaysBack           int    `yaml:"days_back"`
	DisplayConferences bool   `yaml:"display_conferences"`
	Cron               string `yaml:"cron"`
	TempDir            string `yaml:"temp_dir"`
}

type Sync struct {
	RefreshCron    string `yaml:"refresh_cron"`
	InitialRefresh bool   `yaml:"initial_refresh"`
}

type Mapping struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

type Neo4j struct {
	URI                  string `yaml:"uri"`
	Username             string `yaml:"username"`
	Password             string `yaml:"password"`
	Database             string `yaml:"database"`
	MaxConnectionPool    int    `yaml:"max_connections"`
	ConnectTimeoutSecond int    `yaml:"connect_timeout_second"`
	BatchSize            int    `yaml:"batch_size"`
}

// Enabled 判断是否启用拓扑写入。
func (n Neo4j) Enabled() bool {
	return strings.TrimSpace(n.URI) != ""
}

type Config struct {
	HTTP    HTTP        `yaml:"http"`
	Log     Log         `yaml:"log"`
	Pexip   Pexip       `yaml:"pexip"`
	SMTP    mail.Config `yaml:"smtp"`
	Report  Report      `yaml:"report"`
	Sync    Sync        `yaml:"sync"`
	Mapping Mapping     `yaml:"mapping"`
	Neo4j   Neo4j       `yaml:"neo4j"`
}

// LoadConfig 从文件加载配置，补齐默认值并校验。
func LoadConfig(path string) (Config, error) {
	cfg, err := ReadConfig(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ReadConfig 读取配置并补齐默认值，不做校验；path 为空时只返回默认值。
func ReadConfig(path string) (Config, error) {
	var cfg Config
	cfg.Report.DaysBack = 1
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("读取配置失败: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("解析配置失败: %w", err)
		}
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Listen == "" {
		c.HTTP.Listen = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Pexip.PageSize == 0 {
		c.Pexip.PageSize = pexip.DefaultPageSize
	}
	if c.Pexip.TimeoutSeconds == 0 {
		c.Pexip.TimeoutSeconds = 30
	}
	if c.Pexip.Retry.Attempts == 0 {
		c.Pexip.Retry.Attempts = 3
	}
	if c.Pexip.Retry.BackoffSeconds == 0 {
		c.Pexip.Retry.BackoffSeconds = 1
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 25
	}
	if c.Sync.RefreshCron == "" {
		c.Sync.RefreshCron = "@every 1m"
	}
	if c.Neo4j.BatchSize == 0 {
		c.Neo4j.BatchSize = 200
	}
}

// Validate 校验配置，任何网络或文件操作之前调用。
func (c Config) Validate() error {
	if strings.TrimSpace(c.Pexip.BaseURL) == "" {
		return fmt.Errorf("%w: pexip.base_url 不能为空", ErrInvalidArgument)
	}
	if c.Pexip.PageSize < 0 {
		return fmt.Errorf("%w: pexip.page_size 不能为负数", ErrInvalidArgument)
	}
	if c.Report.DaysBack < 0 {
		return fmt.Errorf("%w: report.days_back 不能为负数", ErrInvalidArgument)
	}
	return nil
}

// HTTPClientConfig 转换成 pexip 客户端配置。
func (c Config) HTTPClientConfig() pexip.HTTPConfig {
	return pexip.HTTPConfig{
		BaseURL:            c.Pexip.BaseURL,
		Username:           c.Pexip.Username,
		Password:           c.Pexip.Password,
		PageSize:           c.Pexip.PageSize,
		Timeout:            time.Duration(c.Pexip.TimeoutSeconds) * time.Second,
		InsecureSkipVerify: c.Pexip.InsecureSkipVerify,
		RetryAttempts:      c.Pexip.Retry.Attempts,
		RetryBackoff:       time.Duration(c.Pexip.Retry.BackoffSeconds) * time.Second,
	}
}
