package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"pexipmon/internal/app"
	"pexipmon/internal/logging"
	"pexipmon/internal/mail"
	"pexipmon/internal/mapping"
	"pexipmon/internal/pexip"
)

const envPrefix = "PEXIPCTL"

// skipInit 中的命令不需要连接管理节点。
var skipInit = map[string]bool{"version": true, "help": true, "completion": true}

// cli 持有一次命令执行期间的配置和服务。
type cli struct {
	v   *viper.Viper
	svc *app.Service
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}
	root := &cobra.Command{
		Use:           "pexipctl",
		Short:         "对 Pexip 管理节点执行一次性刷新、导出和断开操作",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if skipInit[cmd.Name()] {
				return nil
			}
			return c.init()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if c.svc == nil {
				return nil
			}
			return c.svc.Close(cmd.Context())
		},
	}
	bindFlags(root.PersistentFlags(), c.v)

	root.AddCommand(
		newVersionCmd(),
		newRefreshCmd(c),
		newStatsCmd(c),
		newExportCmd(c),
		newDisconnectCmd(c),
		newDaysBackCmd(c),
	)
	return root
}

func bindFlags(fs *pflag.FlagSet, v *viper.Viper) {
	fs.StringP("config", "c", "configs/config.yaml", "配置文件路径，设为空字符串时只使用参数和环境变量")
	fs.String("base-url", "", "管理节点地址，覆盖配置文件中的 pexip.base_url")
	fs.String("username", "", "管理节点用户名")
	fs.String("password", "", "管理节点密码")
	fs.String("log-level", "", "日志级别")
	fs.Bool("insecure", false, "跳过 TLS 证书校验")
	fs.Bool("json", false, "以 JSON 输出结果")
	_ = v.BindPFlags(fs)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// loadConfig 读取配置文件，再用参数和 PEXIPCTL_* 环境变量覆盖。
func (c *cli) loadConfig() (app.Config, error) {
	cfg, err := app.ReadConfig(c.v.GetString("config"))
	if err != nil {
		return cfg, err
	}
	if s := c.v.GetString("base-url"); s != "" {
		cfg.Pexip.BaseURL = s
	}
	if s := c.v.GetString("username"); s != "" {
		cfg.Pexip.Username = s
	}
	if s := c.v.GetString("password"); s != "" {
		cfg.Pexip.Password = s
	}
	if s := c.v.GetString("log-level"); s != "" {
		cfg.Log.Level = s
	}
	if c.v.GetBool("insecure") {
		cfg.Pexip.InsecureSkipVerify = true
	}
	// 命令行只做一次性操作，不把会议挂到节点下。
	cfg.Report.DisplayConferences = false
	return cfg, cfg.Validate()
}

func (c *cli) init() error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		return err
	}
	client, err := pexip.NewHTTPClient(cfg.HTTPClientConfig())
	if err != nil {
		return err
	}
	loader, err := mapping.NewLoader(cfg.Mapping.Path, logger)
	if err != nil {
		return err
	}
	var mailer mail.Mailer
	if cfg.SMTP.Enabled() {
		mailer = mail.NewSMTPMailer(cfg.SMTP, logger)
	}
	svc, err := app.NewService(cfg, app.Deps{
		Client: client,
		Mapper: loader.Mapper(),
		Mailer: mailer,
		Logger: logger.With(zap.String("component", "pexipctl")),
	})
	if err != nil {
		return err
	}
	c.svc = svc
	return nil
}

// warm 刷新一次名称缓存，按名称执行的命令需要先调用。
func (c *cli) warm(ctx context.Context) error {
	if _, err := c.svc.RefreshNow(ctx); err != nil {
		return fmt.Errorf("刷新缓存失败: %w", err)
	}
	return nil
}

func (c *cli) print(w io.Writer, v any, text func(io.Writer) error) error {
	if c.v.GetBool("json") {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return text(w)
}
