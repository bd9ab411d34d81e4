package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"pexipmon/internal/mail"
)

// Exporter 把报表写入临时目录后作为附件发送，结束后删除临时文件。
type Exporter struct {
	Mailer mail.Mailer
	// TempDir 为空时使用系统临时目录。
	TempDir string
	Logger  *zap.Logger
}

// Validate 检查邮件配置，调用方应在拉取数据之前调用。
func (e *Exporter) Validate() error {
	if e == nil || e.Mailer == nil {
		return fmt.Errorf("report exporter 未初始化")
	}
	return e.Mailer.Validate()
}

// Send 发送报表。收件人校验在写文件之前完成；无论成功与否都会尽力清理临时文件。
func (e *Exporter) Send(ctx context.Context, files []File) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("没有需要发送的报表")
	}
	logger := e.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	dir, err := os.MkdirTemp(e.TempDir, "pexip-reports-")
	if err != nil {
		return fmt.Errorf("创建报表临时目录失败: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			logger.Warn("remove report temp dir failed", zap.String("dir", dir), zap.Error(err))
		}
	}()

	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, filepath.Base(f.Name))
		if err := os.WriteFile(path, []byte(f.Body), 0o600); err != nil {
			return fmt.Errorf("写入报表 %s 失败: %w", f.Name, err)
		}
		paths = append(paths, path)
	}

	return e.Mailer.Send(ctx, mail.Message{
		Subject:     mail.DefaultSubject,
		Body:        mail.DefaultBody,
		Attachments: paths,
	})
}
