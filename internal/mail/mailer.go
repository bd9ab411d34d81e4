package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// ErrNoRecipients 表示没有配置收件人。
var ErrNoRecipients = errors.New("未配置邮件收件人")

const (
	DefaultSubject = "Reports"
	DefaultBody    = "Please see reports in attachments"
)

// Config 是 SMTP 发送配置。
type Config struct {
	Host       string   `yaml:"host"`
	Port       int      `yaml:"port"`
	Username   string   `yaml:"username"`
	Password   string   `yaml:"password"`
	Sender     string   `yaml:"sender"`
	Recipients []string `yaml:"recipients"`
}

// Enabled 判断是否提供了发送邮件所需的最少配置。
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Host) != "" && strings.TrimSpace(c.Sender) != ""
}

// Message 是一封带附件的邮件，附件为本地文件路径。
type Message struct {
	Subject     string
	Body        string
	Attachments []string
}

// Mailer 发送报表邮件。
type Mailer interface {
	// Validate 在任何 I/O 之前检查配置。
	Validate() error
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer 基于 gomail 的 Mailer 实现。
type SMTPMailer struct {
	cfg    Config
	dialer *gomail.Dialer
	logger *zap.Logger
}

// NewSMTPMailer 创建 SMTPMailer。
func NewSMTPMailer(cfg Config, logger *zap.Logger) *SMTPMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	port := cfg.Port
	if port <= 0 {
		port = 25
	}
	return &SMTPMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, port, cfg.Username, cfg.Password),
		logger: logger,
	}
}

func (m *SMTPMailer) Validate() error {
	if !m.cfg.Enabled() {
		return fmt.Errorf("smtp host 或 sender 未配置")
	}
	if len(recipients(m.cfg.Recipients)) == 0 {
		return ErrNoRecipients
	}
	return nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	to := recipients(m.cfg.Recipients)

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.cfg.Sender)
	gm.SetHeader("To", to...)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Body)
	for _, path := range msg.Attachments {
		gm.Attach(path)
	}

	if err := m.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}
	m.logger.Info("report mail sent",
		zap.Strings("to", to),
		zap.Int("attachments", len(msg.Attachments)))
	return nil
}

func recipients(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
