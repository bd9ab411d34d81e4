package app

import (
	"errors"

	"pexipmon/internal/cache"
	"pexipmon/internal/command"
	"pexipmon/internal/mail"
)

var (
	// ErrUnknownEntity 命令引用的名称不在当前缓存中。
	ErrUnknownEntity = cache.ErrUnknownEntity
	// ErrEmptyData 显式导出时依赖的数据为空。
	ErrEmptyData = errors.New("没有可导出的数据")
	// ErrInvalidArgument 参数或配置不合法。
	ErrInvalidArgument = command.ErrInvalidArgument
	// ErrNoRecipients 未配置邮件收件人。
	ErrNoRecipients = mail.ErrNoRecipients
	// ErrUnknownCommand 无法识别的控件名。
	ErrUnknownCommand = command.ErrUnknownCommand
	// ErrMailDisabled 未配置 SMTP 时调用导出。
	ErrMailDisabled = errors.New("未配置 smtp，无法发送报表")
)
