package buildinfo

import (
	"fmt"
	"strings"
	"time"

	version "github.com/hashicorp/go-version"
)

// 通过 -ldflags "-X pexipmon/internal/buildinfo.rawVersion=..." 注入。
var (
	rawVersion = "0.0.0-dev"
	buildDate  = ""
)

// Version 返回规范化后的版本号，无法解析时原样返回。
func Version() string {
	v, err := version.NewVersion(strings.TrimPrefix(strings.TrimSpace(rawVersion), "v"))
	if err != nil {
		return rawVersion
	}
	return v.String()
}

// BuildDate 返回构建时间，未注入时为空。
func BuildDate() string {
	return buildDate
}

// AtLeast 判断当前版本是否不低于 min。
func AtLeast(min string) (bool, error) {
	cur, err := version.NewVersion(Version())
	if err != nil {
		return false, fmt.Errorf("解析当前版本失败: %w", err)
	}
	want, err := version.NewVersion(min)
	if err != nil {
		return false, fmt.Errorf("解析版本 %s 失败: %w", min, err)
	}
	return cur.GreaterThanOrEqual(want), nil
}

// FormatUptime 把运行时长格式化成 "1 day(s) 2 hour(s) 3 minute(s) 4 second(s)"，为 0 的段省略。
func FormatUptime(d time.Duration) string {
	total := int64(d / time.Second)
	if total < 0 {
		total = 0
	}
	days := total / 86400
	hours := total % 86400 / 3600
	minutes := total % 3600 / 60
	seconds := total % 60

	parts := make([]string, 0, 4)
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%d day(s)", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d hour(s)", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%d minute(s)", minutes))
	}
	if seconds > 0 {
		parts = append(parts, fmt.Sprintf("%d second(s)", seconds))
	}
	return strings.Join(parts, " ")
}
