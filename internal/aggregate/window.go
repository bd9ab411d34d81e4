package aggregate

import "time"

// Window 是半开区间 [Start, End)。
type Window struct {
	Start time.Time
	End   time.Time
}

// Windows 是一次统计使用的三个窗口。
type Windows struct {
	Daily         Window
	Monthly       Window
	PreviousMonth Window
}

// WindowsAt 根据当前时间计算窗口：当天至今、本月至今、上一个完整月。
func WindowsAt(now time.Time) Windows {
	loc := now.Location()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	return Windows{
		Daily:         Window{Start: dayStart, End: now},
		Monthly:       Window{Start: monthStart, End: now},
		PreviousMonth: Window{Start: PreviousMonthStart(now), End: monthStart},
	}
}

// PreviousMonthStart 返回上个月 1 号零点；一月时为上一年 12 月 1 日。
func PreviousMonthStart(now time.Time) time.Time {
	loc := now.Location()
	if now.Month() == time.January {
		return time.Date(now.Year()-1, time.December, 1, 0, 0, 0, 0, loc)
	}
	return time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, loc)
}

// Lookback 返回报表使用的 [now-days, now) 窗口。
func Lookback(now time.Time, days int) Window {
	return Window{Start: now.AddDate(0, 0, -days), End: now}
}
