package dto

import (
	"errors"
	"time"
)

// ErrInvalidDateTime 无法识别的日期时间格式
var ErrInvalidDateTime = errors.New("invalid date/time")

const dateOnly = "2006-01-02"

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseDateTime 解析 RFC3339 / 本地日期时间 / 仅日期
// 仅给出日期时，endOfDay 为 true 取 loc 时区当日 23:59:59，否则取当日 00:00
// 不带时区的日期时间按 loc 解析
func ParseDateTime(s string, loc *time.Location, endOfDay bool) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if d, err := time.ParseInLocation(dateOnly, s, loc); err == nil {
		if endOfDay {
			return d.Add(24*time.Hour - time.Second), nil
		}
		return d, nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDateTime
}
