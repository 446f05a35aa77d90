package service

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/gamerzord/latihan-magang-lms/internal/model"
)

// ── ICS 解析器 ──────────────────────────────────────────────
//
// 将 iCalendar (RFC 5545) 内容解析为个人日程：
//   - SUMMARY 与 DTSTART 必填，缺失则跳过
//   - DTSTART 为纯日期（VALUE=DATE）时视为全天日程
//   - 无 DTEND 时，全天日程持续一天，其余持续一小时
//   - 结束时间不晚于开始时间的事件跳过
//   - RRULE 不展开，仅导入首次发生
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize     = 5 * 1024 * 1024 // 5MB
	icsDefaultDuration = time.Hour
	icsImportedColor   = "blue"
	icsMaxTitleLength  = 255
	icsDateOnlyLayout  = "20060102"
	icsUTCLayout       = "20060102T150405Z"
	icsFloatingLayout  = "20060102T150405"
)

// ParseScheduleICS 解析 ICS 内容，返回可导入的日程与被跳过的事件数
func ParseScheduleICS(reader io.Reader, userID string, loc *time.Location) ([]model.ScheduleEvent, int, error) {
	cal, err := ics.ParseCalendar(io.LimitReader(reader, icsMaxFileSize))
	if err != nil {
		return nil, 0, fmt.Errorf("ICS 格式解析失败: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}

	var events []model.ScheduleEvent
	skipped := 0
	for _, comp := range cal.Events() {
		evt, ok := parseVEvent(comp, loc)
		if !ok {
			skipped++
			continue
		}
		evt.UserID = userID
		events = append(events, evt)
	}
	return events, skipped, nil
}

// parseVEvent 解析单个 VEVENT 组件
func parseVEvent(evt *ics.VEvent, loc *time.Location) (model.ScheduleEvent, bool) {
	summary := evt.GetProperty(ics.ComponentPropertySummary)
	if summary == nil || strings.TrimSpace(summary.Value) == "" {
		return model.ScheduleEvent{}, false
	}
	title := strings.TrimSpace(summary.Value)
	if len([]rune(title)) > icsMaxTitleLength {
		title = string([]rune(title)[:icsMaxTitleLength])
	}

	start, allDay, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart, loc)
	if err != nil {
		return model.ScheduleEvent{}, false
	}
	end, _, err := parseICSDateTime(evt, ics.ComponentPropertyDtEnd, loc)
	if err != nil {
		if allDay {
			end = start.Add(24 * time.Hour)
		} else {
			end = start.Add(icsDefaultDuration)
		}
	}
	if !end.After(start) {
		return model.ScheduleEvent{}, false
	}

	out := model.ScheduleEvent{
		Title:     title,
		Category:  model.CategoryPersonal,
		StartTime: start.UTC(),
		EndTime:   end.UTC(),
		AllDay:    allDay,
		Color:     icsImportedColor,
	}
	if desc := evt.GetProperty(ics.ComponentPropertyDescription); desc != nil && strings.TrimSpace(desc.Value) != "" {
		d := strings.TrimSpace(desc.Value)
		out.Description = &d
	}
	return out, true
}

// parseICSDateTime 从 VEVENT 中解析日期时间属性，第二个返回值表示是否为纯日期
func parseICSDateTime(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (time.Time, bool, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, false, fmt.Errorf("missing property %s", propName)
	}
	val := strings.TrimSpace(prop.Value)

	// 检查 TZID 参数
	tzLoc := loc
	for k, v := range prop.ICalParameters {
		if strings.ToUpper(k) == "TZID" && len(v) > 0 {
			if l, err := time.LoadLocation(v[0]); err == nil {
				tzLoc = l
			}
		}
	}

	if t, err := time.Parse(icsUTCLayout, val); err == nil {
		return t, false, nil
	}
	if t, err := time.ParseInLocation(icsFloatingLayout, val, tzLoc); err == nil {
		return t, false, nil
	}
	if t, err := time.ParseInLocation(icsDateOnlyLayout, val, loc); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf("无法解析日期: %s", val)
}
