package dto

import (
	"testing"
	"time"
)

func TestParseDateTime_DateOnlyEndOfDay(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	got, err := ParseDateTime("2026-03-01", loc, true)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	want := time.Date(2026, 3, 1, 23, 59, 59, 0, loc)
	if !got.Equal(want) {
		t.Errorf("期望 %v，实际 %v", want, got)
	}
}

func TestParseDateTime_DateOnlyStartOfDay(t *testing.T) {
	got, err := ParseDateTime("2026-03-01", time.UTC, false)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if !got.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("期望当日零点，实际 %v", got)
	}
}

func TestParseDateTime_RFC3339(t *testing.T) {
	got, err := ParseDateTime("2026-03-01T10:00:00+07:00", time.UTC, true)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if !got.Equal(time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC)) {
		t.Errorf("时区换算错误: %v", got)
	}
}

func TestParseDateTime_LocalDateTime(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	got, err := ParseDateTime("2026-03-01T10:30", loc, false)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if !got.Equal(time.Date(2026, 3, 1, 10, 30, 0, 0, loc)) {
		t.Errorf("期望按业务时区解析，实际 %v", got)
	}
}

func TestParseDateTime_Invalid(t *testing.T) {
	for _, s := range []string{"", "yesterday", "2026-13-01", "01/03/2026"} {
		if _, err := ParseDateTime(s, time.UTC, false); err != ErrInvalidDateTime {
			t.Errorf("%q 期望 ErrInvalidDateTime，实际: %v", s, err)
		}
	}
}
