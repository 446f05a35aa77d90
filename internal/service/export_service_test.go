package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/gamerzord/latihan-magang-lms/internal/model"
)

func setupTestExportService() (ExportService, *mockStore) {
	repo, st := newMockRepository()
	seedBasics(st)
	return NewExportService(repo, time.UTC, zap.NewNop()), st
}

// ── ExportGradebook 测试 ──

func TestExportService_ExportGradebook_Cells(t *testing.T) {
	svc, st := setupTestExportService()
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	seedAssignment(st, "asg-1", "A1", "course-1", due)
	seedAssignment(st, "asg-2", "A2", "course-1", due.Add(24*time.Hour))
	st.submissions["sub-1"] = &model.Submission{ID: "sub-1", AssignmentID: "asg-1", StudentID: "student-1", Status: model.SubmissionSubmitted, Grade: float64Ptr(90)}

	buf, filename, err := svc.ExportGradebook(context.Background(), "course-1", "teacher-1", model.RoleTeacher)
	if err != nil {
		t.Fatalf("ExportGradebook 失败: %v", err)
	}
	if filename != "gradebook_CS101.xlsx" {
		t.Errorf("文件名错误: %s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("打开 Excel 失败: %v", err)
	}
	defer f.Close()

	sheet := "成绩册"
	checks := map[string]string{
		"A2": "学生",
		"C2": "作业 A1 (A1)",
		"A3": "学生一",
		"B3": "student-1@test.com",
		"C3": "90",
		"D3": "未提交",
		"E3": "90",
	}
	for ref, want := range checks {
		got, err := f.GetCellValue(sheet, ref)
		if err != nil {
			t.Fatalf("读取 %s 失败: %v", ref, err)
		}
		if got != want {
			t.Errorf("%s 期望 %q，实际 %q", ref, want, got)
		}
	}
}

func TestExportService_ExportGradebook_OtherTeacher(t *testing.T) {
	svc, _ := setupTestExportService()

	if _, _, err := svc.ExportGradebook(context.Background(), "course-1", "teacher-2", model.RoleTeacher); !errors.Is(err, ErrNoPermission) {
		t.Errorf("期望 ErrNoPermission，实际: %v", err)
	}
}

func TestExportService_ExportGradebook_CourseMissing(t *testing.T) {
	svc, _ := setupTestExportService()

	if _, _, err := svc.ExportGradebook(context.Background(), "ghost", "admin-1", model.RoleAdmin); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("期望 ErrCourseNotFound，实际: %v", err)
	}
}

// ── ExportSchedule 测试 ──

func TestExportService_ExportSchedule_RoundTrip(t *testing.T) {
	svc, st := setupTestExportService()
	st.events["evt-1"] = &model.ScheduleEvent{
		ID: "evt-1", UserID: "student-1", Title: "考试", Category: model.CategoryExam, Color: "red",
		StartTime: time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 3, 10, 4, 0, 0, 0, time.UTC),
	}
	st.events["evt-2"] = &model.ScheduleEvent{
		ID: "evt-2", UserID: "student-1", Title: "假期", Category: model.CategoryPersonal, Color: "blue", AllDay: true,
		StartTime: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
	}
	st.events["evt-3"] = &model.ScheduleEvent{
		ID: "evt-3", UserID: "student-2", Title: "别人的", Category: model.CategoryOther, Color: "blue",
		StartTime: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 4, 1, 1, 0, 0, 0, time.UTC),
	}

	buf, filename, err := svc.ExportSchedule(context.Background(), "student-1")
	if err != nil {
		t.Fatalf("ExportSchedule 失败: %v", err)
	}
	if filename != "schedule.ics" {
		t.Errorf("文件名错误: %s", filename)
	}
	if !strings.Contains(buf.String(), "DTSTART;VALUE=DATE:20260401") {
		t.Error("全天事件应以 VALUE=DATE 导出")
	}

	cal, err := ics.ParseCalendar(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("导出内容无法解析: %v", err)
	}
	events := cal.Events()
	if len(events) != 2 {
		t.Fatalf("只应导出本人的 2 个事件，实际 %d", len(events))
	}
	if s := events[0].GetProperty(ics.ComponentPropertySummary); s == nil || s.Value != "考试" {
		t.Errorf("首个事件标题错误: %v", s)
	}
}

func TestExportService_ExportSchedule_ImportRoundTrip(t *testing.T) {
	svc, st := setupTestExportService()
	st.events["evt-1"] = &model.ScheduleEvent{
		ID: "evt-1", UserID: "student-1", Title: "组会", Category: model.CategoryMeeting, Color: "green",
		StartTime: time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 3, 10, 3, 30, 0, 0, time.UTC),
	}

	buf, _, err := svc.ExportSchedule(context.Background(), "student-1")
	if err != nil {
		t.Fatalf("ExportSchedule 失败: %v", err)
	}
	events, skipped, err := ParseScheduleICS(buf, "student-2", time.UTC)
	if err != nil {
		t.Fatalf("重新解析失败: %v", err)
	}
	if len(events) != 1 || skipped != 0 {
		t.Fatalf("期望 1 个事件，实际 %d / 跳过 %d", len(events), skipped)
	}
	if !events[0].StartTime.Equal(st.events["evt-1"].StartTime) || !events[0].EndTime.Equal(st.events["evt-1"].EndTime) {
		t.Errorf("往返后时间不一致: %v - %v", events[0].StartTime, events[0].EndTime)
	}
}
