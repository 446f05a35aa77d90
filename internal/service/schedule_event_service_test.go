package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/gamerzord/latihan-magang-lms/internal/dto"
	"github.com/gamerzord/latihan-magang-lms/internal/model"
)

func setupTestScheduleService() (ScheduleEventService, *mockStore) {
	repo, st := newMockRepository()
	seedBasics(st)
	return NewScheduleEventService(repo, time.UTC, zap.NewNop()), st
}

func eventReq(start, end string) *dto.ScheduleEventRequest {
	return &dto.ScheduleEventRequest{
		Title:    "复习",
		Category: model.CategoryStudy,
		Start:    start,
		End:      end,
		Color:    "green",
	}
}

func TestScheduleService_Create_Success(t *testing.T) {
	svc, _ := setupTestScheduleService()

	result, err := svc.Create(context.Background(), "student-1", eventReq("2026-03-01T09:00", "2026-03-01T10:00"))
	if err != nil {
		t.Fatalf("Create 失败: %v", err)
	}
	if result.Start != "2026-03-01T09:00:00Z" || result.End != "2026-03-01T10:00:00Z" {
		t.Errorf("时间格式错误: %s - %s", result.Start, result.End)
	}
}

func TestScheduleService_Create_EndBeforeStart(t *testing.T) {
	svc, _ := setupTestScheduleService()

	_, err := svc.Create(context.Background(), "student-1", eventReq("2026-03-01T10:00", "2026-03-01T09:00"))
	if !errors.Is(err, ErrScheduleEndBeforeStart) {
		t.Errorf("期望 ErrScheduleEndBeforeStart，实际: %v", err)
	}
}

func TestScheduleService_Create_SameDayAllDay(t *testing.T) {
	svc, _ := setupTestScheduleService()

	req := eventReq("2026-03-01", "2026-03-01")
	req.AllDay = true
	if _, err := svc.Create(context.Background(), "student-1", req); err != nil {
		t.Errorf("同日全天事件应合法: %v", err)
	}
}

func TestScheduleService_Create_InvalidStart(t *testing.T) {
	svc, _ := setupTestScheduleService()

	if _, err := svc.Create(context.Background(), "student-1", eventReq("tomorrow", "2026-03-01")); !errors.Is(err, ErrScheduleStartInvalid) {
		t.Errorf("期望 ErrScheduleStartInvalid，实际: %v", err)
	}
}

func TestScheduleService_OwnerScoped(t *testing.T) {
	svc, _ := setupTestScheduleService()
	created, _ := svc.Create(context.Background(), "student-1", eventReq("2026-03-01T09:00", "2026-03-01T10:00"))

	if _, err := svc.Update(context.Background(), created.ID, "student-2", eventReq("2026-03-02T09:00", "2026-03-02T10:00")); !errors.Is(err, ErrScheduleEventNotFound) {
		t.Errorf("他人日程应返回 ErrScheduleEventNotFound，实际: %v", err)
	}
	if err := svc.Delete(context.Background(), created.ID, "student-2"); !errors.Is(err, ErrScheduleEventNotFound) {
		t.Errorf("他人日程应返回 ErrScheduleEventNotFound，实际: %v", err)
	}

	list, _ := svc.List(context.Background(), "student-2")
	if len(list) != 0 {
		t.Errorf("其他用户不应看到该日程，实际 %d", len(list))
	}
}

func TestScheduleService_Import(t *testing.T) {
	svc, st := setupTestScheduleService()
	doc := icsDoc(
		"UID:1\nSUMMARY:考试\nDTSTART:20260310T020000Z\nDTEND:20260310T040000Z",
		"UID:2\nDTSTART:20260310T020000Z",
	)

	result, err := svc.Import(context.Background(), "student-1", memUpload("cal.ics", []byte(doc)))
	if err != nil {
		t.Fatalf("Import 失败: %v", err)
	}
	if result.Imported != 1 || result.Skipped != 1 {
		t.Errorf("期望导入 1 跳过 1，实际 %d / %d", result.Imported, result.Skipped)
	}
	if len(st.events) != 1 {
		t.Errorf("期望落库 1 条日程，实际 %d", len(st.events))
	}
	for _, e := range st.events {
		if e.UserID != "student-1" || e.Category != model.CategoryPersonal {
			t.Errorf("导入日程归属或分类错误: %+v", e)
		}
	}
}

func TestScheduleService_Import_Invalid(t *testing.T) {
	svc, _ := setupTestScheduleService()

	if _, err := svc.Import(context.Background(), "student-1", memUpload("x.ics", []byte("garbage"))); !errors.Is(err, ErrScheduleICSInvalid) {
		t.Errorf("期望 ErrScheduleICSInvalid，实际: %v", err)
	}
}

func TestScheduleService_Import_TooLarge(t *testing.T) {
	svc, _ := setupTestScheduleService()
	f := memUpload("x.ics", nil)
	f.Size = icsMaxFileSize + 1

	if _, err := svc.Import(context.Background(), "student-1", f); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("期望 ErrFileTooLarge，实际: %v", err)
	}
}
