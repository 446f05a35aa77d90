package service

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/gamerzord/latihan-magang-lms/internal/dto"
	"github.com/gamerzord/latihan-magang-lms/internal/model"
	"github.com/gamerzord/latihan-magang-lms/pkg/storage"
)

func setupTestCourseService(t *testing.T) (CourseService, *mockStore, *storage.Local) {
	t.Helper()
	repo, st := newMockRepository()
	seedBasics(st)
	store := newTestStorage(t)
	return NewCourseService(repo, store, zap.NewNop()), st, store
}

func courseReq(code, teacherID string) *dto.CourseRequest {
	return &dto.CourseRequest{Title: "新课程", CourseCode: code, TeacherID: teacherID}
}

// ── Create 测试 ──

func TestCourseService_Create_TeacherSelf(t *testing.T) {
	svc, _, _ := setupTestCourseService(t)

	result, err := svc.Create(context.Background(), courseReq("CS201", "teacher-1"), "teacher-1", model.RoleTeacher)
	if err != nil {
		t.Fatalf("Create 失败: %v", err)
	}
	if !result.IsActive {
		t.Error("未指定 is_active 时应默认启用")
	}
	if result.Teacher == nil || result.Teacher.ID != "teacher-1" {
		t.Errorf("应返回授课教师信息: %+v", result.Teacher)
	}
}

func TestCourseService_Create_ExplicitInactive(t *testing.T) {
	svc, _, _ := setupTestCourseService(t)

	req := courseReq("CS202", "teacher-1")
	inactive := false
	req.IsActive = &inactive
	result, err := svc.Create(context.Background(), req, "admin-1", model.RoleAdmin)
	if err != nil {
		t.Fatalf("Create 失败: %v", err)
	}
	if result.IsActive {
		t.Error("显式 is_active=false 不应被覆盖")
	}
}

func TestCourseService_Create_TeacherForOtherTeacher(t *testing.T) {
	svc, _, _ := setupTestCourseService(t)

	_, err := svc.Create(context.Background(), courseReq("CS203", "teacher-2"), "teacher-1", model.RoleTeacher)
	if !errors.Is(err, ErrNoPermission) {
		t.Errorf("期望 ErrNoPermission，实际: %v", err)
	}
}

func TestCourseService_Create_TeacherIDNotTeacher(t *testing.T) {
	svc, _, _ := setupTestCourseService(t)

	_, err := svc.Create(context.Background(), courseReq("CS204", "student-1"), "admin-1", model.RoleAdmin)
	if !errors.Is(err, ErrCourseTeacherInvalid) {
		t.Errorf("期望 ErrCourseTeacherInvalid，实际: %v", err)
	}
}

func TestCourseService_Create_DuplicateCode(t *testing.T) {
	svc, _, _ := setupTestCourseService(t)

	_, err := svc.Create(context.Background(), courseReq("CS101", "teacher-1"), "teacher-1", model.RoleTeacher)
	if !errors.Is(err, ErrCourseCodeExists) {
		t.Errorf("期望 ErrCourseCodeExists，实际: %v", err)
	}
}

func TestCourseService_Create_StudentForbidden(t *testing.T) {
	svc, _, _ := setupTestCourseService(t)

	_, err := svc.Create(context.Background(), courseReq("CS205", "teacher-1"), "student-1", model.RoleStudent)
	if !errors.Is(err, ErrNoPermission) {
		t.Errorf("期望 ErrNoPermission，实际: %v", err)
	}
}

// ── Update 测试 ──

func TestCourseService_Update_KeepOwnCode(t *testing.T) {
	svc, _, _ := setupTestCourseService(t)

	req := courseReq("CS101", "teacher-1")
	req.Title = "改名"
	result, err := svc.Update(context.Background(), "course-1", req, "teacher-1", model.RoleTeacher)
	if err != nil {
		t.Fatalf("保留自身编号应可更新: %v", err)
	}
	if result.Title != "改名" {
		t.Errorf("标题未更新: %s", result.Title)
	}
}

func TestCourseService_Update_NotOwner(t *testing.T) {
	svc, _, _ := setupTestCourseService(t)

	_, err := svc.Update(context.Background(), "course-1", courseReq("CS101", "teacher-2"), "teacher-2", model.RoleTeacher)
	if !errors.Is(err, ErrNoPermission) {
		t.Errorf("期望 ErrNoPermission，实际: %v", err)
	}
}

// ── Delete 测试 ──

func TestCourseService_Delete_HasEnrollments(t *testing.T) {
	svc, st, _ := setupTestCourseService(t)

	err := svc.Delete(context.Background(), "course-1", "teacher-1", model.RoleTeacher)
	if !errors.Is(err, ErrCourseHasEnrollments) {
		t.Errorf("期望 ErrCourseHasEnrollments，实际: %v", err)
	}
	if _, ok := st.courses["course-1"]; !ok {
		t.Error("存在选课时课程不应被删除")
	}
}

func TestCourseService_Delete_Empty(t *testing.T) {
	svc, st, _ := setupTestCourseService(t)
	seedCourse(st, "course-2", "CS999", "teacher-1")

	if err := svc.Delete(context.Background(), "course-2", "teacher-1", model.RoleTeacher); err != nil {
		t.Fatalf("Delete 失败: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), "course-2"); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("删除后查询应返回 ErrCourseNotFound，实际: %v", err)
	}
}

// ── UploadThumbnail 测试 ──

func TestCourseService_UploadThumbnail_Resizes(t *testing.T) {
	svc, st, store := setupTestCourseService(t)

	src := imaging.New(1600, 1200, color.NRGBA{R: 200, G: 80, B: 40, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, src, imaging.PNG); err != nil {
		t.Fatalf("生成测试图片失败: %v", err)
	}

	result, err := svc.UploadThumbnail(context.Background(), "course-1", &buf, "teacher-1", model.RoleTeacher)
	if err != nil {
		t.Fatalf("UploadThumbnail 失败: %v", err)
	}
	if result.ThumbnailURL == nil || !strings.HasPrefix(*result.ThumbnailURL, "http://localhost:8000/storage/thumbnails/courses/") {
		t.Fatalf("封面 URL 错误: %v", result.ThumbnailURL)
	}

	key := *st.courses["course-1"].ThumbnailPath
	rc, err := store.Open(context.Background(), key)
	if err != nil {
		t.Fatalf("封面文件应存在: %v", err)
	}
	defer rc.Close()
	img, err := imaging.Decode(rc)
	if err != nil {
		t.Fatalf("封面解码失败: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 450 {
		t.Errorf("期望 800x450，实际 %dx%d", b.Dx(), b.Dy())
	}
}

func TestCourseService_UploadThumbnail_ReplacesOld(t *testing.T) {
	svc, st, store := setupTestCourseService(t)

	upload := func() string {
		var buf bytes.Buffer
		_ = imaging.Encode(&buf, imaging.New(100, 100, color.White), imaging.PNG)
		if _, err := svc.UploadThumbnail(context.Background(), "course-1", &buf, "admin-1", model.RoleAdmin); err != nil {
			t.Fatalf("UploadThumbnail 失败: %v", err)
		}
		return *st.courses["course-1"].ThumbnailPath
	}
	first := upload()
	second := upload()

	if first == second {
		t.Fatal("每次上传应生成新的存储路径")
	}
	if ok, _ := store.Exists(context.Background(), first); ok {
		t.Error("旧封面应被删除")
	}
}

func TestCourseService_UploadThumbnail_InvalidImage(t *testing.T) {
	svc, _, _ := setupTestCourseService(t)

	_, err := svc.UploadThumbnail(context.Background(), "course-1", strings.NewReader("not an image"), "teacher-1", model.RoleTeacher)
	if !errors.Is(err, ErrThumbnailInvalid) {
		t.Errorf("期望 ErrThumbnailInvalid，实际: %v", err)
	}
}

// ── 学生视角 ──

func TestCourseService_StudentCourse_ProgressAndStatus(t *testing.T) {
	svc, st, _ := setupTestCourseService(t)
	seedLesson(st, "lesson-1", "L1", "course-1")
	seedLesson(st, "lesson-2", "L2", "course-1")
	seedLesson(st, "lesson-3", "L3", "course-1")
	st.completions["lesson-1:student-1"] = &model.LessonCompletion{ID: "c1", LessonID: "lesson-1", StudentID: "student-1"}

	due := time.Now().Add(24 * time.Hour)
	seedAssignment(st, "asg-1", "A1", "course-1", due)
	seedAssignment(st, "asg-2", "A2", "course-1", due.Add(time.Hour))
	st.submissions["sub-1"] = &model.Submission{ID: "sub-1", AssignmentID: "asg-1", StudentID: "student-1", Status: model.SubmissionSubmitted, Grade: float64Ptr(90)}

	result, err := svc.StudentCourse(context.Background(), "course-1", "student-1", model.RoleStudent)
	if err != nil {
		t.Fatalf("StudentCourse 失败: %v", err)
	}
	if result.Progress != 33 {
		t.Errorf("期望进度 33，实际 %d", result.Progress)
	}
	if len(result.Lessons) != 3 || result.Lessons[0].Completed == nil || !*result.Lessons[0].Completed {
		t.Errorf("课时完成标记错误: %+v", result.Lessons)
	}
	if len(result.Assignments) != 2 {
		t.Fatalf("期望 2 个作业，实际 %d", len(result.Assignments))
	}
	if result.Assignments[0].SubmissionStatus != model.SubmissionSubmitted || result.Assignments[0].Grade == nil {
		t.Errorf("已提交作业状态错误: %+v", result.Assignments[0])
	}
	if result.Assignments[1].SubmissionStatus != model.SubmissionNotSubmitted || result.Assignments[1].SubmissionID != nil {
		t.Errorf("未提交作业状态错误: %+v", result.Assignments[1])
	}
}

func TestCourseService_StudentCourse_NotEnrolled(t *testing.T) {
	svc, _, _ := setupTestCourseService(t)

	if _, err := svc.StudentCourse(context.Background(), "course-1", "student-2", model.RoleStudent); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("期望 ErrCourseNotFound，实际: %v", err)
	}
}

func TestCourseService_StudentCourses_OnlyEnrolled(t *testing.T) {
	svc, st, _ := setupTestCourseService(t)
	seedCourse(st, "course-2", "CS102", "teacher-2")

	list, err := svc.StudentCourses(context.Background(), "student-1", model.RoleStudent)
	if err != nil {
		t.Fatalf("StudentCourses 失败: %v", err)
	}
	if len(list) != 1 || list[0].ID != "course-1" {
		t.Errorf("应只返回已选课程: %+v", list)
	}
	if list[0].Progress != 0 {
		t.Errorf("无课时时进度应为 0，实际 %d", list[0].Progress)
	}
}

// ── 教师视角 ──

func TestCourseService_TeacherCourse_CountsMatchLists(t *testing.T) {
	svc, st, _ := setupTestCourseService(t)
	seedEnrollment(st, "course-1", "student-2")
	seedLesson(st, "lesson-1", "L1", "course-1")
	seedAssignment(st, "asg-1", "A1", "course-1", time.Now())
	st.submissions["sub-1"] = &model.Submission{ID: "sub-1", AssignmentID: "asg-1", StudentID: "student-1", Status: model.SubmissionLate}

	result, err := svc.TeacherCourse(context.Background(), "course-1", "teacher-1", model.RoleTeacher)
	if err != nil {
		t.Fatalf("TeacherCourse 失败: %v", err)
	}
	if result.StudentsCount != int64(len(result.Students)) || len(result.Students) != 2 {
		t.Errorf("学生数与列表不一致: count=%d len=%d", result.StudentsCount, len(result.Students))
	}
	if result.LessonsCount != int64(len(result.Lessons)) || result.AssignmentsCount != int64(len(result.Assignments)) {
		t.Error("课时数或作业数与列表不一致")
	}
	if result.Assignments[0].SubmissionsCount != 1 {
		t.Errorf("期望提交数 1，实际 %d", result.Assignments[0].SubmissionsCount)
	}
}

func TestCourseService_TeacherCourse_OtherTeacher(t *testing.T) {
	svc, _, _ := setupTestCourseService(t)

	if _, err := svc.TeacherCourse(context.Background(), "course-1", "teacher-2", model.RoleTeacher); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("期望 ErrCourseNotFound，实际: %v", err)
	}
}

func TestCourseService_CourseSubmissions_StudentForbidden(t *testing.T) {
	svc, _, _ := setupTestCourseService(t)

	if _, err := svc.CourseSubmissions(context.Background(), "course-1", "student-1", model.RoleStudent); !errors.Is(err, ErrNoPermission) {
		t.Errorf("期望 ErrNoPermission，实际: %v", err)
	}
}

func TestComputeProgress(t *testing.T) {
	tests := []struct {
		completed, total, want int
	}{
		{0, 0, 0},
		{0, 3, 0},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
	}
	for _, tt := range tests {
		if got := computeProgress(tt.completed, tt.total); got != tt.want {
			t.Errorf("computeProgress(%d, %d) = %d，期望 %d", tt.completed, tt.total, got, tt.want)
		}
	}
}
