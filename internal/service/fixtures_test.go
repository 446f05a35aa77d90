package service

import (
	"bytes"
	"io"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/gamerzord/latihan-magang-lms/internal/model"
	"github.com/gamerzord/latihan-magang-lms/pkg/storage"
)

// ── 测试辅助 ──

func newTestStorage(t *testing.T) *storage.Local {
	t.Helper()
	store, err := storage.NewLocal(t.TempDir(), "http://localhost:8000/storage")
	if err != nil {
		t.Fatalf("创建本地存储失败: %v", err)
	}
	return store
}

func seedUser(st *mockStore, id, name, role, password string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := &model.User{
		ID:       id,
		Name:     name,
		Email:    id + "@test.com",
		Password: string(hash),
		Role:     role,
	}
	st.stamp(&user.BaseModel)
	st.users[id] = user
	return user
}

func seedCourse(st *mockStore, id, code, teacherID string) *model.Course {
	course := &model.Course{
		ID:         id,
		Title:      "课程 " + code,
		CourseCode: code,
		TeacherID:  teacherID,
		IsActive:   true,
	}
	st.stamp(&course.BaseModel)
	st.courses[id] = course
	return course
}

func seedLesson(st *mockStore, id, code, courseID string) *model.Lesson {
	lesson := &model.Lesson{ID: id, CourseID: courseID, Title: "课时 " + code, LessonCode: code}
	st.stamp(&lesson.BaseModel)
	st.lessons[id] = lesson
	return lesson
}

func seedAssignment(st *mockStore, id, code, courseID string, due time.Time) *model.Assignment {
	a := &model.Assignment{ID: id, CourseID: courseID, AssignmentCode: code, Title: "作业 " + code, DueDate: due}
	st.stamp(&a.BaseModel)
	st.assignments[id] = a
	return a
}

func seedEnrollment(st *mockStore, courseID, studentID string) *model.Enrollment {
	e := &model.Enrollment{ID: st.nextID("enr"), CourseID: courseID, StudentID: studentID}
	st.stamp(&e.BaseModel)
	st.enrollments[e.ID] = e
	return e
}

// seedBasics 管理员、两名教师、两名学生与一门课程（teacher-1 所有，student-1 已选）
func seedBasics(st *mockStore) {
	seedUser(st, "admin-1", "管理员", model.RoleAdmin, "password123")
	seedUser(st, "teacher-1", "教师一", model.RoleTeacher, "password123")
	seedUser(st, "teacher-2", "教师二", model.RoleTeacher, "password123")
	seedUser(st, "student-1", "学生一", model.RoleStudent, "password123")
	seedUser(st, "student-2", "学生二", model.RoleStudent, "password123")
	seedCourse(st, "course-1", "CS101", "teacher-1")
	seedEnrollment(st, "course-1", "student-1")
}

type nopSeekCloser struct{ *bytes.Reader }

func (nopSeekCloser) Close() error { return nil }

// memUpload 以内存内容构造上传文件
func memUpload(filename string, content []byte) UploadFile {
	return UploadFile{
		Filename: filename,
		Size:     int64(len(content)),
		Open: func() (io.ReadSeekCloser, error) {
			return nopSeekCloser{bytes.NewReader(content)}, nil
		},
	}
}

func strPtr(s string) *string { return &s }

func float64Ptr(f float64) *float64 { return &f }
