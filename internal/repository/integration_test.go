//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gamerzord/latihan-magang-lms/internal/model"
	"github.com/gamerzord/latihan-magang-lms/internal/repository"
	"github.com/gamerzord/latihan-magang-lms/pkg/database"
	pkgerrors "github.com/gamerzord/latihan-magang-lms/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=lms password=lms_password dbname=lms_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	// 使用正式迁移建表，部分唯一索引与 CHECK 约束需要真实 schema
	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取 sql.DB 失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "迁移失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

func uniq(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, time.Now().UnixNano())
}

// setupTestData 创建教师、学生与一门课程并返回清理函数
func setupTestData(t *testing.T) (teacher, student *model.User, course *model.Course, cleanup func()) {
	t.Helper()
	ctx := context.Background()

	teacher = &model.User{
		Name:     "测试教师",
		Email:    uniq("teacher") + "@lms.test",
		Password: "$2a$10$placeholder",
		Role:     model.RoleTeacher,
	}
	if err := testDB.WithContext(ctx).Create(teacher).Error; err != nil {
		t.Fatalf("创建教师失败: %v", err)
	}

	student = &model.User{
		Name:     "测试学生",
		Email:    uniq("student") + "@lms.test",
		Password: "$2a$10$placeholder",
		Role:     model.RoleStudent,
	}
	if err := testDB.WithContext(ctx).Create(student).Error; err != nil {
		t.Fatalf("创建学生失败: %v", err)
	}

	course = &model.Course{
		Title:      "测试课程",
		CourseCode: uniq("C"),
		TeacherID:  teacher.ID,
		IsActive:   true,
	}
	if err := testDB.WithContext(ctx).Create(course).Error; err != nil {
		t.Fatalf("创建课程失败: %v", err)
	}

	cleanup = func() {
		testDB.Exec("DELETE FROM submissions WHERE student_id = ?", student.ID)
		testDB.Exec("DELETE FROM enrollments WHERE course_id = ?", course.ID)
		testDB.Exec("DELETE FROM assignments WHERE course_id = ?", course.ID)
		testDB.Exec("DELETE FROM lessons WHERE course_id = ?", course.ID)
		testDB.Exec("DELETE FROM courses WHERE id = ?", course.ID)
		testDB.Exec("DELETE FROM users WHERE id IN ?", []string{teacher.ID, student.ID})
	}
	return
}

// ═══════════════════════════════════════════════════════════
// Test: Transaction
// ═══════════════════════════════════════════════════════════

func TestTransaction_Rollback(t *testing.T) {
	_, student, course, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx 失败: %v", err)
	}
	txRepo := repo.WithTx(tx)

	e := &model.Enrollment{CourseID: course.ID, StudentID: student.ID}
	if err := txRepo.Enrollment.Create(ctx, e); err != nil {
		tx.Rollback()
		t.Fatalf("事务内创建选课失败: %v", err)
	}

	tx.Rollback()

	if _, err := repo.Enrollment.GetByID(ctx, e.ID); err == nil {
		t.Fatal("期望回滚后查不到选课，但实际查到了")
	}
}

func TestTransaction_FnErrorRollsBack(t *testing.T) {
	_, student, course, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	boom := errors.New("boom")

	var createdID string
	err := repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		e := &model.Enrollment{CourseID: course.ID, StudentID: student.ID}
		if err := txRepo.Enrollment.Create(ctx, e); err != nil {
			return err
		}
		createdID = e.ID
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("期望 boom，实际=%v", err)
	}
	if _, err := repo.Enrollment.GetByID(ctx, createdID); err == nil {
		t.Fatal("期望 fn 出错后事务回滚")
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Unique constraints
// ═══════════════════════════════════════════════════════════

func TestEnrollment_DuplicateMapsToErrDuplicateKey(t *testing.T) {
	_, student, course, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	if err := repo.Enrollment.Create(ctx, &model.Enrollment{CourseID: course.ID, StudentID: student.ID}); err != nil {
		t.Fatalf("第一次选课应成功: %v", err)
	}
	err := repo.Enrollment.Create(ctx, &model.Enrollment{CourseID: course.ID, StudentID: student.ID})
	if !errors.Is(err, pkgerrors.ErrDuplicateKey) {
		t.Errorf("期望 ErrDuplicateKey，实际=%v", err)
	}
}

func TestEnrollment_SoftDeletedAllowsReEnroll(t *testing.T) {
	_, student, course, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	first := &model.Enrollment{CourseID: course.ID, StudentID: student.ID}
	if err := repo.Enrollment.Create(ctx, first); err != nil {
		t.Fatalf("创建选课失败: %v", err)
	}
	if err := repo.Enrollment.Delete(ctx, first.ID); err != nil {
		t.Fatalf("删除选课失败: %v", err)
	}

	exists, err := repo.Enrollment.Exists(ctx, course.ID, student.ID, "")
	if err != nil || exists {
		t.Fatalf("软删除后不应视为已选课: exists=%v err=%v", exists, err)
	}
	if err := repo.Enrollment.Create(ctx, &model.Enrollment{CourseID: course.ID, StudentID: student.ID}); err != nil {
		t.Errorf("软删除后应允许重新选课: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Course counts
// ═══════════════════════════════════════════════════════════

func TestCourse_GetByID_Counts(t *testing.T) {
	_, student, course, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	_ = repo.Enrollment.Create(ctx, &model.Enrollment{CourseID: course.ID, StudentID: student.ID})
	_ = repo.Lesson.Create(ctx, &model.Lesson{CourseID: course.ID, Title: "L1", LessonCode: uniq("L")})
	_ = repo.Lesson.Create(ctx, &model.Lesson{CourseID: course.ID, Title: "L2", LessonCode: uniq("L")})
	_ = repo.Assignment.Create(ctx, &model.Assignment{
		CourseID: course.ID, Title: "A1", AssignmentCode: uniq("A"), DueDate: time.Now().Add(time.Hour),
	})

	got, err := repo.Course.GetByID(ctx, course.ID)
	if err != nil {
		t.Fatalf("查询课程失败: %v", err)
	}
	if got.StudentsCount != 1 || got.LessonsCount != 2 || got.AssignmentsCount != 1 {
		t.Errorf("统计不符: students=%d lessons=%d assignments=%d",
			got.StudentsCount, got.LessonsCount, got.AssignmentsCount)
	}
	if got.Teacher == nil {
		t.Error("期望预加载教师")
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Row lock serializes enroll vs delete
// ═══════════════════════════════════════════════════════════

func TestCourse_ForUpdateSerializesEnrollAndDelete(t *testing.T) {
	_, student, course, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	var wg sync.WaitGroup
	var enrollErr, deleteErr error
	wg.Add(2)

	go func() {
		defer wg.Done()
		enrollErr = repo.Transaction(ctx, func(txRepo *repository.Repository) error {
			if _, err := txRepo.Course.GetByIDForUpdate(ctx, course.ID); err != nil {
				return err
			}
			return txRepo.Enrollment.Create(ctx, &model.Enrollment{CourseID: course.ID, StudentID: student.ID})
		})
	}()
	go func() {
		defer wg.Done()
		deleteErr = repo.Transaction(ctx, func(txRepo *repository.Repository) error {
			if _, err := txRepo.Course.GetByIDForUpdate(ctx, course.ID); err != nil {
				return err
			}
			n, err := txRepo.Enrollment.CountByCourse(ctx, course.ID)
			if err != nil {
				return err
			}
			if n > 0 {
				return errors.New("has enrollments")
			}
			return txRepo.Course.Delete(ctx, course.ID)
		})
	}()
	wg.Wait()

	// 两者只能有一个落地：要么课程被删除且无选课，要么选课成功且课程仍在
	_, getErr := repo.Course.GetByID(ctx, course.ID)
	count, _ := repo.Enrollment.CountByCourse(ctx, course.ID)
	if getErr != nil && count > 0 {
		t.Errorf("课程已删除但仍有选课: enrollErr=%v deleteErr=%v", enrollErr, deleteErr)
	}
}
