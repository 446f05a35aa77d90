package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gamerzord/latihan-magang-lms/internal/model"
	pkgerrors "github.com/gamerzord/latihan-magang-lms/pkg/errors"
)

// EnrollmentFilter 选课列表过滤条件
type EnrollmentFilter struct {
	CourseID  string
	StudentID string
	TeacherID string // 仅返回该教师课程下的选课
}

// EnrollmentRepository 选课数据访问接口
type EnrollmentRepository interface {
	Create(ctx context.Context, e *model.Enrollment) error
	// GetByID 预加载课程与学生
	GetByID(ctx context.Context, id string) (*model.Enrollment, error)
	// Exists 检查 (course, student) 是否已有有效选课，excludeID 非空时排除该记录
	Exists(ctx context.Context, courseID, studentID, excludeID string) (bool, error)
	List(ctx context.Context, filter EnrollmentFilter) ([]model.Enrollment, error)
	CountByCourse(ctx context.Context, courseID string) (int64, error)
	ListStudents(ctx context.Context, courseID string) ([]model.User, error)
	ListCourseIDsByStudent(ctx context.Context, studentID string) ([]string, error)
	Update(ctx context.Context, e *model.Enrollment) error
	Delete(ctx context.Context, id string) error
}

type enrollmentRepo struct {
	db *gorm.DB
}

// NewEnrollmentRepo 创建 EnrollmentRepository 实例
func NewEnrollmentRepo(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepo{db: db}
}

func (r *enrollmentRepo) Create(ctx context.Context, e *model.Enrollment) error {
	return pkgerrors.MapWriteError(r.db.WithContext(ctx).Omit(clause.Associations).Create(e).Error)
}

func (r *enrollmentRepo) GetByID(ctx context.Context, id string) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Student").
		Where("id = ?", id).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *enrollmentRepo) Exists(ctx context.Context, courseID, studentID, excludeID string) (bool, error) {
	var count int64
	db := r.db.WithContext(ctx).Model(&model.Enrollment{}).
		Where("course_id = ? AND student_id = ?", courseID, studentID)
	if excludeID != "" {
		db = db.Where("id <> ?", excludeID)
	}
	err := db.Count(&count).Error
	return count > 0, err
}

func (r *enrollmentRepo) List(ctx context.Context, filter EnrollmentFilter) ([]model.Enrollment, error) {
	var list []model.Enrollment
	db := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Student")

	if filter.CourseID != "" {
		db = db.Where("enrollments.course_id = ?", filter.CourseID)
	}
	if filter.StudentID != "" {
		db = db.Where("enrollments.student_id = ?", filter.StudentID)
	}
	if filter.TeacherID != "" {
		db = db.Where("enrollments.course_id IN (SELECT id FROM courses WHERE teacher_id = ? AND deleted_at IS NULL)", filter.TeacherID)
	}

	err := db.Order("enrollments.created_at DESC").Find(&list).Error
	return list, err
}

func (r *enrollmentRepo) CountByCourse(ctx context.Context, courseID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Enrollment{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	return count, err
}

func (r *enrollmentRepo) ListStudents(ctx context.Context, courseID string) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN enrollments ON enrollments.student_id = users.id AND enrollments.deleted_at IS NULL").
		Where("enrollments.course_id = ?", courseID).
		Order("users.name ASC").
		Find(&users).Error
	return users, err
}

func (r *enrollmentRepo) ListCourseIDsByStudent(ctx context.Context, studentID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.Enrollment{}).
		Where("student_id = ?", studentID).
		Pluck("course_id", &ids).Error
	return ids, err
}

func (r *enrollmentRepo) Update(ctx context.Context, e *model.Enrollment) error {
	return pkgerrors.MapWriteError(r.db.WithContext(ctx).Omit(clause.Associations).Save(e).Error)
}

func (r *enrollmentRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Enrollment{}).Error
}
