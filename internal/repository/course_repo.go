package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gamerzord/latihan-magang-lms/internal/model"
	pkgerrors "github.com/gamerzord/latihan-magang-lms/pkg/errors"
)

// CourseFilter 课程列表过滤条件
type CourseFilter struct {
	TeacherID string // 教师本人课程
	StudentID string // 学生已选课程
}

// CourseRepository 课程数据访问接口
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	// GetByID 预加载教师并聚合学生数、课时数、作业数
	GetByID(ctx context.Context, id string) (*model.Course, error)
	// GetByIDForUpdate 在事务内以 SELECT ... FOR UPDATE 锁定课程行
	GetByIDForUpdate(ctx context.Context, id string) (*model.Course, error)
	ExistsCode(ctx context.Context, code, excludeID string) (bool, error)
	List(ctx context.Context, filter CourseFilter) ([]model.Course, error)
	Update(ctx context.Context, course *model.Course) error
	Delete(ctx context.Context, id string) error
	ListThumbnailPaths(ctx context.Context) ([]string, error)
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

const courseCountsSelect = `courses.*,
	(SELECT COUNT(*) FROM enrollments e WHERE e.course_id = courses.id AND e.deleted_at IS NULL) AS students_count,
	(SELECT COUNT(*) FROM lessons l WHERE l.course_id = courses.id AND l.deleted_at IS NULL) AS lessons_count,
	(SELECT COUNT(*) FROM assignments a WHERE a.course_id = courses.id AND a.deleted_at IS NULL) AS assignments_count`

func (r *courseRepo) Create(ctx context.Context, course *model.Course) error {
	return pkgerrors.MapWriteError(r.db.WithContext(ctx).Omit(clause.Associations).Create(course).Error)
}

func (r *courseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Select(courseCountsSelect).
		Preload("Teacher").
		Where("courses.id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) ExistsCode(ctx context.Context, code, excludeID string) (bool, error) {
	var count int64
	db := r.db.WithContext(ctx).Model(&model.Course{}).Where("course_code = ?", code)
	if excludeID != "" {
		db = db.Where("id <> ?", excludeID)
	}
	err := db.Count(&count).Error
	return count > 0, err
}

func (r *courseRepo) List(ctx context.Context, filter CourseFilter) ([]model.Course, error) {
	var courses []model.Course
	db := r.db.WithContext(ctx).
		Select(courseCountsSelect).
		Preload("Teacher")

	if filter.TeacherID != "" {
		db = db.Where("courses.teacher_id = ?", filter.TeacherID)
	}
	if filter.StudentID != "" {
		db = db.Where("EXISTS (SELECT 1 FROM enrollments en WHERE en.course_id = courses.id AND en.student_id = ? AND en.deleted_at IS NULL)", filter.StudentID)
	}

	err := db.Order("courses.created_at DESC").Find(&courses).Error
	return courses, err
}

func (r *courseRepo) Update(ctx context.Context, course *model.Course) error {
	return pkgerrors.MapWriteError(r.db.WithContext(ctx).Omit(clause.Associations).Save(course).Error)
}

func (r *courseRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Course{}).Error
}

func (r *courseRepo) ListThumbnailPaths(ctx context.Context) ([]string, error) {
	var paths []string
	err := r.db.WithContext(ctx).
		Model(&model.Course{}).
		Where("thumbnail_path IS NOT NULL").
		Pluck("thumbnail_path", &paths).Error
	return paths, err
}
