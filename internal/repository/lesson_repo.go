package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gamerzord/latihan-magang-lms/internal/model"
	pkgerrors "github.com/gamerzord/latihan-magang-lms/pkg/errors"
)

// LessonRepository 课时数据访问接口
type LessonRepository interface {
	Create(ctx context.Context, lesson *model.Lesson) error
	// GetByID 预加载所属课程与附件
	GetByID(ctx context.Context, id string) (*model.Lesson, error)
	ExistsCode(ctx context.Context, code, excludeID string) (bool, error)
	List(ctx context.Context, courseID string) ([]model.Lesson, error)
	// ListByCourse 按创建顺序返回课程下的课时（含附件）
	ListByCourse(ctx context.Context, courseID string) ([]model.Lesson, error)
	Update(ctx context.Context, lesson *model.Lesson) error
	Delete(ctx context.Context, id string) error
}

type lessonRepo struct {
	db *gorm.DB
}

// NewLessonRepo 创建 LessonRepository 实例
func NewLessonRepo(db *gorm.DB) LessonRepository {
	return &lessonRepo{db: db}
}

func (r *lessonRepo) Create(ctx context.Context, lesson *model.Lesson) error {
	return pkgerrors.MapWriteError(r.db.WithContext(ctx).Omit(clause.Associations).Create(lesson).Error)
}

func (r *lessonRepo) GetByID(ctx context.Context, id string) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&lesson).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *lessonRepo) ExistsCode(ctx context.Context, code, excludeID string) (bool, error) {
	var count int64
	db := r.db.WithContext(ctx).Model(&model.Lesson{}).Where("lesson_code = ?", code)
	if excludeID != "" {
		db = db.Where("id <> ?", excludeID)
	}
	err := db.Count(&count).Error
	return count > 0, err
}

func (r *lessonRepo) List(ctx context.Context, courseID string) ([]model.Lesson, error) {
	var lessons []model.Lesson
	db := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Attachments")
	if courseID != "" {
		db = db.Where("course_id = ?", courseID)
	}
	err := db.Order("created_at DESC").Find(&lessons).Error
	return lessons, err
}

func (r *lessonRepo) ListByCourse(ctx context.Context, courseID string) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.db.WithContext(ctx).
		Preload("Attachments").
		Where("course_id = ?", courseID).
		Order("created_at ASC").
		Find(&lessons).Error
	return lessons, err
}

func (r *lessonRepo) Update(ctx context.Context, lesson *model.Lesson) error {
	return pkgerrors.MapWriteError(r.db.WithContext(ctx).Omit(clause.Associations).Save(lesson).Error)
}

func (r *lessonRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Lesson{}).Error
}
