package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gamerzord/latihan-magang-lms/internal/model"
	pkgerrors "github.com/gamerzord/latihan-magang-lms/pkg/errors"
)

// AssignmentRepository 作业数据访问接口
type AssignmentRepository interface {
	Create(ctx context.Context, a *model.Assignment) error
	// GetByID 预加载所属课程
	GetByID(ctx context.Context, id string) (*model.Assignment, error)
	ExistsCode(ctx context.Context, code, excludeID string) (bool, error)
	List(ctx context.Context, courseID string) ([]model.Assignment, error)
	// ListByCourse 按截止时间升序返回课程作业
	ListByCourse(ctx context.Context, courseID string) ([]model.Assignment, error)
	Update(ctx context.Context, a *model.Assignment) error
	Delete(ctx context.Context, id string) error
}

type assignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo 创建 AssignmentRepository 实例
func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) Create(ctx context.Context, a *model.Assignment) error {
	return pkgerrors.MapWriteError(r.db.WithContext(ctx).Omit(clause.Associations).Create(a).Error)
}

func (r *assignmentRepo) GetByID(ctx context.Context, id string) (*model.Assignment, error) {
	var a model.Assignment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepo) ExistsCode(ctx context.Context, code, excludeID string) (bool, error) {
	var count int64
	db := r.db.WithContext(ctx).Model(&model.Assignment{}).Where("assignment_code = ?", code)
	if excludeID != "" {
		db = db.Where("id <> ?", excludeID)
	}
	err := db.Count(&count).Error
	return count > 0, err
}

func (r *assignmentRepo) List(ctx context.Context, courseID string) ([]model.Assignment, error) {
	var list []model.Assignment
	db := r.db.WithContext(ctx).Preload("Course")
	if courseID != "" {
		db = db.Where("course_id = ?", courseID)
	}
	err := db.Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *assignmentRepo) ListByCourse(ctx context.Context, courseID string) ([]model.Assignment, error) {
	var list []model.Assignment
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("due_date ASC").
		Find(&list).Error
	return list, err
}

func (r *assignmentRepo) Update(ctx context.Context, a *model.Assignment) error {
	return pkgerrors.MapWriteError(r.db.WithContext(ctx).Omit(clause.Associations).Save(a).Error)
}

func (r *assignmentRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Assignment{}).Error
}
