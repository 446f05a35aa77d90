package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gamerzord/latihan-magang-lms/internal/model"
)

// ConferenceFilter 会议列表过滤条件，零值表示不过滤
type ConferenceFilter struct {
	TeacherID string
	CourseIDs []string // 非 nil 时仅返回这些课程的会议（空切片返回空结果）
}

// ConferenceRepository 在线会议数据访问接口
type ConferenceRepository interface {
	Create(ctx context.Context, c *model.Conference) error
	// GetByID 预加载课程与教师
	GetByID(ctx context.Context, id string) (*model.Conference, error)
	List(ctx context.Context, filter ConferenceFilter) ([]model.Conference, error)
	Update(ctx context.Context, c *model.Conference) error
	Delete(ctx context.Context, id string) error
}

type conferenceRepo struct {
	db *gorm.DB
}

// NewConferenceRepo 创建 ConferenceRepository 实例
func NewConferenceRepo(db *gorm.DB) ConferenceRepository {
	return &conferenceRepo{db: db}
}

func (r *conferenceRepo) Create(ctx context.Context, c *model.Conference) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
}

func (r *conferenceRepo) GetByID(ctx context.Context, id string) (*model.Conference, error) {
	var c model.Conference
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Teacher").
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *conferenceRepo) List(ctx context.Context, filter ConferenceFilter) ([]model.Conference, error) {
	var list []model.Conference
	if filter.CourseIDs != nil && len(filter.CourseIDs) == 0 {
		return list, nil
	}

	db := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Teacher")
	if filter.TeacherID != "" {
		db = db.Where("teacher_id = ?", filter.TeacherID)
	}
	if filter.CourseIDs != nil {
		db = db.Where("course_id IN ?", filter.CourseIDs)
	}

	err := db.Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *conferenceRepo) Update(ctx context.Context, c *model.Conference) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(c).Error
}

func (r *conferenceRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Conference{}).Error
}
