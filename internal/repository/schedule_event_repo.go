package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/gamerzord/latihan-magang-lms/internal/model"
)

// ScheduleEventRepository 个人日程数据访问接口（硬删除）
type ScheduleEventRepository interface {
	Create(ctx context.Context, e *model.ScheduleEvent) error
	// GetByIDForUser 仅返回属于 userID 的日程
	GetByIDForUser(ctx context.Context, id, userID string) (*model.ScheduleEvent, error)
	ListByUser(ctx context.Context, userID string) ([]model.ScheduleEvent, error)
	Update(ctx context.Context, e *model.ScheduleEvent) error
	Delete(ctx context.Context, id string) error
}

type scheduleEventRepo struct {
	db *gorm.DB
}

// NewScheduleEventRepo 创建 ScheduleEventRepository 实例
func NewScheduleEventRepo(db *gorm.DB) ScheduleEventRepository {
	return &scheduleEventRepo{db: db}
}

func (r *scheduleEventRepo) Create(ctx context.Context, e *model.ScheduleEvent) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *scheduleEventRepo) GetByIDForUser(ctx context.Context, id, userID string) (*model.ScheduleEvent, error) {
	var e model.ScheduleEvent
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *scheduleEventRepo) ListByUser(ctx context.Context, userID string) ([]model.ScheduleEvent, error) {
	var list []model.ScheduleEvent
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_time ASC").
		Find(&list).Error
	return list, err
}

func (r *scheduleEventRepo) Update(ctx context.Context, e *model.ScheduleEvent) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *scheduleEventRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ScheduleEvent{}).Error
}
