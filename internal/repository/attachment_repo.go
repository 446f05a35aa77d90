package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gamerzord/latihan-magang-lms/internal/model"
)

// AttachmentRepository 课时附件数据访问接口（硬删除）
type AttachmentRepository interface {
	CreateBatch(ctx context.Context, attachments []model.LessonAttachment) error
	// GetByID 预加载课时及其课程，用于权限判断
	GetByID(ctx context.Context, id string) (*model.LessonAttachment, error)
	ListByLesson(ctx context.Context, lessonID string) ([]model.LessonAttachment, error)
	Delete(ctx context.Context, id string) error
	DeleteByLesson(ctx context.Context, lessonID string) error
	ListFilePaths(ctx context.Context) ([]string, error)
}

type attachmentRepo struct {
	db *gorm.DB
}

// NewAttachmentRepo 创建 AttachmentRepository 实例
func NewAttachmentRepo(db *gorm.DB) AttachmentRepository {
	return &attachmentRepo{db: db}
}

func (r *attachmentRepo) CreateBatch(ctx context.Context, attachments []model.LessonAttachment) error {
	if len(attachments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&attachments).Error
}

func (r *attachmentRepo) GetByID(ctx context.Context, id string) (*model.LessonAttachment, error) {
	var att model.LessonAttachment
	err := r.db.WithContext(ctx).
		Preload("Lesson.Course").
		Where("id = ?", id).
		First(&att).Error
	if err != nil {
		return nil, err
	}
	return &att, nil
}

func (r *attachmentRepo) ListByLesson(ctx context.Context, lessonID string) ([]model.LessonAttachment, error) {
	var list []model.LessonAttachment
	err := r.db.WithContext(ctx).
		Where("lesson_id = ?", lessonID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *attachmentRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.LessonAttachment{}).Error
}

func (r *attachmentRepo) DeleteByLesson(ctx context.Context, lessonID string) error {
	return r.db.WithContext(ctx).Where("lesson_id = ?", lessonID).Delete(&model.LessonAttachment{}).Error
}

func (r *attachmentRepo) ListFilePaths(ctx context.Context) ([]string, error) {
	var paths []string
	err := r.db.WithContext(ctx).Model(&model.LessonAttachment{}).Pluck("file_path", &paths).Error
	return paths, err
}
