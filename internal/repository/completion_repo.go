package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gamerzord/latihan-magang-lms/internal/model"
)

// CompletionRepository 课时完成记录数据访问接口
type CompletionRepository interface {
	// Create 重复完成同一课时静默忽略
	Create(ctx context.Context, completion *model.LessonCompletion) error
	Delete(ctx context.Context, lessonID, studentID string) error
	// ListLessonIDs 返回学生在课程内已完成且未删除的课时 ID
	ListLessonIDs(ctx context.Context, studentID, courseID string) ([]string, error)
}

type completionRepo struct {
	db *gorm.DB
}

// NewCompletionRepo 创建 CompletionRepository 实例
func NewCompletionRepo(db *gorm.DB) CompletionRepository {
	return &completionRepo{db: db}
}

func (r *completionRepo) Create(ctx context.Context, completion *model.LessonCompletion) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "lesson_id"}, {Name: "student_id"}},
			DoNothing: true,
		}).
		Create(completion).Error
}

func (r *completionRepo) Delete(ctx context.Context, lessonID, studentID string) error {
	return r.db.WithContext(ctx).
		Where("lesson_id = ? AND student_id = ?", lessonID, studentID).
		Delete(&model.LessonCompletion{}).Error
}

func (r *completionRepo) ListLessonIDs(ctx context.Context, studentID, courseID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.LessonCompletion{}).
		Joins("JOIN lessons ON lessons.id = lesson_completions.lesson_id AND lessons.deleted_at IS NULL").
		Where("lesson_completions.student_id = ? AND lessons.course_id = ?", studentID, courseID).
		Pluck("lesson_completions.lesson_id", &ids).Error
	return ids, err
}
