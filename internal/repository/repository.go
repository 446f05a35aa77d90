package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User          UserRepository
	Course        CourseRepository
	Lesson        LessonRepository
	Attachment    AttachmentRepository
	Completion    CompletionRepository
	Assignment    AssignmentRepository
	Enrollment    EnrollmentRepository
	Submission    SubmissionRepository
	Conference    ConferenceRepository
	ScheduleEvent ScheduleEventRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:            db,
		User:          NewUserRepo(db),
		Course:        NewCourseRepo(db),
		Lesson:        NewLessonRepo(db),
		Attachment:    NewAttachmentRepo(db),
		Completion:    NewCompletionRepo(db),
		Assignment:    NewAssignmentRepo(db),
		Enrollment:    NewEnrollmentRepo(db),
		Submission:    NewSubmissionRepo(db),
		Conference:    NewConferenceRepo(db),
		ScheduleEvent: NewScheduleEventRepo(db),
	}
}

// BeginTx 开启事务
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到事务的 Repository 副本
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// Transaction 在单个事务内执行 fn，fn 返回错误时回滚
// 未绑定数据库（单元测试注入 mock）时直接以当前聚合执行
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
