package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gamerzord/latihan-magang-lms/internal/model"
	pkgerrors "github.com/gamerzord/latihan-magang-lms/pkg/errors"
)

// SubmissionFilter 提交列表过滤条件
type SubmissionFilter struct {
	Status       string
	AssignmentID string
	StudentID    string
	CourseID     string
	TeacherID    string // 仅返回该教师课程下的提交
}

// SubmissionRepository 作业提交数据访问接口
type SubmissionRepository interface {
	Create(ctx context.Context, s *model.Submission) error
	// GetByID 预加载作业（含课程）与学生
	GetByID(ctx context.Context, id string) (*model.Submission, error)
	GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID string) (*model.Submission, error)
	CountByAssignment(ctx context.Context, assignmentID string) (int64, error)
	List(ctx context.Context, filter SubmissionFilter) ([]model.Submission, error)
	Update(ctx context.Context, s *model.Submission) error
	Delete(ctx context.Context, id string) error
	ListFilePaths(ctx context.Context) ([]string, error)
}

type submissionRepo struct {
	db *gorm.DB
}

// NewSubmissionRepo 创建 SubmissionRepository 实例
func NewSubmissionRepo(db *gorm.DB) SubmissionRepository {
	return &submissionRepo{db: db}
}

func (r *submissionRepo) Create(ctx context.Context, s *model.Submission) error {
	return pkgerrors.MapWriteError(r.db.WithContext(ctx).Omit(clause.Associations).Create(s).Error)
}

func (r *submissionRepo) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	var s model.Submission
	err := r.db.WithContext(ctx).
		Preload("Assignment.Course").
		Preload("Student").
		Where("id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *submissionRepo) GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID string) (*model.Submission, error) {
	var s model.Submission
	err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *submissionRepo) CountByAssignment(ctx context.Context, assignmentID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Submission{}).
		Where("assignment_id = ?", assignmentID).
		Count(&count).Error
	return count, err
}

func (r *submissionRepo) List(ctx context.Context, filter SubmissionFilter) ([]model.Submission, error) {
	var list []model.Submission
	db := r.db.WithContext(ctx).
		Preload("Assignment.Course").
		Preload("Student")

	if filter.Status != "" {
		db = db.Where("submissions.status = ?", filter.Status)
	}
	if filter.AssignmentID != "" {
		db = db.Where("submissions.assignment_id = ?", filter.AssignmentID)
	}
	if filter.StudentID != "" {
		db = db.Where("submissions.student_id = ?", filter.StudentID)
	}
	if filter.CourseID != "" {
		db = db.Where("submissions.assignment_id IN (SELECT id FROM assignments WHERE course_id = ? AND deleted_at IS NULL)", filter.CourseID)
	}
	if filter.TeacherID != "" {
		db = db.Where(`submissions.assignment_id IN (
			SELECT a.id FROM assignments a JOIN courses c ON c.id = a.course_id
			WHERE c.teacher_id = ? AND a.deleted_at IS NULL AND c.deleted_at IS NULL)`, filter.TeacherID)
	}

	err := db.Order("submissions.created_at DESC").Find(&list).Error
	return list, err
}

func (r *submissionRepo) Update(ctx context.Context, s *model.Submission) error {
	return pkgerrors.MapWriteError(r.db.WithContext(ctx).Omit(clause.Associations).Save(s).Error)
}

func (r *submissionRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Submission{}).Error
}

func (r *submissionRepo) ListFilePaths(ctx context.Context) ([]string, error) {
	var paths []string
	err := r.db.WithContext(ctx).Model(&model.Submission{}).Pluck("file_path", &paths).Error
	return paths, err
}
