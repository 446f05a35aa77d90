package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gamerzord/latihan-magang-lms/internal/dto"
	"github.com/gamerzord/latihan-magang-lms/internal/model"
	"github.com/gamerzord/latihan-magang-lms/internal/repository"
	pkgerrors "github.com/gamerzord/latihan-magang-lms/pkg/errors"
	"github.com/gamerzord/latihan-magang-lms/pkg/storage"
)

// ── 提交模块业务错误 ──

var (
	ErrSubmissionNotFound           = errors.New("提交记录不存在")
	ErrSubmissionExists             = errors.New("该作业已提交，请使用重新提交")
	ErrSubmissionAssignmentNotFound = errors.New("作业不存在")
	ErrSubmissionFileMissing        = errors.New("提交文件已丢失")
	ErrSubmissionGraded             = errors.New("作业已批改，无法删除")
)

// SubmissionService 作业提交业务接口
type SubmissionService interface {
	// List 管理员查看全部，教师查看本人课程，学生查看本人
	List(ctx context.Context, req *dto.SubmissionListRequest, callerID, callerRole string) ([]dto.SubmissionResponse, error)
	// Create 状态按上传时刻与截止时间判定
	Create(ctx context.Context, req *dto.CreateSubmissionRequest, file UploadFile, callerID, callerRole string) (*dto.SubmissionResponse, error)
	GetByID(ctx context.Context, id, callerID, callerRole string) (*dto.SubmissionResponse, error)
	// Resubmit 替换文件并重新判定状态，旧文件在记录更新后删除
	Resubmit(ctx context.Context, id string, file UploadFile, callerID, callerRole string) (*dto.SubmissionResponse, error)
	Grade(ctx context.Context, id string, req *dto.GradeSubmissionRequest, callerID, callerRole string) (*dto.SubmissionResponse, error)
	Download(ctx context.Context, id, callerID, callerRole string) (*DownloadFile, error)
	Delete(ctx context.Context, id, callerID, callerRole string) error
}

type submissionService struct {
	repo      *repository.Repository
	store     storage.Storage
	maxUpload int64
	logger    *zap.Logger
	now       func() time.Time
}

// NewSubmissionService 创建 SubmissionService 实例
func NewSubmissionService(repo *repository.Repository, store storage.Storage, maxUpload int64, logger *zap.Logger) SubmissionService {
	return &submissionService{
		repo:      repo,
		store:     store,
		maxUpload: maxUpload,
		logger:    logger,
		now:       nowUTC,
	}
}

// ────────────────────── List ──────────────────────

func (s *submissionService) List(ctx context.Context, req *dto.SubmissionListRequest, callerID, callerRole string) ([]dto.SubmissionResponse, error) {
	filter := repository.SubmissionFilter{Status: req.Status, AssignmentID: req.AssignmentID}
	switch callerRole {
	case model.RoleAdmin:
	case model.RoleTeacher:
		filter.TeacherID = callerID
	default:
		filter.StudentID = callerID
	}

	list, err := s.repo.Submission.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询提交列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.SubmissionResponse, 0, len(list))
	for i := range list {
		result = append(result, toSubmissionResponse(&list[i]))
	}
	return result, nil
}

// ────────────────────── Create ──────────────────────

func (s *submissionService) Create(ctx context.Context, req *dto.CreateSubmissionRequest, file UploadFile, callerID, callerRole string) (*dto.SubmissionResponse, error) {
	if callerRole != model.RoleStudent {
		return nil, ErrNoPermission
	}

	assignment, err := s.repo.Assignment.GetByID(ctx, req.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionAssignmentNotFound
		}
		return nil, err
	}

	enrolled, err := s.repo.Enrollment.Exists(ctx, assignment.CourseID, callerID, "")
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	if _, err := s.repo.Submission.GetByAssignmentAndStudent(ctx, assignment.ID, callerID); err == nil {
		return nil, ErrSubmissionExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	stored, err := s.storeFile(ctx, assignment.ID, file)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sub := &model.Submission{
		AssignmentID: assignment.ID,
		StudentID:    callerID,
		FilePath:     stored.key,
		FileURL:      s.store.URL(stored.key),
		Filename:     file.Filename,
		Mimetype:     stored.mime,
		FileSize:     file.Size,
		Status:       model.StatusAt(now, assignment.DueDate),
		SubmittedAt:  &now,
	}
	if err := s.repo.Submission.Create(ctx, sub); err != nil {
		s.discard(ctx, stored.key)
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return nil, ErrSubmissionExists
		}
		s.logger.Error("保存提交记录失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("作业已提交",
		zap.String("id", sub.ID),
		zap.String("assignment_id", sub.AssignmentID),
		zap.String("status", sub.Status),
	)
	return s.GetByID(ctx, sub.ID, callerID, callerRole)
}

type storedFile struct {
	key  string
	mime string
}

// storeFile 校验大小、嗅探 MIME 并写入 submissions/<assignmentID>/
func (s *submissionService) storeFile(ctx context.Context, assignmentID string, file UploadFile) (*storedFile, error) {
	if file.Open == nil {
		return nil, ErrFileRequired
	}
	if file.Size > s.maxUpload {
		return nil, ErrFileTooLarge
	}

	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	mime, err := storage.DetectMIME(rc, file.Filename, file.ContentType)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("submissions/%s/%s%s", assignmentID, uuid.NewString(), storage.ExtensionFor(file.Filename, mime))
	if err := s.store.Put(ctx, key, rc, file.Size, mime); err != nil {
		s.logger.Error("提交文件写入存储失败", zap.String("key", key), zap.Error(err))
		return nil, ErrStorageFailure
	}
	return &storedFile{key: key, mime: mime}, nil
}

// discard 尽力删除文件，失败仅记录日志，由清理任务兜底
func (s *submissionService) discard(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Warn("删除提交文件失败", zap.String("key", key), zap.Error(err))
	}
}

// ────────────────────── GetByID ──────────────────────

func (s *submissionService) GetByID(ctx context.Context, id, callerID, callerRole string) (*dto.SubmissionResponse, error) {
	sub, err := s.getVisible(ctx, id, callerID, callerRole)
	if err != nil {
		return nil, err
	}
	resp := toSubmissionResponse(sub)
	return &resp, nil
}

func (s *submissionService) getSubmission(ctx context.Context, id string) (*model.Submission, error) {
	sub, err := s.repo.Submission.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		s.logger.Error("查询提交失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return sub, nil
}

// getVisible 管理员、课程教师或提交者本人可见
func (s *submissionService) getVisible(ctx context.Context, id, callerID, callerRole string) (*model.Submission, error) {
	sub, err := s.getSubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.StudentID == callerID || s.ownedByTeacher(sub, callerID, callerRole) {
		return sub, nil
	}
	return nil, ErrNoPermission
}

// ownedByTeacher 管理员或作业所属课程的教师
func (s *submissionService) ownedByTeacher(sub *model.Submission, callerID, callerRole string) bool {
	var course *model.Course
	if sub.Assignment != nil {
		course = sub.Assignment.Course
	}
	return ownsCourse(course, callerID, callerRole)
}

// ────────────────────── Resubmit ──────────────────────

func (s *submissionService) Resubmit(ctx context.Context, id string, file UploadFile, callerID, callerRole string) (*dto.SubmissionResponse, error) {
	sub, err := s.getSubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.StudentID != callerID {
		return nil, ErrNoPermission
	}

	stored, err := s.storeFile(ctx, sub.AssignmentID, file)
	if err != nil {
		return nil, err
	}

	oldKey := sub.FilePath
	now := s.now()
	due := now
	if sub.Assignment != nil {
		due = sub.Assignment.DueDate
	}

	sub.FilePath = stored.key
	sub.FileURL = s.store.URL(stored.key)
	sub.Filename = file.Filename
	sub.Mimetype = stored.mime
	sub.FileSize = file.Size
	sub.Status = model.StatusAt(now, due)
	sub.SubmittedAt = &now

	assignment, student := sub.Assignment, sub.Student
	sub.Assignment, sub.Student = nil, nil
	if err := s.repo.Submission.Update(ctx, sub); err != nil {
		s.discard(ctx, stored.key)
		s.logger.Error("更新提交记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	sub.Assignment, sub.Student = assignment, student

	if oldKey != "" && oldKey != stored.key {
		s.discard(ctx, oldKey)
	}

	resp := toSubmissionResponse(sub)
	return &resp, nil
}

// ────────────────────── Grade ──────────────────────

func (s *submissionService) Grade(ctx context.Context, id string, req *dto.GradeSubmissionRequest, callerID, callerRole string) (*dto.SubmissionResponse, error) {
	sub, err := s.getSubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.ownedByTeacher(sub, callerID, callerRole) {
		return nil, ErrNoPermission
	}

	now := s.now()
	grade := *req.Grade
	sub.Grade = &grade
	sub.Feedback = req.Feedback
	sub.GradedAt = &now

	assignment, student := sub.Assignment, sub.Student
	sub.Assignment, sub.Student = nil, nil
	if err := s.repo.Submission.Update(ctx, sub); err != nil {
		s.logger.Error("批改失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	sub.Assignment, sub.Student = assignment, student

	s.logger.Info("作业已批改", zap.String("id", id), zap.Float64("grade", grade), zap.String("operator", callerID))
	resp := toSubmissionResponse(sub)
	return &resp, nil
}

// ────────────────────── Download ──────────────────────

func (s *submissionService) Download(ctx context.Context, id, callerID, callerRole string) (*DownloadFile, error) {
	sub, err := s.getVisible(ctx, id, callerID, callerRole)
	if err != nil {
		return nil, err
	}

	rc, err := s.store.Open(ctx, sub.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			s.logger.Warn("提交文件缺失", zap.String("id", id), zap.String("key", sub.FilePath))
			return nil, ErrSubmissionFileMissing
		}
		return nil, err
	}
	return &DownloadFile{
		Reader:      rc,
		Filename:    sub.Filename,
		ContentType: sub.Mimetype,
		Size:        sub.FileSize,
	}, nil
}

// ────────────────────── Delete ──────────────────────

func (s *submissionService) Delete(ctx context.Context, id, callerID, callerRole string) error {
	sub, err := s.getSubmission(ctx, id)
	if err != nil {
		return err
	}

	switch {
	case s.ownedByTeacher(sub, callerID, callerRole):
	case sub.StudentID == callerID:
		if sub.Grade != nil {
			return ErrSubmissionGraded
		}
	default:
		return ErrNoPermission
	}

	if err := s.repo.Submission.Delete(ctx, id); err != nil {
		s.logger.Error("删除提交失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.discard(ctx, sub.FilePath)
	return nil
}
