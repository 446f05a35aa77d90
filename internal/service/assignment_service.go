package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gamerzord/latihan-magang-lms/internal/dto"
	"github.com/gamerzord/latihan-magang-lms/internal/model"
	"github.com/gamerzord/latihan-magang-lms/internal/repository"
	pkgerrors "github.com/gamerzord/latihan-magang-lms/pkg/errors"
)

// ── 作业模块业务错误 ──

var (
	ErrAssignmentNotFound       = errors.New("作业不存在")
	ErrAssignmentCodeExists     = errors.New("作业编号已存在")
	ErrAssignmentCourseNotFound = errors.New("所属课程不存在")
	ErrAssignmentDueDateInvalid = errors.New("截止时间格式无效")
	ErrAssignmentHasSubmissions = errors.New("作业已有学生提交，无法删除")
)

// AssignmentService 作业业务接口
type AssignmentService interface {
	List(ctx context.Context, req *dto.AssignmentListRequest) ([]dto.AssignmentResponse, error)
	Create(ctx context.Context, req *dto.AssignmentRequest, callerID, callerRole string) (*dto.AssignmentResponse, error)
	GetByID(ctx context.Context, id string) (*dto.AssignmentResponse, error)
	Update(ctx context.Context, id string, req *dto.AssignmentRequest, callerID, callerRole string) (*dto.AssignmentResponse, error)
	Delete(ctx context.Context, id, callerID, callerRole string) error
}

type assignmentService struct {
	repo   *repository.Repository
	loc    *time.Location
	logger *zap.Logger
}

// NewAssignmentService 创建 AssignmentService 实例
// loc 用于解析仅含日期的截止时间
func NewAssignmentService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) AssignmentService {
	if loc == nil {
		loc = time.UTC
	}
	return &assignmentService{repo: repo, loc: loc, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *assignmentService) List(ctx context.Context, req *dto.AssignmentListRequest) ([]dto.AssignmentResponse, error) {
	list, err := s.repo.Assignment.List(ctx, req.CourseID)
	if err != nil {
		s.logger.Error("查询作业列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.AssignmentResponse, 0, len(list))
	for i := range list {
		result = append(result, toAssignmentResponse(&list[i]))
	}
	return result, nil
}

// ────────────────────── Create ──────────────────────

func (s *assignmentService) Create(ctx context.Context, req *dto.AssignmentRequest, callerID, callerRole string) (*dto.AssignmentResponse, error) {
	due, err := s.checkWritable(ctx, req, "", callerID, callerRole)
	if err != nil {
		return nil, err
	}

	a := &model.Assignment{
		CourseID:       req.CourseID,
		AssignmentCode: strings.TrimSpace(req.AssignmentCode),
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		DueDate:        due,
	}
	if err := s.repo.Assignment.Create(ctx, a); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return nil, ErrAssignmentCodeExists
		}
		s.logger.Error("创建作业失败", zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, a.ID)
}

// checkWritable 校验课程归属、编号唯一性并解析截止时间
func (s *assignmentService) checkWritable(ctx context.Context, req *dto.AssignmentRequest, excludeID, callerID, callerRole string) (time.Time, error) {
	due, err := dto.ParseDateTime(strings.TrimSpace(req.DueDate), s.loc, true)
	if err != nil {
		return time.Time{}, ErrAssignmentDueDateInvalid
	}

	course, err := s.repo.Course.GetByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, ErrAssignmentCourseNotFound
		}
		return time.Time{}, err
	}
	if !ownsCourse(course, callerID, callerRole) {
		return time.Time{}, ErrNoPermission
	}

	exists, err := s.repo.Assignment.ExistsCode(ctx, strings.TrimSpace(req.AssignmentCode), excludeID)
	if err != nil {
		return time.Time{}, err
	}
	if exists {
		return time.Time{}, ErrAssignmentCodeExists
	}
	return due.UTC(), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *assignmentService) GetByID(ctx context.Context, id string) (*dto.AssignmentResponse, error) {
	a, err := s.getAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toAssignmentResponse(a)
	if resp.SubmissionsCount, err = s.repo.Submission.CountByAssignment(ctx, id); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *assignmentService) getAssignment(ctx context.Context, id string) (*model.Assignment, error) {
	a, err := s.repo.Assignment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		s.logger.Error("查询作业失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return a, nil
}

// ────────────────────── Update ──────────────────────

func (s *assignmentService) Update(ctx context.Context, id string, req *dto.AssignmentRequest, callerID, callerRole string) (*dto.AssignmentResponse, error) {
	a, err := s.getAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ownsCourse(a.Course, callerID, callerRole) {
		return nil, ErrNoPermission
	}
	due, err := s.checkWritable(ctx, req, id, callerID, callerRole)
	if err != nil {
		return nil, err
	}

	a.CourseID = req.CourseID
	a.AssignmentCode = strings.TrimSpace(req.AssignmentCode)
	a.Title = strings.TrimSpace(req.Title)
	a.Description = req.Description
	a.DueDate = due
	a.Course = nil

	if err := s.repo.Assignment.Update(ctx, a); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return nil, ErrAssignmentCodeExists
		}
		s.logger.Error("更新作业失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// ────────────────────── Delete ──────────────────────

func (s *assignmentService) Delete(ctx context.Context, id, callerID, callerRole string) error {
	a, err := s.getAssignment(ctx, id)
	if err != nil {
		return err
	}
	if !ownsCourse(a.Course, callerID, callerRole) {
		return ErrNoPermission
	}

	count, err := s.repo.Submission.CountByAssignment(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrAssignmentHasSubmissions
	}

	if err := s.repo.Assignment.Delete(ctx, id); err != nil {
		s.logger.Error("删除作业失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}
