package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gamerzord/latihan-magang-lms/internal/dto"
	"github.com/gamerzord/latihan-magang-lms/internal/model"
	"github.com/gamerzord/latihan-magang-lms/internal/repository"
	pkgerrors "github.com/gamerzord/latihan-magang-lms/pkg/errors"
)

// ── 选课模块业务错误 ──

var (
	ErrEnrollmentNotFound       = errors.New("选课记录不存在")
	ErrEnrollmentExists         = errors.New("该学生已选修此课程")
	ErrEnrollmentCourseNotFound = errors.New("课程不存在")
	ErrEnrollmentStudentInvalid = errors.New("学生不存在或不是学生角色")
)

// EnrollmentService 选课业务接口
type EnrollmentService interface {
	// List 管理员查看全部，教师查看本人课程，学生查看本人
	List(ctx context.Context, req *dto.EnrollmentListRequest, callerID, callerRole string) ([]dto.EnrollmentResponse, error)
	// Create 在课程行锁内完成校验与写入
	Create(ctx context.Context, req *dto.EnrollmentRequest, callerID, callerRole string) (*dto.EnrollmentResponse, error)
	GetByID(ctx context.Context, id, callerID, callerRole string) (*dto.EnrollmentResponse, error)
	Update(ctx context.Context, id string, req *dto.EnrollmentRequest, callerID, callerRole string) (*dto.EnrollmentResponse, error)
	Delete(ctx context.Context, id, callerID, callerRole string) error
}

type enrollmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEnrollmentService 创建 EnrollmentService 实例
func NewEnrollmentService(repo *repository.Repository, logger *zap.Logger) EnrollmentService {
	return &enrollmentService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *enrollmentService) List(ctx context.Context, req *dto.EnrollmentListRequest, callerID, callerRole string) ([]dto.EnrollmentResponse, error) {
	filter := repository.EnrollmentFilter{CourseID: req.CourseID, StudentID: req.StudentID}
	switch callerRole {
	case model.RoleAdmin:
	case model.RoleTeacher:
		filter.TeacherID = callerID
	default:
		filter.StudentID = callerID
	}

	list, err := s.repo.Enrollment.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询选课列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.EnrollmentResponse, 0, len(list))
	for i := range list {
		result = append(result, toEnrollmentResponse(&list[i]))
	}
	return result, nil
}

// ────────────────────── Create ──────────────────────

func (s *enrollmentService) Create(ctx context.Context, req *dto.EnrollmentRequest, callerID, callerRole string) (*dto.EnrollmentResponse, error) {
	e := &model.Enrollment{CourseID: req.CourseID, StudentID: req.StudentID}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := s.checkWritable(ctx, tx, req, "", callerID, callerRole); err != nil {
			return err
		}
		return tx.Enrollment.Create(ctx, e)
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return nil, ErrEnrollmentExists
		}
		return nil, err
	}

	s.logger.Info("选课已创建", zap.String("id", e.ID), zap.String("course_id", e.CourseID), zap.String("student_id", e.StudentID))
	return s.GetByID(ctx, e.ID, callerID, callerRole)
}

// checkWritable 锁定课程行后校验归属、学生角色与唯一性
func (s *enrollmentService) checkWritable(ctx context.Context, tx *repository.Repository, req *dto.EnrollmentRequest, excludeID, callerID, callerRole string) error {
	course, err := tx.Course.GetByIDForUpdate(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEnrollmentCourseNotFound
		}
		return err
	}
	if !ownsCourse(course, callerID, callerRole) {
		return ErrNoPermission
	}

	student, err := tx.User.GetByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEnrollmentStudentInvalid
		}
		return err
	}
	if student.Role != model.RoleStudent {
		return ErrEnrollmentStudentInvalid
	}

	exists, err := tx.Enrollment.Exists(ctx, req.CourseID, req.StudentID, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return ErrEnrollmentExists
	}
	return nil
}

// ────────────────────── GetByID ──────────────────────

func (s *enrollmentService) GetByID(ctx context.Context, id, callerID, callerRole string) (*dto.EnrollmentResponse, error) {
	e, err := s.getEnrollment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin(callerRole) && e.StudentID != callerID && !ownsCourse(e.Course, callerID, callerRole) {
		return nil, ErrNoPermission
	}
	resp := toEnrollmentResponse(e)
	return &resp, nil
}

func (s *enrollmentService) getEnrollment(ctx context.Context, id string) (*model.Enrollment, error) {
	e, err := s.repo.Enrollment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		s.logger.Error("查询选课失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return e, nil
}

// ────────────────────── Update ──────────────────────

func (s *enrollmentService) Update(ctx context.Context, id string, req *dto.EnrollmentRequest, callerID, callerRole string) (*dto.EnrollmentResponse, error) {
	e, err := s.getEnrollment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ownsCourse(e.Course, callerID, callerRole) {
		return nil, ErrNoPermission
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := s.checkWritable(ctx, tx, req, id, callerID, callerRole); err != nil {
			return err
		}
		e.CourseID = req.CourseID
		e.StudentID = req.StudentID
		e.Course = nil
		e.Student = nil
		return tx.Enrollment.Update(ctx, e)
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return nil, ErrEnrollmentExists
		}
		return nil, err
	}
	return s.GetByID(ctx, id, callerID, callerRole)
}

// ────────────────────── Delete ──────────────────────

func (s *enrollmentService) Delete(ctx context.Context, id, callerID, callerRole string) error {
	e, err := s.getEnrollment(ctx, id)
	if err != nil {
		return err
	}
	if !ownsCourse(e.Course, callerID, callerRole) {
		return ErrNoPermission
	}
	if err := s.repo.Enrollment.Delete(ctx, id); err != nil {
		s.logger.Error("删除选课失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}
