package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gamerzord/latihan-magang-lms/internal/dto"
	"github.com/gamerzord/latihan-magang-lms/internal/model"
	"github.com/gamerzord/latihan-magang-lms/internal/repository"
)

// ── 在线会议模块业务错误 ──

var (
	ErrConferenceNotFound       = errors.New("会议不存在")
	ErrConferenceCourseNotFound = errors.New("课程不存在")
	ErrConferenceInvalidState   = errors.New("会议当前状态不允许该操作")
	ErrConferenceNotActive      = errors.New("会议未在进行中")
)

const (
	roomIDLength  = 16
	roomIDCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// ConferenceService 在线会议业务接口
type ConferenceService interface {
	// List 教师查看本人会议，学生查看已选课程的会议
	List(ctx context.Context, callerID, callerRole string) ([]dto.ConferenceResponse, error)
	Create(ctx context.Context, req *dto.CreateConferenceRequest, callerID, callerRole string) (*dto.ConferenceResponse, error)
	GetByID(ctx context.Context, id, callerID, callerRole string) (*dto.ConferenceResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateConferenceRequest, callerID, callerRole string) (*dto.ConferenceResponse, error)
	// Start scheduled → active
	Start(ctx context.Context, id, callerID, callerRole string) (*dto.ConferenceResponse, error)
	// End active → ended
	End(ctx context.Context, id, callerID, callerRole string) (*dto.ConferenceResponse, error)
	// Delete 返回被删除会议的 room_id，供调用方关闭实时房间
	Delete(ctx context.Context, id, callerID, callerRole string) (string, error)
	// Join 校验实时房间的进入资格，仅进行中的会议可进入
	Join(ctx context.Context, id, callerID, callerRole string) (*dto.ConferenceResponse, error)
}

type conferenceService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewConferenceService 创建 ConferenceService 实例
func NewConferenceService(repo *repository.Repository, logger *zap.Logger) ConferenceService {
	return &conferenceService{repo: repo, logger: logger, now: nowUTC}
}

// ────────────────────── List ──────────────────────

func (s *conferenceService) List(ctx context.Context, callerID, callerRole string) ([]dto.ConferenceResponse, error) {
	var filter repository.ConferenceFilter
	switch callerRole {
	case model.RoleAdmin:
	case model.RoleTeacher:
		filter.TeacherID = callerID
	default:
		ids, err := s.repo.Enrollment.ListCourseIDsByStudent(ctx, callerID)
		if err != nil {
			return nil, err
		}
		if ids == nil {
			ids = []string{}
		}
		filter.CourseIDs = ids
	}

	list, err := s.repo.Conference.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询会议列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.ConferenceResponse, 0, len(list))
	for i := range list {
		result = append(result, toConferenceResponse(&list[i]))
	}
	return result, nil
}

// ────────────────────── Create ──────────────────────

func (s *conferenceService) Create(ctx context.Context, req *dto.CreateConferenceRequest, callerID, callerRole string) (*dto.ConferenceResponse, error) {
	if callerRole != model.RoleTeacher {
		return nil, ErrNoPermission
	}

	course, err := s.repo.Course.GetByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConferenceCourseNotFound
		}
		return nil, err
	}
	if course.TeacherID != callerID {
		return nil, ErrNoPermission
	}

	roomID, err := generateRoomID()
	if err != nil {
		s.logger.Error("生成房间号失败", zap.Error(err))
		return nil, err
	}

	c := &model.Conference{
		CourseID:  course.ID,
		TeacherID: callerID,
		Title:     strings.TrimSpace(req.Title),
		RoomID:    roomID,
		Status:    model.ConferenceScheduled,
	}
	if err := s.repo.Conference.Create(ctx, c); err != nil {
		s.logger.Error("创建会议失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("会议已创建", zap.String("id", c.ID), zap.String("course_id", c.CourseID))
	return s.GetByID(ctx, c.ID, callerID, callerRole)
}

// generateRoomID 生成 16 位随机字母数字房间号
func generateRoomID() (string, error) {
	max := big.NewInt(int64(len(roomIDCharset)))
	var sb strings.Builder
	sb.Grow(roomIDLength)
	for i := 0; i < roomIDLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(roomIDCharset[n.Int64()])
	}
	return sb.String(), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *conferenceService) GetByID(ctx context.Context, id, callerID, callerRole string) (*dto.ConferenceResponse, error) {
	c, err := s.getVisible(ctx, id, callerID, callerRole)
	if err != nil {
		return nil, err
	}
	resp := toConferenceResponse(c)
	return &resp, nil
}

func (s *conferenceService) getConference(ctx context.Context, id string) (*model.Conference, error) {
	c, err := s.repo.Conference.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConferenceNotFound
		}
		s.logger.Error("查询会议失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return c, nil
}

// getVisible 管理员、会议所属教师或已选课学生可见
func (s *conferenceService) getVisible(ctx context.Context, id, callerID, callerRole string) (*model.Conference, error) {
	c, err := s.getConference(ctx, id)
	if err != nil {
		return nil, err
	}
	if isAdmin(callerRole) || c.TeacherID == callerID {
		return c, nil
	}
	if callerRole == model.RoleStudent {
		enrolled, err := s.repo.Enrollment.Exists(ctx, c.CourseID, callerID, "")
		if err != nil {
			return nil, err
		}
		if enrolled {
			return c, nil
		}
	}
	return nil, ErrNoPermission
}

// getOwned 仅会议所属教师
func (s *conferenceService) getOwned(ctx context.Context, id, callerID string) (*model.Conference, error) {
	c, err := s.getConference(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.TeacherID != callerID {
		return nil, ErrNoPermission
	}
	return c, nil
}

// ────────────────────── Update ──────────────────────

func (s *conferenceService) Update(ctx context.Context, id string, req *dto.UpdateConferenceRequest, callerID, callerRole string) (*dto.ConferenceResponse, error) {
	c, err := s.getOwned(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	c.Title = strings.TrimSpace(req.Title)
	return s.save(ctx, c)
}

// ────────────────────── Start / End ──────────────────────

func (s *conferenceService) Start(ctx context.Context, id, callerID, callerRole string) (*dto.ConferenceResponse, error) {
	c, err := s.getOwned(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	if c.Status != model.ConferenceScheduled {
		return nil, ErrConferenceInvalidState
	}
	now := s.now()
	c.Status = model.ConferenceActive
	c.StartedAt = &now
	return s.save(ctx, c)
}

func (s *conferenceService) End(ctx context.Context, id, callerID, callerRole string) (*dto.ConferenceResponse, error) {
	c, err := s.getOwned(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	if c.Status != model.ConferenceActive {
		return nil, ErrConferenceInvalidState
	}
	now := s.now()
	c.Status = model.ConferenceEnded
	c.EndedAt = &now
	return s.save(ctx, c)
}

func (s *conferenceService) save(ctx context.Context, c *model.Conference) (*dto.ConferenceResponse, error) {
	course, teacher := c.Course, c.Teacher
	c.Course, c.Teacher = nil, nil
	if err := s.repo.Conference.Update(ctx, c); err != nil {
		s.logger.Error("更新会议失败", zap.String("id", c.ID), zap.Error(err))
		return nil, err
	}
	c.Course, c.Teacher = course, teacher
	resp := toConferenceResponse(c)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *conferenceService) Delete(ctx context.Context, id, callerID, callerRole string) (string, error) {
	c, err := s.getOwned(ctx, id, callerID)
	if err != nil {
		return "", err
	}
	if err := s.repo.Conference.Delete(ctx, id); err != nil {
		s.logger.Error("删除会议失败", zap.String("id", id), zap.Error(err))
		return "", err
	}
	return c.RoomID, nil
}

// ────────────────────── Join ──────────────────────

func (s *conferenceService) Join(ctx context.Context, id, callerID, callerRole string) (*dto.ConferenceResponse, error) {
	c, err := s.getVisible(ctx, id, callerID, callerRole)
	if err != nil {
		return nil, err
	}
	if c.Status != model.ConferenceActive {
		return nil, ErrConferenceNotActive
	}
	resp := toConferenceResponse(c)
	return &resp, nil
}
