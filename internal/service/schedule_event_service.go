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
)

// ── 个人日程模块业务错误 ──

var (
	ErrScheduleEventNotFound  = errors.New("日程不存在")
	ErrScheduleStartInvalid   = errors.New("开始时间格式无效")
	ErrScheduleEndInvalid     = errors.New("结束时间格式无效")
	ErrScheduleEndBeforeStart = errors.New("结束时间必须晚于开始时间")
	ErrScheduleICSInvalid     = errors.New("无法解析的日历文件")
)

// ScheduleEventService 个人日程业务接口，所有操作限定在本人日程内
type ScheduleEventService interface {
	List(ctx context.Context, userID string) ([]dto.ScheduleEventResponse, error)
	Create(ctx context.Context, userID string, req *dto.ScheduleEventRequest) (*dto.ScheduleEventResponse, error)
	Update(ctx context.Context, id, userID string, req *dto.ScheduleEventRequest) (*dto.ScheduleEventResponse, error)
	Delete(ctx context.Context, id, userID string) error
	// Import 将 ICS 文件中的事件导入为个人日程
	Import(ctx context.Context, userID string, file UploadFile) (*dto.ScheduleImportResponse, error)
}

type scheduleEventService struct {
	repo   *repository.Repository
	loc    *time.Location
	logger *zap.Logger
}

// NewScheduleEventService 创建 ScheduleEventService 实例
func NewScheduleEventService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) ScheduleEventService {
	if loc == nil {
		loc = time.UTC
	}
	return &scheduleEventService{repo: repo, loc: loc, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *scheduleEventService) List(ctx context.Context, userID string) ([]dto.ScheduleEventResponse, error) {
	events, err := s.repo.ScheduleEvent.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询日程失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	list := make([]dto.ScheduleEventResponse, 0, len(events))
	for i := range events {
		list = append(list, toScheduleEventResponse(&events[i]))
	}
	return list, nil
}

// ────────────────────── Create ──────────────────────

func (s *scheduleEventService) Create(ctx context.Context, userID string, req *dto.ScheduleEventRequest) (*dto.ScheduleEventResponse, error) {
	e := &model.ScheduleEvent{UserID: userID}
	if err := s.apply(e, req); err != nil {
		return nil, err
	}
	if err := s.repo.ScheduleEvent.Create(ctx, e); err != nil {
		s.logger.Error("创建日程失败", zap.Error(err))
		return nil, err
	}
	resp := toScheduleEventResponse(e)
	return &resp, nil
}

// apply 解析时间区间并写入可编辑字段
func (s *scheduleEventService) apply(e *model.ScheduleEvent, req *dto.ScheduleEventRequest) error {
	start, err := dto.ParseDateTime(strings.TrimSpace(req.Start), s.loc, false)
	if err != nil {
		return ErrScheduleStartInvalid
	}
	end, err := dto.ParseDateTime(strings.TrimSpace(req.End), s.loc, true)
	if err != nil {
		return ErrScheduleEndInvalid
	}
	if !end.After(start) {
		return ErrScheduleEndBeforeStart
	}

	e.Title = strings.TrimSpace(req.Title)
	e.Description = req.Description
	e.Category = req.Category
	e.StartTime = start.UTC()
	e.EndTime = end.UTC()
	e.AllDay = req.AllDay
	e.Color = strings.TrimSpace(req.Color)
	return nil
}

// ────────────────────── Update ──────────────────────

func (s *scheduleEventService) Update(ctx context.Context, id, userID string, req *dto.ScheduleEventRequest) (*dto.ScheduleEventResponse, error) {
	e, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := s.apply(e, req); err != nil {
		return nil, err
	}
	if err := s.repo.ScheduleEvent.Update(ctx, e); err != nil {
		s.logger.Error("更新日程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := toScheduleEventResponse(e)
	return &resp, nil
}

func (s *scheduleEventService) getOwned(ctx context.Context, id, userID string) (*model.ScheduleEvent, error) {
	e, err := s.repo.ScheduleEvent.GetByIDForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleEventNotFound
		}
		return nil, err
	}
	return e, nil
}

// ────────────────────── Delete ──────────────────────

func (s *scheduleEventService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.getOwned(ctx, id, userID); err != nil {
		return err
	}
	if err := s.repo.ScheduleEvent.Delete(ctx, id); err != nil {
		s.logger.Error("删除日程失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Import ──────────────────────

func (s *scheduleEventService) Import(ctx context.Context, userID string, file UploadFile) (*dto.ScheduleImportResponse, error) {
	if file.Open == nil {
		return nil, ErrFileRequired
	}
	if file.Size > icsMaxFileSize {
		return nil, ErrFileTooLarge
	}

	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	events, skipped, err := ParseScheduleICS(rc, userID, s.loc)
	if err != nil {
		s.logger.Warn("ICS 解析失败", zap.String("user_id", userID), zap.Error(err))
		return nil, ErrScheduleICSInvalid
	}

	resp := &dto.ScheduleImportResponse{
		Skipped: skipped,
		Events:  make([]dto.ScheduleEventResponse, 0, len(events)),
	}
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		for i := range events {
			if err := tx.ScheduleEvent.Create(ctx, &events[i]); err != nil {
				return err
			}
			resp.Events = append(resp.Events, toScheduleEventResponse(&events[i]))
		}
		return nil
	})
	if err != nil {
		s.logger.Error("导入日程失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	resp.Imported = len(resp.Events)
	s.logger.Info("日程导入完成", zap.String("user_id", userID), zap.Int("imported", resp.Imported), zap.Int("skipped", skipped))
	return resp, nil
}
