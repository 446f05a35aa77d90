package handler

import (
	"go.uber.org/zap"

	"github.com/gamerzord/latihan-magang-lms/config"
	"github.com/gamerzord/latihan-magang-lms/internal/realtime"
	"github.com/gamerzord/latihan-magang-lms/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	User       *UserHandler
	Course     *CourseHandler
	Lesson     *LessonHandler
	Assignment *AssignmentHandler
	Enrollment *EnrollmentHandler
	Submission *SubmissionHandler
	Conference *ConferenceHandler
	Schedule   *ScheduleHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service, hub *realtime.Hub, logger *zap.Logger) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth, &cfg.Auth),
		User:       NewUserHandler(svc.User),
		Course:     NewCourseHandler(svc.Course),
		Lesson:     NewLessonHandler(svc.Lesson),
		Assignment: NewAssignmentHandler(svc.Assignment),
		Enrollment: NewEnrollmentHandler(svc.Enrollment),
		Submission: NewSubmissionHandler(svc.Submission),
		Conference: NewConferenceHandler(svc.Conference, hub, logger),
		Schedule:   NewScheduleHandler(svc.Schedule),
		Export:     NewExportHandler(svc.Export),
	}
}
