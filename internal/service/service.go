package service

import (
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/gamerzord/latihan-magang-lms/config"
	"github.com/gamerzord/latihan-magang-lms/internal/model"
	"github.com/gamerzord/latihan-magang-lms/internal/repository"
	"github.com/gamerzord/latihan-magang-lms/pkg/jwt"
	"github.com/gamerzord/latihan-magang-lms/pkg/redis"
	"github.com/gamerzord/latihan-magang-lms/pkg/storage"
)

// ── 通用业务错误 ──

var (
	ErrNoPermission   = errors.New("无权操作")
	ErrFileRequired   = errors.New("请上传文件")
	ErrFileTooLarge   = errors.New("文件大小超出限制")
	ErrStorageFailure = errors.New("文件存储失败")
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	User       UserService
	Course     CourseService
	Lesson     LessonService
	Assignment AssignmentService
	Enrollment EnrollmentService
	Submission SubmissionService
	Conference ConferenceService
	Schedule   ScheduleEventService
	Export     ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	store storage.Storage,
	jwtMgr *jwt.Manager,
	blacklist redis.Blacklist,
	logger *zap.Logger,
) *Service {
	loc := cfg.Server.Location()
	maxUpload := cfg.Storage.MaxUploadBytes

	return &Service{
		Auth:       NewAuthService(cfg, repo, jwtMgr, blacklist, logger),
		User:       NewUserService(repo, logger),
		Course:     NewCourseService(repo, store, logger),
		Lesson:     NewLessonService(repo, store, maxUpload, logger),
		Assignment: NewAssignmentService(repo, loc, logger),
		Enrollment: NewEnrollmentService(repo, logger),
		Submission: NewSubmissionService(repo, store, maxUpload, logger),
		Conference: NewConferenceService(repo, logger),
		Schedule:   NewScheduleEventService(repo, loc, logger),
		Export:     NewExportService(repo, loc, logger),
	}
}

// ── 文件上传 / 下载 ──

// UploadFile 待存储的上传文件，handler 由 multipart.FileHeader 构造
type UploadFile struct {
	Filename    string
	Size        int64
	ContentType string // 客户端声明的类型，仅在内容嗅探失败时使用
	Open        func() (io.ReadSeekCloser, error)
}

// DownloadFile 待回传的文件流，调用方负责关闭 Reader
type DownloadFile struct {
	Reader      io.ReadCloser
	Filename    string
	ContentType string
	Size        int64
}

// ── 角色判断 ──

func isAdmin(role string) bool { return role == model.RoleAdmin }

// ownsCourse 管理员或课程所属教师
func ownsCourse(course *model.Course, callerID, callerRole string) bool {
	if isAdmin(callerRole) {
		return true
	}
	return callerRole == model.RoleTeacher && course != nil && course.TeacherID == callerID
}

// nowUTC 服务层统一时钟
func nowUTC() time.Time { return time.Now().UTC() }
