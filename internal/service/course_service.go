package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gamerzord/latihan-magang-lms/internal/dto"
	"github.com/gamerzord/latihan-magang-lms/internal/model"
	"github.com/gamerzord/latihan-magang-lms/internal/repository"
	pkgerrors "github.com/gamerzord/latihan-magang-lms/pkg/errors"
	"github.com/gamerzord/latihan-magang-lms/pkg/storage"
)

// ── 课程模块业务错误 ──

var (
	ErrCourseNotFound       = errors.New("课程不存在")
	ErrCourseCodeExists     = errors.New("课程编号已存在")
	ErrCourseTeacherInvalid = errors.New("授课教师不存在或不是教师角色")
	ErrCourseHasEnrollments = errors.New("课程下仍有选课学生，无法删除")
	ErrThumbnailInvalid     = errors.New("无法识别的图片文件")
)

// 课程封面尺寸（16:9）
const (
	thumbnailWidth  = 800
	thumbnailHeight = 450
)

// CourseService 课程业务接口
type CourseService interface {
	List(ctx context.Context) ([]dto.CourseResponse, error)
	Create(ctx context.Context, req *dto.CourseRequest, callerID, callerRole string) (*dto.CourseResponse, error)
	GetByID(ctx context.Context, id string) (*dto.CourseResponse, error)
	Update(ctx context.Context, id string, req *dto.CourseRequest, callerID, callerRole string) (*dto.CourseResponse, error)
	// Delete 在课程行锁内检查选课人数，避免与并发选课竞争
	Delete(ctx context.Context, id, callerID, callerRole string) error
	UploadThumbnail(ctx context.Context, id string, r io.Reader, callerID, callerRole string) (*dto.CourseResponse, error)

	StudentCourses(ctx context.Context, callerID, callerRole string) ([]dto.StudentCourseResponse, error)
	StudentCourse(ctx context.Context, id, callerID, callerRole string) (*dto.StudentCourseDetailResponse, error)
	TeacherCourses(ctx context.Context, callerID, callerRole string) ([]dto.CourseResponse, error)
	TeacherCourse(ctx context.Context, id, callerID, callerRole string) (*dto.TeacherCourseDetailResponse, error)
	CourseSubmissions(ctx context.Context, id, callerID, callerRole string) ([]dto.SubmissionResponse, error)
}

type courseService struct {
	repo   *repository.Repository
	store  storage.Storage
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, store storage.Storage, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, store: store, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *courseService) List(ctx context.Context) ([]dto.CourseResponse, error) {
	courses, err := s.repo.Course.List(ctx, repository.CourseFilter{})
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return nil, err
	}
	list := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		list = append(list, toCourseResponse(&courses[i]))
	}
	return list, nil
}

// ────────────────────── Create ──────────────────────

func (s *courseService) Create(ctx context.Context, req *dto.CourseRequest, callerID, callerRole string) (*dto.CourseResponse, error) {
	if err := s.checkWritable(ctx, req, "", callerID, callerRole); err != nil {
		return nil, err
	}

	course := &model.Course{
		Title:       strings.TrimSpace(req.Title),
		CourseCode:  strings.TrimSpace(req.CourseCode),
		Description: req.Description,
		TeacherID:   req.TeacherID,
		IsActive:    true,
	}
	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}

	if err := s.repo.Course.Create(ctx, course); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return nil, ErrCourseCodeExists
		}
		s.logger.Error("创建课程失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("课程已创建", zap.String("id", course.ID), zap.String("operator", callerID))
	return s.GetByID(ctx, course.ID)
}

// checkWritable 校验角色、授课教师与课程编号唯一性
func (s *courseService) checkWritable(ctx context.Context, req *dto.CourseRequest, excludeID, callerID, callerRole string) error {
	switch callerRole {
	case model.RoleAdmin:
	case model.RoleTeacher:
		if req.TeacherID != callerID {
			return ErrNoPermission
		}
	default:
		return ErrNoPermission
	}

	teacher, err := s.repo.User.GetByID(ctx, req.TeacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseTeacherInvalid
		}
		return err
	}
	if teacher.Role != model.RoleTeacher {
		return ErrCourseTeacherInvalid
	}

	exists, err := s.repo.Course.ExistsCode(ctx, strings.TrimSpace(req.CourseCode), excludeID)
	if err != nil {
		return err
	}
	if exists {
		return ErrCourseCodeExists
	}
	return nil
}

// ────────────────────── GetByID ──────────────────────

func (s *courseService) GetByID(ctx context.Context, id string) (*dto.CourseResponse, error) {
	course, err := s.getCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toCourseResponse(course)
	return &resp, nil
}

func (s *courseService) getCourse(ctx context.Context, id string) (*model.Course, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return course, nil
}

// ────────────────────── Update ──────────────────────

func (s *courseService) Update(ctx context.Context, id string, req *dto.CourseRequest, callerID, callerRole string) (*dto.CourseResponse, error) {
	course, err := s.getCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ownsCourse(course, callerID, callerRole) {
		return nil, ErrNoPermission
	}
	if err := s.checkWritable(ctx, req, id, callerID, callerRole); err != nil {
		return nil, err
	}

	course.Title = strings.TrimSpace(req.Title)
	course.CourseCode = strings.TrimSpace(req.CourseCode)
	course.Description = req.Description
	course.TeacherID = req.TeacherID
	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}
	course.Teacher = nil

	if err := s.repo.Course.Update(ctx, course); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return nil, ErrCourseCodeExists
		}
		s.logger.Error("更新课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// ────────────────────── Delete ──────────────────────

func (s *courseService) Delete(ctx context.Context, id, callerID, callerRole string) error {
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		course, err := tx.Course.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCourseNotFound
			}
			return err
		}
		if !ownsCourse(course, callerID, callerRole) {
			return ErrNoPermission
		}

		count, err := tx.Enrollment.CountByCourse(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrCourseHasEnrollments
		}
		return tx.Course.Delete(ctx, id)
	})
	if err != nil {
		if !errors.Is(err, ErrCourseNotFound) && !errors.Is(err, ErrNoPermission) && !errors.Is(err, ErrCourseHasEnrollments) {
			s.logger.Error("删除课程失败", zap.String("id", id), zap.Error(err))
		}
		return err
	}

	s.logger.Info("课程已删除", zap.String("id", id), zap.String("operator", callerID))
	return nil
}

// ────────────────────── UploadThumbnail ──────────────────────

func (s *courseService) UploadThumbnail(ctx context.Context, id string, r io.Reader, callerID, callerRole string) (*dto.CourseResponse, error) {
	course, err := s.getCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ownsCourse(course, callerID, callerRole) {
		return nil, ErrNoPermission
	}

	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, ErrThumbnailInvalid
	}
	img = imaging.Fill(img, thumbnailWidth, thumbnailHeight, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		s.logger.Error("封面编码失败", zap.Error(err))
		return nil, err
	}

	key := fmt.Sprintf("thumbnails/courses/%s-%s.jpg", course.ID, uuid.NewString()[:8])
	if err := s.store.Put(ctx, key, &buf, int64(buf.Len()), "image/jpeg"); err != nil {
		s.logger.Error("封面写入存储失败", zap.String("key", key), zap.Error(err))
		return nil, ErrStorageFailure
	}

	oldPath := course.ThumbnailPath
	url := s.store.URL(key)
	course.ThumbnailPath = &key
	course.ThumbnailURL = &url
	course.Teacher = nil
	if err := s.repo.Course.Update(ctx, course); err != nil {
		_ = s.store.Delete(ctx, key)
		s.logger.Error("更新课程封面失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if oldPath != nil && *oldPath != "" {
		if err := s.store.Delete(ctx, *oldPath); err != nil {
			s.logger.Warn("删除旧封面失败", zap.String("key", *oldPath), zap.Error(err))
		}
	}
	return s.GetByID(ctx, id)
}

// ────────────────────── Student views ──────────────────────

func (s *courseService) StudentCourses(ctx context.Context, callerID, callerRole string) ([]dto.StudentCourseResponse, error) {
	if callerRole != model.RoleStudent {
		return nil, ErrNoPermission
	}

	courses, err := s.repo.Course.List(ctx, repository.CourseFilter{StudentID: callerID})
	if err != nil {
		s.logger.Error("查询学生课程失败", zap.Error(err))
		return nil, err
	}

	list := make([]dto.StudentCourseResponse, 0, len(courses))
	for i := range courses {
		done, err := s.repo.Completion.ListLessonIDs(ctx, callerID, courses[i].ID)
		if err != nil {
			return nil, err
		}
		list = append(list, dto.StudentCourseResponse{
			CourseResponse: toCourseResponse(&courses[i]),
			Progress:       computeProgress(len(done), int(courses[i].LessonsCount)),
		})
	}
	return list, nil
}

func (s *courseService) StudentCourse(ctx context.Context, id, callerID, callerRole string) (*dto.StudentCourseDetailResponse, error) {
	if callerRole != model.RoleStudent {
		return nil, ErrNoPermission
	}

	enrolled, err := s.repo.Enrollment.Exists(ctx, id, callerID, "")
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, ErrCourseNotFound
	}

	course, err := s.getCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	lessons, err := s.repo.Lesson.ListByCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	assignments, err := s.repo.Assignment.ListByCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	doneIDs, err := s.repo.Completion.ListLessonIDs(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	subs, err := s.repo.Submission.List(ctx, repository.SubmissionFilter{StudentID: callerID, CourseID: id})
	if err != nil {
		return nil, err
	}

	done := make(map[string]bool, len(doneIDs))
	for _, lid := range doneIDs {
		done[lid] = true
	}
	byAssignment := make(map[string]*model.Submission, len(subs))
	for i := range subs {
		byAssignment[subs[i].AssignmentID] = &subs[i]
	}

	resp := &dto.StudentCourseDetailResponse{
		CourseResponse: toCourseResponse(course),
		Lessons:        make([]dto.LessonResponse, 0, len(lessons)),
		Assignments:    make([]dto.StudentAssignmentResponse, 0, len(assignments)),
	}
	completed := 0
	for i := range lessons {
		lr := toLessonResponse(&lessons[i])
		c := done[lessons[i].ID]
		if c {
			completed++
		}
		lr.Completed = &c
		resp.Lessons = append(resp.Lessons, lr)
	}
	resp.Progress = computeProgress(completed, len(lessons))

	for i := range assignments {
		item := dto.StudentAssignmentResponse{
			AssignmentResponse: toAssignmentResponse(&assignments[i]),
			SubmissionStatus:   model.SubmissionNotSubmitted,
		}
		if sub, ok := byAssignment[assignments[i].ID]; ok {
			subID := sub.ID
			item.SubmissionID = &subID
			item.SubmissionStatus = sub.Status
			item.Grade = sub.Grade
		}
		resp.Assignments = append(resp.Assignments, item)
	}
	return resp, nil
}

// ────────────────────── Teacher views ──────────────────────

func (s *courseService) TeacherCourses(ctx context.Context, callerID, callerRole string) ([]dto.CourseResponse, error) {
	if callerRole != model.RoleTeacher {
		return nil, ErrNoPermission
	}

	courses, err := s.repo.Course.List(ctx, repository.CourseFilter{TeacherID: callerID})
	if err != nil {
		s.logger.Error("查询教师课程失败", zap.Error(err))
		return nil, err
	}
	list := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		list = append(list, toCourseResponse(&courses[i]))
	}
	return list, nil
}

func (s *courseService) TeacherCourse(ctx context.Context, id, callerID, callerRole string) (*dto.TeacherCourseDetailResponse, error) {
	if callerRole != model.RoleTeacher {
		return nil, ErrNoPermission
	}

	course, err := s.getCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if course.TeacherID != callerID {
		return nil, ErrCourseNotFound
	}

	students, err := s.repo.Enrollment.ListStudents(ctx, id)
	if err != nil {
		return nil, err
	}
	lessons, err := s.repo.Lesson.ListByCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	assignments, err := s.repo.Assignment.ListByCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := &dto.TeacherCourseDetailResponse{
		CourseResponse: toCourseResponse(course),
		Students:       make([]dto.UserResponse, 0, len(students)),
		Lessons:        make([]dto.LessonResponse, 0, len(lessons)),
		Assignments:    make([]dto.AssignmentResponse, 0, len(assignments)),
	}
	for i := range students {
		resp.Students = append(resp.Students, toUserResponse(&students[i]))
	}
	for i := range lessons {
		resp.Lessons = append(resp.Lessons, toLessonResponse(&lessons[i]))
	}
	for i := range assignments {
		ar := toAssignmentResponse(&assignments[i])
		if ar.SubmissionsCount, err = s.repo.Submission.CountByAssignment(ctx, assignments[i].ID); err != nil {
			return nil, err
		}
		resp.Assignments = append(resp.Assignments, ar)
	}

	// 统计值与详情列表同源
	resp.StudentsCount = int64(len(resp.Students))
	resp.LessonsCount = int64(len(resp.Lessons))
	resp.AssignmentsCount = int64(len(resp.Assignments))
	return resp, nil
}

func (s *courseService) CourseSubmissions(ctx context.Context, id, callerID, callerRole string) ([]dto.SubmissionResponse, error) {
	if callerRole != model.RoleTeacher {
		return nil, ErrNoPermission
	}

	course, err := s.getCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if course.TeacherID != callerID {
		return nil, ErrNoPermission
	}

	subs, err := s.repo.Submission.List(ctx, repository.SubmissionFilter{CourseID: id})
	if err != nil {
		s.logger.Error("查询课程提交失败", zap.String("course_id", id), zap.Error(err))
		return nil, err
	}
	list := make([]dto.SubmissionResponse, 0, len(subs))
	for i := range subs {
		list = append(list, toSubmissionResponse(&subs[i]))
	}
	return list, nil
}

// computeProgress 课程进度百分比，无课时返回 0
func computeProgress(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
