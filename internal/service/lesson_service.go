package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gamerzord/latihan-magang-lms/internal/dto"
	"github.com/gamerzord/latihan-magang-lms/internal/model"
	"github.com/gamerzord/latihan-magang-lms/internal/repository"
	pkgerrors "github.com/gamerzord/latihan-magang-lms/pkg/errors"
	"github.com/gamerzord/latihan-magang-lms/pkg/storage"
)

// ── 课时模块业务错误 ──

var (
	ErrLessonNotFound        = errors.New("课时不存在")
	ErrLessonCodeExists      = errors.New("课时编号已存在")
	ErrLessonCourseNotFound  = errors.New("所属课程不存在")
	ErrAttachmentNotFound    = errors.New("附件不存在")
	ErrAttachmentFileMissing = errors.New("附件文件已丢失")
	ErrNotEnrolled           = errors.New("未选修该课程")
)

// LessonService 课时与附件业务接口
type LessonService interface {
	List(ctx context.Context, req *dto.LessonListRequest) ([]dto.LessonResponse, error)
	Create(ctx context.Context, req *dto.LessonRequest, callerID, callerRole string) (*dto.LessonResponse, error)
	GetByID(ctx context.Context, id string) (*dto.LessonResponse, error)
	Update(ctx context.Context, id string, req *dto.LessonRequest, callerID, callerRole string) (*dto.LessonResponse, error)
	// Delete 先删除全部附件文件与记录，再软删除课时
	Delete(ctx context.Context, id, callerID, callerRole string) error

	UploadAttachments(ctx context.Context, lessonID string, files []UploadFile, callerID, callerRole string) ([]dto.AttachmentResponse, error)
	GetAttachment(ctx context.Context, id string) (*dto.AttachmentResponse, error)
	DownloadAttachment(ctx context.Context, id string) (*DownloadFile, error)
	DeleteAttachment(ctx context.Context, id, callerID, callerRole string) error

	Complete(ctx context.Context, lessonID, callerID, callerRole string) (*dto.LessonProgressResponse, error)
	Uncomplete(ctx context.Context, lessonID, callerID, callerRole string) (*dto.LessonProgressResponse, error)
}

type lessonService struct {
	repo      *repository.Repository
	store     storage.Storage
	maxUpload int64
	logger    *zap.Logger
}

// NewLessonService 创建 LessonService 实例
func NewLessonService(repo *repository.Repository, store storage.Storage, maxUpload int64, logger *zap.Logger) LessonService {
	return &lessonService{repo: repo, store: store, maxUpload: maxUpload, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *lessonService) List(ctx context.Context, req *dto.LessonListRequest) ([]dto.LessonResponse, error) {
	lessons, err := s.repo.Lesson.List(ctx, req.CourseID)
	if err != nil {
		s.logger.Error("查询课时列表失败", zap.Error(err))
		return nil, err
	}
	list := make([]dto.LessonResponse, 0, len(lessons))
	for i := range lessons {
		list = append(list, toLessonResponse(&lessons[i]))
	}
	return list, nil
}

// ────────────────────── Create ──────────────────────

func (s *lessonService) Create(ctx context.Context, req *dto.LessonRequest, callerID, callerRole string) (*dto.LessonResponse, error) {
	if err := s.checkWritable(ctx, req, "", callerID, callerRole); err != nil {
		return nil, err
	}

	lesson := &model.Lesson{
		CourseID:   req.CourseID,
		Title:      strings.TrimSpace(req.Title),
		LessonCode: strings.TrimSpace(req.LessonCode),
		Content:    req.Content,
	}
	if err := s.repo.Lesson.Create(ctx, lesson); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return nil, ErrLessonCodeExists
		}
		s.logger.Error("创建课时失败", zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, lesson.ID)
}

// checkWritable 校验目标课程归属与课时编号唯一性
func (s *lessonService) checkWritable(ctx context.Context, req *dto.LessonRequest, excludeID, callerID, callerRole string) error {
	course, err := s.repo.Course.GetByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLessonCourseNotFound
		}
		return err
	}
	if !ownsCourse(course, callerID, callerRole) {
		return ErrNoPermission
	}

	exists, err := s.repo.Lesson.ExistsCode(ctx, strings.TrimSpace(req.LessonCode), excludeID)
	if err != nil {
		return err
	}
	if exists {
		return ErrLessonCodeExists
	}
	return nil
}

// ────────────────────── GetByID ──────────────────────

func (s *lessonService) GetByID(ctx context.Context, id string) (*dto.LessonResponse, error) {
	lesson, err := s.getLesson(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toLessonResponse(lesson)
	return &resp, nil
}

func (s *lessonService) getLesson(ctx context.Context, id string) (*model.Lesson, error) {
	lesson, err := s.repo.Lesson.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		s.logger.Error("查询课时失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return lesson, nil
}

// ────────────────────── Update ──────────────────────

func (s *lessonService) Update(ctx context.Context, id string, req *dto.LessonRequest, callerID, callerRole string) (*dto.LessonResponse, error) {
	lesson, err := s.getLesson(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ownsCourse(lesson.Course, callerID, callerRole) {
		return nil, ErrNoPermission
	}
	if err := s.checkWritable(ctx, req, id, callerID, callerRole); err != nil {
		return nil, err
	}

	lesson.CourseID = req.CourseID
	lesson.Title = strings.TrimSpace(req.Title)
	lesson.LessonCode = strings.TrimSpace(req.LessonCode)
	lesson.Content = req.Content
	lesson.Course = nil
	lesson.Attachments = nil

	if err := s.repo.Lesson.Update(ctx, lesson); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return nil, ErrLessonCodeExists
		}
		s.logger.Error("更新课时失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// ────────────────────── Delete ──────────────────────

func (s *lessonService) Delete(ctx context.Context, id, callerID, callerRole string) error {
	lesson, err := s.getLesson(ctx, id)
	if err != nil {
		return err
	}
	if !ownsCourse(lesson.Course, callerID, callerRole) {
		return ErrNoPermission
	}

	atts, err := s.repo.Attachment.ListByLesson(ctx, id)
	if err != nil {
		return err
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Attachment.DeleteByLesson(ctx, id); err != nil {
			return err
		}
		return tx.Lesson.Delete(ctx, id)
	})
	if err != nil {
		s.logger.Error("删除课时失败", zap.String("id", id), zap.Error(err))
		return err
	}

	// 记录已删除，文件删除失败留给孤儿文件清理任务
	for _, a := range atts {
		if err := s.store.Delete(ctx, a.FilePath); err != nil {
			s.logger.Warn("删除附件文件失败", zap.String("key", a.FilePath), zap.Error(err))
		}
	}

	s.logger.Info("课时已删除", zap.String("id", id), zap.Int("attachments", len(atts)), zap.String("operator", callerID))
	return nil
}

// ────────────────────── Attachments ──────────────────────

func (s *lessonService) UploadAttachments(ctx context.Context, lessonID string, files []UploadFile, callerID, callerRole string) ([]dto.AttachmentResponse, error) {
	lesson, err := s.getLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if !ownsCourse(lesson.Course, callerID, callerRole) {
		return nil, ErrNoPermission
	}
	if len(files) == 0 {
		return nil, ErrFileRequired
	}
	for _, f := range files {
		if f.Size > s.maxUpload {
			return nil, ErrFileTooLarge
		}
	}

	atts := make([]model.LessonAttachment, 0, len(files))
	var stored []string
	rollback := func() {
		for _, key := range stored {
			if err := s.store.Delete(ctx, key); err != nil {
				s.logger.Warn("回滚附件文件失败", zap.String("key", key), zap.Error(err))
			}
		}
	}

	for _, f := range files {
		att, err := s.storeAttachment(ctx, lessonID, f)
		if err != nil {
			rollback()
			return nil, err
		}
		stored = append(stored, att.FilePath)
		atts = append(atts, *att)
	}

	if err := s.repo.Attachment.CreateBatch(ctx, atts); err != nil {
		rollback()
		s.logger.Error("保存附件记录失败", zap.String("lesson_id", lessonID), zap.Error(err))
		return nil, err
	}

	list := make([]dto.AttachmentResponse, 0, len(atts))
	for i := range atts {
		list = append(list, toAttachmentResponse(&atts[i]))
	}
	s.logger.Info("附件已上传", zap.String("lesson_id", lessonID), zap.Int("count", len(atts)))
	return list, nil
}

// storeAttachment 嗅探 MIME、生成存储键并写入存储
func (s *lessonService) storeAttachment(ctx context.Context, lessonID string, f UploadFile) (*model.LessonAttachment, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	mime, err := storage.DetectMIME(rc, f.Filename, f.ContentType)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("lessons/%s/%s%s", lessonID, uuid.NewString(), storage.ExtensionFor(f.Filename, mime))
	if err := s.store.Put(ctx, key, rc, f.Size, mime); err != nil {
		s.logger.Error("附件写入存储失败", zap.String("key", key), zap.Error(err))
		return nil, ErrStorageFailure
	}

	return &model.LessonAttachment{
		LessonID: lessonID,
		FileName: f.Filename,
		FilePath: key,
		FileURL:  s.store.URL(key),
		FileType: storage.Classify(mime),
		MimeType: mime,
		FileSize: f.Size,
	}, nil
}

func (s *lessonService) GetAttachment(ctx context.Context, id string) (*dto.AttachmentResponse, error) {
	att, err := s.getAttachment(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toAttachmentResponse(att)
	return &resp, nil
}

func (s *lessonService) getAttachment(ctx context.Context, id string) (*model.LessonAttachment, error) {
	att, err := s.repo.Attachment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttachmentNotFound
		}
		s.logger.Error("查询附件失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return att, nil
}

func (s *lessonService) DownloadAttachment(ctx context.Context, id string) (*DownloadFile, error) {
	att, err := s.getAttachment(ctx, id)
	if err != nil {
		return nil, err
	}
	rc, err := s.store.Open(ctx, att.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			s.logger.Warn("附件文件缺失", zap.String("id", id), zap.String("key", att.FilePath))
			return nil, ErrAttachmentFileMissing
		}
		return nil, err
	}
	return &DownloadFile{
		Reader:      rc,
		Filename:    att.FileName,
		ContentType: att.MimeType,
		Size:        att.FileSize,
	}, nil
}

func (s *lessonService) DeleteAttachment(ctx context.Context, id, callerID, callerRole string) error {
	att, err := s.getAttachment(ctx, id)
	if err != nil {
		return err
	}
	var course *model.Course
	if att.Lesson != nil {
		course = att.Lesson.Course
	}
	if !ownsCourse(course, callerID, callerRole) {
		return ErrNoPermission
	}

	if err := s.store.Delete(ctx, att.FilePath); err != nil {
		s.logger.Error("删除附件文件失败", zap.String("key", att.FilePath), zap.Error(err))
		return ErrStorageFailure
	}
	if err := s.repo.Attachment.Delete(ctx, id); err != nil {
		s.logger.Error("删除附件记录失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Progress ──────────────────────

func (s *lessonService) Complete(ctx context.Context, lessonID, callerID, callerRole string) (*dto.LessonProgressResponse, error) {
	lesson, err := s.checkLearner(ctx, lessonID, callerID, callerRole)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Completion.Create(ctx, &model.LessonCompletion{
		LessonID:    lessonID,
		StudentID:   callerID,
		CompletedAt: nowUTC(),
	}); err != nil {
		s.logger.Error("记录课时完成失败", zap.Error(err))
		return nil, err
	}
	return s.progress(ctx, lesson, callerID, true)
}

func (s *lessonService) Uncomplete(ctx context.Context, lessonID, callerID, callerRole string) (*dto.LessonProgressResponse, error) {
	lesson, err := s.checkLearner(ctx, lessonID, callerID, callerRole)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Completion.Delete(ctx, lessonID, callerID); err != nil {
		s.logger.Error("取消课时完成失败", zap.Error(err))
		return nil, err
	}
	return s.progress(ctx, lesson, callerID, false)
}

// checkLearner 仅已选课学生可标记进度
func (s *lessonService) checkLearner(ctx context.Context, lessonID, callerID, callerRole string) (*model.Lesson, error) {
	if callerRole != model.RoleStudent {
		return nil, ErrNoPermission
	}
	lesson, err := s.getLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	enrolled, err := s.repo.Enrollment.Exists(ctx, lesson.CourseID, callerID, "")
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}
	return lesson, nil
}

func (s *lessonService) progress(ctx context.Context, lesson *model.Lesson, studentID string, completed bool) (*dto.LessonProgressResponse, error) {
	lessons, err := s.repo.Lesson.ListByCourse(ctx, lesson.CourseID)
	if err != nil {
		return nil, err
	}
	done, err := s.repo.Completion.ListLessonIDs(ctx, studentID, lesson.CourseID)
	if err != nil {
		return nil, err
	}
	return &dto.LessonProgressResponse{
		LessonID:  lesson.ID,
		CourseID:  lesson.CourseID,
		Completed: completed,
		Progress:  computeProgress(len(done), len(lessons)),
	}, nil
}
