package service

import (
	"github.com/gamerzord/latihan-magang-lms/internal/dto"
	"github.com/gamerzord/latihan-magang-lms/internal/model"
	"github.com/gamerzord/latihan-magang-lms/pkg/storage"
)

// ── model → dto 转换 ──

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: dto.FormatTime(u.CreatedAt),
	}
}

func toUserResponsePtr(u *model.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	r := toUserResponse(u)
	return &r
}

func toCourseBrief(c *model.Course) *dto.CourseBrief {
	if c == nil {
		return nil
	}
	return &dto.CourseBrief{
		ID:         c.ID,
		Title:      c.Title,
		CourseCode: c.CourseCode,
		TeacherID:  c.TeacherID,
	}
}

func toCourseResponse(c *model.Course) dto.CourseResponse {
	return dto.CourseResponse{
		ID:               c.ID,
		Title:            c.Title,
		CourseCode:       c.CourseCode,
		Description:      c.Description,
		TeacherID:        c.TeacherID,
		IsActive:         c.IsActive,
		ThumbnailURL:     c.ThumbnailURL,
		Teacher:          toUserResponsePtr(c.Teacher),
		StudentsCount:    c.StudentsCount,
		LessonsCount:     c.LessonsCount,
		AssignmentsCount: c.AssignmentsCount,
		CreatedAt:        dto.FormatTime(c.CreatedAt),
		UpdatedAt:        dto.FormatTime(c.UpdatedAt),
	}
}

func toAttachmentResponse(a *model.LessonAttachment) dto.AttachmentResponse {
	return dto.AttachmentResponse{
		ID:            a.ID,
		LessonID:      a.LessonID,
		FileName:      a.FileName,
		FileURL:       a.FileURL,
		FileType:      a.FileType,
		MimeType:      a.MimeType,
		FileSize:      a.FileSize,
		FileSizeHuman: storage.HumanSize(a.FileSize),
		CreatedAt:     dto.FormatTime(a.CreatedAt),
	}
}

func toLessonResponse(l *model.Lesson) dto.LessonResponse {
	atts := make([]dto.AttachmentResponse, 0, len(l.Attachments))
	for i := range l.Attachments {
		atts = append(atts, toAttachmentResponse(&l.Attachments[i]))
	}
	return dto.LessonResponse{
		ID:          l.ID,
		CourseID:    l.CourseID,
		Title:       l.Title,
		LessonCode:  l.LessonCode,
		Content:     l.Content,
		Course:      toCourseBrief(l.Course),
		Attachments: atts,
		CreatedAt:   dto.FormatTime(l.CreatedAt),
		UpdatedAt:   dto.FormatTime(l.UpdatedAt),
	}
}

func toAssignmentBrief(a *model.Assignment) *dto.AssignmentBrief {
	if a == nil {
		return nil
	}
	return &dto.AssignmentBrief{
		ID:             a.ID,
		CourseID:       a.CourseID,
		AssignmentCode: a.AssignmentCode,
		Title:          a.Title,
		DueDate:        dto.FormatTime(a.DueDate),
	}
}

func toAssignmentResponse(a *model.Assignment) dto.AssignmentResponse {
	return dto.AssignmentResponse{
		ID:             a.ID,
		CourseID:       a.CourseID,
		AssignmentCode: a.AssignmentCode,
		Title:          a.Title,
		Description:    a.Description,
		DueDate:        dto.FormatTime(a.DueDate),
		Course:         toCourseBrief(a.Course),
		CreatedAt:      dto.FormatTime(a.CreatedAt),
		UpdatedAt:      dto.FormatTime(a.UpdatedAt),
	}
}

func toEnrollmentResponse(e *model.Enrollment) dto.EnrollmentResponse {
	return dto.EnrollmentResponse{
		ID:        e.ID,
		CourseID:  e.CourseID,
		StudentID: e.StudentID,
		Course:    toCourseBrief(e.Course),
		Student:   toUserResponsePtr(e.Student),
		CreatedAt: dto.FormatTime(e.CreatedAt),
		UpdatedAt: dto.FormatTime(e.UpdatedAt),
	}
}

func toSubmissionResponse(s *model.Submission) dto.SubmissionResponse {
	return dto.SubmissionResponse{
		ID:           s.ID,
		AssignmentID: s.AssignmentID,
		StudentID:    s.StudentID,
		FileURL:      s.FileURL,
		Filename:     s.Filename,
		Mimetype:     s.Mimetype,
		FileSize:     s.FileSize,
		Status:       s.Status,
		Grade:        s.Grade,
		Feedback:     s.Feedback,
		SubmittedAt:  dto.FormatTimePtr(s.SubmittedAt),
		GradedAt:     dto.FormatTimePtr(s.GradedAt),
		Assignment:   toAssignmentBrief(s.Assignment),
		Student:      toUserResponsePtr(s.Student),
		CreatedAt:    dto.FormatTime(s.CreatedAt),
		UpdatedAt:    dto.FormatTime(s.UpdatedAt),
	}
}

func toConferenceResponse(c *model.Conference) dto.ConferenceResponse {
	return dto.ConferenceResponse{
		ID:        c.ID,
		CourseID:  c.CourseID,
		TeacherID: c.TeacherID,
		Title:     c.Title,
		RoomID:    c.RoomID,
		Status:    c.Status,
		StartedAt: dto.FormatTimePtr(c.StartedAt),
		EndedAt:   dto.FormatTimePtr(c.EndedAt),
		Course:    toCourseBrief(c.Course),
		Teacher:   toUserResponsePtr(c.Teacher),
		CreatedAt: dto.FormatTime(c.CreatedAt),
		UpdatedAt: dto.FormatTime(c.UpdatedAt),
	}
}

func toScheduleEventResponse(e *model.ScheduleEvent) dto.ScheduleEventResponse {
	return dto.ScheduleEventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Category:    e.Category,
		Start:       dto.FormatTime(e.StartTime),
		End:         dto.FormatTime(e.EndTime),
		Color:       e.Color,
		AllDay:      e.AllDay,
	}
}
