package model

import "time"

// 提交状态
const (
	SubmissionNotSubmitted = "not_submitted"
	SubmissionSubmitted    = "submitted"
	SubmissionLate         = "late"
)

// Submission 作业提交表 — 对应 submissions
type Submission struct {
	ID           string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	AssignmentID string     `gorm:"type:uuid;not null"                             json:"assignment_id"`
	StudentID    string     `gorm:"type:uuid;not null"                             json:"student_id"`
	FilePath     string     `gorm:"type:varchar(500);not null"                     json:"-"`
	FileURL      string     `gorm:"type:varchar(1000);not null"                    json:"file_url"`
	Filename     string     `gorm:"type:varchar(255);not null"                     json:"filename"`
	Mimetype     string     `gorm:"type:varchar(255)"                              json:"mimetype"`
	FileSize     int64      `gorm:"not null;default:0"                             json:"file_size"`
	Status       string     `gorm:"type:varchar(20);not null"                      json:"status"`
	Grade        *float64   `gorm:"type:numeric(5,2)"                              json:"grade"`
	Feedback     *string    `gorm:"type:text"                                      json:"feedback"`
	SubmittedAt  *time.Time `json:"submitted_at"`
	GradedAt     *time.Time `json:"graded_at"`
	SoftDeleteModel

	// 关联
	Assignment *Assignment `gorm:"foreignKey:AssignmentID" json:"assignment,omitempty"`
	Student    *User       `gorm:"foreignKey:StudentID"    json:"student,omitempty"`
}

// TableName 指定表名
func (Submission) TableName() string { return "submissions" }

// StatusAt 按截止时间判定提交状态
func StatusAt(submittedAt, dueDate time.Time) string {
	if submittedAt.After(dueDate) {
		return SubmissionLate
	}
	return SubmissionSubmitted
}
