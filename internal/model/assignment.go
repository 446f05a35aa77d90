package model

import "time"

// Assignment 作业表 — 对应 assignments
type Assignment struct {
	ID             string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CourseID       string    `gorm:"type:uuid;not null"                             json:"course_id"`
	AssignmentCode string    `gorm:"type:varchar(50);not null"                      json:"assignment_code"`
	Title          string    `gorm:"type:varchar(255);not null"                     json:"title"`
	Description    *string   `gorm:"type:text"                                      json:"description"`
	DueDate        time.Time `gorm:"not null"                                       json:"due_date"`
	SoftDeleteModel

	// 关联
	Course      *Course      `gorm:"foreignKey:CourseID"     json:"course,omitempty"`
	Submissions []Submission `gorm:"foreignKey:AssignmentID" json:"submissions,omitempty"`
}

// TableName 指定表名
func (Assignment) TableName() string { return "assignments" }
